package core

import (
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"ndk-build/internal/ports"
	"ndk-build/internal/types"
)

// BuildConfig describes one package build. It is not modified by the
// pipeline once CreateAPK has been called.
type BuildConfig struct {
	Toolchain              ports.ToolchainPort
	ManifestWriter         ports.ManifestWriterPort
	BuildDir               string
	APKName                string
	Assets                 string
	Resources              string
	Manifest               types.AndroidManifest
	DisableAaptCompression bool
	Strip                  types.StripConfig
	ReversePortForward     map[string]string
}

// DefaultMinSDKVersion is assumed when the manifest sets no minSdkVersion.
// It is the lowest API level the supported NDKs ship a sysroot for.
const DefaultMinSDKVersion uint32 = 21

// MinSDKVersion is the oldest API level the package must load on. System
// libraries are resolved against it.
func (c BuildConfig) MinSDKVersion() uint32 {
	if c.Manifest.SDK.MinSDKVersion == 0 {
		return DefaultMinSDKVersion
	}
	return c.Manifest.SDK.MinSDKVersion
}

// UnalignedAPKPath is the container written by aapt before alignment.
func (c BuildConfig) UnalignedAPKPath() string {
	return filepath.Join(c.BuildDir, c.APKName+"-unaligned.apk")
}

// APKPath is the container written by zipalign and signed in place.
func (c BuildConfig) APKPath() string {
	return filepath.Join(c.BuildDir, c.APKName+".apk")
}

func (c BuildConfig) validate() error {
	if c.Toolchain == nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("toolchain is required")
	}
	if c.ManifestWriter == nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("manifest writer is required")
	}
	if strings.TrimSpace(c.BuildDir) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("build directory is empty")
	}
	if strings.TrimSpace(c.APKName) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("apk name is empty")
	}
	if strings.TrimSpace(c.Manifest.Package) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("manifest package is empty")
	}
	if _, err := types.ParseStripConfig(string(c.Strip)); err != nil {
		return err
	}
	return nil
}

// compressionArgs forces aapt to store every entry uncompressed.
func (c BuildConfig) compressionArgs() []string {
	if c.DisableAaptCompression {
		return []string{"-0", ""}
	}
	return nil
}
