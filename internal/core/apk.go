package core

import (
	"context"
	"maps"
	"os"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/rs/zerolog/log"

	"ndk-build/internal/policies"
	"ndk-build/internal/types"
)

// UnalignedAPK is a freshly created container that accepts libraries.
// Libraries are copied into the build directory immediately but only
// written into the container by AddPendingLibsAndAlign.
type UnalignedAPK struct {
	config   BuildConfig
	pending  StagedLibrarySet
	symbols  policies.DebugSymbolPolicy
	resolved map[types.Target]map[string]struct{}
	consumed bool
}

// UnsignedAPK is an aligned container that has not been signed yet.
type UnsignedAPK struct {
	config   BuildConfig
	consumed bool
}

// CreateAPK writes the manifest and asks aapt for an empty container
// referencing the manifest, the platform definitions and the optional
// resource and asset directories.
func CreateAPK(ctx context.Context, config BuildConfig) (*UnalignedAPK, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	symbols, err := policies.NewDebugSymbolPolicy(config.Strip)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(config.BuildDir, 0o755); err != nil {
		return nil, types.IOPathError(config.BuildDir, err)
	}
	if err := config.ManifestWriter.WriteManifest(config.BuildDir, config.Manifest); err != nil {
		return nil, err
	}

	platform := config.Manifest.SDK.TargetSDKVersion
	if platform == 0 {
		platform = config.Toolchain.DefaultTargetPlatform()
	}
	androidJar, err := config.Toolchain.AndroidJar(platform)
	if err != nil {
		return nil, err
	}

	args := []string{
		"package",
		"-f",
		"-F", config.UnalignedAPKPath(),
		"-M", types.ManifestFileName,
		"-I", androidJar,
	}
	args = append(args, config.compressionArgs()...)
	if config.Resources != "" {
		args = append(args, "-S", config.Resources)
	}
	if config.Assets != "" {
		args = append(args, "-A", config.Assets)
	}
	if err := config.Toolchain.Aapt(ctx, config.BuildDir, args...); err != nil {
		return nil, err
	}
	log.Ctx(ctx).Debug().
		Str("apk", config.UnalignedAPKPath()).
		Uint32("platform", platform).
		Msg("unaligned apk created")

	return &UnalignedAPK{
		config:   config,
		pending:  NewStagedLibrarySet(),
		symbols:  symbols,
		resolved: map[types.Target]map[string]struct{}{},
	}, nil
}

func (a *UnalignedAPK) Config() BuildConfig {
	return a.config
}

// PendingLibs returns the archive paths staged so far.
func (a *UnalignedAPK) PendingLibs() []string {
	return a.pending.Paths()
}

// AddPendingLibsAndAlign adds every staged library to the container with a
// single aapt invocation and aligns the result to 4 bytes at APKPath.
// The receiver cannot be used afterwards.
func (a *UnalignedAPK) AddPendingLibsAndAlign(ctx context.Context) (*UnsignedAPK, error) {
	if a.consumed {
		return nil, types.HandleConsumed("unaligned apk")
	}
	a.consumed = true
	config := a.config

	if _, err := os.Stat(config.BuildDir); err != nil {
		return nil, types.IOPathError(config.BuildDir, err)
	}

	if a.pending.Len() > 0 {
		args := []string{"add"}
		args = append(args, config.compressionArgs()...)
		args = append(args, config.UnalignedAPKPath())
		args = append(args, a.pending.Paths()...)
		if err := config.Toolchain.Aapt(ctx, config.BuildDir, args...); err != nil {
			return nil, err
		}
	}

	if err := config.Toolchain.Zipalign(ctx, config.BuildDir,
		"-f", "-v", "4", config.UnalignedAPKPath(), config.APKPath()); err != nil {
		return nil, err
	}
	log.Ctx(ctx).Debug().
		Int("libraries", a.pending.Len()).
		Str("apk", config.APKPath()).
		Msg("apk aligned")
	return &UnsignedAPK{config: config}, nil
}

// Sign signs the aligned container in place. The receiver cannot be used
// afterwards.
func (u *UnsignedAPK) Sign(ctx context.Context, key types.Key) (*APK, error) {
	if u.consumed {
		return nil, types.HandleConsumed("unsigned apk")
	}
	u.consumed = true
	config := u.config

	if err := config.Toolchain.Apksigner(ctx, config.BuildDir,
		"sign",
		"--ks", key.Path,
		"--ks-pass", "pass:"+key.Password,
		config.APKPath(),
	); err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Str("apk", config.APKPath()).Msg("apk signed")
	return newAPK(ctx, config), nil
}

// APK is a signed package ready to be deployed to a device.
type APK struct {
	path               string
	packageName        string
	bridge             DeviceBridge
	reversePortForward map[string]string
}

// OpenAPK returns the package a previous build of config produced.
func OpenAPK(ctx context.Context, config BuildConfig) (*APK, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(config.APKPath()); err != nil {
		if os.IsNotExist(err) {
			return nil, types.PathNotFound(config.APKPath())
		}
		return nil, types.IOPathError(config.APKPath(), err)
	}
	return newAPK(ctx, config), nil
}

func newAPK(ctx context.Context, config BuildConfig) *APK {
	assert.NotEmpty(ctx, config.Manifest.Package, "manifest package must be set")
	return &APK{
		path:               config.APKPath(),
		packageName:        config.Manifest.Package,
		bridge:             config.Toolchain,
		reversePortForward: maps.Clone(config.ReversePortForward),
	}
}

func (a *APK) Path() string {
	return a.path
}

func (a *APK) PackageName() string {
	return a.packageName
}
