package adapters

import (
	"context"
	"debug/elf"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	debversion "github.com/knqyf263/go-deb-version"

	"ndk-build/internal/ports"
	"ndk-build/internal/shared"
	"ndk-build/internal/types"
)

// NDKToolchainAdapter runs tools from an Android SDK and NDK installation.
type NDKToolchainAdapter struct {
	SDKPath           string
	NDKPath           string
	BuildToolsVersion string
	Platforms         []uint32
}

// NewNDKToolchainAdapter locates the SDK and NDK. Empty paths fall back to
// ANDROID_HOME/ANDROID_SDK_ROOT and ANDROID_NDK_ROOT/ANDROID_NDK_HOME, then
// to the newest NDK installed side by side in the SDK.
func NewNDKToolchainAdapter(sdkPath string, ndkPath string) (*NDKToolchainAdapter, error) {
	sdkPath = firstNonEmpty(sdkPath, os.Getenv("ANDROID_HOME"), os.Getenv("ANDROID_SDK_ROOT"))
	if sdkPath == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("android sdk not found: set ANDROID_HOME or sdk_path")
	}
	if _, err := os.Stat(sdkPath); err != nil {
		return nil, types.PathNotFound(sdkPath)
	}

	ndkPath = firstNonEmpty(ndkPath, os.Getenv("ANDROID_NDK_ROOT"), os.Getenv("ANDROID_NDK_HOME"))
	if ndkPath == "" {
		sideBySide, err := newestVersionDir(filepath.Join(sdkPath, "ndk"))
		if err == nil {
			ndkPath = filepath.Join(sdkPath, "ndk", sideBySide)
		} else if bundle := filepath.Join(sdkPath, "ndk-bundle"); isDir(bundle) {
			ndkPath = bundle
		}
	}
	if ndkPath == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("android ndk not found: set ANDROID_NDK_ROOT or ndk_path")
	}

	buildTools, err := newestVersionDir(filepath.Join(sdkPath, "build-tools"))
	if err != nil {
		return nil, err
	}
	platforms, err := installedPlatforms(filepath.Join(sdkPath, "platforms"))
	if err != nil {
		return nil, err
	}
	return &NDKToolchainAdapter{
		SDKPath:           sdkPath,
		NDKPath:           ndkPath,
		BuildToolsVersion: buildTools,
		Platforms:         platforms,
	}, nil
}

func (a *NDKToolchainAdapter) buildTool(tool string, dir string, args []string) types.Invocation {
	return types.Invocation{
		Tool: tool,
		Path: filepath.Join(a.SDKPath, "build-tools", a.BuildToolsVersion, tool),
		Dir:  dir,
		Args: args,
	}
}

func (a *NDKToolchainAdapter) Aapt(ctx context.Context, dir string, args ...string) error {
	_, err := runTool(ctx, a.buildTool(shared.Executable("aapt"), dir, args))
	return err
}

func (a *NDKToolchainAdapter) Zipalign(ctx context.Context, dir string, args ...string) error {
	_, err := runTool(ctx, a.buildTool(shared.Executable("zipalign"), dir, args))
	return err
}

func (a *NDKToolchainAdapter) Apksigner(ctx context.Context, dir string, args ...string) error {
	_, err := runTool(ctx, a.buildTool(shared.Script("apksigner"), dir, args))
	return err
}

func (a *NDKToolchainAdapter) Objcopy(ctx context.Context, target types.Target, dir string, args ...string) error {
	path, err := a.objcopyPath(target)
	if err != nil {
		return err
	}
	_, err = runTool(ctx, types.Invocation{Tool: "objcopy", Path: path, Dir: dir, Args: args})
	return err
}

// objcopyPath prefers the LLVM binutils shipped since NDK r23 and falls
// back to the per-target GNU binutils of older NDKs.
func (a *NDKToolchainAdapter) objcopyPath(target types.Target) (string, error) {
	bin := filepath.Join(a.toolchainDir(), "bin")
	candidates := []string{
		filepath.Join(bin, shared.Executable("llvm-objcopy")),
		filepath.Join(bin, shared.Executable(target.NDKTriple()+"-objcopy")),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", types.PathNotFound(candidates[0])
}

func (a *NDKToolchainAdapter) Adb(ctx context.Context, serial string, args ...string) ([]byte, error) {
	var full []string
	if serial != "" {
		full = append(full, "-s", serial)
	}
	full = append(full, args...)
	return runTool(ctx, types.Invocation{
		Tool: "adb",
		Path: filepath.Join(a.SDKPath, "platform-tools", shared.Executable("adb")),
		Args: full,
	})
}

func (a *NDKToolchainAdapter) AndroidJar(platform uint32) (string, error) {
	jar := filepath.Join(a.SDKPath, "platforms", fmt.Sprintf("android-%d", platform), "android.jar")
	if _, err := os.Stat(jar); err != nil {
		return "", types.PathNotFound(jar)
	}
	return jar, nil
}

// DefaultTargetPlatform is the newest installed platform.
func (a *NDKToolchainAdapter) DefaultTargetPlatform() uint32 {
	if len(a.Platforms) == 0 {
		return 0
	}
	return a.Platforms[len(a.Platforms)-1]
}

// PlatformLibraries reads the sysroot of the highest API level the NDK
// ships that does not exceed platform.
func (a *NDKToolchainAdapter) PlatformLibraries(target types.Target, platform uint32) ([]string, error) {
	dir, err := a.sysrootPlatformLibDir(target, platform)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, types.IOPathError(dir, err)
	}
	var libs []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".so" {
			continue
		}
		libs = append(libs, entry.Name())
	}
	return libs, nil
}

func (a *NDKToolchainAdapter) sysrootPlatformLibDir(target types.Target, platform uint32) (string, error) {
	root := filepath.Join(a.toolchainDir(), "sysroot", "usr", "lib", target.NDKTriple())
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", types.IOPathError(root, err)
	}
	var best uint32
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		level, err := strconv.ParseUint(entry.Name(), 10, 32)
		if err != nil || uint32(level) > platform {
			continue
		}
		best = max(best, uint32(level))
	}
	if best == 0 {
		return "", types.PathNotFound(filepath.Join(root, strconv.FormatUint(uint64(platform), 10)))
	}
	return filepath.Join(root, strconv.FormatUint(uint64(best), 10)), nil
}

func (a *NDKToolchainAdapter) NeededLibraries(path string) ([]string, error) {
	return readNeededLibraries(path)
}

func (a *NDKToolchainAdapter) toolchainDir() string {
	return filepath.Join(a.NDKPath, "toolchains", "llvm", "prebuilt", shared.HostTag())
}

func readNeededLibraries(path string) ([]string, error) {
	file, err := elf.Open(path)
	if err != nil {
		return nil, types.IOPathError(path, err)
	}
	defer file.Close()
	needed, err := file.ImportedLibraries()
	if err != nil {
		return nil, types.IOPathError(path, err)
	}
	return needed, nil
}

// newestVersionDir returns the name of the highest versioned directory
// under root, e.g. build-tools/34.0.0 over build-tools/33.0.2.
func newestVersionDir(root string) (string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", types.PathNotFound(root)
		}
		return "", types.IOPathError(root, err)
	}
	var best string
	var bestVersion debversion.Version
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		version, err := debversion.NewVersion(entry.Name())
		if err != nil {
			continue
		}
		if best == "" || version.GreaterThan(bestVersion) {
			best = entry.Name()
			bestVersion = version
		}
	}
	if best == "" {
		return "", types.PathNotFound(root)
	}
	return best, nil
}

func installedPlatforms(root string) ([]uint32, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, types.IOPathError(root, err)
	}
	var platforms []uint32
	for _, entry := range entries {
		level, ok := strings.CutPrefix(entry.Name(), "android-")
		if !entry.IsDir() || !ok {
			continue
		}
		parsed, err := strconv.ParseUint(level, 10, 32)
		if err != nil {
			continue
		}
		platforms = append(platforms, uint32(parsed))
	}
	sort.Slice(platforms, func(i, j int) bool { return platforms[i] < platforms[j] })
	return platforms, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

var _ ports.ToolchainPort = (*NDKToolchainAdapter)(nil)
