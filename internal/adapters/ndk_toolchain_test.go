package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ndk-build/internal/shared"
	"ndk-build/internal/types"
)

func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, dir := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}
}

func fakeSDK(t *testing.T) (string, string) {
	t.Helper()
	sdk := t.TempDir()
	mkdirs(t, sdk,
		"build-tools/30.0.3",
		"build-tools/34.0.0",
		"build-tools/33.0.2",
		"platforms/android-30",
		"platforms/android-34",
		"platforms/android-UpsideDownCake",
		"ndk/25.2.9519653",
		"ndk/26.1.10909125",
	)
	require.NoError(t, os.WriteFile(filepath.Join(sdk, "platforms", "android-34", "android.jar"), []byte("jar"), 0o644))
	return sdk, filepath.Join(sdk, "ndk", "26.1.10909125")
}

func TestNewNDKToolchainAdapterDiscoversLayout(t *testing.T) {
	sdk, ndk := fakeSDK(t)
	t.Setenv("ANDROID_NDK_ROOT", "")
	t.Setenv("ANDROID_NDK_HOME", "")

	adapter, err := NewNDKToolchainAdapter(sdk, "")
	require.NoError(t, err)
	assert.Equal(t, "34.0.0", adapter.BuildToolsVersion)
	assert.Equal(t, ndk, adapter.NDKPath)
	assert.Equal(t, []uint32{30, 34}, adapter.Platforms)
	assert.Equal(t, uint32(34), adapter.DefaultTargetPlatform())

	jar, err := adapter.AndroidJar(34)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(sdk, "platforms", "android-34", "android.jar"), jar)

	_, err = adapter.AndroidJar(30)
	assert.True(t, types.IsKind(err, types.ErrPathNotFound))
}

func TestNewNDKToolchainAdapterRequiresSDK(t *testing.T) {
	t.Setenv("ANDROID_HOME", "")
	t.Setenv("ANDROID_SDK_ROOT", "")
	_, err := NewNDKToolchainAdapter("", "")
	require.Error(t, err)

	_, err = NewNDKToolchainAdapter(filepath.Join(t.TempDir(), "nope"), "")
	assert.True(t, types.IsKind(err, types.ErrPathNotFound))
}

func TestNewestVersionDir(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "9.0.0", "10.0.0", "9.9.9")
	require.NoError(t, os.WriteFile(filepath.Join(root, "99.0.0"), []byte("file"), 0o644))

	best, err := newestVersionDir(root)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0", best)

	_, err = newestVersionDir(filepath.Join(root, "missing"))
	assert.True(t, types.IsKind(err, types.ErrPathNotFound))
}

func TestPlatformLibraries(t *testing.T) {
	sdk, ndk := fakeSDK(t)
	adapter, err := NewNDKToolchainAdapter(sdk, ndk)
	require.NoError(t, err)

	dir := filepath.Join(ndk, "toolchains", "llvm", "prebuilt", shared.HostTag(),
		"sysroot", "usr", "lib", "aarch64-linux-android", "30")
	mkdirs(t, dir, "nested.so")
	for _, name := range []string{"libc.so", "liblog.so", "crtbegin_so.o"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	libs, err := adapter.PlatformLibraries(types.TargetArm64, 30)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"libc.so", "liblog.so"}, libs)

	_, err = adapter.PlatformLibraries(types.TargetX86, 30)
	assert.True(t, types.IsKind(err, types.ErrIOPath))
}

func TestObjcopyPathMissing(t *testing.T) {
	adapter := &NDKToolchainAdapter{NDKPath: t.TempDir()}
	err := adapter.Objcopy(t.Context(), types.TargetArm64, "", "--strip-debug", "a", "b")
	assert.True(t, types.IsKind(err, types.ErrPathNotFound))
}

func TestNeededLibrariesRejectsNonELF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "libfake.so")
	require.NoError(t, os.WriteFile(path, []byte("text"), 0o644))
	_, err := (&NDKToolchainAdapter{}).NeededLibraries(path)
	assert.True(t, types.IsKind(err, types.ErrIOPath))
}

func TestPlatformLibrariesFallsBackToLowerSysrootLevel(t *testing.T) {
	ndk := t.TempDir()
	root := filepath.Join(ndk, "toolchains", "llvm", "prebuilt", shared.HostTag(),
		"sysroot", "usr", "lib", "aarch64-linux-android")
	mkdirs(t, root, "21", "33", "not-a-level")
	for level, names := range map[string][]string{
		"21": {"libc.so"},
		"33": {"libc.so", "libnewapi.so"},
	} {
		for _, name := range names {
			require.NoError(t, os.WriteFile(filepath.Join(root, level, name), nil, 0o644))
		}
	}
	adapter := &NDKToolchainAdapter{NDKPath: ndk}

	libs, err := adapter.PlatformLibraries(types.TargetArm64, 34)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"libc.so", "libnewapi.so"}, libs)

	libs, err = adapter.PlatformLibraries(types.TargetArm64, 28)
	require.NoError(t, err)
	assert.Equal(t, []string{"libc.so"}, libs)

	_, err = adapter.PlatformLibraries(types.TargetArm64, 19)
	assert.True(t, types.IsKind(err, types.ErrPathNotFound))
}
