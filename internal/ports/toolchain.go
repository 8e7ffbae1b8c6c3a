package ports

import (
	"context"

	"ndk-build/internal/types"
)

// ToolchainPort runs the Android SDK/NDK tools. Each method blocks until
// the tool exits and returns a BuildError of kind ErrToolInvocationFailed
// when it exits non-zero. dir is the working directory of the tool.
type ToolchainPort interface {
	Aapt(ctx context.Context, dir string, args ...string) error
	Zipalign(ctx context.Context, dir string, args ...string) error
	Apksigner(ctx context.Context, dir string, args ...string) error
	Objcopy(ctx context.Context, target types.Target, dir string, args ...string) error
	// Adb runs the device bridge against serial (any device when empty)
	// and returns its standard output.
	Adb(ctx context.Context, serial string, args ...string) ([]byte, error)

	// AndroidJar locates the platform definitions for an API level.
	AndroidJar(platform uint32) (string, error)
	DefaultTargetPlatform() uint32
	// PlatformLibraries lists the shared libraries every device running
	// the given API level or newer provides for target.
	PlatformLibraries(target types.Target, platform uint32) ([]string, error)
	// NeededLibraries lists the DT_NEEDED entries of a shared library.
	NeededLibraries(path string) ([]string, error)
}
