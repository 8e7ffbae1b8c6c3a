package adapters

import (
	"context"
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"ndk-build/internal/ports"
	"ndk-build/internal/types"
)

var errRecordedFailure = errors.New("exit status 1")

// RecordingToolchainAdapter records tool invocations instead of running
// them. It backs dry runs and stands in for the SDK in tests.
type RecordingToolchainAdapter struct {
	Invocations []types.Invocation
	// Out receives every invocation as a command line when set.
	Out io.Writer
	// FailWhen makes matching invocations fail as if the tool exited 1.
	FailWhen func(types.Invocation) bool
	// AdbOutput is returned as standard output of every adb invocation.
	AdbOutput []byte
	// Needed maps a library file name to the libraries it links against.
	// Libraries without an entry are inspected on disk when they are ELF
	// files.
	Needed          map[string][]string
	SystemLibraries []string
	Platform        uint32
}

func NewRecordingToolchainAdapter(out io.Writer) *RecordingToolchainAdapter {
	return &RecordingToolchainAdapter{
		Out:      out,
		Needed:   map[string][]string{},
		Platform: 33,
	}
}

func (a *RecordingToolchainAdapter) record(inv types.Invocation) error {
	a.Invocations = append(a.Invocations, inv)
	if a.Out != nil {
		fmt.Fprintln(a.Out, inv.Redacted().String())
	}
	if a.FailWhen != nil && a.FailWhen(inv) {
		return types.ToolFailed(inv, nil, errRecordedFailure)
	}
	return nil
}

// Calls returns the recorded invocations of one tool.
func (a *RecordingToolchainAdapter) Calls(tool string) []types.Invocation {
	var calls []types.Invocation
	for _, inv := range a.Invocations {
		if inv.Tool == tool {
			calls = append(calls, inv)
		}
	}
	return calls
}

func (a *RecordingToolchainAdapter) Aapt(_ context.Context, dir string, args ...string) error {
	return a.record(types.Invocation{Tool: "aapt", Dir: dir, Args: args})
}

func (a *RecordingToolchainAdapter) Zipalign(_ context.Context, dir string, args ...string) error {
	return a.record(types.Invocation{Tool: "zipalign", Dir: dir, Args: args})
}

func (a *RecordingToolchainAdapter) Apksigner(_ context.Context, dir string, args ...string) error {
	return a.record(types.Invocation{Tool: "apksigner", Dir: dir, Args: args})
}

func (a *RecordingToolchainAdapter) Objcopy(_ context.Context, _ types.Target, dir string, args ...string) error {
	return a.record(types.Invocation{Tool: "objcopy", Dir: dir, Args: args})
}

func (a *RecordingToolchainAdapter) Adb(_ context.Context, serial string, args ...string) ([]byte, error) {
	var full []string
	if serial != "" {
		full = append(full, "-s", serial)
	}
	full = append(full, args...)
	if err := a.record(types.Invocation{Tool: "adb", Args: full}); err != nil {
		return nil, err
	}
	return a.AdbOutput, nil
}

func (a *RecordingToolchainAdapter) AndroidJar(platform uint32) (string, error) {
	return filepath.Join("platforms", fmt.Sprintf("android-%d", platform), "android.jar"), nil
}

func (a *RecordingToolchainAdapter) DefaultTargetPlatform() uint32 {
	return a.Platform
}

func (a *RecordingToolchainAdapter) PlatformLibraries(_ types.Target, _ uint32) ([]string, error) {
	return a.SystemLibraries, nil
}

// NeededLibraries answers from Needed first. Other files are read as ELF;
// a file without the ELF magic has no dependencies, while a damaged ELF
// file or an unreadable one is an error.
func (a *RecordingToolchainAdapter) NeededLibraries(path string) ([]string, error) {
	if needed, ok := a.Needed[filepath.Base(path)]; ok {
		return needed, nil
	}
	elfFile, err := hasELFMagic(path)
	if err != nil {
		return nil, err
	}
	if !elfFile {
		return nil, nil
	}
	return readNeededLibraries(path)
}

func hasELFMagic(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, types.IOPathError(path, err)
	}
	defer file.Close()
	magic := make([]byte, len(elf.ELFMAG))
	if _, err := io.ReadFull(file, magic); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}
		return false, types.IOPathError(path, err)
	}
	return string(magic) == elf.ELFMAG, nil
}

var _ ports.ToolchainPort = (*RecordingToolchainAdapter)(nil)
