package adapters

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ndk-build/internal/types"
)

func TestRecordingToolchainPrintsRedactedCommands(t *testing.T) {
	var out bytes.Buffer
	toolchain := NewRecordingToolchainAdapter(&out)

	require.NoError(t, toolchain.Apksigner(t.Context(), "/build", "sign", "--ks-pass", "pass:secret", "demo.apk"))
	_, err := toolchain.Adb(t.Context(), "serial-1", "install", "-r", "demo.apk")
	require.NoError(t, err)

	assert.Equal(t,
		"(cd /build && apksigner sign --ks-pass pass:**** demo.apk)\nadb -s serial-1 install -r demo.apk\n",
		out.String())
	require.Len(t, toolchain.Invocations, 2)
	assert.Contains(t, toolchain.Invocations[0].Args, "pass:secret")
	assert.Len(t, toolchain.Calls("adb"), 1)
}

func TestRecordingToolchainFailWhen(t *testing.T) {
	toolchain := NewRecordingToolchainAdapter(nil)
	toolchain.FailWhen = func(inv types.Invocation) bool { return inv.Tool == "zipalign" }

	require.NoError(t, toolchain.Aapt(t.Context(), "", "add"))
	err := toolchain.Zipalign(t.Context(), "", "-f")
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.ErrToolInvocationFailed))
	assert.Len(t, toolchain.Invocations, 2)
}

func TestRecordingToolchainNeededLibraries(t *testing.T) {
	toolchain := NewRecordingToolchainAdapter(nil)
	toolchain.Needed["libmain.so"] = []string{"libdep.so"}

	needed, err := toolchain.NeededLibraries(filepath.Join("any", "libmain.so"))
	require.NoError(t, err)
	assert.Equal(t, []string{"libdep.so"}, needed)

	plain := filepath.Join(t.TempDir(), "libplain.so")
	require.NoError(t, os.WriteFile(plain, []byte("text"), 0o644))
	needed, err = toolchain.NeededLibraries(plain)
	require.NoError(t, err)
	assert.Empty(t, needed)
}

func TestRunToolCapturesFailureOutput(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	dir := t.TempDir()

	out, err := runTool(t.Context(), types.Invocation{Tool: "sh", Path: sh, Dir: dir, Args: []string{"-c", "pwd"}})
	require.NoError(t, err)
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Contains(t, string(out), filepath.Base(resolved))

	_, err = runTool(t.Context(), types.Invocation{Tool: "sh", Path: sh, Args: []string{"-c", "echo broken >&2; exit 3"}})
	require.Error(t, err)
	var buildErr *types.BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, types.ErrToolInvocationFailed, buildErr.Kind)
	assert.Equal(t, "broken\n", buildErr.Output)
	assert.Equal(t, "sh", buildErr.Invocation.Tool)
}

func TestRunToolMissingExecutable(t *testing.T) {
	_, err := runTool(t.Context(), types.Invocation{Tool: "aapt", Path: filepath.Join(t.TempDir(), "aapt")})
	assert.True(t, types.IsKind(err, types.ErrToolInvocationFailed))
}

func TestRecordingToolchainNeededLibrariesReportsDamagedELF(t *testing.T) {
	toolchain := NewRecordingToolchainAdapter(nil)
	dir := t.TempDir()

	damaged := filepath.Join(dir, "libdamaged.so")
	require.NoError(t, os.WriteFile(damaged, []byte("\x7fELF\x02\x01"), 0o644))
	_, err := toolchain.NeededLibraries(damaged)
	assert.True(t, types.IsKind(err, types.ErrIOPath))

	_, err = toolchain.NeededLibraries(filepath.Join(dir, "libmissing.so"))
	assert.True(t, types.IsKind(err, types.ErrIOPath))

	short := filepath.Join(dir, "libshort.so")
	require.NoError(t, os.WriteFile(short, []byte("so"), 0o644))
	needed, err := toolchain.NeededLibraries(short)
	require.NoError(t, err)
	assert.Empty(t, needed)
}
