package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ndk-build/internal/types"
)

func TestRunForwardsInstallsAndStarts(t *testing.T) {
	service, toolchain := newTestService()
	spec := testSpec(t)

	result, err := service.Run(t.Context(), DeployRequest{Spec: spec, Serial: "emulator-5554"})
	require.NoError(t, err)
	assert.Equal(t, "com.example.demo", result.APK.PackageName())

	var adb [][]string
	for _, inv := range toolchain.Calls("adb") {
		adb = append(adb, inv.Args)
	}
	want := [][]string{
		{"-s", "emulator-5554", "reverse", "tcp:5000", "tcp:5000"},
		{"-s", "emulator-5554", "install", "-r", result.APK.Path()},
		{"-s", "emulator-5554", "shell", "am", "start", "-a", "android.intent.action.MAIN",
			"-n", "com.example.demo/android.app.NativeActivity"},
	}
	if diff := cmp.Diff(want, adb); diff != "" {
		t.Fatalf("unexpected adb invocations (-want +got):\n%s", diff)
	}
}

func TestRunStopsWhenInstallFails(t *testing.T) {
	service, toolchain := newTestService()
	toolchain.FailWhen = func(inv types.Invocation) bool {
		return inv.Tool == "adb" && len(inv.Args) > 0 && inv.Args[0] == "install"
	}

	_, err := service.Run(t.Context(), DeployRequest{Spec: testSpec(t)})
	require.True(t, types.IsKind(err, types.ErrToolInvocationFailed))
	assert.Len(t, toolchain.Calls("adb"), 2)
}

func TestInstallAndUIDRequireBuiltAPK(t *testing.T) {
	service, toolchain := newTestService()
	spec := testSpec(t)

	err := service.Install(t.Context(), DeployRequest{Spec: spec})
	require.True(t, types.IsKind(err, types.ErrPathNotFound))
	_, err = service.UID(t.Context(), DeployRequest{Spec: spec})
	require.True(t, types.IsKind(err, types.ErrPathNotFound))
	assert.Empty(t, toolchain.Invocations)
}

func TestUIDOfBuiltAPK(t *testing.T) {
	service, toolchain := newTestService()
	spec := testSpec(t)
	require.NoError(t, os.MkdirAll(spec.BuildDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(spec.BuildDir, "demo.apk"), []byte("apk"), 0o644))
	toolchain.AdbOutput = []byte("package:com.example.demo uid:10077\n")

	result, err := service.UID(t.Context(), DeployRequest{Spec: spec})
	require.NoError(t, err)
	assert.Equal(t, UIDResult{Package: "com.example.demo", UID: 10077}, result)

	require.NoError(t, service.Install(t.Context(), DeployRequest{Spec: spec}))
	assert.Len(t, toolchain.Calls("adb"), 2)
}
