package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ndk-build/internal/adapters"
	"ndk-build/internal/types"
)

func newTestService() (Service, *adapters.RecordingToolchainAdapter) {
	toolchain := adapters.NewRecordingToolchainAdapter(nil)
	return NewService(toolchain), toolchain
}

func testSpec(t *testing.T) types.BuildSpec {
	t.Helper()
	libs := t.TempDir()
	for _, name := range []string{"libdemo.so", "libc++_shared.so"} {
		require.NoError(t, os.WriteFile(filepath.Join(libs, name), []byte(name), 0o755))
	}
	return types.BuildSpec{
		BuildDir: filepath.Join(t.TempDir(), "apk"),
		APKName:  "demo",
		Manifest: types.AndroidManifest{Package: "com.example.demo"},
		Libraries: []types.LibraryInput{
			{Target: "arm64-v8a", Path: filepath.Join(libs, "libdemo.so")},
			{Target: "armv7", Path: filepath.Join(libs, "libdemo.so")},
		},
		SearchPaths:        []string{libs},
		Key:                types.Key{Path: "debug.keystore", Password: "android"},
		ReversePortForward: map[string]string{"tcp:5000": "tcp:5000"},
	}
}

func TestBuildRunsPipeline(t *testing.T) {
	service, toolchain := newTestService()
	spec := testSpec(t)
	toolchain.Needed["libdemo.so"] = []string{"libc++_shared.so", "liblog.so"}
	toolchain.SystemLibraries = []string{"liblog.so"}

	result, err := service.Build(t.Context(), BuildRequest{Spec: spec})
	require.NoError(t, err)

	want := []string{
		"lib/arm64-v8a/libc++_shared.so",
		"lib/arm64-v8a/libdemo.so",
		"lib/armeabi-v7a/libc++_shared.so",
		"lib/armeabi-v7a/libdemo.so",
	}
	if diff := cmp.Diff(want, result.Libraries); diff != "" {
		t.Fatalf("unexpected staged libraries (-want +got):\n%s", diff)
	}
	assert.Equal(t, filepath.Join(spec.BuildDir, "demo.apk"), result.APK.Path())

	tools := make([]string, 0, len(toolchain.Invocations))
	for _, inv := range toolchain.Invocations {
		tools = append(tools, inv.Tool)
	}
	assert.Equal(t, []string{"aapt", "aapt", "zipalign", "apksigner"}, tools)

	manifest, err := os.ReadFile(filepath.Join(spec.BuildDir, "AndroidManifest.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(manifest), `android:value="demo"`)
}

func TestBuildWithRuntimeLibs(t *testing.T) {
	service, _ := newTestService()
	spec := testSpec(t)
	spec.Libraries = spec.Libraries[:1]
	spec.RuntimeLibs = t.TempDir()
	abiDir := filepath.Join(spec.RuntimeLibs, "arm64-v8a")
	require.NoError(t, os.MkdirAll(abiDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(abiDir, "libextra.so"), []byte("x"), 0o755))

	result, err := service.Build(t.Context(), BuildRequest{Spec: spec})
	require.NoError(t, err)
	assert.Equal(t, []string{"lib/arm64-v8a/libdemo.so", "lib/arm64-v8a/libextra.so"}, result.Libraries)
}

func TestBuildValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*types.BuildSpec)
	}{
		{name: "build dir", mutate: func(s *types.BuildSpec) { s.BuildDir = "" }},
		{name: "apk name", mutate: func(s *types.BuildSpec) { s.APKName = " " }},
		{name: "package", mutate: func(s *types.BuildSpec) { s.Manifest.Package = "" }},
		{name: "key", mutate: func(s *types.BuildSpec) { s.Key.Path = "" }},
		{name: "no libraries", mutate: func(s *types.BuildSpec) { s.Libraries = nil }},
		{name: "bad target", mutate: func(s *types.BuildSpec) { s.Libraries[0].Target = "mips" }},
		{name: "empty library path", mutate: func(s *types.BuildSpec) { s.Libraries[0].Path = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service, toolchain := newTestService()
			spec := testSpec(t)
			tc.mutate(&spec)

			_, err := service.Build(t.Context(), BuildRequest{Spec: spec})
			require.Error(t, err)
			assert.Equal(t, errbuilder.CodeInvalidArgument, types.CodeOf(err))
			assert.Empty(t, toolchain.Invocations)
		})
	}
}

func TestBuildKeepsConfiguredLibName(t *testing.T) {
	service, _ := newTestService()
	spec := testSpec(t)
	spec.Manifest = spec.Manifest.WithLibName("main")

	_, err := service.Build(t.Context(), BuildRequest{Spec: spec})
	require.NoError(t, err)
	manifest, err := os.ReadFile(filepath.Join(spec.BuildDir, "AndroidManifest.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(manifest), `android:value="main"`)
}

func TestLibName(t *testing.T) {
	assert.Equal(t, "demo", libName("/out/libdemo.so"))
	assert.Equal(t, "native", libName("native.so"))
}

func TestBuildDigestsSignedPackage(t *testing.T) {
	service, _ := newTestService()
	spec := testSpec(t)

	result, err := service.Build(t.Context(), BuildRequest{Spec: spec})
	require.NoError(t, err)
	assert.Empty(t, result.Digest, "recording toolchain writes no package")

	require.NoError(t, os.WriteFile(filepath.Join(spec.BuildDir, "demo.apk"), []byte("signed"), 0o644))
	result, err = service.Build(t.Context(), BuildRequest{Spec: spec})
	require.NoError(t, err)
	assert.Len(t, result.Digest, 64)
}
