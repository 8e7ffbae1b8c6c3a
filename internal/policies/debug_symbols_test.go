package policies

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"ndk-build/internal/types"
)

func TestDebugSymbolPolicySteps(t *testing.T) {
	out := filepath.Join("build", "lib", "arm64-v8a", "libmain.so")
	dwarf := filepath.Join("build", "lib", "arm64-v8a", "libmain.dwarf")

	cases := []struct {
		name   string
		config types.StripConfig
		want   []ObjcopyStep
	}{
		{name: "zero value copies", config: "", want: nil},
		{name: "default copies", config: types.StripDefault, want: nil},
		{name: "strip", config: types.StripDebug, want: []ObjcopyStep{
			{Args: []string{"--strip-debug", "src/libmain.so", out}},
		}},
		{name: "split", config: types.StripSplit, want: []ObjcopyStep{
			{Args: []string{"--strip-debug", "src/libmain.so", out}},
			{Args: []string{"--only-keep-debug", "src/libmain.so", dwarf}},
			{Dir: filepath.Dir(out), Args: []string{"--add-gnu-debuglink=libmain.dwarf", "libmain.so"}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			policy, err := NewDebugSymbolPolicy(tc.config)
			require.NoError(t, err)
			got, err := policy.Steps("src/libmain.so", out)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("unexpected steps (-want +got):\n%s", diff)
			}
			require.Equal(t, len(tc.want) == 0, policy.CopiesVerbatim())
		})
	}
}

func TestDebugSymbolPolicyRejectsUnknownConfig(t *testing.T) {
	_, err := NewDebugSymbolPolicy("compress")
	require.Error(t, err)
}

func TestDebugInfoPath(t *testing.T) {
	require.Equal(t, filepath.Join("out", "libfoo.dwarf"), DebugInfoPath(filepath.Join("out", "libfoo.so")))
}
