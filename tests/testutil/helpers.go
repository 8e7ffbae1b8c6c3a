// Package testutil provides shared test helpers used across integration,
// e2e, and unit test packages.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"ndk-build/internal/types"
)

// RepoRoot returns the absolute path to the repository root by walking
// up from the current working directory. It fails the test if the
// working directory cannot be determined.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// FixtureSpec is the sample build description under fixtures/.
func FixtureSpec(t *testing.T) string {
	t.Helper()
	return filepath.Join(RepoRoot(t), "fixtures", "apk.yaml")
}

// RenderInvocations prints invocations one per line with passwords
// masked. Each replacement maps an absolute path prefix to a stable
// placeholder so the output can be compared across machines.
func RenderInvocations(invocations []types.Invocation, replacements ...string) string {
	replacer := strings.NewReplacer(replacements...)
	var builder strings.Builder
	for _, inv := range invocations {
		builder.WriteString(replacer.Replace(inv.Redacted().String()))
		builder.WriteString("\n")
	}
	return builder.String()
}
