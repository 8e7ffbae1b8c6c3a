// Package shared provides common utility functions used across multiple
// packages in the ndk-build codebase.
package shared

import (
	"runtime"
	"sort"
)

// Executable appends the host's executable suffix to a tool name.
func Executable(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

// Script appends the host's batch-script suffix to a wrapper script name,
// as used by SDK tools shipped as shell scripts on unix.
func Script(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".bat"
	}
	return name
}

// HostTag returns the NDK prebuilt directory name for the host.
func HostTag() string {
	switch runtime.GOOS {
	case "windows":
		return "windows-x86_64"
	case "darwin":
		return "darwin-x86_64"
	default:
		return "linux-x86_64"
	}
}

// SortedKeys returns the keys of values in lexical order.
func SortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
