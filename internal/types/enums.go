package types

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// Target is a compilation target identified by its rust-style triple.
type Target string

const (
	TargetArmV7   Target = "armv7-linux-androideabi"
	TargetArm64   Target = "aarch64-linux-android"
	TargetX86     Target = "i686-linux-android"
	TargetX86_64  Target = "x86_64-linux-android"
	targetUnknown Target = ""
)

// SupportedTargets returns every target a package can carry libraries for.
func SupportedTargets() []Target {
	return []Target{TargetArmV7, TargetArm64, TargetX86, TargetX86_64}
}

// AndroidABI returns the directory name the device loader expects under lib/.
func (t Target) AndroidABI() string {
	switch t {
	case TargetArmV7:
		return "armeabi-v7a"
	case TargetArm64:
		return "arm64-v8a"
	case TargetX86:
		return "x86"
	case TargetX86_64:
		return "x86_64"
	default:
		return ""
	}
}

// NDKTriple returns the triple used for sysroot library directories.
func (t Target) NDKTriple() string {
	switch t {
	case TargetArmV7:
		return "arm-linux-androideabi"
	case TargetArm64:
		return "aarch64-linux-android"
	case TargetX86:
		return "i686-linux-android"
	case TargetX86_64:
		return "x86_64-linux-android"
	default:
		return ""
	}
}

func (t Target) String() string {
	return string(t)
}

// ParseTarget accepts a triple, an ABI name or a common architecture alias.
func ParseTarget(value string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(TargetArmV7), "armeabi-v7a", "armv7", "arm":
		return TargetArmV7, nil
	case string(TargetArm64), "arm64-v8a", "arm64", "aarch64":
		return TargetArm64, nil
	case string(TargetX86), "x86", "i686", "i386":
		return TargetX86, nil
	case string(TargetX86_64), "x86_64", "x86-64", "amd64":
		return TargetX86_64, nil
	}
	names := make([]string, 0, len(SupportedTargets()))
	for _, t := range SupportedTargets() {
		names = append(names, t.String())
	}
	return targetUnknown, errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("unsupported target %q (supported: %s)", value, strings.Join(names, ", ")))
}

// StripConfig selects how debug symbols in added libraries are treated.
type StripConfig string

const (
	// StripDefault copies libraries unchanged.
	StripDefault StripConfig = "default"
	// StripDebug removes debug symbols before staging.
	StripDebug StripConfig = "strip"
	// StripSplit moves debug symbols into a .dwarf side-file and links it.
	StripSplit StripConfig = "split"
)

// Normalized maps the zero value to StripDefault.
func (s StripConfig) Normalized() StripConfig {
	if s == "" {
		return StripDefault
	}
	return s
}

func ParseStripConfig(value string) (StripConfig, error) {
	switch StripConfig(strings.ToLower(strings.TrimSpace(value))) {
	case "", StripDefault:
		return StripDefault, nil
	case StripDebug:
		return StripDebug, nil
	case StripSplit:
		return StripSplit, nil
	}
	return "", errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("unsupported strip mode %q (supported: default, strip, split)", value))
}

func (s *StripConfig) UnmarshalText(text []byte) error {
	parsed, err := ParseStripConfig(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
