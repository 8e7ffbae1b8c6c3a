package policies

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"ndk-build/internal/types"
)

// ObjcopyStep is one objcopy invocation. An empty Dir runs in the current
// directory.
type ObjcopyStep struct {
	Dir  string
	Args []string
}

// DebugSymbolPolicy decides how a library reaches the build directory.
type DebugSymbolPolicy struct {
	config types.StripConfig
}

func NewDebugSymbolPolicy(config types.StripConfig) (DebugSymbolPolicy, error) {
	parsed, err := types.ParseStripConfig(string(config))
	if err != nil {
		return DebugSymbolPolicy{}, err
	}
	return DebugSymbolPolicy{config: parsed}, nil
}

// CopiesVerbatim reports whether the library is copied unmodified.
func (p DebugSymbolPolicy) CopiesVerbatim() bool {
	return p.config.Normalized() == types.StripDefault
}

// Steps returns the objcopy invocations turning src into out. The debug
// link is added from the output directory so it records only the
// side-file name.
func (p DebugSymbolPolicy) Steps(src string, out string) ([]ObjcopyStep, error) {
	switch p.config.Normalized() {
	case types.StripDefault:
		return nil, nil
	case types.StripDebug:
		return []ObjcopyStep{stripStep(src, out)}, nil
	case types.StripSplit:
		dwarf := DebugInfoPath(out)
		return []ObjcopyStep{
			stripStep(src, out),
			{Args: []string{"--only-keep-debug", src, dwarf}},
			{Dir: filepath.Dir(out), Args: []string{"--add-gnu-debuglink=" + filepath.Base(dwarf), filepath.Base(out)}},
		}, nil
	default:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown strip config: %s", p.config))
	}
}

// DebugInfoPath is the side-file split debug information is written to.
func DebugInfoPath(library string) string {
	return strings.TrimSuffix(library, filepath.Ext(library)) + ".dwarf"
}

func stripStep(src string, out string) ObjcopyStep {
	return ObjcopyStep{Args: []string{"--strip-debug", src, out}}
}
