package types

import (
	"strconv"
	"strings"
)

// Invocation describes one external tool run in enough detail to repeat it
// by hand.
type Invocation struct {
	Tool string
	Path string
	Dir  string
	Args []string
}

func (i Invocation) String() string {
	program := i.Path
	if program == "" {
		program = i.Tool
	}
	parts := make([]string, 0, len(i.Args)+1)
	parts = append(parts, quoteArg(program))
	for _, arg := range i.Args {
		parts = append(parts, quoteArg(arg))
	}
	line := strings.Join(parts, " ")
	if i.Dir != "" {
		return "(cd " + quoteArg(i.Dir) + " && " + line + ")"
	}
	return line
}

func quoteArg(arg string) string {
	if arg == "" || strings.ContainsAny(arg, " \t\n\"'\\$") {
		return strconv.Quote(arg)
	}
	return arg
}

// Redacted returns a copy with keystore passwords masked, for logging.
func (i Invocation) Redacted() Invocation {
	args := make([]string, len(i.Args))
	for idx, arg := range i.Args {
		if strings.HasPrefix(arg, "pass:") {
			arg = "pass:****"
		}
		args[idx] = arg
	}
	i.Args = args
	return i
}
