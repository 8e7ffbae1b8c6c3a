package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// ErrorKind classifies failures of the packaging pipeline.
type ErrorKind string

const (
	ErrToolInvocationFailed ErrorKind = "tool invocation failed"
	ErrPathNotFound         ErrorKind = "path not found"
	ErrIO                   ErrorKind = "io error"
	ErrIOPath               ErrorKind = "io error on path"
	ErrPackageNotInOutput   ErrorKind = "package not in output"
	ErrUIDNotInOutput       ErrorKind = "uid not in output"
	ErrNotAUID              ErrorKind = "not a uid"
	ErrHandleConsumed       ErrorKind = "handle already consumed"
)

// BuildError is returned by every pipeline and device operation. Exactly
// the fields relevant to Kind are set.
type BuildError struct {
	Kind       ErrorKind
	Code       errbuilder.ErrCode
	Invocation *Invocation
	Output     string
	Path       string
	Package    string
	Value      string
	Cause      error
}

func (e *BuildError) Error() string {
	var builder strings.Builder
	builder.WriteString(string(e.Kind))
	switch e.Kind {
	case ErrToolInvocationFailed:
		if e.Invocation != nil {
			builder.WriteString(": ")
			builder.WriteString(e.Invocation.String())
		}
		if out := strings.TrimSpace(e.Output); out != "" {
			builder.WriteString("\n")
			builder.WriteString(out)
		}
	case ErrPathNotFound, ErrIOPath:
		builder.WriteString(": ")
		builder.WriteString(e.Path)
	case ErrPackageNotInOutput:
		fmt.Fprintf(&builder, ": package %q in output %q", e.Package, e.Output)
	case ErrUIDNotInOutput:
		fmt.Fprintf(&builder, ": %q", e.Output)
	case ErrNotAUID:
		fmt.Fprintf(&builder, ": %q", e.Value)
	}
	if e.Cause != nil {
		builder.WriteString(": ")
		builder.WriteString(e.Cause.Error())
	}
	return builder.String()
}

func (e *BuildError) Unwrap() error {
	return e.Cause
}

// IsKind reports whether err carries a BuildError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var buildErr *BuildError
	return errors.As(err, &buildErr) && buildErr.Kind == kind
}

// CodeOf returns the error code of a BuildError, falling back to the
// errbuilder code for errors raised outside the pipeline.
func CodeOf(err error) errbuilder.ErrCode {
	var buildErr *BuildError
	if errors.As(err, &buildErr) {
		return buildErr.Code
	}
	return errbuilder.CodeOf(err)
}

func ToolFailed(inv Invocation, output []byte, cause error) error {
	return &BuildError{
		Kind:       ErrToolInvocationFailed,
		Code:       errbuilder.CodeInternal,
		Invocation: &inv,
		Output:     string(output),
		Cause:      cause,
	}
}

func PathNotFound(path string) error {
	return &BuildError{
		Kind: ErrPathNotFound,
		Code: errbuilder.CodeNotFound,
		Path: path,
	}
}

func IOError(msg string, cause error) error {
	return &BuildError{
		Kind: ErrIO,
		Code: errbuilder.CodeInternal,
		Cause: errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(msg).
			WithCause(cause),
	}
}

func IOPathError(path string, cause error) error {
	return &BuildError{
		Kind:  ErrIOPath,
		Code:  errbuilder.CodeInternal,
		Path:  path,
		Cause: cause,
	}
}

func PackageNotInOutput(pkg string, output string) error {
	return &BuildError{
		Kind:    ErrPackageNotInOutput,
		Code:    errbuilder.CodeNotFound,
		Package: pkg,
		Output:  output,
	}
}

func UIDNotInOutput(output string) error {
	return &BuildError{
		Kind:   ErrUIDNotInOutput,
		Code:   errbuilder.CodeInvalidArgument,
		Output: output,
	}
}

func NotAUID(value string, cause error) error {
	return &BuildError{
		Kind:  ErrNotAUID,
		Code:  errbuilder.CodeInvalidArgument,
		Value: value,
		Cause: cause,
	}
}

func HandleConsumed(state string) error {
	return &BuildError{
		Kind: ErrHandleConsumed,
		Code: errbuilder.CodeFailedPrecondition,
		Cause: errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("%s handle was already consumed", state)),
	}
}
