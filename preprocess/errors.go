package preprocess

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors, matched with errors.Is.
var (
	ErrIncludeCycle      = errors.New("preprocess: include cycle")
	ErrIncludeNotFound   = errors.New("preprocess: include not found")
	ErrParameterConflict = errors.New("preprocess: parameter conflict")
	ErrDirective         = errors.New("preprocess: malformed directive")
)

// IncludeCycleError reports an #include of a file that is already being
// expanded. Chain lists the inclusion stack from the root file to the file
// that closes the cycle, which appears twice.
type IncludeCycleError struct {
	Chain []string
	At    Origin // the offending #include
}

func (e *IncludeCycleError) Error() string {
	return fmt.Sprintf("preprocess: %s: include cycle: %s", e.At, strings.Join(e.Chain, " -> "))
}

// Is reports whether target is ErrIncludeCycle.
func (e *IncludeCycleError) Is(target error) bool { return target == ErrIncludeCycle }

// IncludeNotFoundError reports an #include whose target cannot be read.
type IncludeNotFoundError struct {
	Path string // resolved path of the include target
	At   Origin
	Err  error
}

func (e *IncludeNotFoundError) Error() string {
	msg := "preprocess: cannot read " + e.Path
	if e.At.File != "" {
		msg = fmt.Sprintf("preprocess: %s: cannot include %s", e.At, e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is ErrIncludeNotFound.
func (e *IncludeNotFoundError) Is(target error) bool { return target == ErrIncludeNotFound }

// Unwrap returns the underlying I/O error.
func (e *IncludeNotFoundError) Unwrap() error { return e.Err }

// ParameterConflictError reports two declarations of the same parameter
// whose values cannot be reconciled.
type ParameterConflictError struct {
	Name   string
	Reason string
	First  Origin // zero when the first declaration comes from a preset
	Second Origin
}

func (e *ParameterConflictError) Error() string {
	var where []string
	if e.First.File != "" {
		where = append(where, e.First.String())
	}
	if e.Second.File != "" {
		where = append(where, e.Second.String())
	}
	msg := fmt.Sprintf("preprocess: parameter %q: %s", e.Name, e.Reason)
	if len(where) > 0 {
		msg += " (" + strings.Join(where, ", ") + ")"
	}
	return msg
}

// Is reports whether target is ErrParameterConflict.
func (e *ParameterConflictError) Is(target error) bool { return target == ErrParameterConflict }

// DirectiveError reports a directive line that cannot be parsed.
type DirectiveError struct {
	At  Origin
	Msg string
}

func (e *DirectiveError) Error() string {
	return fmt.Sprintf("preprocess: %s: %s", e.At, e.Msg)
}

// Is reports whether target is ErrDirective.
func (e *DirectiveError) Is(target error) bool { return target == ErrDirective }
