package preset

import (
	"errors"
	"fmt"
)

// Sentinel errors, matched with errors.Is.
var (
	// ErrSyntax is matched by every *SyntaxError.
	ErrSyntax = errors.New("preset: syntax error")

	// ErrResolution is matched by every *ResolutionError.
	ErrResolution = errors.New("preset: resolution error")
)

// SyntaxError reports malformed preset text.
type SyntaxError struct {
	File   string // empty for text parsed from memory
	Line   int    // 1-based
	Column int    // 1-based
	Msg    string
}

func (e *SyntaxError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("preset: %s:%d:%d: %s", e.File, e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("preset: %d:%d: %s", e.Line, e.Column, e.Msg)
}

// Is reports whether target is ErrSyntax.
func (e *SyntaxError) Is(target error) bool { return target == ErrSyntax }

// ResolutionError reports a well-formed key whose value cannot be resolved:
// a missing file, an unknown reference or a value outside its allowed range.
type ResolutionError struct {
	File   string
	Key    string
	Reason string
	Err    error
}

func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("preset: %s: %s", e.Key, e.Reason)
	if e.File != "" {
		msg = fmt.Sprintf("preset: %s: %s: %s", e.File, e.Key, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is ErrResolution.
func (e *ResolutionError) Is(target error) bool { return target == ErrResolution }

// Unwrap returns the underlying cause, if any.
func (e *ResolutionError) Unwrap() error { return e.Err }
