package compiler

import (
	"errors"
	"fmt"

	"github.com/gogpu/shaderchain/core"
	"github.com/gogpu/shaderchain/preprocess"
)

// Sentinel errors.
var (
	// ErrCompile matches every *Error.
	ErrCompile = errors.New("compiler: compilation failed")

	// ErrUnknownTarget is returned when no emitter is registered for a target.
	ErrUnknownTarget = errors.New("compiler: no emitter for target")

	// ErrMissingEntryPoint is returned when a module lacks the vertex or
	// fragment entry point.
	ErrMissingEntryPoint = errors.New("compiler: missing entry point")
)

// Phase is the compilation step an error came from.
type Phase uint8

const (
	PhaseParse Phase = iota
	PhaseLower
	PhaseValidate
	PhaseEmit
)

func (p Phase) String() string {
	switch p {
	case PhaseParse:
		return "parse"
	case PhaseLower:
		return "lower"
	case PhaseValidate:
		return "validate"
	default:
		return "emit"
	}
}

// Error is a diagnostic from one compilation phase.
type Error struct {
	Phase  Phase
	Target core.Target

	// At is the position in the original shader files; zero when the
	// diagnostic has no position. Column is 1-based, 0 when unknown.
	At     preprocess.Origin
	Column int

	Msg string
	Err error
}

func (e *Error) Error() string {
	prefix := "compiler: " + e.Phase.String()
	if e.Phase == PhaseEmit {
		prefix += " " + e.Target.String()
	}
	switch {
	case e.At.File == "":
		return prefix + ": " + e.Msg
	case e.Column > 0:
		return fmt.Sprintf("%s: %s:%d: %s", prefix, e.At, e.Column, e.Msg)
	default:
		return fmt.Sprintf("%s: %s: %s", prefix, e.At, e.Msg)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is ErrCompile.
func (e *Error) Is(target error) bool { return target == ErrCompile }
