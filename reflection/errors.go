// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package reflection

import (
	"errors"
	"fmt"
)

// Sentinel errors, matched with errors.Is.
var (
	ErrUnsupportedBinding = errors.New("reflection: unsupported binding")
	ErrAmbiguousSemantic  = errors.New("reflection: ambiguous semantic")
	ErrBindingCollision   = errors.New("reflection: binding collision")

	// ErrNoModule is returned when Raw carries no IR module.
	ErrNoModule = errors.New("reflection: no shader module")

	// ErrNoEntryPoint is returned when a requested stage has no entry point.
	ErrNoEntryPoint = errors.New("reflection: missing entry point")
)

// UnsupportedBindingError reports a binding whose shape the model cannot
// represent.
type UnsupportedBindingError struct {
	Name   string
	Reason string
}

func (e *UnsupportedBindingError) Error() string {
	return fmt.Sprintf("reflection: %q: %s", e.Name, e.Reason)
}

// Is reports whether target is ErrUnsupportedBinding.
func (e *UnsupportedBindingError) Is(target error) bool { return target == ErrUnsupportedBinding }

// AmbiguousSemanticError reports a name that maps to no known semantic and
// is not marked as a user binding.
type AmbiguousSemanticError struct {
	Name string
	Kind string // "uniform", "texture" or "sampler"
}

func (e *AmbiguousSemanticError) Error() string {
	return fmt.Sprintf("reflection: %s %q has no known semantic and is not a user binding", e.Kind, e.Name)
}

// Is reports whether target is ErrAmbiguousSemantic.
func (e *AmbiguousSemanticError) Is(target error) bool { return target == ErrAmbiguousSemantic }

// BindingCollisionError reports two bindings that claim the same slot, the
// same semantic or overlapping bytes.
type BindingCollisionError struct {
	First  string
	Second string
	Reason string
}

func (e *BindingCollisionError) Error() string {
	return fmt.Sprintf("reflection: %q and %q %s", e.First, e.Second, e.Reason)
}

// Is reports whether target is ErrBindingCollision.
func (e *BindingCollisionError) Is(target error) bool { return target == ErrBindingCollision }
