package shaderchain

import (
	"errors"
	"fmt"
)

var (
	// ErrSuperseded is returned by a load that a newer load replaced before
	// it could be activated.
	ErrSuperseded = errors.New("shaderchain: load superseded by a newer one")

	// ErrNoChain is returned by operations that need an active chain before
	// the first successful load.
	ErrNoChain = errors.New("shaderchain: no active chain")
)

// PassError wraps a failure that belongs to one pass of a preset.
type PassError struct {
	Pass   int
	Shader string
	Err    error
}

func (e *PassError) Error() string {
	return fmt.Sprintf("shaderchain: pass %d (%s): %v", e.Pass, e.Shader, e.Err)
}

func (e *PassError) Unwrap() error { return e.Err }
