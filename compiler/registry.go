package compiler

import (
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/naga/ir"

	"github.com/gogpu/shaderchain/core"
)

// Emitter generates target code from a lowered module.
type Emitter interface {
	Emit(m *ir.Module, opts Options) ([]Unit, error)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(m *ir.Module, opts Options) ([]Unit, error)

// Emit calls f.
func (f EmitterFunc) Emit(m *ir.Module, opts Options) ([]Unit, error) { return f(m, opts) }

var (
	registryMu sync.RWMutex
	emitters   = make(map[core.Target]Emitter)
)

// Register installs the emitter for target.
//
// Register panics if e is nil or the target already has an emitter, so
// conflicting registrations surface during program initialization.
func Register(target core.Target, e Emitter) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if e == nil {
		panic("compiler: Register emitter is nil")
	}
	if _, dup := emitters[target]; dup {
		panic("compiler: Register called twice for " + target.String())
	}
	emitters[target] = e
}

// Unregister removes the emitter for target. It is a no-op when none is
// registered.
func Unregister(target core.Target) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(emitters, target)
}

// Lookup returns the emitter for target.
func Lookup(target core.Target) (Emitter, error) {
	registryMu.RLock()
	e, ok := emitters[target]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %s", ErrUnknownTarget, target)
	}
	return e, nil
}

// Registered returns the targets that have an emitter, in ascending order.
func Registered() []core.Target {
	registryMu.RLock()
	defer registryMu.RUnlock()

	targets := make([]core.Target, 0, len(emitters))
	for t := range emitters {
		targets = append(targets, t)
	}
	slices.Sort(targets)
	return targets
}
