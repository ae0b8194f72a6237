package graph

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel errors, matched with errors.Is.
var (
	ErrDanglingReference    = errors.New("graph: dangling reference")
	ErrCyclicDependency     = errors.New("graph: cyclic current-frame dependency")
	ErrHistoryDepthExceeded = errors.New("graph: history depth exceeded")

	// ErrReflectionCount is returned when the reflection count does not match
	// the pass count.
	ErrReflectionCount = errors.New("graph: one reflection per pass required")

	// ErrNoSize is returned when neither a source nor a viewport size is known.
	ErrNoSize = errors.New("graph: source and viewport sizes are both zero")

	// ErrUnknownParameter is returned by WithParameter for names the chain
	// does not declare.
	ErrUnknownParameter = errors.New("graph: unknown parameter")
)

// DanglingReferenceError reports a semantic with no legal producer.
type DanglingReferenceError struct {
	Pass   int
	Name   string
	Reason string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("graph: pass %d: %q: %s", e.Pass, e.Name, e.Reason)
}

// Is reports whether target is ErrDanglingReference.
func (e *DanglingReferenceError) Is(target error) bool { return target == ErrDanglingReference }

// CyclicDependencyError reports a cycle among current-frame edges.
type CyclicDependencyError struct {
	Cycle []int // pass indices, first repeated at the end
}

func (e *CyclicDependencyError) Error() string {
	parts := make([]string, len(e.Cycle))
	for i, p := range e.Cycle {
		parts[i] = strconv.Itoa(p)
	}
	return "graph: cyclic current-frame dependency: " + strings.Join(parts, " -> ")
}

// Is reports whether target is ErrCyclicDependency.
func (e *CyclicDependencyError) Is(target error) bool { return target == ErrCyclicDependency }

// HistoryDepthExceededError reports a history read deeper than the ring cap.
type HistoryDepthExceededError struct {
	Pass  int
	Depth int
	Max   int
}

func (e *HistoryDepthExceededError) Error() string {
	return fmt.Sprintf("graph: pass %d reads OriginalHistory%d, the history cap is %d", e.Pass, e.Depth, e.Max)
}

// Is reports whether target is ErrHistoryDepthExceeded.
func (e *HistoryDepthExceededError) Is(target error) bool { return target == ErrHistoryDepthExceeded }
