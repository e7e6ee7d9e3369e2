package engine

import (
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout bounds a single script run.
const DefaultTimeout = 5 * time.Second

var (
	// ErrTimeout is returned by Evaluate when a script runs too long.
	ErrTimeout = errors.New("engine: script run timed out")

	// ErrSuperseded is returned by Evaluate when a newer script run started
	// before this one finished.
	ErrSuperseded = errors.New("engine: script run superseded by a newer one")
)

// scriptRun is what the interpreter goroutine hands back.
type scriptRun struct {
	sketch *Sketch
	errors []EvalError
	err    error
}

// await blocks until run delivers or the engine timeout passes. An
// abandoned interpreter keeps going and its late result is never read.
func (e *Engine) await(run <-chan scriptRun, gen uint64) (*Sketch, []EvalError, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case r := <-run:
		if !e.current(gen) {
			return nil, nil, ErrSuperseded
		}
		return r.sketch, r.errors, r.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	}
}

// current reports whether gen is still the latest script run.
func (e *Engine) current(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}
