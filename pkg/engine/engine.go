// Package engine provides the Lisp scripting engine for sketches.
// It wraps zygomys in a sandboxed environment and produces a Sketch
// from user source code.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/sketchsolid/pkg/contour"
	"github.com/chazu/sketchsolid/pkg/plane"
	"github.com/chazu/sketchsolid/pkg/sketch"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/zap"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Sketch is the output of a script: curves on a plane, optionally with an
// extrusion depth or a revolve angle, and the contour evaluation of those
// curves.
type Sketch struct {
	Orientation plane.Orientation
	Offset      v3.Vec
	Curves      []sketch.Curve
	Depth       float64 // 0 unless the script called extrude
	Angle       float64 // degrees; 0 unless the script called revolve
	Result      contour.Result
}

// Projector returns the sketch's plane.
func (s *Sketch) Projector() *plane.Projector {
	return plane.NewProjector(s.Orientation, s.Offset)
}

// Engine wraps the zygomys interpreter for sketch scripts.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	tolerance float64
	timeout   time.Duration
	log       *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTolerance sets the contour tolerance used by auto-close and the final
// contour evaluation.
func WithTolerance(tol float64) Option {
	return func(e *Engine) { e.tolerance = tol }
}

// WithTimeout bounds each script run. Non-positive values keep
// DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{tolerance: contour.DefaultTolerance, timeout: DefaultTimeout, log: zap.NewNop()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Evaluate takes Lisp source code and produces a new Sketch.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns sketch + nil errors + nil error
//   - On parse/eval failure: returns nil sketch + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Sketch, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan scriptRun, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- scriptRun{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		s, evalErrs, err := e.evaluate(source)
		ch <- scriptRun{sketch: s, errors: evalErrs, err: err}
	}()

	s, evalErrs, err := e.await(ch, gen)
	if err != nil {
		e.log.Error("evaluation failed", zap.Uint64("generation", gen), zap.Error(err))
	}
	return s, evalErrs, err
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Sketch, []EvalError, error) {
	d, err := contour.NewDetector(e.tolerance, contour.WithLogger(e.log))
	if err != nil {
		return nil, nil, err
	}
	b := newBuilder(d)

	// Empty source is a valid program that produces an empty sketch.
	if strings.TrimSpace(source) == "" {
		return b.sketch(), nil, nil
	}

	// Create a fresh sandboxed zygomys environment.
	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, b)

	// Load and compile the source string into bytecode.
	err = env.LoadString(preprocessSource(source))
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	// Execute the compiled bytecode.
	_, err = env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	s := b.sketch()
	e.log.Debug("script evaluated",
		zap.Int("curves", len(s.Curves)),
		zap.Bool("closed", s.Result.Closed),
		zap.Float64("depth", s.Depth),
		zap.Float64("angle", s.Angle),
	)
	return s, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
