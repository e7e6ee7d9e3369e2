package contour

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/sketchsolid/pkg/sketch"
	"go.uber.org/zap"
)

// DefaultTolerance suits sketches drawn on a 0.5 unit snapping grid.
const DefaultTolerance = 0.6

// ErrInvalidTolerance is returned by NewDetector for a tolerance that is not
// a strictly positive finite number.
var ErrInvalidTolerance = errors.New("contour: tolerance must be positive")

// Classification says how a Result was reached.
type Classification int

const (
	Open    Classification = iota // no closed loop; see Result.Gaps
	Simple                        // full circle, or four lines closing in order
	Lines                         // three or more lines closing in order
	Complex                       // loop found by cycle search
)

func (c Classification) String() string {
	switch c {
	case Open:
		return "open"
	case Simple:
		return "simple"
	case Lines:
		return "lines"
	case Complex:
		return "complex"
	default:
		return fmt.Sprintf("Classification(%d)", int(c))
	}
}

// Result is the outcome of evaluating a curve sequence. It is a pure function
// of the input curves and the detector tolerance.
type Result struct {
	Closed         bool
	Contour        []sketch.Curve   // traversal order when closed, input order when open
	Gaps           []sketch.Point2D // unmatched endpoints, only when open
	Classification Classification
}

// Detector evaluates curve sequences. It holds no state beyond its
// configuration and is safe for concurrent use.
type Detector struct {
	tolerance float64
	log       *zap.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(d *Detector) {
		if l != nil {
			d.log = l
		}
	}
}

// NewDetector returns a detector using tolerance for every point
// coincidence test.
func NewDetector(tolerance float64, opts ...Option) (*Detector, error) {
	if !(tolerance > 0) || math.IsInf(tolerance, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidTolerance, tolerance)
	}
	d := &Detector{tolerance: tolerance, log: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Tolerance returns the configured tolerance.
func (d *Detector) Tolerance() float64 {
	return d.tolerance
}

// near reports whether a and b coincide within tolerance.
func (d *Detector) near(a, b sketch.Point2D) bool {
	return sketch.Dist(a, b) <= d.tolerance
}

// Evaluate classifies curves. The checks run in priority order: empty input,
// simple closed shapes, an in-order loop of lines, cycle search, and finally
// gap collection for open contours.
func (d *Detector) Evaluate(curves []sketch.Curve) Result {
	res := d.evaluate(curves)
	d.log.Debug("contour evaluated",
		zap.Int("curves", len(curves)),
		zap.Stringer("classification", res.Classification),
		zap.Bool("closed", res.Closed),
		zap.Int("gaps", len(res.Gaps)),
	)
	return res
}

func (d *Detector) evaluate(curves []sketch.Curve) Result {
	if len(curves) == 0 {
		return Result{Contour: []sketch.Curve{}, Gaps: []sketch.Point2D{}, Classification: Open}
	}

	if d.isSimpleClosed(curves) {
		return closed(curves, Simple)
	}

	if len(curves) >= 3 && sketch.AllLines(curves) && d.closesInOrder(curves) {
		return closed(curves, Lines)
	}

	if order := findCycle(d.adjacency(curves)); order != nil {
		contour := make([]sketch.Curve, len(order))
		for i, idx := range order {
			contour[i] = curves[idx]
		}
		return Result{Closed: true, Contour: contour, Gaps: []sketch.Point2D{}, Classification: Complex}
	}

	gaps := d.Gaps(curves)
	points := make([]sketch.Point2D, len(gaps))
	for i, g := range gaps {
		points[i] = g.Point
	}
	return Result{
		Contour:        append([]sketch.Curve(nil), curves...),
		Gaps:           points,
		Classification: Open,
	}
}

func closed(curves []sketch.Curve, c Classification) Result {
	return Result{
		Closed:         true,
		Contour:        append([]sketch.Curve(nil), curves...),
		Gaps:           []sketch.Point2D{},
		Classification: c,
	}
}

// isSimpleClosed matches a single full circle or a four-line closed quad.
func (d *Detector) isSimpleClosed(curves []sketch.Curve) bool {
	switch len(curves) {
	case 1:
		a, ok := curves[0].(sketch.Arc)
		return ok && a.IsFullCircle()
	case 4:
		return sketch.AllLines(curves) && d.closesInOrder(curves)
	}
	return false
}

// closesInOrder reports whether the end of every curve meets the start of
// the next one, wrapping from the last curve back to the first.
func (d *Detector) closesInOrder(curves []sketch.Curve) bool {
	for i, c := range curves {
		next := curves[(i+1)%len(curves)]
		if !d.near(c.EndPoint(), next.StartPoint()) {
			return false
		}
	}
	return true
}
