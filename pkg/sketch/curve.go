package sketch

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/samber/lo"
)

// FullCircleSlack is how far short of 2π an arc span may fall and still be
// treated as a closed circle.
const FullCircleSlack = 0.01

var (
	// ErrInvalidRadius is returned when an arc is built with a radius that is
	// not strictly positive.
	ErrInvalidRadius = errors.New("sketch: arc radius must be positive")

	// ErrNonFiniteCoordinate is returned when a curve is built from NaN or
	// infinite values.
	ErrNonFiniteCoordinate = errors.New("sketch: coordinate is not finite")
)

// Point2D is a point in the local frame of a sketch plane.
type Point2D = r2.Point

// Pt is shorthand for Point2D{X: x, Y: y}.
func Pt(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Dist returns the Euclidean distance between a and b.
func Dist(a, b Point2D) float64 {
	return a.Sub(b).Norm()
}

// CurveKind enumerates the curve variants.
type CurveKind int

const (
	KindLine CurveKind = iota // straight segment
	KindArc                   // circular arc or full circle
)

func (k CurveKind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindArc:
		return "arc"
	default:
		return "unknown"
	}
}

// Curve is a drawn primitive. The set of implementations is closed: Line and
// Arc are the only variants, and consumers switch over them exhaustively.
type Curve interface {
	Kind() CurveKind
	StartPoint() Point2D
	EndPoint() Point2D
	curve() // marker method restricting implementations to this package
}

// ---------------------------------------------------------------------------
// Line
// ---------------------------------------------------------------------------

// Line is a straight segment from Start to End. Synthetic marks a segment
// generated by gap closing rather than drawn by the user.
type Line struct {
	Start     Point2D `json:"start"`
	End       Point2D `json:"end"`
	Synthetic bool    `json:"synthetic,omitempty"`
}

// NewLine returns a user-drawn line after checking that both endpoints are
// finite.
func NewLine(start, end Point2D) (Line, error) {
	if !finite(start) || !finite(end) {
		return Line{}, fmt.Errorf("line %v-%v: %w", start, end, ErrNonFiniteCoordinate)
	}
	return Line{Start: start, End: end}, nil
}

func (Line) Kind() CurveKind { return KindLine }

func (l Line) StartPoint() Point2D { return l.Start }

func (l Line) EndPoint() Point2D { return l.End }

// Length returns the segment length.
func (l Line) Length() float64 { return Dist(l.Start, l.End) }

func (Line) curve() {}

// ---------------------------------------------------------------------------
// Arc
// ---------------------------------------------------------------------------

// Arc is a circular arc. Angles are in radians; EndAngle may run past
// StartAngle+2π, and a span of about 2π denotes a full circle.
type Arc struct {
	Center     Point2D `json:"center"`
	Radius     float64 `json:"radius"`
	StartAngle float64 `json:"start_angle"`
	EndAngle   float64 `json:"end_angle"`
	Clockwise  bool    `json:"clockwise,omitempty"`
}

// NewArc validates and returns an arc.
func NewArc(center Point2D, radius, startAngle, endAngle float64, clockwise bool) (Arc, error) {
	if !finite(center) || !isFinite(radius) || !isFinite(startAngle) || !isFinite(endAngle) {
		return Arc{}, fmt.Errorf("arc at %v: %w", center, ErrNonFiniteCoordinate)
	}
	if radius <= 0 {
		return Arc{}, fmt.Errorf("arc at %v with radius %.4f: %w", center, radius, ErrInvalidRadius)
	}
	return Arc{
		Center:     center,
		Radius:     radius,
		StartAngle: startAngle,
		EndAngle:   endAngle,
		Clockwise:  clockwise,
	}, nil
}

// NewCircle returns a full counter-clockwise arc from 0 to 2π.
func NewCircle(center Point2D, radius float64) (Arc, error) {
	return NewArc(center, radius, 0, 2*math.Pi, false)
}

func (Arc) Kind() CurveKind { return KindArc }

// PointAt returns the point on the arc's circle at angle a.
func (a Arc) PointAt(angle float64) Point2D {
	return Point2D{
		X: a.Center.X + math.Cos(angle)*a.Radius,
		Y: a.Center.Y + math.Sin(angle)*a.Radius,
	}
}

func (a Arc) StartPoint() Point2D { return a.PointAt(a.StartAngle) }

func (a Arc) EndPoint() Point2D { return a.PointAt(a.EndAngle) }

// Span returns the absolute angular extent of the arc.
func (a Arc) Span() float64 { return math.Abs(a.EndAngle - a.StartAngle) }

// IsFullCircle reports whether the arc spans a whole turn.
func (a Arc) IsFullCircle() bool { return a.Span() >= 2*math.Pi-FullCircleSlack }

func (Arc) curve() {}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// AllLines reports whether every curve is a Line. An empty slice is all lines.
func AllLines(curves []Curve) bool {
	return lo.EveryBy(curves, func(c Curve) bool { return c.Kind() == KindLine })
}

// Validate checks the invariants of a curve value built without a
// constructor.
func Validate(c Curve) error {
	switch v := c.(type) {
	case Line:
		_, err := NewLine(v.Start, v.End)
		return err
	case Arc:
		_, err := NewArc(v.Center, v.Radius, v.StartAngle, v.EndAngle, v.Clockwise)
		return err
	case nil:
		return errors.New("sketch: nil curve")
	default:
		return fmt.Errorf("sketch: unsupported curve type %T", c)
	}
}

func finite(p Point2D) bool {
	return isFinite(p.X) && isFinite(p.Y)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
