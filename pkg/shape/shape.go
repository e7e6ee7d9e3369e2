// Package shape turns an ordered, closed curve sequence into a planar path
// that an extrusion routine can consume.
package shape

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/sketchsolid/pkg/sketch"
)

// ErrEmptyPath is returned when there is nothing to build a path from.
// Callers must not attempt extrusion after receiving it.
var ErrEmptyPath = errors.New("shape: no curves to assemble")

// SegmentKind enumerates path segment types.
type SegmentKind int

const (
	MoveTo SegmentKind = iota // start of the path
	LineTo                    // straight segment to To
	ArcTo                     // circular arc described by Arc
)

func (k SegmentKind) String() string {
	switch k {
	case MoveTo:
		return "move"
	case LineTo:
		return "line"
	case ArcTo:
		return "arc"
	default:
		return "unknown"
	}
}

// Segment is one step of a Path. To is used by MoveTo and LineTo; Arc is used
// by ArcTo.
type Segment struct {
	Kind SegmentKind
	To   sketch.Point2D
	Arc  sketch.Arc
}

// Path is a closed planar outline. The last segment implicitly connects back
// to the first point.
type Path struct {
	Segments []Segment
}

// Assemble positions curves as path segments in the given order. The first
// line contributes a MoveTo to its start; every line then contributes a
// LineTo to its end, and every arc an ArcTo. Adjacency is not re-validated:
// callers pass a contour that contour detection reported closed.
func Assemble(curves []sketch.Curve) (*Path, error) {
	if len(curves) == 0 {
		return nil, ErrEmptyPath
	}
	p := &Path{Segments: make([]Segment, 0, len(curves)+1)}
	started := false
	for i, c := range curves {
		switch v := c.(type) {
		case sketch.Line:
			if !started {
				p.Segments = append(p.Segments, Segment{Kind: MoveTo, To: v.Start})
				started = true
			}
			p.Segments = append(p.Segments, Segment{Kind: LineTo, To: v.End})
		case sketch.Arc:
			p.Segments = append(p.Segments, Segment{Kind: ArcTo, Arc: v})
			started = true
		default:
			return nil, fmt.Errorf("shape: curve %d: unsupported type %T", i, c)
		}
	}
	return p, nil
}

// IsCircle reports whether the path is a single full-circle arc.
func (p *Path) IsCircle() (sketch.Arc, bool) {
	if len(p.Segments) != 1 || p.Segments[0].Kind != ArcTo {
		return sketch.Arc{}, false
	}
	a := p.Segments[0].Arc
	return a, a.IsFullCircle()
}

// Flatten returns the outline as a polygon. Arcs are sampled with
// arcSegments chords per full turn (at least one per arc). Consecutive
// duplicate points and a final point equal to the first are dropped.
func (p *Path) Flatten(arcSegments int) []sketch.Point2D {
	if arcSegments < 3 {
		arcSegments = 3
	}
	var pts []sketch.Point2D
	add := func(pt sketch.Point2D) {
		if len(pts) > 0 && samePoint(pts[len(pts)-1], pt) {
			return
		}
		pts = append(pts, pt)
	}

	for _, s := range p.Segments {
		switch s.Kind {
		case MoveTo, LineTo:
			add(s.To)
		case ArcTo:
			for _, pt := range sampleArc(s.Arc, arcSegments) {
				add(pt)
			}
		}
	}
	if len(pts) > 1 && samePoint(pts[0], pts[len(pts)-1]) {
		pts = pts[:len(pts)-1]
	}
	return pts
}

// Sample returns points along a single curve from its start to its end, for
// drawing. A full circle repeats its first point at the end.
func Sample(c sketch.Curve, arcSegments int) []sketch.Point2D {
	switch v := c.(type) {
	case sketch.Line:
		return []sketch.Point2D{v.Start, v.End}
	case sketch.Arc:
		if arcSegments < 3 {
			arcSegments = 3
		}
		return sampleArc(v, arcSegments)
	}
	return nil
}

// sampleArc returns points along a from its start to its end angle,
// honouring the arc direction.
func sampleArc(a sketch.Arc, perTurn int) []sketch.Point2D {
	sweep := a.EndAngle - a.StartAngle
	switch {
	case a.IsFullCircle():
		sweep = a.Span()
		if a.Clockwise {
			sweep = -sweep
		}
	case a.Clockwise && sweep > 0:
		sweep -= 2 * math.Pi
	case !a.Clockwise && sweep < 0:
		sweep += 2 * math.Pi
	}
	n := int(math.Ceil(math.Abs(sweep) / (2 * math.Pi) * float64(perTurn)))
	if n < 1 {
		n = 1
	}
	pts := make([]sketch.Point2D, 0, n+1)
	for i := 0; i <= n; i++ {
		pts = append(pts, a.PointAt(a.StartAngle+sweep*float64(i)/float64(n)))
	}
	return pts
}

func samePoint(a, b sketch.Point2D) bool {
	return sketch.Dist(a, b) < 1e-9
}

// FromStore assembles the store's curves in detector order when available.
func FromStore(s *sketch.Store) (*Path, error) {
	return Assemble(s.Ordered())
}
