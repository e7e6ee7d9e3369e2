// Package feedback renders a sketch and its contour state as SVG: the drawn
// curves, a translucent fill when the contour is closed, red markers at the
// gaps and dashed hints between ends that almost meet.
package feedback

import (
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/chazu/sketchsolid/pkg/contour"
	"github.com/chazu/sketchsolid/pkg/shape"
	"github.com/chazu/sketchsolid/pkg/sketch"
	"github.com/golang/geo/r2"
)

const (
	styleCurve      = "fill:none;stroke:#222222;stroke-width:2"
	styleSynthetic  = "fill:none;stroke:#00aa00;stroke-width:3"
	styleFill       = "fill:#00ff00;fill-opacity:0.2;stroke:none"
	styleGap        = "fill:#ff0000;stroke:none"
	styleConnection = "stroke:#ff8800;stroke-width:1;stroke-dasharray:4,3"
	gapMarkerRadius = 4
)

// Scene is what gets drawn.
type Scene struct {
	Curves      []sketch.Curve
	Result      contour.Result
	Connections []contour.Segment
}

// Options control the canvas. Zero values select the defaults.
type Options struct {
	Scale       float64 // pixels per sketch unit, default 20
	Margin      int     // pixels around the drawing, default 20
	ArcSegments int     // chords per full turn for arcs, default 64
}

func (o Options) withDefaults() Options {
	if o.Scale <= 0 {
		o.Scale = 20
	}
	if o.Margin <= 0 {
		o.Margin = 20
	}
	if o.ArcSegments < 3 {
		o.ArcSegments = 64
	}
	return o
}

// frame maps sketch coordinates to canvas pixels with y pointing down.
type frame struct {
	bounds r2.Rect
	scale  float64
	margin int
}

func (f frame) px(p sketch.Point2D) (int, int) {
	x := float64(f.margin) + (p.X-f.bounds.X.Lo)*f.scale
	y := float64(f.margin) + (f.bounds.Y.Hi-p.Y)*f.scale
	return int(math.Round(x)), int(math.Round(y))
}

func (f frame) size() (int, int) {
	w := int(math.Ceil(f.bounds.X.Length()*f.scale)) + 2*f.margin
	h := int(math.Ceil(f.bounds.Y.Length()*f.scale)) + 2*f.margin
	return w, h
}

func (f frame) coords(pts []sketch.Point2D) (xs, ys []int) {
	xs = make([]int, len(pts))
	ys = make([]int, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = f.px(p)
	}
	return xs, ys
}

// errWriter remembers the first write error, since svgo does not report
// them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

// WriteSVG draws the scene to w.
func WriteSVG(w io.Writer, sc Scene, opts Options) error {
	opts = opts.withDefaults()
	curvePoints := make([][]sketch.Point2D, len(sc.Curves))
	bounds := r2.EmptyRect()
	for i, c := range sc.Curves {
		curvePoints[i] = shape.Sample(c, opts.ArcSegments)
		for _, p := range curvePoints[i] {
			bounds = bounds.AddPoint(p)
		}
		if a, ok := c.(sketch.Arc); ok && a.IsFullCircle() {
			bounds = bounds.AddRect(r2.RectFromCenterSize(a.Center, r2.Point{X: 2 * a.Radius, Y: 2 * a.Radius}))
		}
	}
	if bounds.IsEmpty() {
		bounds = r2.RectFromPoints(r2.Point{})
	}
	f := frame{bounds: bounds, scale: opts.Scale, margin: opts.Margin}

	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	width, height := f.size()
	canvas.Start(width, height)

	if sc.Result.Closed {
		if p, err := shape.Assemble(sc.Result.Contour); err == nil {
			xs, ys := f.coords(p.Flatten(opts.ArcSegments))
			canvas.Polygon(xs, ys, styleFill)
		}
	}

	for i, c := range sc.Curves {
		style := styleCurve
		if l, ok := c.(sketch.Line); ok && l.Synthetic {
			style = styleSynthetic
		}
		switch v := c.(type) {
		case sketch.Line:
			x1, y1 := f.px(v.Start)
			x2, y2 := f.px(v.End)
			canvas.Line(x1, y1, x2, y2, style)
		case sketch.Arc:
			if v.IsFullCircle() {
				cx, cy := f.px(v.Center)
				canvas.Circle(cx, cy, int(math.Round(v.Radius*f.scale)), style)
				continue
			}
			xs, ys := f.coords(curvePoints[i])
			canvas.Polyline(xs, ys, style)
		}
	}

	canvas.Gstyle(styleConnection)
	for _, seg := range sc.Connections {
		x1, y1 := f.px(seg.From)
		x2, y2 := f.px(seg.To)
		canvas.Line(x1, y1, x2, y2)
	}
	canvas.Gend()

	for _, g := range sc.Result.Gaps {
		x, y := f.px(g)
		canvas.Circle(x, y, gapMarkerRadius, styleGap)
	}

	canvas.End()
	return ew.err
}
