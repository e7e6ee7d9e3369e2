package contour

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/sketchsolid/pkg/sketch"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func ln(x0, y0, x1, y1 float64) sketch.Line {
	return sketch.Line{Start: sketch.Pt(x0, y0), End: sketch.Pt(x1, y1)}
}

func mustDetector(t *testing.T, tol float64) *Detector {
	t.Helper()
	d, err := NewDetector(tol)
	if err != nil {
		t.Fatalf("NewDetector(%v): %v", tol, err)
	}
	return d
}

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestNewDetectorRejectsTolerance(t *testing.T) {
	for _, tol := range []float64{0, -0.1, math.NaN(), math.Inf(1)} {
		if _, err := NewDetector(tol); !errors.Is(err, ErrInvalidTolerance) {
			t.Errorf("NewDetector(%v) error = %v, want ErrInvalidTolerance", tol, err)
		}
	}
}

func TestEvaluateEmpty(t *testing.T) {
	d := mustDetector(t, 0.1)
	res := d.Evaluate(nil)
	if res.Closed || res.Classification != Open {
		t.Errorf("Evaluate(nil) = %+v, want open", res)
	}
	if len(res.Contour) != 0 || len(res.Gaps) != 0 {
		t.Errorf("Evaluate(nil) contour=%d gaps=%d, want 0 0", len(res.Contour), len(res.Gaps))
	}
}

func TestEvaluateClassification(t *testing.T) {
	circle, _ := sketch.NewCircle(sketch.Pt(0, 0), 3)
	halfArc, _ := sketch.NewArc(sketch.Pt(0, 0), 3, 0, math.Pi, false)

	tests := []struct {
		name   string
		curves []sketch.Curve
		closed bool
		class  Classification
	}{
		{
			name:   "single line",
			curves: []sketch.Curve{ln(0, 0, 5, 0)},
			class:  Open,
		},
		{
			name:   "full circle",
			curves: []sketch.Curve{circle},
			closed: true,
			class:  Simple,
		},
		{
			name:   "half arc",
			curves: []sketch.Curve{halfArc},
			class:  Open,
		},
		{
			name: "exact rectangle",
			curves: []sketch.Curve{
				ln(0, 0, 4, 0), ln(4, 0, 4, 2), ln(4, 2, 0, 2), ln(0, 2, 0, 0),
			},
			closed: true,
			class:  Simple,
		},
		{
			name: "triangle within tolerance",
			curves: []sketch.Curve{
				ln(0, 0, 4, 0), ln(4.05, 0.02, 2, 3), ln(2, 3.04, 0.03, 0),
			},
			closed: true,
			class:  Lines,
		},
		{
			name: "pentagon in order",
			curves: []sketch.Curve{
				ln(0, 0, 2, 0), ln(2, 0, 3, 1), ln(3, 1, 1, 3), ln(1, 3, -1, 1), ln(-1, 1, 0, 0),
			},
			closed: true,
			class:  Lines,
		},
		{
			name: "square drawn out of order",
			curves: []sketch.Curve{
				ln(4, 0, 4, 4), ln(0, 4, 0, 0), ln(0, 0, 4, 0), ln(4, 4, 0, 4),
			},
			closed: true,
			class:  Complex,
		},
		{
			name: "triangle with dangling stroke",
			curves: []sketch.Curve{
				ln(0, 0, 4, 0), ln(4, 0, 2, 3), ln(9, 9, 10, 10), ln(2, 3, 0, 0),
			},
			closed: true,
			class:  Complex,
		},
		{
			name: "open polyline",
			curves: []sketch.Curve{
				ln(0, 0, 5, 0), ln(5, 0, 5, 5), ln(5, 5, 0, 5),
			},
			class: Open,
		},
		{
			name: "two lines back and forth",
			curves: []sketch.Curve{
				ln(0, 0, 5, 0), ln(5, 0, 0, 0),
			},
			class: Open,
		},
	}

	d := mustDetector(t, 0.1)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := d.Evaluate(tt.curves)
			if res.Closed != tt.closed {
				t.Errorf("Closed = %v, want %v", res.Closed, tt.closed)
			}
			if res.Classification != tt.class {
				t.Errorf("Classification = %v, want %v", res.Classification, tt.class)
			}
			if res.Closed && len(res.Gaps) != 0 {
				t.Errorf("closed result has %d gaps", len(res.Gaps))
			}
		})
	}
}

func TestEvaluateComplexOrdersContour(t *testing.T) {
	d := mustDetector(t, 0.1)
	a, b, c, e := ln(4, 0, 4, 4), ln(0, 4, 0, 0), ln(0, 0, 4, 0), ln(4, 4, 0, 4)

	res := d.Evaluate([]sketch.Curve{a, b, c, e})
	want := []sketch.Curve{a, e, b, c}
	if diff := cmp.Diff(want, res.Contour, approx); diff != "" {
		t.Errorf("Contour mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluateDoesNotAliasInput(t *testing.T) {
	d := mustDetector(t, 0.1)
	in := []sketch.Curve{ln(0, 0, 1, 0), ln(1, 0, 1, 1)}
	res := d.Evaluate(in)
	res.Contour[0] = ln(7, 7, 8, 8)
	if in[0] != ln(0, 0, 1, 0) {
		t.Error("Evaluate result aliases its input")
	}
}

func TestOpenPolylineHasTwoGaps(t *testing.T) {
	d := mustDetector(t, 0.1)
	for n := 1; n <= 6; n++ {
		curves := make([]sketch.Curve, n)
		for i := range curves {
			x := float64(i)
			curves[i] = ln(x, x*x, x+1, (x+1)*(x+1))
		}
		res := d.Evaluate(curves)
		if res.Closed {
			t.Fatalf("n=%d: polyline reported closed", n)
		}
		if len(res.Gaps) != 2 {
			t.Errorf("n=%d: got %d gaps, want 2", n, len(res.Gaps))
		}
	}
}

func TestGapsOfOpenSquare(t *testing.T) {
	d := mustDetector(t, 0.1)
	curves := []sketch.Curve{ln(0, 0, 5, 0), ln(5, 0, 5, 5), ln(5, 5, 0, 5)}

	res := d.Evaluate(curves)
	if res.Closed {
		t.Fatal("open square reported closed")
	}
	want := []sketch.Point2D{sketch.Pt(0, 0), sketch.Pt(0, 5)}
	if diff := cmp.Diff(want, res.Gaps, approx); diff != "" {
		t.Errorf("Gaps mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(curves, res.Contour, approx); diff != "" {
		t.Errorf("open Contour should keep input order (-want +got):\n%s", diff)
	}

	gaps := d.Gaps(curves)
	if !gaps[0].AtStart || gaps[0].Curve != 0 {
		t.Errorf("first gap = %+v, want start of curve 0", gaps[0])
	}
	if gaps[1].AtStart || gaps[1].Curve != 2 {
		t.Errorf("second gap = %+v, want end of curve 2", gaps[1])
	}
}

func TestConnectionGaps(t *testing.T) {
	d := mustDetector(t, 0.1)
	curves := []sketch.Curve{ln(0, 0, 5, 0), ln(5, 1, 5, 5), ln(5, 5, 0, 20)}

	segs := d.ConnectionGaps(curves, 5)
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1: %v", len(segs), segs)
	}
	if diff := cmp.Diff(Segment{From: sketch.Pt(5, 0), To: sketch.Pt(5, 1)}, segs[0], approx); diff != "" {
		t.Errorf("segment mismatch (-want +got):\n%s", diff)
	}
	if d.ConnectionGaps(curves[:1], 5) != nil {
		t.Error("single curve should have no connection gaps")
	}
}

func TestClassificationString(t *testing.T) {
	tests := map[Classification]string{
		Open: "open", Simple: "simple", Lines: "lines", Complex: "complex",
	}
	for c, want := range tests {
		if got := c.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(c), got, want)
		}
	}
}
