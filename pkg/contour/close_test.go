package contour

import (
	"errors"
	"testing"

	"github.com/chazu/sketchsolid/pkg/sketch"
	"github.com/google/go-cmp/cmp"
)

func TestAutoCloseOpenSquare(t *testing.T) {
	d := mustDetector(t, 0.1)
	curves := []sketch.Curve{ln(0, 0, 5, 0), ln(5, 0, 5, 5), ln(5, 5, 0, 5)}

	out := d.AutoClose(curves)
	if len(out) != 4 {
		t.Fatalf("AutoClose returned %d curves, want 4", len(out))
	}
	closing, ok := out[3].(sketch.Line)
	if !ok {
		t.Fatalf("closing curve is %T, want sketch.Line", out[3])
	}
	want := sketch.Line{Start: sketch.Pt(0, 5), End: sketch.Pt(0, 0), Synthetic: true}
	if diff := cmp.Diff(want, closing, approx); diff != "" {
		t.Errorf("closing line mismatch (-want +got):\n%s", diff)
	}

	res := d.Evaluate(out)
	if !res.Closed {
		t.Errorf("re-evaluated result is open: %+v", res)
	}
}

func TestAutoCloseNearlyClosedPolyline(t *testing.T) {
	d := mustDetector(t, 0.1)
	curves := []sketch.Curve{ln(0, 0, 3, 0), ln(3, 0, 3, 3), ln(3, 3, 0, 3), ln(0, 3, 0, 0.3)}

	out := d.AutoClose(curves)
	if len(out) != len(curves)+1 {
		t.Fatalf("AutoClose returned %d curves, want %d", len(out), len(curves)+1)
	}
	synthetic := 0
	for _, c := range out {
		if l, ok := c.(sketch.Line); ok && l.Synthetic {
			synthetic++
		}
	}
	if synthetic != 1 {
		t.Errorf("got %d synthetic lines, want 1", synthetic)
	}
	if !d.Evaluate(out).Closed {
		t.Error("re-evaluated result is open")
	}
}

func TestAutoCloseAlreadyClosed(t *testing.T) {
	d := mustDetector(t, 0.1)
	square := []sketch.Curve{ln(0, 0, 4, 0), ln(4, 0, 4, 4), ln(4, 4, 0, 4), ln(0, 4, 0, 0)}

	if out := d.AutoClose(square); out != nil {
		t.Errorf("AutoClose(closed) = %v, want nil", out)
	}
	if _, err := d.Close(square); !errors.Is(err, ErrAlreadyClosed) {
		t.Errorf("Close(closed) error = %v, want ErrAlreadyClosed", err)
	}

	circle, _ := sketch.NewCircle(sketch.Pt(0, 0), 1)
	if out := d.AutoClose([]sketch.Curve{circle}); out != nil {
		t.Errorf("AutoClose(circle) = %v, want nil", out)
	}
}

func TestAutoCloseAmbiguous(t *testing.T) {
	d := mustDetector(t, 0.1)
	// Two disjoint strokes leave four gaps.
	curves := []sketch.Curve{ln(0, 0, 5, 0), ln(10, 10, 15, 10)}

	if out := d.AutoClose(curves); out != nil {
		t.Errorf("AutoClose(ambiguous) = %v, want nil", out)
	}
	if _, err := d.Close(curves); !errors.Is(err, ErrNotClosable) {
		t.Errorf("Close(ambiguous) error = %v, want ErrNotClosable", err)
	}
	if _, err := d.Close(nil); !errors.Is(err, ErrNotClosable) {
		t.Errorf("Close(nil) error = %v, want ErrNotClosable", err)
	}
}

func TestAutoCloseFirstLastFallback(t *testing.T) {
	d := mustDetector(t, 0.1)
	// A stray stroke adds two gaps, so gap pairing fails, but the first
	// start and last end are within five tolerances.
	curves := []sketch.Curve{
		ln(0, 0, 3, 0), ln(3, 0, 3, 3), ln(8, 8, 9, 9), ln(3, 3, 0, 0.3),
	}
	out := d.AutoClose(curves)
	if len(out) != 5 {
		t.Fatalf("AutoClose returned %d curves, want 5", len(out))
	}
	want := sketch.Line{Start: sketch.Pt(0, 0.3), End: sketch.Pt(0, 0), Synthetic: true}
	if diff := cmp.Diff(want, out[4], approx); diff != "" {
		t.Errorf("closing line mismatch (-want +got):\n%s", diff)
	}
}

func TestAutoCloseDoesNotMutateInput(t *testing.T) {
	d := mustDetector(t, 0.1)
	curves := make([]sketch.Curve, 3, 8)
	curves[0], curves[1], curves[2] = ln(0, 0, 5, 0), ln(5, 0, 5, 5), ln(5, 5, 0, 5)

	out := d.AutoClose(curves)
	if out == nil {
		t.Fatal("AutoClose returned nil")
	}
	out[0] = ln(9, 9, 9, 9)
	if curves[0] != ln(0, 0, 5, 0) {
		t.Error("AutoClose result shares backing array with input")
	}
}
