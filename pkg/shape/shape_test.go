package shape

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/sketchsolid/pkg/sketch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ln(x0, y0, x1, y1 float64) sketch.Line {
	return sketch.Line{Start: sketch.Pt(x0, y0), End: sketch.Pt(x1, y1)}
}

func TestAssembleEmpty(t *testing.T) {
	p, err := Assemble(nil)
	if !errors.Is(err, ErrEmptyPath) {
		t.Fatalf("Assemble(nil) error = %v, want ErrEmptyPath", err)
	}
	if p != nil {
		t.Errorf("Assemble(nil) path = %v, want nil", p)
	}
}

func TestAssembleLines(t *testing.T) {
	curves := []sketch.Curve{ln(0, 0, 4, 0), ln(4, 0, 4, 2), ln(4, 2, 0, 2), ln(0, 2, 0, 0)}
	p, err := Assemble(curves)
	require.NoError(t, err)

	wantKinds := []SegmentKind{MoveTo, LineTo, LineTo, LineTo, LineTo}
	require.Len(t, p.Segments, len(wantKinds))
	for i, k := range wantKinds {
		assert.Equal(t, k, p.Segments[i].Kind, "segment %d", i)
	}
	assert.Equal(t, sketch.Pt(0, 0), p.Segments[0].To)
	assert.Equal(t, sketch.Pt(4, 0), p.Segments[1].To)
	assert.Equal(t, sketch.Pt(0, 0), p.Segments[4].To)

	poly := p.Flatten(32)
	assert.Equal(t, []sketch.Point2D{
		sketch.Pt(0, 0), sketch.Pt(4, 0), sketch.Pt(4, 2), sketch.Pt(0, 2),
	}, poly)
}

func TestAssembleCircle(t *testing.T) {
	c, err := sketch.NewCircle(sketch.Pt(1, 1), 2)
	require.NoError(t, err)

	p, err := Assemble([]sketch.Curve{c})
	require.NoError(t, err)
	require.Len(t, p.Segments, 1)
	assert.Equal(t, ArcTo, p.Segments[0].Kind)

	arc, ok := p.IsCircle()
	assert.True(t, ok)
	assert.Equal(t, c, arc)

	poly := p.Flatten(16)
	assert.Len(t, poly, 16)
	for _, pt := range poly {
		assert.InDelta(t, 2, sketch.Dist(pt, sketch.Pt(1, 1)), 1e-9)
	}
}

func TestFlattenClockwiseCircle(t *testing.T) {
	c, err := sketch.NewArc(sketch.Pt(0, 0), 1, 0, 2*math.Pi, true)
	require.NoError(t, err)
	p, err := Assemble([]sketch.Curve{c})
	require.NoError(t, err)

	poly := p.Flatten(8)
	require.Len(t, poly, 8)
	// Clockwise from angle 0 heads into negative y first.
	assert.Less(t, poly[1].Y, 0.0)
}

func TestFlattenMixed(t *testing.T) {
	// A "D" shape: a line up the flat side and a half arc back down.
	arc, err := sketch.NewArc(sketch.Pt(0, 0), 1, math.Pi/2, -math.Pi/2, true)
	require.NoError(t, err)
	curves := []sketch.Curve{ln(0, -1, 0, 1), arc}

	p, err := Assemble(curves)
	require.NoError(t, err)
	poly := p.Flatten(8)

	// Move, line end, then the interior samples of the half turn; the last
	// sample coincides with the start and is dropped.
	assert.Len(t, poly, 5)
	assert.InDelta(t, 1, poly[3].X, 1e-9)
	assert.InDelta(t, 0, poly[3].Y, 1e-9)
	for _, pt := range poly[1:] {
		assert.InDelta(t, 1, sketch.Dist(pt, sketch.Pt(0, 0)), 1e-9)
	}
}

func TestFromStoreUsesDetectorOrder(t *testing.T) {
	s := sketch.NewStore()
	a, b := ln(0, 0, 1, 0), ln(1, 0, 0, 0)
	require.NoError(t, s.AppendAll(a, b))
	s.SetOrdered(s.Revision(), []sketch.Curve{b, a})

	p, err := FromStore(s)
	require.NoError(t, err)
	assert.Equal(t, sketch.Pt(1, 0), p.Segments[0].To)
}

func TestSample(t *testing.T) {
	assert.Equal(t, []sketch.Point2D{sketch.Pt(0, 0), sketch.Pt(2, 1)}, Sample(ln(0, 0, 2, 1), 8))

	quarter, err := sketch.NewArc(sketch.Pt(0, 0), 1, 0, math.Pi/2, false)
	require.NoError(t, err)
	pts := Sample(quarter, 8)
	require.Len(t, pts, 3)
	assert.InDelta(t, 0, pts[2].X, 1e-9)
	assert.InDelta(t, 1, pts[2].Y, 1e-9)

	circle, err := sketch.NewCircle(sketch.Pt(0, 0), 2)
	require.NoError(t, err)
	pts = Sample(circle, 4)
	require.Len(t, pts, 5)
	assert.InDelta(t, 0, sketch.Dist(pts[0], pts[4]), 1e-9)
}
