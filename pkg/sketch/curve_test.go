package sketch

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewArcRejectsRadius(t *testing.T) {
	tests := []struct {
		name   string
		radius float64
	}{
		{"zero", 0},
		{"negative", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewArc(Pt(0, 0), tt.radius, 0, math.Pi, false)
			if !errors.Is(err, ErrInvalidRadius) {
				t.Errorf("NewArc(radius=%v) error = %v, want ErrInvalidRadius", tt.radius, err)
			}
		})
	}
}

func TestNewLineRejectsNonFinite(t *testing.T) {
	_, err := NewLine(Pt(math.NaN(), 0), Pt(1, 1))
	if !errors.Is(err, ErrNonFiniteCoordinate) {
		t.Errorf("NewLine(NaN) error = %v, want ErrNonFiniteCoordinate", err)
	}
	_, err = NewLine(Pt(0, 0), Pt(math.Inf(1), 1))
	if !errors.Is(err, ErrNonFiniteCoordinate) {
		t.Errorf("NewLine(Inf) error = %v, want ErrNonFiniteCoordinate", err)
	}
}

func TestArcEndpoints(t *testing.T) {
	a, err := NewArc(Pt(1, 1), 2, 0, math.Pi/2, false)
	require.NoError(t, err)

	assert.InDelta(t, 3, a.StartPoint().X, 1e-9)
	assert.InDelta(t, 1, a.StartPoint().Y, 1e-9)
	assert.InDelta(t, 1, a.EndPoint().X, 1e-9)
	assert.InDelta(t, 3, a.EndPoint().Y, 1e-9)
	assert.InDelta(t, math.Pi/2, a.Span(), 1e-12)
	assert.False(t, a.IsFullCircle())
}

func TestCircleIsFull(t *testing.T) {
	c, err := NewCircle(Pt(0, 0), 5)
	require.NoError(t, err)
	assert.True(t, c.IsFullCircle())
	assert.InDelta(t, 0, Dist(c.StartPoint(), c.EndPoint()), 1e-9)

	nearly, err := NewArc(Pt(0, 0), 5, 0, 2*math.Pi-0.005, false)
	require.NoError(t, err)
	assert.True(t, nearly.IsFullCircle(), "span within slack of 2π counts as full")

	short, err := NewArc(Pt(0, 0), 5, 0, 2*math.Pi-0.05, false)
	require.NoError(t, err)
	assert.False(t, short.IsFullCircle())
}

func TestAllLines(t *testing.T) {
	circle, _ := NewCircle(Pt(0, 0), 1)
	line := Line{Start: Pt(0, 0), End: Pt(1, 0)}

	if !AllLines(nil) {
		t.Error("AllLines(nil) = false, want true")
	}
	if !AllLines([]Curve{line, line}) {
		t.Error("AllLines(lines) = false, want true")
	}
	if AllLines([]Curve{line, circle}) {
		t.Error("AllLines(mixed) = true, want false")
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(Arc{Center: Pt(0, 0), Radius: 0}); !errors.Is(err, ErrInvalidRadius) {
		t.Errorf("Validate(zero-radius arc) = %v, want ErrInvalidRadius", err)
	}
	if err := Validate(Line{Start: Pt(0, 0), End: Pt(1, 1)}); err != nil {
		t.Errorf("Validate(line) = %v, want nil", err)
	}
	if err := Validate(nil); err == nil {
		t.Error("Validate(nil) = nil, want error")
	}
}

func TestCurvesCodec(t *testing.T) {
	circle, _ := NewCircle(Pt(2, 3), 4)
	in := []Curve{
		Line{Start: Pt(0, 0), End: Pt(5, 0)},
		Line{Start: Pt(5, 0), End: Pt(0, 0), Synthetic: true},
		circle,
	}
	data, err := MarshalCurves(in)
	require.NoError(t, err)

	out, err := UnmarshalCurves(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestUnmarshalCurvesRejectsInvalid(t *testing.T) {
	_, err := UnmarshalCurves([]byte(`[{"type":"arc","arc":{"center":{"X":0,"Y":0},"radius":0}}]`))
	if !errors.Is(err, ErrInvalidRadius) {
		t.Errorf("UnmarshalCurves(zero radius) error = %v, want ErrInvalidRadius", err)
	}
	_, err = UnmarshalCurves([]byte(`[{"type":"spline"}]`))
	if err == nil {
		t.Error("UnmarshalCurves(unknown type) = nil error, want error")
	}
}
