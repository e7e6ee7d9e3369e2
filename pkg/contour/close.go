package contour

import (
	"errors"

	"github.com/chazu/sketchsolid/pkg/sketch"
	"go.uber.org/zap"
)

// closeReach is the multiple of tolerance within which the first start and
// last end of an all-line sketch are joined when gap pairing fails.
const closeReach = 5

var (
	// ErrAlreadyClosed is returned by Close when the curves already form a
	// closed contour.
	ErrAlreadyClosed = errors.New("contour: already closed")

	// ErrNotClosable is returned by Close when no single line can safely
	// close the contour.
	ErrNotClosable = errors.New("contour: gaps are ambiguous or too large to close")
)

// AutoClose returns curves with one synthetic closing line appended, or nil
// when the curves are already closed or cannot be closed unambiguously.
func (d *Detector) AutoClose(curves []sketch.Curve) []sketch.Curve {
	out, err := d.Close(curves)
	if err != nil {
		return nil
	}
	return out
}

// Close is AutoClose with the reason for refusing reported as an error
// (ErrAlreadyClosed or ErrNotClosable).
//
// With exactly two gaps the closing line joins them. Otherwise, for two or
// more lines whose first start and last end are apart by more than zero and
// less than five tolerances, it runs from the last end to the first start.
func (d *Detector) Close(curves []sketch.Curve) ([]sketch.Curve, error) {
	if len(curves) == 0 {
		return nil, ErrNotClosable
	}
	if d.Evaluate(curves).Closed {
		return nil, ErrAlreadyClosed
	}

	if gaps := d.Gaps(curves); len(gaps) == 2 {
		from, to := orientGaps(gaps[0], gaps[1])
		d.log.Debug("closing between gaps", zap.Any("from", from), zap.Any("to", to))
		return withClosingLine(curves, from, to), nil
	}

	if len(curves) >= 2 && sketch.AllLines(curves) {
		first := curves[0].StartPoint()
		last := curves[len(curves)-1].EndPoint()
		dist := sketch.Dist(first, last)
		if dist > 0 && dist < closeReach*d.tolerance {
			d.log.Debug("closing last end to first start", zap.Float64("distance", dist))
			return withClosingLine(curves, last, first), nil
		}
	}

	return nil, ErrNotClosable
}

// orientGaps picks the direction of a closing line so that it leaves the
// dangling end of one curve and arrives at the dangling start of another,
// keeping the loop traversable end to start. When both gaps are of the same
// kind the discovery order is kept.
func orientGaps(a, b Gap) (from, to sketch.Point2D) {
	if a.AtStart && !b.AtStart {
		return b.Point, a.Point
	}
	return a.Point, b.Point
}

func withClosingLine(curves []sketch.Curve, from, to sketch.Point2D) []sketch.Curve {
	out := make([]sketch.Curve, 0, len(curves)+1)
	out = append(out, curves...)
	return append(out, sketch.Line{Start: from, End: to, Synthetic: true})
}
