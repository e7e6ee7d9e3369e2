package contour

import "github.com/chazu/sketchsolid/pkg/sketch"

// Gap is an endpoint with no endpoint of another curve within tolerance.
type Gap struct {
	Point   sketch.Point2D
	Curve   int  // index of the owning curve
	AtStart bool // true for the curve's start point, false for its end
}

type endpoint struct {
	point   sketch.Point2D
	curve   int
	atStart bool
}

func endpoints(curves []sketch.Curve) []endpoint {
	eps := make([]endpoint, 0, 2*len(curves))
	for i, c := range curves {
		eps = append(eps,
			endpoint{point: c.StartPoint(), curve: i, atStart: true},
			endpoint{point: c.EndPoint(), curve: i, atStart: false},
		)
	}
	return eps
}

// Gaps returns every unmatched endpoint in discovery order: curve by curve,
// start before end. Endpoints of the same curve never match each other.
func (d *Detector) Gaps(curves []sketch.Curve) []Gap {
	eps := endpoints(curves)
	gaps := []Gap{}
	for i, a := range eps {
		matched := false
		for j, b := range eps {
			if i == j || a.curve == b.curve {
				continue
			}
			if d.near(a.point, b.point) {
				matched = true
				break
			}
		}
		if !matched {
			gaps = append(gaps, Gap{Point: a.point, Curve: a.curve, AtStart: a.atStart})
		}
	}
	return gaps
}

// Segment is a pair of points, used for advisory connection markers.
type Segment struct {
	From, To sketch.Point2D
}

// ConnectionGaps lists the breaks between consecutive curves, wrapping from
// the last back to the first, whose length is greater than tolerance and
// less than maxGap. Editors draw these as dashed hints; they play no part in
// closure.
func (d *Detector) ConnectionGaps(curves []sketch.Curve, maxGap float64) []Segment {
	if len(curves) < 2 {
		return nil
	}
	var segs []Segment
	for i, c := range curves {
		from := c.EndPoint()
		to := curves[(i+1)%len(curves)].StartPoint()
		dist := sketch.Dist(from, to)
		if dist > d.tolerance && dist < maxGap {
			segs = append(segs, Segment{From: from, To: to})
		}
	}
	return segs
}
