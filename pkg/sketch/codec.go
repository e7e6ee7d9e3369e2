package sketch

import (
	"encoding/json"
	"fmt"
)

// curveJSON is the tagged wire form of a Curve.
type curveJSON struct {
	Type string `json:"type"`
	Line *Line  `json:"line,omitempty"`
	Arc  *Arc   `json:"arc,omitempty"`
}

// MarshalCurves encodes curves as a JSON array of tagged objects.
func MarshalCurves(curves []Curve) ([]byte, error) {
	out := make([]curveJSON, 0, len(curves))
	for i, c := range curves {
		switch v := c.(type) {
		case Line:
			l := v
			out = append(out, curveJSON{Type: KindLine.String(), Line: &l})
		case Arc:
			a := v
			out = append(out, curveJSON{Type: KindArc.String(), Arc: &a})
		default:
			return nil, fmt.Errorf("sketch: marshal curve %d: unsupported type %T", i, c)
		}
	}
	return json.Marshal(out)
}

// UnmarshalCurves decodes the output of MarshalCurves. Every decoded curve is
// validated.
func UnmarshalCurves(data []byte) ([]Curve, error) {
	var in []curveJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("sketch: unmarshal curves: %w", err)
	}
	curves := make([]Curve, 0, len(in))
	for i, cj := range in {
		var c Curve
		switch {
		case cj.Type == KindLine.String() && cj.Line != nil:
			c = *cj.Line
		case cj.Type == KindArc.String() && cj.Arc != nil:
			c = *cj.Arc
		default:
			return nil, fmt.Errorf("sketch: unmarshal curve %d: bad type %q", i, cj.Type)
		}
		if err := Validate(c); err != nil {
			return nil, fmt.Errorf("sketch: unmarshal curve %d: %w", i, err)
		}
		curves = append(curves, c)
	}
	return curves, nil
}
