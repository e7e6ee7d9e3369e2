// Package export writes sketches and extruded bodies to interchange files:
// DXF for the 2D profile and STL for solids.
package export

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/sketchsolid/pkg/kernel"
	"github.com/chazu/sketchsolid/pkg/sketch"
	"github.com/chazu/sketchsolid/pkg/tessellate"
	"github.com/yofu/dxf"
)

// ErrNothingToExport is returned when there is no geometry to write.
var ErrNothingToExport = errors.New("export: nothing to export")

// WriteDXF writes the curves to a DXF file in sketch-plane coordinates
// (z = 0). Full circles become CIRCLE entities, other arcs ARC entities.
func WriteDXF(path string, curves []sketch.Curve) error {
	if len(curves) == 0 {
		return ErrNothingToExport
	}
	d := dxf.NewDrawing()
	for i, c := range curves {
		var err error
		switch v := c.(type) {
		case sketch.Line:
			_, err = d.Line(v.Start.X, v.Start.Y, 0, v.End.X, v.End.Y, 0)
		case sketch.Arc:
			if v.IsFullCircle() {
				_, err = d.Circle(v.Center.X, v.Center.Y, 0, v.Radius)
				break
			}
			start, end := dxfAngles(v)
			_, err = d.Arc(v.Center.X, v.Center.Y, 0, v.Radius, start, end)
		default:
			err = fmt.Errorf("unsupported curve type %T", c)
		}
		if err != nil {
			return fmt.Errorf("export: dxf curve %d: %w", i, err)
		}
	}
	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("export: save dxf %s: %w", path, err)
	}
	return nil
}

// dxfAngles returns the arc's angles in degrees for DXF, which always runs
// counter-clockwise from start to end. A clockwise arc is written with its
// ends swapped.
func dxfAngles(a sketch.Arc) (start, end float64) {
	start, end = a.StartAngle, a.EndAngle
	if a.Clockwise {
		start, end = end, start
	}
	return degrees(start), degrees(end)
}

func degrees(rad float64) float64 {
	d := math.Mod(rad*180/math.Pi, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// WriteSTL unions the bodies and writes the solid as a binary STL file.
func WriteSTL(path string, bodies []tessellate.Body, k kernel.Kernel) error {
	if len(bodies) == 0 {
		return ErrNothingToExport
	}
	solid, err := tessellate.Combine(bodies, k)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := k.SaveSTL(solid, path); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}
