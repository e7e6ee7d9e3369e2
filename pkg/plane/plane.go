// Package plane maps between 3D world coordinates and the 2D local frame of
// an axis-aligned sketch plane. The plane transforms are built with the sdfx
// matrix helpers so that sketches and the solids extruded from them share
// one placement convention.
package plane

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/sketchsolid/pkg/sketch"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Orientation selects one of the three axis-aligned sketch planes.
type Orientation int

const (
	XY Orientation = iota // normal +Z, no rotation
	XZ                    // normal +Y, rotated +90° about X
	YZ                    // normal +X, rotated +90° about Y
)

func (o Orientation) String() string {
	switch o {
	case XY:
		return "XY"
	case XZ:
		return "XZ"
	case YZ:
		return "YZ"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// ParseOrientation converts "XY", "XZ" or "YZ" (any case) to an Orientation.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "XY":
		return XY, nil
	case "XZ":
		return XZ, nil
	case "YZ":
		return YZ, nil
	}
	return 0, fmt.Errorf("plane: invalid orientation %q, expected XY, XZ or YZ", s)
}

// Normal returns the plane's nominal normal as used for display offsets.
func (o Orientation) Normal() v3.Vec {
	switch o {
	case XZ:
		return v3.Vec{X: 0, Y: 1, Z: 0}
	case YZ:
		return v3.Vec{X: 1, Y: 0, Z: 0}
	default:
		return v3.Vec{X: 0, Y: 0, Z: 1}
	}
}

// Rotation returns the plane's orientation as Euler angles in degrees, in the
// convention of kernel.Kernel.Rotate.
func (o Orientation) Rotation() v3.Vec {
	switch o {
	case XZ:
		return v3.Vec{X: 90}
	case YZ:
		return v3.Vec{Y: 90}
	default:
		return v3.Vec{}
	}
}

func (o Orientation) rotation() sdf.M44 {
	switch o {
	case XZ:
		return sdf.RotateX(math.Pi / 2)
	case YZ:
		return sdf.RotateY(math.Pi / 2)
	default:
		return sdf.Identity3d()
	}
}

// Projector converts points between world space and a plane's local frame.
// The forward transform is translate(offset) * rotate(orientation), which is
// always orthonormal, so the inverse exists for every projector.
type Projector struct {
	orientation Orientation
	offset      v3.Vec
	toWorld     sdf.M44
	toLocal     sdf.M44
}

// NewProjector returns a projector for the plane with the given orientation
// whose local origin sits at offset in world space.
func NewProjector(o Orientation, offset v3.Vec) *Projector {
	m := sdf.Translate3d(offset).Mul(o.rotation())
	return &Projector{
		orientation: o,
		offset:      offset,
		toWorld:     m,
		toLocal:     m.Inverse(),
	}
}

// Orientation returns the plane orientation.
func (p *Projector) Orientation() Orientation { return p.orientation }

// Offset returns the world position of the plane's local origin.
func (p *Projector) Offset() v3.Vec { return p.offset }

// Matrix returns the plane's local-to-world transform.
func (p *Projector) Matrix() sdf.M44 { return p.toWorld }

// Project maps a world point into the plane's local frame and drops the
// out-of-plane coordinate.
func (p *Projector) Project(world v3.Vec) sketch.Point2D {
	local := p.toLocal.MulPosition(world)
	return sketch.Pt(local.X, local.Y)
}

// Unproject maps a local plane point to world space.
func (p *Projector) Unproject(pt sketch.Point2D) v3.Vec {
	return p.toWorld.MulPosition(v3.Vec{X: pt.X, Y: pt.Y, Z: 0})
}

// SnapToGrid quantizes p to multiples of step. A non-positive step leaves p
// unchanged.
func SnapToGrid(p sketch.Point2D, step float64) sketch.Point2D {
	if step <= 0 {
		return p
	}
	return sketch.Pt(math.Round(p.X/step)*step, math.Round(p.Y/step)*step)
}
