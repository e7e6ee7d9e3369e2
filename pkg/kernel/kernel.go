// Package kernel defines the abstract geometry kernel interface.
// Implementations turn closed sketch profiles into solids and tessellate
// them for rendering and export. The kernel abstraction allows swapping
// backends without changing the rest of the system.
package kernel

import (
	"errors"

	"github.com/golang/geo/r2"
	"github.com/samber/lo"
)

var (
	// ErrEmptyProfile is returned by Extrude for a profile with neither a
	// circle nor at least three outline points.
	ErrEmptyProfile = errors.New("kernel: profile is empty")

	// ErrInvalidDepth is returned by Extrude for a depth that is not
	// strictly positive.
	ErrInvalidDepth = errors.New("kernel: extrusion depth must be positive")

	// ErrInvalidAngle is returned by Revolve for an angle outside (0, 360].
	ErrInvalidAngle = errors.New("kernel: revolve angle must be in (0, 360]")

	// ErrCrossesAxis is returned by Revolve for a profile reaching to the
	// negative side of its axis.
	ErrCrossesAxis = errors.New("kernel: profile crosses the revolve axis")
)

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Circle is an exact circular profile.
type Circle struct {
	Center r2.Point
	Radius float64
}

// Profile is a closed planar outline in the XY plane of the kernel's frame.
// When Circle is set the outline is ignored.
type Profile struct {
	Outline []r2.Point
	Circle  *Circle
}

// Empty reports whether the profile encloses nothing.
func (p Profile) Empty() bool {
	if p.Circle != nil {
		return p.Circle.Radius <= 0
	}
	return len(p.Outline) < 3
}

// MinX returns the smallest X the profile reaches.
func (p Profile) MinX() float64 {
	if p.Circle != nil {
		return p.Circle.Center.X - p.Circle.Radius
	}
	return lo.MinBy(p.Outline, func(a, b r2.Point) bool { return a.X < b.X }).X
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Extrude sweeps the profile along +Z from z=0 to z=depth.
	Extrude(p Profile, depth float64) (Solid, error)

	// Revolve sweeps the profile about the Y axis by angle degrees, turning
	// from +X towards +Z. The profile must lie at X >= 0.
	Revolve(p Profile, angle float64) (Solid, error)

	Union(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Output
	ToMesh(s Solid) (*Mesh, error)
	SaveSTL(s Solid, path string) error
}
