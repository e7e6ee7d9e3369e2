// Package tessellate places sketch bodies in world space and
// produces triangle meshes using a geometry kernel. One mesh is produced
// per body.
package tessellate

import (
	"fmt"

	"github.com/chazu/sketchsolid/pkg/kernel"
	"github.com/chazu/sketchsolid/pkg/plane"
	"github.com/chazu/sketchsolid/pkg/shape"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Body is a closed sketch profile extruded away from its sketch plane, or
// revolved about the plane's local v axis when Angle is set.
type Body struct {
	Name        string
	Profile     kernel.Profile
	Orientation plane.Orientation
	Offset      v3.Vec // world position of the sketch plane origin
	Depth       float64
	Angle       float64 // degrees
}

// Revolved reports whether the body is a solid of revolution.
func (b Body) Revolved() bool { return b.Angle != 0 }

// ProfileFromPath converts an assembled path into a kernel profile. A path
// made of a single full circle stays an exact circle; anything else is
// flattened with arcSegments chords per full turn.
func ProfileFromPath(p *shape.Path, arcSegments int) kernel.Profile {
	if arc, ok := p.IsCircle(); ok {
		return kernel.Profile{Circle: &kernel.Circle{Center: arc.Center, Radius: arc.Radius}}
	}
	return kernel.Profile{Outline: p.Flatten(arcSegments)}
}

// Solid builds the body in the plane's local frame, then applies the plane
// rotation followed by its offset.
func Solid(b Body, k kernel.Kernel) (kernel.Solid, error) {
	var (
		solid kernel.Solid
		err   error
	)
	if b.Revolved() {
		solid, err = k.Revolve(b.Profile, b.Angle)
		if err != nil {
			return nil, fmt.Errorf("tessellate: revolve %s: %w", b.Name, err)
		}
	} else {
		solid, err = k.Extrude(b.Profile, b.Depth)
		if err != nil {
			return nil, fmt.Errorf("tessellate: extrude %s: %w", b.Name, err)
		}
	}

	// Apply rotation first, then translation.
	rot := b.Orientation.Rotation()
	if rot.X != 0 || rot.Y != 0 || rot.Z != 0 {
		solid = k.Rotate(solid, rot.X, rot.Y, rot.Z)
	}

	trans := b.Offset
	if trans.X != 0 || trans.Y != 0 || trans.Z != 0 {
		solid = k.Translate(solid, trans.X, trans.Y, trans.Z)
	}
	return solid, nil
}

// Tessellate produces one triangle mesh per body using the provided
// geometry kernel. Bodies are read-only.
func Tessellate(bodies []Body, k kernel.Kernel) ([]*kernel.Mesh, error) {
	meshes := make([]*kernel.Mesh, 0, len(bodies))
	for i, b := range bodies {
		solid, err := Solid(b, k)
		if err != nil {
			return nil, err
		}
		mesh, err := k.ToMesh(solid)
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for body %s: %w", b.Name, err)
		}

		// Prefer the body's name, fall back to its position.
		if b.Name != "" {
			mesh.Name = b.Name
		} else {
			mesh.Name = fmt.Sprintf("body-%d", i+1)
		}
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// Combine unions every body into one solid, as an export of the whole
// scene needs.
func Combine(bodies []Body, k kernel.Kernel) (kernel.Solid, error) {
	if len(bodies) == 0 {
		return nil, kernel.ErrEmptyProfile
	}
	var out kernel.Solid
	for _, b := range bodies {
		s, err := Solid(b, k)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = s
			continue
		}
		out = k.Union(out, s)
	}
	return out, nil
}
