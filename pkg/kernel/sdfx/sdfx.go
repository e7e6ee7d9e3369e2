// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/sketchsolid/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/golang/geo/r2"
	"github.com/samber/lo"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 200

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	meshCells int
}

// Option configures an SdfxKernel.
type Option func(*SdfxKernel)

// WithMeshCells sets the marching cubes resolution along the longest axis.
// Non-positive values keep the default.
func WithMeshCells(n int) Option {
	return func(k *SdfxKernel) {
		if n > 0 {
			k.meshCells = n
		}
	}
}

// New returns a new SdfxKernel.
func New(opts ...Option) *SdfxKernel {
	k := &SdfxKernel{meshCells: DefaultMeshCells}
	for _, o := range opts {
		o(k)
	}
	return k
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Extrude builds the 2D profile and sweeps it to the given depth.
// sdf.Extrude3D is centred on z=0, so the result is shifted up by half the
// depth to start at the sketch plane.
func (k *SdfxKernel) Extrude(p kernel.Profile, depth float64) (kernel.Solid, error) {
	if p.Empty() {
		return nil, kernel.ErrEmptyProfile
	}
	if !(depth > 0) || math.IsInf(depth, 1) {
		return nil, fmt.Errorf("%w: %v", kernel.ErrInvalidDepth, depth)
	}
	s2, err := profile2D(p)
	if err != nil {
		return nil, err
	}
	s3 := sdf.Extrude3D(s2, depth)
	return wrap(sdf.Transform3D(s3, sdf.Translate3d(v3.Vec{Z: depth / 2}))), nil
}

// Revolve builds the 2D profile and turns it about the profile's Y axis.
// sdf.RevolveTheta3D turns about Z from +X towards +Y with the profile's Y
// along Z; the result is rotated back so the profile keeps its place and the
// sweep runs towards +Z.
func (k *SdfxKernel) Revolve(p kernel.Profile, angle float64) (kernel.Solid, error) {
	if p.Empty() {
		return nil, kernel.ErrEmptyProfile
	}
	if !(angle > 0 && angle <= 360) {
		return nil, fmt.Errorf("%w: %v", kernel.ErrInvalidAngle, angle)
	}
	if p.MinX() < 0 {
		return nil, kernel.ErrCrossesAxis
	}
	s2, err := profile2D(p)
	if err != nil {
		return nil, err
	}
	// A zero theta is a full turn.
	theta := 0.0
	if angle < 360 {
		theta = angle * math.Pi / 180.0
	}
	s3, err := sdf.RevolveTheta3D(s2, theta)
	if err != nil {
		return nil, fmt.Errorf("sdfx.RevolveTheta3D: %w", err)
	}
	m := sdf.RotateX(-math.Pi / 2).Mul(sdf.RotateZ(-theta))
	return wrap(sdf.Transform3D(s3, m)), nil
}

func profile2D(p kernel.Profile) (sdf.SDF2, error) {
	if c := p.Circle; c != nil {
		s, err := sdf.Circle2D(c.Radius)
		if err != nil {
			return nil, fmt.Errorf("sdfx.Circle2D: %w", err)
		}
		return sdf.Transform2D(s, sdf.Translate2d(v2.Vec{X: c.Center.X, Y: c.Center.Y})), nil
	}
	verts := lo.Map(p.Outline, func(pt r2.Point, _ int) v2.Vec {
		return v2.Vec{X: pt.X, Y: pt.Y}
	})
	s, err := sdf.Polygon2D(verts)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Polygon2D: %w", err)
	}
	return s, nil
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *SdfxKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

func (k *SdfxKernel) renderer() render.Render3 {
	return render.NewMarchingCubesUniform(k.meshCells)
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	triangles := render.ToTriangles(unwrap(s), k.renderer())

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}

// SaveSTL tessellates the solid and writes it as a binary STL file.
func (k *SdfxKernel) SaveSTL(s kernel.Solid, path string) error {
	if err := render.SaveSTL(path, render.ToTriangles(unwrap(s), k.renderer())); err != nil {
		return fmt.Errorf("sdfx: save stl %s: %w", path, err)
	}
	return nil
}
