package sdfx

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/sketchsolid/pkg/kernel"
	"github.com/golang/geo/r2"
)

func square(x0, y0, side float64) kernel.Profile {
	return kernel.Profile{Outline: []r2.Point{
		{X: x0, Y: y0}, {X: x0 + side, Y: y0}, {X: x0 + side, Y: y0 + side}, {X: x0, Y: y0 + side},
	}}
}

func checkBounds(t *testing.T, s kernel.Solid, wantMin, wantMax [3]float64, tol float64) {
	t.Helper()
	min, max := s.BoundingBox()
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-wantMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected ~%f", i, min[i], wantMin[i])
		}
		if math.Abs(max[i]-wantMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, max[i], wantMax[i])
		}
	}
}

func TestExtrudePolygon(t *testing.T) {
	k := New(WithMeshCells(50))
	s, err := k.Extrude(square(0, 0, 10), 4)
	if err != nil {
		t.Fatalf("Extrude failed: %v", err)
	}
	checkBounds(t, s, [3]float64{0, 0, 0}, [3]float64{10, 10, 4}, 0.01)

	mesh, err := k.ToMesh(s)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	// Verify vertex and index array sizes are consistent.
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != mesh.TriangleCount()*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), mesh.TriangleCount()*3)
	}
	t.Logf("extruded square triangle count: %d", mesh.TriangleCount())
}

func TestExtrudeCircle(t *testing.T) {
	k := New(WithMeshCells(50))
	s, err := k.Extrude(kernel.Profile{Circle: &kernel.Circle{Center: r2.Point{X: 5, Y: -5}, Radius: 2}}, 1)
	if err != nil {
		t.Fatalf("Extrude failed: %v", err)
	}
	checkBounds(t, s, [3]float64{3, -7, 0}, [3]float64{7, -3, 1}, 0.01)

	mesh, err := k.ToMesh(s)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.TriangleCount() == 0 {
		t.Fatal("expected non-zero triangle count")
	}
}

func TestExtrudeErrors(t *testing.T) {
	k := New()
	tests := []struct {
		name    string
		profile kernel.Profile
		depth   float64
		want    error
	}{
		{"empty profile", kernel.Profile{}, 1, kernel.ErrEmptyProfile},
		{"degenerate outline", kernel.Profile{Outline: []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}}, 1, kernel.ErrEmptyProfile},
		{"zero depth", square(0, 0, 1), 0, kernel.ErrInvalidDepth},
		{"negative depth", square(0, 0, 1), -2, kernel.ErrInvalidDepth},
		{"NaN depth", square(0, 0, 1), math.NaN(), kernel.ErrInvalidDepth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := k.Extrude(tt.profile, tt.depth)
			if !errors.Is(err, tt.want) {
				t.Errorf("Extrude() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRevolve(t *testing.T) {
	// A 2x2 square from x=2 to x=4 turns into a ring of outer radius 4. The
	// sweep starts at the profile and turns towards +Z.
	tests := []struct {
		name             string
		profile          kernel.Profile
		angle            float64
		wantMin, wantMax [3]float64
	}{
		{"full turn", square(2, 0, 2), 360, [3]float64{-4, 0, -4}, [3]float64{4, 2, 4}},
		{"quarter turn", square(2, 0, 2), 90, [3]float64{0, 0, 0}, [3]float64{4, 2, 4}},
		{"half turn", square(2, 0, 2), 180, [3]float64{-4, 0, 0}, [3]float64{4, 2, 4}},
		{"three quarters", square(2, 0, 2), 270, [3]float64{-4, 0, -4}, [3]float64{4, 2, 4}},
		{"torus", kernel.Profile{Circle: &kernel.Circle{Center: r2.Point{X: 5}, Radius: 1}}, 360,
			[3]float64{-6, -1, -6}, [3]float64{6, 1, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := New(WithMeshCells(40))
			s, err := k.Revolve(tt.profile, tt.angle)
			if err != nil {
				t.Fatalf("Revolve failed: %v", err)
			}
			checkBounds(t, s, tt.wantMin, tt.wantMax, 0.01)

			mesh, err := k.ToMesh(s)
			if err != nil {
				t.Fatalf("ToMesh failed: %v", err)
			}
			if mesh.IsEmpty() {
				t.Fatal("mesh is empty")
			}
		})
	}
}

func TestRevolveErrors(t *testing.T) {
	k := New()
	tests := []struct {
		name    string
		profile kernel.Profile
		angle   float64
		want    error
	}{
		{"empty profile", kernel.Profile{}, 90, kernel.ErrEmptyProfile},
		{"zero angle", square(1, 0, 1), 0, kernel.ErrInvalidAngle},
		{"negative angle", square(1, 0, 1), -45, kernel.ErrInvalidAngle},
		{"more than a turn", square(1, 0, 1), 361, kernel.ErrInvalidAngle},
		{"NaN angle", square(1, 0, 1), math.NaN(), kernel.ErrInvalidAngle},
		{"outline across axis", square(-1, 0, 2), 90, kernel.ErrCrossesAxis},
		{"circle across axis", kernel.Profile{Circle: &kernel.Circle{Center: r2.Point{X: 1}, Radius: 2}}, 90, kernel.ErrCrossesAxis},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := k.Revolve(tt.profile, tt.angle)
			if !errors.Is(err, tt.want) {
				t.Errorf("Revolve() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTranslate(t *testing.T) {
	k := New()
	s, err := k.Extrude(square(0, 0, 10), 10)
	if err != nil {
		t.Fatal(err)
	}
	translated := k.Translate(s, 100, 200, 300)
	checkBounds(t, translated, [3]float64{100, 200, 300}, [3]float64{110, 210, 310}, 0.5)
}

func TestRotate(t *testing.T) {
	k := New()
	// A thin 10x10 plate, 1 deep. Rotated 90 degrees about X it stands up
	// along Y in the XZ plane with its depth pointing along -Y.
	s, err := k.Extrude(square(0, 0, 10), 1)
	if err != nil {
		t.Fatal(err)
	}
	rotated := k.Rotate(s, 90, 0, 0)
	min, max := rotated.BoundingBox()

	const tol = 0.5
	if ext := max[1] - min[1]; math.Abs(ext-1) > tol {
		t.Errorf("rotated Y extent = %f, expected ~1", ext)
	}
	if ext := max[2] - min[2]; math.Abs(ext-10) > tol {
		t.Errorf("rotated Z extent = %f, expected ~10", ext)
	}
}

func TestUnion(t *testing.T) {
	k := New(WithMeshCells(50))
	a, _ := k.Extrude(square(0, 0, 5), 5)
	b, _ := k.Extrude(square(3, 0, 5), 5)
	u := k.Union(a, b)
	checkBounds(t, u, [3]float64{0, 0, 0}, [3]float64{8, 5, 5}, 0.01)

	mesh, err := k.ToMesh(u)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("union mesh is empty")
	}
}

func TestSaveSTL(t *testing.T) {
	k := New(WithMeshCells(20))
	s, err := k.Extrude(square(0, 0, 2), 2)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "part.stl")
	if err := k.SaveSTL(s, path); err != nil {
		t.Fatalf("SaveSTL failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	// Binary STL: 80 byte header + 4 byte count + 50 bytes per triangle.
	if info.Size() <= 84 {
		t.Errorf("STL file is %d bytes, expected triangles", info.Size())
	}
}

func TestWithMeshCells(t *testing.T) {
	if got := New(WithMeshCells(0)).meshCells; got != DefaultMeshCells {
		t.Errorf("meshCells = %d, want default %d", got, DefaultMeshCells)
	}
	if got := New(WithMeshCells(64)).meshCells; got != 64 {
		t.Errorf("meshCells = %d, want 64", got)
	}
}
