package analytic

import (
	"math"
	"testing"
)

func TestBoxBounds(t *testing.T) {
	k := New()
	min, max := k.Box(100, 50, 25).BoundingBox()
	if min != [3]float64{-50, -25, -12.5} || max != [3]float64{50, 25, 12.5} {
		t.Errorf("box bounds = %v / %v", min, max)
	}
}

func TestCylinderBounds(t *testing.T) {
	k := New()
	min, max := k.Cylinder(50, 10).BoundingBox()
	if min != [3]float64{-10, -10, -25} || max != [3]float64{10, 10, 25} {
		t.Errorf("cylinder bounds = %v / %v", min, max)
	}
}

func TestUnionBounds(t *testing.T) {
	k := New()
	u := k.Union(k.Box(10, 10, 10), k.Translate(k.Box(10, 10, 10), 20, 0, 0))
	min, max := u.BoundingBox()
	if min[0] != -5 || max[0] != 25 {
		t.Errorf("union x bounds = %f..%f, want -5..25", min[0], max[0])
	}
}

func TestDifferenceKeepsOuterBounds(t *testing.T) {
	k := New()
	d := k.Difference(k.Box(100, 100, 100), k.Cylinder(120, 20))
	min, max := d.BoundingBox()
	if min != [3]float64{-50, -50, -50} || max != [3]float64{50, 50, 50} {
		t.Errorf("difference bounds = %v / %v, want the outer box", min, max)
	}
}

func TestTranslate(t *testing.T) {
	k := New()
	min, max := k.Translate(k.Box(10, 10, 10), 100, 200, 300).BoundingBox()
	if min != [3]float64{95, 195, 295} || max != [3]float64{105, 205, 305} {
		t.Errorf("translated bounds = %v / %v", min, max)
	}
}

func TestRotateReboundsCorners(t *testing.T) {
	k := New()
	rotated := k.Rotate(k.Box(100, 10, 10), 0, 0, 90)
	min, max := rotated.BoundingBox()

	if got := max[0] - min[0]; math.Abs(got-10) > 1e-9 {
		t.Errorf("x extent after Z rotation = %f, want 10", got)
	}
	if got := max[1] - min[1]; math.Abs(got-100) > 1e-9 {
		t.Errorf("y extent after Z rotation = %f, want 100", got)
	}
}

func TestToMeshEmitsBoundingBox(t *testing.T) {
	k := New()
	mesh, err := k.ToMesh(k.Box(10, 20, 30))
	if err != nil {
		t.Fatal(err)
	}
	if mesh.TriangleCount() != 12 {
		t.Errorf("triangle count = %d, want 12", mesh.TriangleCount())
	}
	if mesh.VertexCount() != 36 {
		t.Errorf("vertex count = %d, want 36", mesh.VertexCount())
	}
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Errorf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}

	// All vertices must lie on the box surface.
	for i := 0; i < mesh.VertexCount(); i++ {
		x := float64(mesh.Vertices[i*3])
		y := float64(mesh.Vertices[i*3+1])
		z := float64(mesh.Vertices[i*3+2])
		onFace := math.Abs(math.Abs(x)-5) < 1e-6 ||
			math.Abs(math.Abs(y)-10) < 1e-6 ||
			math.Abs(math.Abs(z)-15) < 1e-6
		if !onFace {
			t.Fatalf("vertex %d (%f,%f,%f) not on box surface", i, x, y, z)
		}
	}
}
