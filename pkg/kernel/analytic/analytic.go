// Package analytic implements kernel.Kernel with closed-form bounding
// volumes instead of distance fields. Solids are tracked as axis-aligned
// boxes and meshed as their bounds, which makes it orders of magnitude
// faster than marching cubes. It backs tests and dry runs where exact
// surface shape does not matter; production export uses the sdfx
// backend.
package analytic

import (
	"math"

	"github.com/corbel-cad/corbel/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

type solid struct {
	min, max [3]float64
}

// BoundingBox returns the axis-aligned bounding box.
func (s *solid) BoundingBox() (min, max [3]float64) {
	return s.min, s.max
}

// Kernel implements kernel.Kernel analytically.
type Kernel struct{}

// New returns a new analytic kernel.
func New() *Kernel {
	return &Kernel{}
}

// Box creates a box centered at the origin.
func (k *Kernel) Box(x, y, z float64) kernel.Solid {
	return &solid{
		min: [3]float64{-x / 2, -y / 2, -z / 2},
		max: [3]float64{x / 2, y / 2, z / 2},
	}
}

// Cylinder creates a Z-axis cylinder centered at the origin, tracked by
// its bounding box.
func (k *Kernel) Cylinder(height, radius float64) kernel.Solid {
	return &solid{
		min: [3]float64{-radius, -radius, -height / 2},
		max: [3]float64{radius, radius, height / 2},
	}
}

// Union returns the bound of both solids.
func (k *Kernel) Union(a, b kernel.Solid) kernel.Solid {
	sa, sb := a.(*solid), b.(*solid)
	out := &solid{}
	for i := 0; i < 3; i++ {
		out.min[i] = math.Min(sa.min[i], sb.min[i])
		out.max[i] = math.Max(sa.max[i], sb.max[i])
	}
	return out
}

// Difference returns a unchanged: removing material never grows the
// bounding volume, and the analytic backend tracks bounds only.
func (k *Kernel) Difference(a, b kernel.Solid) kernel.Solid {
	sa := a.(*solid)
	out := *sa
	return &out
}

// Translate moves a solid by (x, y, z).
func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	ss := s.(*solid)
	return &solid{
		min: [3]float64{ss.min[0] + x, ss.min[1] + y, ss.min[2] + z},
		max: [3]float64{ss.max[0] + x, ss.max[1] + y, ss.max[2] + z},
	}
}

// Rotate rotates the solid's corners by Euler angles (degrees, X then Y
// then Z) and rebounds them.
func (k *Kernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	ss := s.(*solid)

	var corners [8][3]float64
	idx := 0
	for _, cx := range []float64{ss.min[0], ss.max[0]} {
		for _, cy := range []float64{ss.min[1], ss.max[1]} {
			for _, cz := range []float64{ss.min[2], ss.max[2]} {
				corners[idx] = rotateXYZ([3]float64{cx, cy, cz}, x, y, z)
				idx++
			}
		}
	}

	out := &solid{min: corners[0], max: corners[0]}
	for _, c := range corners[1:] {
		for i := 0; i < 3; i++ {
			out.min[i] = math.Min(out.min[i], c[i])
			out.max[i] = math.Max(out.max[i], c[i])
		}
	}
	return out
}

func rotateXYZ(p [3]float64, xDeg, yDeg, zDeg float64) [3]float64 {
	x, y, z := p[0], p[1], p[2]

	// X axis
	r := xDeg * math.Pi / 180
	y, z = y*math.Cos(r)-z*math.Sin(r), y*math.Sin(r)+z*math.Cos(r)
	// Y axis
	r = yDeg * math.Pi / 180
	x, z = x*math.Cos(r)+z*math.Sin(r), -x*math.Sin(r)+z*math.Cos(r)
	// Z axis
	r = zDeg * math.Pi / 180
	x, y = x*math.Cos(r)-y*math.Sin(r), x*math.Sin(r)+y*math.Cos(r)

	return [3]float64{x, y, z}
}

// boxFaces enumerates the 6 faces of a box as corner selectors and
// outward normals. Each face emits two triangles wound outward.
var boxFaces = [6]struct {
	axis   int
	sign   float64
	quad   [4][3]int // corner selectors: 0 = min, 1 = max per axis
	normal [3]float64
}{
	{0, -1, [4][3]int{{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}}, [3]float64{-1, 0, 0}},
	{0, 1, [4][3]int{{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}}, [3]float64{1, 0, 0}},
	{1, -1, [4][3]int{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}}, [3]float64{0, -1, 0}},
	{1, 1, [4][3]int{{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}}, [3]float64{0, 1, 0}},
	{2, -1, [4][3]int{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}}, [3]float64{0, 0, -1}},
	{2, 1, [4][3]int{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}}, [3]float64{0, 0, 1}},
}

// ToMesh emits the solid's bounding box as a 12-triangle mesh.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	ss := s.(*solid)
	bounds := [2][3]float64{ss.min, ss.max}

	mesh := &kernel.Mesh{
		Vertices: make([]float32, 0, 36*3),
		Normals:  make([]float32, 0, 36*3),
		Indices:  make([]uint32, 0, 36),
	}

	emit := func(sel [3]int, n [3]float64) {
		mesh.Vertices = append(mesh.Vertices,
			float32(bounds[sel[0]][0]),
			float32(bounds[sel[1]][1]),
			float32(bounds[sel[2]][2]))
		mesh.Normals = append(mesh.Normals, float32(n[0]), float32(n[1]), float32(n[2]))
		mesh.Indices = append(mesh.Indices, uint32(len(mesh.Indices)))
	}

	for _, f := range boxFaces {
		emit(f.quad[0], f.normal)
		emit(f.quad[1], f.normal)
		emit(f.quad[2], f.normal)

		emit(f.quad[0], f.normal)
		emit(f.quad[2], f.normal)
		emit(f.quad[3], f.normal)
	}
	return mesh, nil
}
