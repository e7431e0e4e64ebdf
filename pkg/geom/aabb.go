package geom

import "math"

// AABB is an axis-aligned bounding box. A valid box has Min[i] <= Max[i]
// on every axis.
type AABB struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

// NewAABB returns the box spanning the two corner points, ordering the
// components so the result is valid.
func NewAABB(a, b Vec3) AABB {
	return AABB{
		Min: Vec3{math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z)},
		Max: Vec3{math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z)},
	}
}

// Valid reports whether Min <= Max on every axis.
func (b AABB) Valid() bool {
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z <= b.Max.Z
}

// Extents returns the box dimensions per axis.
func (b AABB) Extents() Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the box midpoint.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Volume returns the enclosed volume.
func (b AABB) Volume() float64 {
	e := b.Extents()
	return e.X * e.Y * e.Z
}

// Diagonal returns the length of the box diagonal.
func (b AABB) Diagonal() float64 {
	return b.Extents().Length()
}

// IsDegenerate reports whether the box is invalid or has zero volume.
func (b AABB) IsDegenerate() bool {
	if !b.Valid() {
		return true
	}
	e := b.Extents()
	return e.X <= 0 || e.Y <= 0 || e.Z <= 0
}

// Translated returns the box shifted by d.
func (b AABB) Translated(d Vec3) AABB {
	return AABB{Min: b.Min.Add(d), Max: b.Max.Add(d)}
}

// Corners returns the eight corner points of the box.
func (b AABB) Corners() [8]Vec3 {
	return [8]Vec3{
		{b.Min.X, b.Min.Y, b.Min.Z},
		{b.Max.X, b.Min.Y, b.Min.Z},
		{b.Min.X, b.Max.Y, b.Min.Z},
		{b.Max.X, b.Max.Y, b.Min.Z},
		{b.Min.X, b.Min.Y, b.Max.Z},
		{b.Max.X, b.Min.Y, b.Max.Z},
		{b.Min.X, b.Max.Y, b.Max.Z},
		{b.Max.X, b.Max.Y, b.Max.Z},
	}
}

// BoundPoints returns the smallest box enclosing the given points.
func BoundPoints(pts []Vec3) AABB {
	if len(pts) == 0 {
		return AABB{}
	}
	out := AABB{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		out.Min.X = math.Min(out.Min.X, p.X)
		out.Min.Y = math.Min(out.Min.Y, p.Y)
		out.Min.Z = math.Min(out.Min.Z, p.Z)
		out.Max.X = math.Max(out.Max.X, p.X)
		out.Max.Y = math.Max(out.Max.Y, p.Y)
		out.Max.Z = math.Max(out.Max.Z, p.Z)
	}
	return out
}

// Transformed rotates the box about pivot, then translates it, and
// returns the axis-aligned bound of the moved corners.
func (b AABB) Transformed(rot Rotation, pivot, translate Vec3) AABB {
	corners := b.Corners()
	moved := make([]Vec3, 0, 8)
	for _, c := range corners {
		p := rot.Apply(c.Sub(pivot)).Add(pivot).Add(translate)
		moved = append(moved, p)
	}
	return BoundPoints(moved)
}

// Overlap returns the per-axis interpenetration depth between b and o.
// All components are positive only when the boxes genuinely overlap;
// a non-positive component means separation (or touching) on that axis.
func (b AABB) Overlap(o AABB) Vec3 {
	return Vec3{
		X: math.Min(b.Max.X, o.Max.X) - math.Max(b.Min.X, o.Min.X),
		Y: math.Min(b.Max.Y, o.Max.Y) - math.Max(b.Min.Y, o.Min.Y),
		Z: math.Min(b.Max.Z, o.Max.Z) - math.Max(b.Min.Z, o.Min.Z),
	}
}

// Intersects reports whether b and o interpenetrate by more than tol on
// every axis. Boxes that merely touch do not intersect.
func (b AABB) Intersects(o AABB, tol float64) bool {
	ov := b.Overlap(o)
	return ov.X > tol && ov.Y > tol && ov.Z > tol
}
