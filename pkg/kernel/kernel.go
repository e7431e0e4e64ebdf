// Package kernel defines the abstract geometry kernel interface used to
// realize connector archetypes as solids. Backends (sdfx, analytic)
// provide primitives, booleans, and tessellation behind this interface,
// so the export path never depends on a concrete engine.
package kernel

// Solid is an opaque handle to a backend solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel. All primitives are centered
// at the origin; connector bodies are symmetric about their pose, so a
// center origin keeps placement translations trivial.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees, applied X then Y then Z

	// Tessellation
	ToMesh(s Solid) (*Mesh, error)
}
