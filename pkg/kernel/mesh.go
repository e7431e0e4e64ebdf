package kernel

// Mesh is a flat triangle mesh: Vertices holds 3 floats per vertex
// (x,y,z), Normals 3 floats per vertex, and Indices 3 uint32s per
// triangle. Name labels which assembly entity the mesh came from.
type Mesh struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Name     string    `json:"name,omitempty"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty reports whether the mesh carries no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Triangle returns the three vertex positions of triangle i as
// [3][3]float32 corner arrays.
func (m *Mesh) Triangle(i int) [3][3]float32 {
	var tri [3][3]float32
	for c := 0; c < 3; c++ {
		vi := int(m.Indices[i*3+c]) * 3
		tri[c] = [3]float32{m.Vertices[vi], m.Vertices[vi+1], m.Vertices[vi+2]}
	}
	return tri
}
