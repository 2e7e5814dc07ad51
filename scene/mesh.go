package scene

import (
	"volumetric-fog/core"
)

// Mesh holds CPU-side triangle data.
type Mesh struct {
	Name     string
	Vertices []core.Vertex
	// Indices lists triangles; when empty the vertices are consumed in
	// order, three at a time.
	Indices []uint32

	// Cached local-space AABB (computed by CreateMeshFromData).
	LocalAABB    AABB
	HasLocalAABB bool

	// Material holds surface shading properties. If nil, DefaultMaterial() is used.
	Material *Material
}

func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// CreateMeshFromData builds a Mesh and pre-computes its local-space AABB.
func CreateMeshFromData(name string, vertices []core.Vertex, indices []uint32) *Mesh {
	m := &Mesh{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
	}
	if len(vertices) > 0 {
		m.LocalAABB = computeLocalAABB(vertices)
		m.HasLocalAABB = true
	}
	return m
}

// computeLocalAABB returns the tight AABB of the given vertex positions.
func computeLocalAABB(vertices []core.Vertex) AABB {
	box := AABB{Min: vertices[0].Position, Max: vertices[0].Position}
	for _, v := range vertices[1:] {
		box = box.Extend(v.Position)
	}
	return box
}

// TriangleCount returns the number of complete triangles.
func (m *Mesh) TriangleCount() int {
	if len(m.Indices) > 0 {
		return len(m.Indices) / 3
	}
	return len(m.Vertices) / 3
}

// Triangle returns the vertices of triangle i. It reports false when an
// index points outside the vertex slice.
func (m *Mesh) Triangle(i int) ([3]core.Vertex, bool) {
	var tri [3]core.Vertex
	for k := 0; k < 3; k++ {
		idx := 3*i + k
		if len(m.Indices) > 0 {
			idx = int(m.Indices[idx])
		}
		if idx < 0 || idx >= len(m.Vertices) {
			return tri, false
		}
		tri[k] = m.Vertices[idx]
	}
	return tri, true
}

func (m *Mesh) material() *Material {
	if m.Material != nil {
		return m.Material
	}
	return DefaultMaterial()
}
