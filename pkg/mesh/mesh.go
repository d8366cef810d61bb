// Package mesh provides the immutable triangle-list mesh type consumed by
// the rasterizer.
package mesh

import "fmt"

// Vertex holds a homogeneous position and a texture coordinate. Position is
// homogeneous; W is 1.0 for all input vertices and becomes meaningful only
// after the rasterizer's projection step. UV is in [0,1] with V already
// flipped relative to the OBJ-file convention.
type Vertex struct {
	X, Y, Z, W float32
	U, V       float32
}

// Mesh is an ordered, immutable sequence of Vertex whose length is a
// positive multiple of 3; each consecutive triple is one triangle. Winding
// order is preserved from the input; the core never culls back faces.
type Mesh struct {
	vertices []Vertex
}

// New builds a Mesh from already OBJ-V-flipped vertices. It returns an
// error if the vertex count is not a positive multiple of 3. This is the
// one precondition the loader can actually violate (a malformed asset),
// as opposed to the programmer-error preconditions the rasterizer panics on.
func New(vertices []Vertex) (*Mesh, error) {
	if len(vertices) == 0 || len(vertices)%3 != 0 {
		return nil, fmt.Errorf("mesh: vertex count %d is not a positive multiple of 3", len(vertices))
	}
	cp := make([]Vertex, len(vertices))
	copy(cp, vertices)
	return &Mesh{vertices: cp}, nil
}

// NewFromRawUVs builds a Mesh from vertices whose V coordinate is still in
// raw OBJ convention (V=0 at the bottom) and flips it once here, at load
// time rather than per draw call.
func NewFromRawUVs(vertices []Vertex) (*Mesh, error) {
	flipped := make([]Vertex, len(vertices))
	for i, v := range vertices {
		v.V = 1 - v.V
		flipped[i] = v
	}
	return New(flipped)
}

// Len returns the vertex count.
func (m *Mesh) Len() int {
	return len(m.vertices)
}

// TriangleCount returns the number of triangles (Len()/3).
func (m *Mesh) TriangleCount() int {
	return len(m.vertices) / 3
}

// Triangle returns the three vertices of triangle i (0-indexed).
func (m *Mesh) Triangle(i int) (Vertex, Vertex, Vertex) {
	base := i * 3
	return m.vertices[base], m.vertices[base+1], m.vertices[base+2]
}
