package mesh

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// up is used for vertices whose adjacent faces are all degenerate.
var up = r3.Vec{X: 0, Y: 0, Z: 1}

// FaceNormal returns the unit normal of face i, following its winding.
// Degenerate faces return the zero vector.
func (m *Mesh) FaceNormal(i int) r3.Vec {
	a, b, c := m.FaceVertices(i)
	n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
	if r3.Norm(n) < 1e-20 {
		return r3.Vec{}
	}
	return r3.Unit(n)
}

// ComputeNormals replaces the vertex normals with area-weighted averages of
// the adjacent face normals.
func (m *Mesh) ComputeNormals() *Mesh {
	acc := make([]r3.Vec, len(m.Vertices))
	for _, f := range m.Faces {
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		// Unnormalized cross product is twice the face area.
		n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		for _, idx := range f {
			acc[idx] = r3.Add(acc[idx], n)
		}
	}
	for i, n := range acc {
		acc[i] = unitOr(n, up)
	}
	m.Normals = acc
	return m
}
