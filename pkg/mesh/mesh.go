// Package mesh provides the indexed triangle mesh used throughout meshgrid.
package mesh

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/meshgrid/pkg/math"
)

// Mesh errors.
var (
	ErrEmptyMesh        = errors.New("mesh has no vertices")
	ErrInvalidPrimitive = errors.New("invalid primitive parameters")
	ErrFaceIndex        = errors.New("face references missing vertex")
	ErrNormalCount      = errors.New("normal count does not match vertex count")
)

// Group names a contiguous run of faces.
type Group struct {
	Name      string
	FaceStart int
	FaceCount int
}

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Name     string
	Vertices []r3.Vec
	Normals  []r3.Vec // Per-vertex normals, empty when absent
	Faces    [][3]uint32
	Groups   []Group
}

// New creates a mesh from vertices and faces.
func New(name string, vertices []r3.Vec, faces [][3]uint32) *Mesh {
	return &Mesh{Name: name, Vertices: vertices, Faces: faces}
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// FaceCount returns the number of triangles.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// HasNormals reports whether the mesh carries one normal per vertex.
func (m *Mesh) HasNormals() bool {
	return len(m.Normals) > 0 && len(m.Normals) == len(m.Vertices)
}

// Validate checks that every face index is in range and normals line up.
func (m *Mesh) Validate() error {
	if len(m.Vertices) == 0 {
		return ErrEmptyMesh
	}
	if len(m.Normals) != 0 && len(m.Normals) != len(m.Vertices) {
		return fmt.Errorf("%w: %d normals, %d vertices", ErrNormalCount, len(m.Normals), len(m.Vertices))
	}
	n := uint32(len(m.Vertices))
	for i, f := range m.Faces {
		if f[0] >= n || f[1] >= n || f[2] >= n {
			return fmt.Errorf("%w: face %d %v (vertices: %d)", ErrFaceIndex, i, f, n)
		}
	}
	return nil
}

// Clone returns a deep copy that shares no slices with m.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Name:     m.Name,
		Vertices: append([]r3.Vec(nil), m.Vertices...),
		Faces:    append([][3]uint32(nil), m.Faces...),
	}
	if len(m.Normals) > 0 {
		c.Normals = append([]r3.Vec(nil), m.Normals...)
	}
	if len(m.Groups) > 0 {
		c.Groups = append([]Group(nil), m.Groups...)
	}
	return c
}

// Bounds returns the axis-aligned bounding box of all vertices.
func (m *Mesh) Bounds() Bounds {
	b := EmptyBounds()
	for _, v := range m.Vertices {
		b.Extend(v)
	}
	return b
}

// Transform applies mat to every vertex in place. Normals are mapped through
// the normal matrix and renormalized.
func (m *Mesh) Transform(mat math.Mat4) *Mesh {
	for i, v := range m.Vertices {
		m.Vertices[i] = mat.MulPosition(v)
	}
	if len(m.Normals) > 0 {
		nm := mat.NormalMatrix()
		for i, n := range m.Normals {
			m.Normals[i] = unitOr(nm.MulDirection(n), n)
		}
	}
	return m
}

// Translate moves every vertex by v in place.
func (m *Mesh) Translate(v r3.Vec) *Mesh {
	for i := range m.Vertices {
		m.Vertices[i] = r3.Add(m.Vertices[i], v)
	}
	return m
}

// Scale scales every vertex about the origin by s in place.
func (m *Mesh) Scale(s float64) *Mesh {
	return m.Transform(math.UniformScale(s))
}

// FaceVertices returns the three corner positions of face i.
func (m *Mesh) FaceVertices(i int) (r3.Vec, r3.Vec, r3.Vec) {
	f := m.Faces[i]
	return m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
}

// unitOr returns v normalized, or fallback when v has no length.
func unitOr(v, fallback r3.Vec) r3.Vec {
	if r3.Norm(v) < 1e-12 {
		return fallback
	}
	return r3.Unit(v)
}
