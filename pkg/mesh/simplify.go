package mesh

import (
	"fmt"

	"github.com/fogleman/simplify"
	"gonum.org/v1/gonum/spatial/r3"
)

// Simplify returns a decimated copy of m keeping roughly factor of its
// faces. A factor of 1 (or more) returns a plain clone. Groups and normals
// do not survive decimation.
func Simplify(m *Mesh, factor float64) (*Mesh, error) {
	if factor <= 0 {
		return nil, fmt.Errorf("%w: simplify factor %g", ErrInvalidPrimitive, factor)
	}
	if factor >= 1 {
		return m.Clone(), nil
	}

	triangles := make([]*simplify.Triangle, 0, len(m.Faces))
	for i := range m.Faces {
		a, b, c := m.FaceVertices(i)
		triangles = append(triangles, simplify.NewTriangle(toSimplify(a), toSimplify(b), toSimplify(c)))
	}

	reduced := simplify.NewMesh(triangles).Simplify(factor)

	builder := NewBuilder(m.Name)
	for _, t := range reduced.Triangles {
		builder.Triangle(fromSimplify(t.V1), fromSimplify(t.V2), fromSimplify(t.V3))
	}
	return builder.Mesh(), nil
}

func toSimplify(v r3.Vec) simplify.Vector {
	return simplify.Vector{X: v.X, Y: v.Y, Z: v.Z}
}

func fromSimplify(v simplify.Vector) r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}
