package formats

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/unixpickle/model3d/model3d"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/meshgrid/pkg/mesh"
)

// ParseSTL parses binary or ASCII STL data. Identical positions are welded
// into shared vertices, except that stacked copies of a facet keep their
// own vertices.
func ParseSTL(data []byte) (*mesh.Mesh, error) {
	if !isASCIISTL(data) {
		if err := checkBinarySTL(data); err != nil {
			return nil, err
		}
	}

	triangles, err := model3d.ReadSTL(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptMesh, err)
	}

	b := mesh.NewBuilder("")
	for i, t := range triangles {
		var corners [3]r3.Vec
		for j, c := range t {
			if !finite(c) {
				return nil, fmt.Errorf("%w: facet %d: non-finite coordinate %v", ErrCorruptMesh, i, c)
			}
			corners[j] = r3.Vec{X: c.X, Y: c.Y, Z: c.Z}
		}
		b.Triangle(corners[0], corners[1], corners[2])
	}
	return b.Mesh(), nil
}

// WriteSTL writes m as binary STL with per-facet normals.
func WriteSTL(w io.Writer, m *mesh.Mesh) error {
	triangles := make([]*model3d.Triangle, len(m.Faces))
	for i := range m.Faces {
		a, b, c := m.FaceVertices(i)
		triangles[i] = &model3d.Triangle{coord(a), coord(b), coord(c)}
	}
	_, err := w.Write(model3d.EncodeSTL(triangles))
	return err
}

func coord(v r3.Vec) model3d.Coord3D {
	return model3d.Coord3D{X: v.X, Y: v.Y, Z: v.Z}
}

func finite(c model3d.Coord3D) bool {
	for _, f := range []float64{c.X, c.Y, c.Z} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
