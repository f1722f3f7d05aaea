package layout

import (
	"github.com/Faultbox/meshgrid/pkg/mesh"
)

// Shape produces independent mesh copies to place on a grid.
type Shape interface {
	// Copy returns a new mesh that shares no data with earlier copies.
	Copy() (*mesh.Mesh, error)
}

// MeshShape places clones of a loaded mesh.
type MeshShape struct {
	Mesh *mesh.Mesh
}

// Copy clones the source mesh.
func (s MeshShape) Copy() (*mesh.Mesh, error) {
	if s.Mesh == nil || s.Mesh.VertexCount() == 0 {
		return nil, mesh.ErrEmptyMesh
	}
	return s.Mesh.Clone(), nil
}

// CylinderShape generates a Z-axis cylinder centred at the origin.
type CylinderShape struct {
	Radius   float64
	Height   float64
	Segments int
}

// Copy builds a fresh cylinder.
func (s CylinderShape) Copy() (*mesh.Mesh, error) {
	return mesh.Cylinder(s.Radius, s.Height, s.Segments)
}
