// Package scene holds arranged mesh instances and flattens them into a
// single exportable mesh.
package scene

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/meshgrid/pkg/mesh"
)

// Instance is one placed copy of a shape.
type Instance struct {
	Name   string
	Row    int
	Col    int
	Offset r3.Vec     // Translation applied to the source copy
	Mesh   *mesh.Mesh // Owned by the instance
}

// Scene is an ordered collection of instances.
type Scene struct {
	Name      string
	Instances []Instance
}

// New creates an empty scene.
func New(name string) *Scene {
	return &Scene{Name: name}
}

// InstanceName returns the group name used for the instance at (row, col).
func InstanceName(name string, row, col int) string {
	return fmt.Sprintf("%s_r%d_c%d", name, row, col)
}

// Add appends an instance. An empty instance name is derived from the scene
// name and grid position.
func (s *Scene) Add(inst Instance) {
	if inst.Name == "" {
		inst.Name = InstanceName(s.Name, inst.Row, inst.Col)
	}
	s.Instances = append(s.Instances, inst)
}

// Len returns the number of instances.
func (s *Scene) Len() int {
	return len(s.Instances)
}

// Stats returns the total vertex and face counts over all instances.
func (s *Scene) Stats() (vertices, faces int) {
	for _, inst := range s.Instances {
		vertices += inst.Mesh.VertexCount()
		faces += inst.Mesh.FaceCount()
	}
	return vertices, faces
}

// Bounds returns the box enclosing every instance.
func (s *Scene) Bounds() mesh.Bounds {
	b := mesh.EmptyBounds()
	for _, inst := range s.Instances {
		b = b.Union(inst.Mesh.Bounds())
	}
	return b
}

// Flatten concatenates all instances into one mesh named name. Each
// instance becomes one group, so source groups are not carried over.
func (s *Scene) Flatten(name string) (*mesh.Mesh, error) {
	if len(s.Instances) == 0 {
		return nil, fmt.Errorf("%w: scene %q has no instances", mesh.ErrEmptyMesh, s.Name)
	}

	parts := make([]*mesh.Mesh, len(s.Instances))
	for i, inst := range s.Instances {
		part := *inst.Mesh
		part.Name = inst.Name
		part.Groups = nil
		parts[i] = &part
	}
	return mesh.Concatenate(name, parts...), nil
}
