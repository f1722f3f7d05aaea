package pipeline

import (
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/meshgrid/pkg/formats"
	"github.com/Faultbox/meshgrid/pkg/mesh"
)

// MeshInfo summarizes a mesh file.
type MeshInfo struct {
	Path       string
	Format     formats.Format
	Name       string
	Vertices   int
	Faces      int
	HasNormals bool
	Groups     []mesh.Group
	Bounds     mesh.Bounds
}

// Info loads path and summarizes it.
func Info(path string) (*MeshInfo, error) {
	format, err := formats.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	m, err := formats.Load(path)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &MeshInfo{
		Path:       path,
		Format:     format,
		Name:       m.Name,
		Vertices:   m.VertexCount(),
		Faces:      m.FaceCount(),
		HasNormals: m.HasNormals(),
		Groups:     m.Groups,
		Bounds:     m.Bounds(),
	}, nil
}

// Print writes a human-readable summary.
func (i *MeshInfo) Print(w io.Writer) {
	fmt.Fprintf(w, "File:     %s (%s)\n", i.Path, i.Format)
	fmt.Fprintf(w, "Name:     %s\n", i.Name)
	fmt.Fprintf(w, "Vertices: %d\n", i.Vertices)
	fmt.Fprintf(w, "Faces:    %d\n", i.Faces)
	fmt.Fprintf(w, "Normals:  %t\n", i.HasNormals)
	fmt.Fprintf(w, "Bounds:   min %s  max %s\n", vecString(i.Bounds.Min), vecString(i.Bounds.Max))
	fmt.Fprintf(w, "Size:     %s\n", vecString(i.Bounds.Size()))

	if len(i.Groups) == 0 {
		return
	}
	fmt.Fprintf(w, "Groups:   %d\n", len(i.Groups))
	for _, g := range i.Groups {
		fmt.Fprintf(w, "  %-24s faces %d..%d\n", g.Name, g.FaceStart, g.FaceStart+g.FaceCount-1)
	}
}

// vecString formats a vector as (x, y, z).
type vecString r3.Vec

func (v vecString) String() string {
	return "(" + strconv.FormatFloat(v.X, 'g', 6, 64) + ", " +
		strconv.FormatFloat(v.Y, 'g', 6, 64) + ", " +
		strconv.FormatFloat(v.Z, 'g', 6, 64) + ")"
}
