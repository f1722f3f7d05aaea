package formats

import (
	"fmt"
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/meshgrid/pkg/mesh"
)

// loadGLTF loads a .gltf or .glb file.
func loadGLTF(path string) (*mesh.Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, err
	}
	return meshFromDocument(doc)
}

// ReadGLB decodes a binary glTF stream. Buffers must be embedded.
func ReadGLB(r io.Reader) (*mesh.Mesh, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptMesh, err)
	}
	return meshFromDocument(doc)
}

// meshFromDocument merges the triangle primitives of every glTF mesh into
// one indexed mesh. Each glTF mesh becomes a group. Node transforms are not
// applied.
func meshFromDocument(doc *gltf.Document) (*mesh.Mesh, error) {
	out := &mesh.Mesh{}
	withNormals := true

	for mi, gm := range doc.Meshes {
		groupStart := len(out.Faces)
		for _, primitive := range gm.Primitives {
			// Only plain triangle lists
			if primitive.Mode != gltf.PrimitiveTriangles {
				continue
			}
			posIdx, ok := primitive.Attributes[gltf.POSITION]
			if !ok {
				continue
			}
			positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
			if err != nil {
				return nil, fmt.Errorf("mesh %d positions: %w", mi, err)
			}

			var normals [][3]float32
			if normIdx, ok := primitive.Attributes[gltf.NORMAL]; ok {
				normals, err = modeler.ReadNormal(doc, doc.Accessors[normIdx], nil)
				if err != nil {
					return nil, fmt.Errorf("mesh %d normals: %w", mi, err)
				}
			}
			if len(normals) != len(positions) {
				withNormals = false
			}

			var indices []uint32
			if primitive.Indices != nil {
				indices, err = modeler.ReadIndices(doc, doc.Accessors[*primitive.Indices], nil)
				if err != nil {
					return nil, fmt.Errorf("mesh %d indices: %w", mi, err)
				}
			} else {
				indices = make([]uint32, len(positions))
				for k := range indices {
					indices[k] = uint32(k)
				}
			}
			if len(indices)%3 != 0 {
				return nil, fmt.Errorf("%w: mesh %d has %d indices", ErrCorruptMesh, mi, len(indices))
			}

			base := uint32(len(out.Vertices))
			for k, p := range positions {
				out.Vertices = append(out.Vertices, vec32(p))
				if withNormals {
					out.Normals = append(out.Normals, vec32(normals[k]))
				}
			}
			for i := 0; i < len(indices); i += 3 {
				f := [3]uint32{indices[i], indices[i+1], indices[i+2]}
				for _, idx := range f {
					if int(idx) >= len(positions) {
						return nil, fmt.Errorf("%w: mesh %d index %d out of range", ErrCorruptMesh, mi, idx)
					}
				}
				out.Faces = append(out.Faces, [3]uint32{f[0] + base, f[1] + base, f[2] + base})
			}
		}

		if gm.Name != "" && len(out.Faces) > groupStart {
			out.Groups = append(out.Groups, mesh.Group{
				Name:      gm.Name,
				FaceStart: groupStart,
				FaceCount: len(out.Faces) - groupStart,
			})
		}
	}

	if len(out.Faces) == 0 {
		return nil, fmt.Errorf("%w: no triangles found in gltf", ErrCorruptMesh)
	}
	if !withNormals {
		out.Normals = nil
	}
	if len(out.Groups) == 1 {
		out.Name = out.Groups[0].Name
	}
	return out, nil
}

// WriteGLB writes m as a single-primitive binary glTF.
func WriteGLB(w io.Writer, m *mesh.Mesh, withNormals bool) error {
	doc := documentFromMesh(m, withNormals)
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	return enc.Encode(doc)
}

func documentFromMesh(m *mesh.Mesh, withNormals bool) *gltf.Document {
	doc := gltf.NewDocument()

	positions := make([][3]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		positions[i] = float32s(v)
	}
	indices := make([]uint32, 0, 3*len(m.Faces))
	for _, f := range m.Faces {
		indices = append(indices, f[0], f[1], f[2])
	}

	attributes := gltf.PrimitiveAttributes{
		gltf.POSITION: modeler.WritePosition(doc, positions),
	}
	if withNormals && m.HasNormals() {
		normals := make([][3]float32, len(m.Normals))
		for i, n := range m.Normals {
			normals[i] = float32s(n)
		}
		attributes[gltf.NORMAL] = modeler.WriteNormal(doc, normals)
	}

	name := m.Name
	if name == "" {
		name = "mesh"
	}
	doc.Meshes = []*gltf.Mesh{{
		Name: name,
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(modeler.WriteIndices(doc, indices)),
			Attributes: attributes,
		}},
	}}
	doc.Nodes = []*gltf.Node{{Name: name, Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	return doc
}

func vec32(v [3]float32) r3.Vec {
	return r3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
}

func float32s(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}
