package mesh

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Concatenate joins parts into one mesh. Face indices of each part are
// shifted by the number of vertices that precede it. Every part contributes
// its own groups, or a single group named after the part when it has none.
// Normals are kept only when every part carries them.
func Concatenate(name string, parts ...*Mesh) *Mesh {
	var vertexCount, faceCount int
	withNormals := len(parts) > 0
	for _, p := range parts {
		vertexCount += len(p.Vertices)
		faceCount += len(p.Faces)
		if !p.HasNormals() {
			withNormals = false
		}
	}

	out := &Mesh{
		Name:     name,
		Vertices: make([]r3.Vec, 0, vertexCount),
		Faces:    make([][3]uint32, 0, faceCount),
	}
	if withNormals {
		out.Normals = make([]r3.Vec, 0, vertexCount)
	}

	for _, p := range parts {
		base := uint32(len(out.Vertices))
		faceBase := len(out.Faces)

		out.Vertices = append(out.Vertices, p.Vertices...)
		if withNormals {
			out.Normals = append(out.Normals, p.Normals...)
		}
		for _, f := range p.Faces {
			out.Faces = append(out.Faces, [3]uint32{f[0] + base, f[1] + base, f[2] + base})
		}

		if len(p.Groups) == 0 {
			if len(p.Faces) > 0 {
				out.Groups = append(out.Groups, Group{
					Name:      p.Name,
					FaceStart: faceBase,
					FaceCount: len(p.Faces),
				})
			}
			continue
		}
		for _, g := range p.Groups {
			g.FaceStart += faceBase
			out.Groups = append(out.Groups, g)
		}
	}

	return out
}
