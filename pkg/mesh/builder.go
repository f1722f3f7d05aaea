package mesh

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Builder assembles a mesh from loose triangles, welding identical
// positions into shared vertices.
//
// A triangle whose welded corners already form a face with the same winding
// is a coincident copy, typically from instances placed on top of each
// other. Such triangles go to the next layer, which welds only among its
// own triangles, so stacked copies keep their own vertices.
type Builder struct {
	mesh   *Mesh
	layers []*weldLayer
}

type weldLayer struct {
	index map[r3.Vec]uint32
	faces map[[3]uint32]struct{}
}

func newWeldLayer() *weldLayer {
	return &weldLayer{
		index: make(map[r3.Vec]uint32),
		faces: make(map[[3]uint32]struct{}),
	}
}

// NewBuilder returns an empty builder.
func NewBuilder(name string) *Builder {
	return &Builder{
		mesh:   &Mesh{Name: name},
		layers: []*weldLayer{newWeldLayer()},
	}
}

// Triangle adds a face with the given corners.
func (b *Builder) Triangle(p1, p2, p3 r3.Vec) {
	for _, l := range b.layers {
		if !l.hasFace(p1, p2, p3) {
			b.addFace(l, p1, p2, p3)
			return
		}
	}
	l := newWeldLayer()
	b.layers = append(b.layers, l)
	b.addFace(l, p1, p2, p3)
}

func (l *weldLayer) hasFace(p1, p2, p3 r3.Vec) bool {
	var f [3]uint32
	for i, p := range []r3.Vec{p1, p2, p3} {
		idx, ok := l.index[p]
		if !ok {
			return false
		}
		f[i] = idx
	}
	_, ok := l.faces[faceKey(f)]
	return ok
}

func (b *Builder) addFace(l *weldLayer, p1, p2, p3 r3.Vec) {
	f := [3]uint32{b.vertex(l, p1), b.vertex(l, p2), b.vertex(l, p3)}
	l.faces[faceKey(f)] = struct{}{}
	b.mesh.Faces = append(b.mesh.Faces, f)
}

func (b *Builder) vertex(l *weldLayer, p r3.Vec) uint32 {
	if idx, ok := l.index[p]; ok {
		return idx
	}
	idx := uint32(len(b.mesh.Vertices))
	b.mesh.Vertices = append(b.mesh.Vertices, p)
	l.index[p] = idx
	return idx
}

// faceKey rotates f so its smallest index comes first, keeping the winding.
func faceKey(f [3]uint32) [3]uint32 {
	switch {
	case f[1] < f[0] && f[1] <= f[2]:
		return [3]uint32{f[1], f[2], f[0]}
	case f[2] < f[0] && f[2] < f[1]:
		return [3]uint32{f[2], f[0], f[1]}
	default:
		return f
	}
}

// Mesh returns the built mesh.
func (b *Builder) Mesh() *Mesh {
	return b.mesh
}
