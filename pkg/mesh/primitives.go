package mesh

import (
	"fmt"
	gomath "math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultCylinderSegments is the number of radial segments used when none
// is given.
const DefaultCylinderSegments = 64

// Cylinder returns a closed cylinder centred at the origin with its axis
// along Z, spanning z in [-height/2, height/2].
// Vertices: segments ring points per cap plus one centre per cap.
func Cylinder(radius, height float64, segments int) (*Mesh, error) {
	if segments == 0 {
		segments = DefaultCylinderSegments
	}
	if !(radius > 0) || !(height > 0) || segments < 3 {
		return nil, fmt.Errorf("%w: cylinder radius=%g height=%g segments=%d",
			ErrInvalidPrimitive, radius, height, segments)
	}

	half := height / 2
	n := uint32(segments)
	vertices := make([]r3.Vec, 0, 2*segments+2)

	// Bottom ring [0, n), top ring [n, 2n)
	for _, z := range []float64{-half, half} {
		for k := 0; k < segments; k++ {
			theta := 2 * gomath.Pi * float64(k) / float64(segments)
			vertices = append(vertices, r3.Vec{
				X: radius * gomath.Cos(theta),
				Y: radius * gomath.Sin(theta),
				Z: z,
			})
		}
	}
	bottomCenter := uint32(len(vertices))
	vertices = append(vertices, r3.Vec{X: 0, Y: 0, Z: -half})
	topCenter := uint32(len(vertices))
	vertices = append(vertices, r3.Vec{X: 0, Y: 0, Z: half})

	faces := make([][3]uint32, 0, 4*segments)
	for k := uint32(0); k < n; k++ {
		next := (k + 1) % n
		b0, b1 := k, next
		t0, t1 := n+k, n+next

		// Side quad, outward winding
		faces = append(faces,
			[3]uint32{b0, b1, t1},
			[3]uint32{b0, t1, t0},
		)
		// Caps
		faces = append(faces,
			[3]uint32{bottomCenter, b1, b0},
			[3]uint32{topCenter, t0, t1},
		)
	}

	return &Mesh{
		Name:     "cylinder",
		Vertices: vertices,
		Faces:    faces,
	}, nil
}

// boxFaces lists the twelve outward-wound triangles of a box over the corner
// indexing used by Bounds.Corners.
var boxFaces = [12][3]uint32{
	// Bottom (-Z) and top (+Z)
	{0, 2, 3}, {0, 3, 1},
	{4, 5, 7}, {4, 7, 6},
	// Front (-Y) and back (+Y)
	{0, 1, 5}, {0, 5, 4},
	{2, 6, 7}, {2, 7, 3},
	// Left (-X) and right (+X)
	{0, 4, 6}, {0, 6, 2},
	{1, 3, 7}, {1, 7, 5},
}

// BoxMesh returns a closed box covering b, used to preview a target volume
// next to the arranged geometry.
func BoxMesh(b Bounds) (*Mesh, error) {
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty box %v", ErrInvalidPrimitive, b)
	}
	corners := b.Corners()
	return &Mesh{
		Name:     "bounds",
		Vertices: corners[:],
		Faces:    append([][3]uint32(nil), boxFaces[:]...),
	}, nil
}
