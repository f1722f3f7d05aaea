// Package layout fits meshes into target boxes and arranges copies of a
// shape on serial or staggered grids.
package layout

import (
	"errors"
	"fmt"
	gomath "math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/meshgrid/pkg/math"
	"github.com/Faultbox/meshgrid/pkg/mesh"
)

// Layout errors.
var (
	ErrDegenerateGeometry = errors.New("degenerate geometry")
	ErrInvalidBox         = errors.New("invalid target box")
	ErrInvalidGrid        = errors.New("invalid grid")
)

// Fit is the uniform scale and translation that maps a mesh into a box.
// The scale is applied about the origin before the translation.
type Fit struct {
	Scale       float64
	Translation r3.Vec
}

// Matrix returns the fit as a single affine transform.
func (f Fit) Matrix() math.Mat4 {
	return math.Translate(f.Translation).Mul(math.UniformScale(f.Scale))
}

// Apply returns p after scaling and translation.
func (f Fit) Apply(p r3.Vec) r3.Vec {
	return r3.Add(r3.Scale(f.Scale, p), f.Translation)
}

// ComputeFit returns the fit that scales source uniformly to the largest
// size that still fits inside target and centres it there. Axes with zero
// source extent do not constrain the scale.
func ComputeFit(source, target mesh.Bounds) (Fit, error) {
	if err := checkBox(target); err != nil {
		return Fit{}, err
	}
	if source.Empty() {
		return Fit{}, mesh.ErrEmptyMesh
	}

	src, dst := source.Size(), target.Size()
	scale := gomath.Inf(1)
	for _, axis := range [][2]float64{{src.X, dst.X}, {src.Y, dst.Y}, {src.Z, dst.Z}} {
		if axis[0] <= 0 {
			continue
		}
		scale = gomath.Min(scale, axis[1]/axis[0])
	}
	if gomath.IsInf(scale, 1) {
		return Fit{}, fmt.Errorf("%w: source extent is zero on every axis", ErrDegenerateGeometry)
	}

	scaledCenter := r3.Scale(scale, source.Center())
	return Fit{
		Scale:       scale,
		Translation: r3.Sub(target.Center(), scaledCenter),
	}, nil
}

// FitToBox returns a copy of m scaled and centred into target, together with
// the fit that was applied. m is not modified.
func FitToBox(m *mesh.Mesh, target mesh.Bounds) (*mesh.Mesh, Fit, error) {
	if m == nil || m.VertexCount() == 0 {
		return nil, Fit{}, mesh.ErrEmptyMesh
	}
	fit, err := ComputeFit(m.Bounds(), target)
	if err != nil {
		return nil, Fit{}, err
	}
	return m.Clone().Transform(fit.Matrix()), fit, nil
}

func checkBox(b mesh.Bounds) error {
	for _, v := range []float64{b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z} {
		if gomath.IsNaN(v) || gomath.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite corner %v", ErrInvalidBox, b)
		}
	}
	if b.Empty() {
		return fmt.Errorf("%w: max %v below min %v", ErrInvalidBox, b.Max, b.Min)
	}
	return nil
}
