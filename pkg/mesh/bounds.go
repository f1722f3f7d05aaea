package mesh

import (
	gomath "math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min r3.Vec
	Max r3.Vec
}

// EmptyBounds returns a box that contains nothing; extending it with a point
// yields a zero-size box at that point.
func EmptyBounds() Bounds {
	inf := gomath.Inf(1)
	return Bounds{
		Min: r3.Vec{X: inf, Y: inf, Z: inf},
		Max: r3.Vec{X: -inf, Y: -inf, Z: -inf},
	}
}

// NewBounds returns the box spanned by two corners.
func NewBounds(lo, hi r3.Vec) Bounds {
	return Bounds{Min: lo, Max: hi}
}

// Empty reports whether the box contains no points.
func (b Bounds) Empty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Extend grows the box to include p.
func (b *Bounds) Extend(p r3.Vec) {
	b.Min.X = gomath.Min(b.Min.X, p.X)
	b.Min.Y = gomath.Min(b.Min.Y, p.Y)
	b.Min.Z = gomath.Min(b.Min.Z, p.Z)
	b.Max.X = gomath.Max(b.Max.X, p.X)
	b.Max.Y = gomath.Max(b.Max.Y, p.Y)
	b.Max.Z = gomath.Max(b.Max.Z, p.Z)
}

// Union returns the smallest box containing b and other.
func (b Bounds) Union(other Bounds) Bounds {
	if other.Empty() {
		return b
	}
	b.Extend(other.Min)
	b.Extend(other.Max)
	return b
}

// Size returns the extent along each axis.
func (b Bounds) Size() r3.Vec {
	return r3.Sub(b.Max, b.Min)
}

// Center returns the midpoint of the box.
func (b Bounds) Center() r3.Vec {
	return r3.Scale(0.5, r3.Add(b.Min, b.Max))
}

// Contains reports whether p lies inside the box, allowing tol slack on
// every side.
func (b Bounds) Contains(p r3.Vec, tol float64) bool {
	return p.X >= b.Min.X-tol && p.X <= b.Max.X+tol &&
		p.Y >= b.Min.Y-tol && p.Y <= b.Max.Y+tol &&
		p.Z >= b.Min.Z-tol && p.Z <= b.Max.Z+tol
}

// ContainsBounds reports whether other fits inside b within tol.
func (b Bounds) ContainsBounds(other Bounds, tol float64) bool {
	return b.Contains(other.Min, tol) && b.Contains(other.Max, tol)
}

// Corners returns the eight corners; bit 0 of the index selects max X,
// bit 1 max Y and bit 2 max Z.
func (b Bounds) Corners() [8]r3.Vec {
	var c [8]r3.Vec
	for i := range c {
		p := b.Min
		if i&1 != 0 {
			p.X = b.Max.X
		}
		if i&2 != 0 {
			p.Y = b.Max.Y
		}
		if i&4 != 0 {
			p.Z = b.Max.Z
		}
		c[i] = p
	}
	return c
}
