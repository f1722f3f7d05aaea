// Package math provides the affine transform type used to place meshes.
package math

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Mat4 is a 4x4 matrix in column-major order.
// Layout: [m0 m4 m8  m12]
//
//	[m1 m5 m9  m13]
//	[m2 m6 m10 m14]
//	[m3 m7 m11 m15]
type Mat4 [16]float64

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation matrix.
func Translate(v r3.Vec) Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		v.X, v.Y, v.Z, 1,
	}
}

// Scale returns a scale matrix.
func Scale(x, y, z float64) Mat4 {
	return Mat4{
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 0,
		0, 0, 0, 1,
	}
}

// UniformScale returns a matrix scaling all three axes by s.
func UniformScale(s float64) Mat4 {
	return Scale(s, s, s)
}

// Mul returns m * other. Applied to a point, other acts first.
func (m Mat4) Mul(other Mat4) Mat4 {
	var result Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[k*4+row] * other[col*4+k]
			}
			result[col*4+row] = sum
		}
	}
	return result
}

// MulPosition transforms a point (w = 1).
func (m Mat4) MulPosition(p r3.Vec) r3.Vec {
	return r3.Vec{
		X: m[0]*p.X + m[4]*p.Y + m[8]*p.Z + m[12],
		Y: m[1]*p.X + m[5]*p.Y + m[9]*p.Z + m[13],
		Z: m[2]*p.X + m[6]*p.Y + m[10]*p.Z + m[14],
	}
}

// MulDirection transforms a direction vector (ignores translation).
func (m Mat4) MulDirection(d r3.Vec) r3.Vec {
	return r3.Vec{
		X: m[0]*d.X + m[4]*d.Y + m[8]*d.Z,
		Y: m[1]*d.X + m[5]*d.Y + m[9]*d.Z,
		Z: m[2]*d.X + m[6]*d.Y + m[10]*d.Z,
	}
}

// Det3 returns the determinant of the upper-left 3x3 block.
func (m Mat4) Det3() float64 {
	return m[0]*(m[5]*m[10]-m[9]*m[6]) -
		m[4]*(m[1]*m[10]-m[9]*m[2]) +
		m[8]*(m[1]*m[6]-m[5]*m[2])
}

// NormalMatrix returns a matrix that maps surface normals under m.
// It is the cofactor matrix of the upper-left 3x3 block, sign-corrected so
// mirrored transforms keep normals pointing outward. The result is not
// normalized; callers renormalize transformed normals.
func (m Mat4) NormalMatrix() Mat4 {
	c00 := m[5]*m[10] - m[9]*m[6]
	c01 := -(m[1]*m[10] - m[9]*m[2])
	c02 := m[1]*m[6] - m[5]*m[2]
	c10 := -(m[4]*m[10] - m[8]*m[6])
	c11 := m[0]*m[10] - m[8]*m[2]
	c12 := -(m[0]*m[6] - m[4]*m[2])
	c20 := m[4]*m[9] - m[8]*m[5]
	c21 := -(m[0]*m[9] - m[8]*m[1])
	c22 := m[0]*m[5] - m[4]*m[1]

	sign := 1.0
	if m.Det3() < 0 {
		sign = -1
	}

	// Cofactor (row r, col c) lands at column-major index c*4+r.
	return Mat4{
		sign * c00, sign * c10, sign * c20, 0,
		sign * c01, sign * c11, sign * c21, 0,
		sign * c02, sign * c12, sign * c22, 0,
		0, 0, 0, 1,
	}
}

// Translation returns the translation column of the matrix.
func (m Mat4) Translation() r3.Vec {
	return r3.Vec{X: m[12], Y: m[13], Z: m[14]}
}
