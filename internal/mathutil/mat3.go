package mathutil

import "github.com/golang/geo/r3"

// Mat3 is a 3×3 matrix stored row-major: [r0c0, r0c1, r0c2, r1c0, ...].
// Value type for zero heap allocation.
type Mat3 [9]float64

// FromColumns builds a matrix whose columns are x, y and z.
// A frame's basis vectors laid out this way form its rotation matrix.
func FromColumns(x, y, z r3.Vector) Mat3 {
	return Mat3{
		x.X, y.X, z.X,
		x.Y, y.Y, z.Y,
		x.Z, y.Z, z.Z,
	}
}

// Mat3Mul returns a × b.
func Mat3Mul(a, b Mat3) Mat3 {
	var m Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			m[r*3+c] = a[r*3+0]*b[0*3+c] + a[r*3+1]*b[1*3+c] + a[r*3+2]*b[2*3+c]
		}
	}
	return m
}

// At returns the element at 1-based row r, column c, matching the
// R11..R33 naming used for rotation matrices.
func (m Mat3) At(r, c int) float64 {
	return m[(r-1)*3+(c-1)]
}

// Col returns column c (0-based).
func (m Mat3) Col(c int) r3.Vector {
	return r3.Vector{X: m[c], Y: m[3+c], Z: m[6+c]}
}

// MulVec returns M × v.
func (m Mat3) MulVec(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		Y: m[3]*v.X + m[4]*v.Y + m[5]*v.Z,
		Z: m[6]*v.X + m[7]*v.Y + m[8]*v.Z,
	}
}

// Det returns the determinant. Rotations have +1.
func (m Mat3) Det() float64 {
	return m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[1]*(m[3]*m[8]-m[5]*m[6]) +
		m[2]*(m[3]*m[7]-m[4]*m[6])
}
