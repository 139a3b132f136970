package mathutil

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
)

const tol = 1e-12

func TestFromColumns(t *testing.T) {
	x := r3.Vector{X: 1, Y: 2, Z: 3}
	y := r3.Vector{X: 4, Y: 5, Z: 6}
	z := r3.Vector{X: 7, Y: 8, Z: 9}
	m := FromColumns(x, y, z)

	assert.Equal(t, x, m.Col(0))
	assert.Equal(t, y, m.Col(1))
	assert.Equal(t, z, m.Col(2))
	assert.Equal(t, 4.0, m.At(1, 2))
	assert.Equal(t, 8.0, m.At(2, 3))
	assert.Equal(t, 3.0, m.At(3, 1))
}

func TestSceneToController(t *testing.T) {
	p := r3.Vector{X: 10, Y: 20, Z: 30}
	assert.Equal(t, r3.Vector{X: -30, Y: 20, Z: 10}, SceneToController.MulVec(p))
	assert.InDelta(t, 1.0, SceneToController.Det(), tol)

	ry := RotY(Deg2Rad(-90))
	for i := range ry {
		assert.InDelta(t, ry[i], SceneToController[i], tol)
	}

	// Exact: no rounding drift on half-unit coordinates.
	assert.Equal(t, r3.Vector{X: -0.5, Y: 0.5, Z: 0.5}, SceneToController.MulVec(r3.Vector{X: 0.5, Y: 0.5, Z: 0.5}))
}

func TestRotXYZ(t *testing.T) {
	a, b, c := Deg2Rad(10), Deg2Rad(20), Deg2Rad(30)
	m := RotXYZ(a, b, c)

	assert.InDelta(t, math.Sin(b), m.At(1, 3), tol)
	assert.InDelta(t, math.Cos(b)*math.Cos(c), m.At(1, 1), tol)
	assert.InDelta(t, -math.Cos(b)*math.Sin(c), m.At(1, 2), tol)
	assert.InDelta(t, -math.Sin(a)*math.Cos(b), m.At(2, 3), tol)
	assert.InDelta(t, math.Cos(a)*math.Cos(b), m.At(3, 3), tol)

	// Rotations are orthonormal and right-handed.
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 1.0, m.Col(i).Norm(), tol)
		assert.InDelta(t, 0.0, m.Col(i).Dot(m.Col((i+1)%3)), tol)
	}
	assert.InDelta(t, 1.0, m.Det(), tol)
}

func TestRoundInt(t *testing.T) {
	assert.Equal(t, 0, RoundInt(0.5))
	assert.Equal(t, 2, RoundInt(1.5))
	assert.Equal(t, 2, RoundInt(2.5))
	assert.Equal(t, -2, RoundInt(-2.5))
	assert.Equal(t, 3, RoundInt(2.6))
	assert.Equal(t, 0, RoundInt(math.Copysign(0, -1)))
}

func TestDegRad(t *testing.T) {
	assert.InDelta(t, math.Pi/2, Deg2Rad(90), tol)
	assert.InDelta(t, 90.0, Rad2Deg(math.Pi/2), tol)
}
