package pose

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/Moult/stone-drone-robots/internal/mathutil"
)

// unitTol bounds |‖axis‖ - 1| for every frame axis.
const unitTol = 1e-6

// Frame is the local basis at one sample. Y runs across the rails from A
// to B, X is the lateral axis and Z = Y × X.
type Frame struct {
	X r3.Vector `json:"x"`
	Y r3.Vector `json:"y"`
	Z r3.Vector `json:"z"`
}

// Approach returns the rotation handed to the controller: columns X, Y, -Z.
// The tool's approach vector then lies in the plane of the rails.
func (f Frame) Approach() mathutil.Mat3 {
	return mathutil.FromColumns(f.X, f.Y, f.Z.Mul(-1))
}

// Check verifies that every axis is finite and of unit length. With
// orthoTol > 0 it also requires the approach matrix R to satisfy
// RᵀR = I and det R > 0 within orthoTol.
func (f Frame) Check(orthoTol float64) error {
	for _, ax := range []struct {
		name string
		v    r3.Vector
	}{{"x", f.X}, {"y", f.Y}, {"z", f.Z}} {
		if !finite(ax.v) {
			return fmt.Errorf("%s axis %v not finite: %w", ax.name, ax.v, ErrDegenerateFrame)
		}
		if n := ax.v.Norm(); !(math.Abs(n-1) <= unitTol) {
			return fmt.Errorf("%s axis length %g: %w", ax.name, n, ErrDegenerateFrame)
		}
	}
	if orthoTol <= 0 {
		return nil
	}

	m := f.Approach()
	r := mat.NewDense(3, 3, m[:])
	var rtr mat.Dense
	rtr.Mul(r.T(), r)
	if !mat.EqualApprox(&rtr, mat.NewDiagDense(3, []float64{1, 1, 1}), orthoTol) {
		return fmt.Errorf("axes not orthogonal within %g: %w", orthoTol, ErrDegenerateFrame)
	}
	if d := m.Det(); d <= 0 {
		return fmt.Errorf("left-handed frame (det %g): %w", d, ErrDegenerateFrame)
	}
	return nil
}

func finite(v r3.Vector) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
