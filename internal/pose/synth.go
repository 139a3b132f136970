// Package pose turns a pair of index-aligned rails into controller poses.
package pose

import (
	"fmt"

	"github.com/golang/geo/r3"

	"github.com/Moult/stone-drone-robots/internal/edgeloop"
	"github.com/Moult/stone-drone-robots/internal/mathutil"
)

// Options tunes pose synthesis.
type Options struct {
	// LateralAxis, when set, is used verbatim as every sample's X axis
	// instead of Y × normal.
	LateralAxis *r3.Vector

	// UnitScale multiplies scene coordinates into millimetres. Zero means 1.
	UnitScale float64

	// OrthoTolerance enables the orthonormality check on frames derived
	// from vertex normals. Zero, or a LateralAxis override, only checks that
	// axes are finite and of unit length.
	OrthoTolerance float64
}

// Synthesize returns one pose per rung except the last: N-1 poses for
// rails of N vertices.
func Synthesize(pair edgeloop.LoopPair, opts Options) ([]Pose, error) {
	samples, err := Trace(pair, opts)
	if err != nil {
		return nil, err
	}
	poses := make([]Pose, len(samples))
	for i, s := range samples {
		poses[i] = s.Pose
	}
	return poses, nil
}

// Trace is Synthesize with every intermediate value kept.
func Trace(pair edgeloop.LoopPair, opts Options) ([]Sample, error) {
	if len(pair.A) != len(pair.B) {
		return nil, fmt.Errorf("pose: rail A has %d vertices, rail B has %d: %w", len(pair.A), len(pair.B), ErrLengthMismatch)
	}
	n := len(pair.A)
	if n < 2 {
		return nil, fmt.Errorf("pose: %d vertices: %w", n, ErrTooFewVertices)
	}

	scale := opts.UnitScale
	if scale == 0 {
		scale = 1
	}

	orthoTol := opts.OrthoTolerance
	if opts.LateralAxis != nil {
		orthoTol = 0
	}

	samples := make([]Sample, 0, n-1)
	prevZ := -SeedPose.C
	for i := 0; i < n-1; i++ {
		a, b := pair.A[i], pair.B[i]

		mid := a.Position.Add(b.Position).Mul(0.5)
		y := b.Position.Sub(a.Position).Normalize()
		var x r3.Vector
		if opts.LateralAxis != nil {
			x = *opts.LateralAxis
		} else {
			x = y.Cross(a.Normal).Normalize()
		}
		z := y.Cross(x).Normalize()

		frame := Frame{X: x, Y: y, Z: z}
		if err := frame.Check(orthoTol); err != nil {
			return nil, fmt.Errorf("pose: sample %d: %w", i, err)
		}

		angles := ExtractEuler(x, y, z.Mul(-1), prevZ)
		prevZ = angles.Z

		samples = append(samples, Sample{
			Index:    i,
			RailA:    a.Position,
			RailB:    b.Position,
			Midpoint: mid,
			Frame:    frame,
			Angles:   angles,
			Pose:     controllerPose(mid.Mul(scale), angles),
		})
	}
	return samples, nil
}

// controllerPose maps a scene point and frame angles into the controller's
// convention. The controller's C axis turns opposite to the right-hand rule.
func controllerPose(p r3.Vector, e EulerAngles) Pose {
	c := mathutil.SceneToController.MulVec(p)
	return Pose{
		X: mathutil.RoundInt(c.X),
		Y: mathutil.RoundInt(c.Y),
		Z: mathutil.RoundInt(c.Z),
		A: e.X,
		B: e.Y,
		C: -e.Z,
	}
}
