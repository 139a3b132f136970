package pose

import (
	"errors"
	"fmt"

	"github.com/golang/geo/r3"
)

var (
	// ErrLengthMismatch is returned when the two rails hold different vertex counts.
	ErrLengthMismatch = errors.New("rails differ in length")

	// ErrTooFewVertices is returned when the rails hold fewer than two vertices.
	ErrTooFewVertices = errors.New("rails need at least two vertices")

	// ErrDegenerateFrame is returned when a sample's frame is not a finite,
	// right-handed orthonormal basis.
	ErrDegenerateFrame = errors.New("degenerate frame")
)

// EulerAngles holds intrinsic X→Y→Z rotations in whole degrees.
type EulerAngles struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Singular reports whether the middle rotation sits at gimbal lock.
func (e EulerAngles) Singular() bool {
	return e.Y == 90 || e.Y == -90
}

// Pose is one controller target: position in millimetres, angles in degrees.
type Pose struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
	A int `json:"a"`
	B int `json:"b"`
	C int `json:"c"`
}

func (p Pose) String() string {
	return fmt.Sprintf("X %d, Y %d, Z %d, A %d, B %d, C %d", p.X, p.Y, p.Z, p.A, p.B, p.C)
}

// SeedPose primes the gimbal-lock carry-over for the first sample. It is
// never emitted.
var SeedPose = Pose{X: 0, Y: 500, Z: 500}

// Sample records everything computed for one rung of the ribbon.
type Sample struct {
	Index    int         `json:"index"`
	RailA    r3.Vector   `json:"rail_a"`
	RailB    r3.Vector   `json:"rail_b"`
	Midpoint r3.Vector   `json:"midpoint"`
	Frame    Frame       `json:"frame"`
	Angles   EulerAngles `json:"angles"`
	Pose     Pose        `json:"pose"`
}
