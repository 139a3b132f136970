package mathutil

// Precomputed frame conversions between the modelling scene and the robot controller.
var (
	// SceneToController maps scene coordinates into the controller's base
	// frame: (x, y, z) → (-z, y, x). This is Ry(-90°) written out exactly so
	// that half-unit coordinates round the same way before and after.
	SceneToController = Mat3{
		0, 0, -1,
		0, 1, 0,
		1, 0, 0,
	}
)
