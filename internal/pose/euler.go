package pose

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/Moult/stone-drone-robots/internal/mathutil"
)

// ExtractEuler converts the rotation with columns x, y, z into intrinsic
// X→Y→Z angles, rounded to whole degrees.
//
// When the Y angle rounds to ±90° only the sum (or difference) of the X and
// Z rotations is determined. Z then keeps prevZ, the Z angle of the
// previous sample, and X takes the remainder. Samples must therefore be
// converted in order.
func ExtractEuler(x, y, z r3.Vector, prevZ int) EulerAngles {
	r := mathutil.FromColumns(x, y, z)
	r11, r12, r13 := r.At(1, 1), r.At(1, 2), r.At(1, 3)
	r21, r22, r23 := r.At(2, 1), r.At(2, 2), r.At(2, 3)
	r33 := r.At(3, 3)

	ty := mathutil.RoundInt(mathutil.Rad2Deg(math.Atan2(r13, math.Sqrt(r11*r11+r12*r12))))

	if ty != 90 && ty != -90 {
		return EulerAngles{
			X: mathutil.RoundInt(mathutil.Rad2Deg(math.Atan2(-r23, r33))),
			Y: ty,
			Z: mathutil.RoundInt(mathutil.Rad2Deg(math.Atan2(-r12, r11))),
		}
	}

	coefficient := math.Sin(mathutil.Deg2Rad(float64(ty)))
	tx := (mathutil.Rad2Deg(math.Atan2(r21, r22)) - float64(prevZ)) / coefficient
	return EulerAngles{
		X: mathutil.RoundInt(tx),
		Y: ty,
		Z: prevZ,
	}
}
