package preview

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample scales a premultiplied canvas to size×size with CatmullRom
// filtering and returns it unpremultiplied. Filtering premultiplied values
// keeps transparent edges from darkening.
func Downsample(img *image.RGBA, size int) *image.NRGBA {
	b := img.Bounds()
	dst := img
	if b.Dx() != size || b.Dy() != size {
		dst = image.NewRGBA(image.Rect(0, 0, size, size))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	}

	out := image.NewNRGBA(image.Rect(0, 0, size, size))
	db := dst.Bounds()
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			si := dst.PixOffset(db.Min.X+x, db.Min.Y+y)
			di := out.PixOffset(x, y)
			a := float64(dst.Pix[si+3])
			if a > 1 {
				inv := 255.0 / a
				out.Pix[di] = clamp8(float64(dst.Pix[si]) * inv)
				out.Pix[di+1] = clamp8(float64(dst.Pix[si+1]) * inv)
				out.Pix[di+2] = clamp8(float64(dst.Pix[si+2]) * inv)
			}
			out.Pix[di+3] = dst.Pix[si+3]
		}
	}
	return out
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
