package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"
	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Moult/stone-drone-robots/internal/pose"
)

func arcSamples(n int) []pose.Sample {
	var out []pose.Sample
	for i := 0; i < n; i++ {
		a := r3.Vector{X: float64(i) * 10, Y: float64(i * i)}
		b := a.Add(r3.Vector{Y: 20})
		out = append(out, pose.Sample{
			Index:    i,
			RailA:    a,
			RailB:    b,
			Midpoint: a.Add(b).Mul(0.5),
			Frame:    pose.Frame{X: r3.Vector{X: 1}, Y: r3.Vector{Y: 1}, Z: r3.Vector{Z: -1}},
		})
	}
	return out
}

func opaquePixels(img *image.NRGBA) int {
	n := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] > 0 {
			n++
		}
	}
	return n
}

func TestRender(t *testing.T) {
	for _, view := range []View{ViewTop, ViewFront, ViewSide} {
		img := Render(arcSamples(8), Options{Size: 128, Supersample: 2, View: view})
		assert.Equal(t, image.Rect(0, 0, 128, 128), img.Bounds(), view)
		assert.Positive(t, opaquePixels(img), view)
	}
}

func TestRender_Empty(t *testing.T) {
	img := Render(nil, Options{Size: 32})
	assert.Equal(t, image.Rect(0, 0, 32, 32), img.Bounds())
	assert.Zero(t, opaquePixels(img))
}

func TestRender_Defaults(t *testing.T) {
	img := Render(arcSamples(3), Options{LabelEvery: -1})
	assert.Equal(t, DefaultOptions().Size, img.Bounds().Dx())
}

func TestParseView(t *testing.T) {
	v, err := ParseView("")
	require.NoError(t, err)
	assert.Equal(t, ViewTop, v)

	v, err = ParseView("Front")
	require.NoError(t, err)
	assert.Equal(t, ViewFront, v)

	_, err = ParseView("iso")
	assert.Error(t, err)
}

func TestDownsample(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i], src.Pix[i+3] = 255, 255
	}
	out := Downsample(src, 4)
	assert.Equal(t, image.Rect(0, 0, 4, 4), out.Bounds())
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, out.NRGBAAt(1, 2))

	// Half-transparent premultiplied red comes back full red.
	src = image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i], src.Pix[i+3] = 128, 128
	}
	out = Downsample(src, 2)
	assert.Equal(t, color.NRGBA{R: 255, A: 128}, out.NRGBAAt(0, 0))
}

func TestEncode(t *testing.T) {
	img := Render(arcSamples(4), Options{Size: 64, Supersample: 1})

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img, "png"))
	dec, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), dec.Bounds())

	buf.Reset()
	require.NoError(t, Encode(&buf, img, "tga"))
	dec, err = tga.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), dec.Bounds())

	buf.Reset()
	require.NoError(t, Encode(&buf, img, "webp"))
	require.Greater(t, buf.Len(), 12)
	assert.Equal(t, "RIFF", string(buf.Bytes()[:4]))
	assert.Equal(t, "WEBP", string(buf.Bytes()[8:12]))

	assert.ErrorIs(t, Encode(&buf, img, "gif"), ErrUnknownFormat)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	img := Render(arcSamples(4), Options{Size: 32, Supersample: 1})
	require.NoError(t, WriteFile(filepath.Join(dir, "p.PNG"), img))
	assert.ErrorIs(t, WriteFile(filepath.Join(dir, "p.bmp"), img), ErrUnknownFormat)
	assert.Equal(t, "webp", FormatFromPath("/a/b/Path.WebP"))
}
