package preview

import (
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/golang/geo/r3"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/Moult/stone-drone-robots/internal/pose"
)

// Render projects the samples' rails, midline and frame axes onto the
// chosen view plane, fitted to their bounding box, and labels sample
// indices. Lines are drawn at Size·Supersample and downsampled.
func Render(samples []pose.Sample, opts Options) *image.NRGBA {
	opts = opts.withDefaults()
	if len(samples) == 0 {
		return image.NewNRGBA(image.Rect(0, 0, opts.Size, opts.Size))
	}

	tick := opts.TickLength
	if tick <= 0 {
		tick = 0.25 * railSpacing(samples)
	}

	// Collect every point that will be drawn so the fit includes the ticks.
	var pts []r3.Vector
	for _, s := range samples {
		pts = append(pts, s.RailA, s.RailB, s.Midpoint)
		for _, ax := range [3]r3.Vector{s.Frame.X, s.Frame.Y, s.Frame.Z} {
			pts = append(pts, s.Midpoint.Add(ax.Mul(tick)))
		}
	}

	renderSize := opts.Size * opts.Supersample
	margin := 16 * opts.Supersample
	proj := fit(pts, opts.View, renderSize, margin)

	canvas := image.NewRGBA(image.Rect(0, 0, renderSize, renderSize))
	width := 1.5 * float32(opts.Supersample)

	pen := newPen(renderSize, width)
	for i := 1; i < len(samples); i++ {
		pen.segment(proj(samples[i-1].RailA), proj(samples[i].RailA))
		pen.segment(proj(samples[i-1].RailB), proj(samples[i].RailB))
	}
	for _, s := range samples {
		pen.segment(proj(s.RailA), proj(s.RailB))
	}
	pen.draw(canvas, railColor)

	for i := 1; i < len(samples); i++ {
		pen.segment(proj(samples[i-1].Midpoint), proj(samples[i].Midpoint))
	}
	pen.draw(canvas, midlineColor)

	for k, pick := range [3]func(pose.Frame) r3.Vector{
		func(f pose.Frame) r3.Vector { return f.X },
		func(f pose.Frame) r3.Vector { return f.Y },
		func(f pose.Frame) r3.Vector { return f.Z },
	} {
		for _, s := range samples {
			pen.segment(proj(s.Midpoint), proj(s.Midpoint.Add(pick(s.Frame).Mul(tick))))
		}
		pen.draw(canvas, axisColors[k])
	}

	img := Downsample(canvas, opts.Size)
	ss := float32(opts.Supersample)
	labelSamples(img, samples, opts, func(p r3.Vector) point {
		q := proj(p)
		return point{q.X / ss, q.Y / ss}
	})
	return img
}

type point struct{ X, Y float32 }

type projection func(r3.Vector) point

// fit returns a projection that centres the bounding box of pts and scales
// its larger span into size minus margin on every side.
func fit(pts []r3.Vector, view View, size, margin int) projection {
	plane := func(p r3.Vector) (float64, float64) {
		switch view {
		case ViewFront:
			return p.X, p.Z
		case ViewSide:
			return p.Y, p.Z
		}
		return p.X, p.Y
	}

	minU, minV := math.Inf(1), math.Inf(1)
	maxU, maxV := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		u, v := plane(p)
		minU, maxU = math.Min(minU, u), math.Max(maxU, u)
		minV, maxV = math.Min(minV, v), math.Max(maxV, v)
	}

	cu, cv := (minU+maxU)/2, (minV+maxV)/2
	span := math.Max(maxU-minU, maxV-minV)
	if span < 0.001 {
		span = 0.001
	}
	scale := float64(size-2*margin) / span
	half := float64(size) / 2

	return func(p r3.Vector) point {
		u, v := plane(p)
		return point{float32(half + (u-cu)*scale), float32(half - (v-cv)*scale)}
	}
}

// pen accumulates thick line segments as quads and fills them in one pass.
type pen struct {
	z     *vector.Rasterizer
	size  int
	width float32
	dirty bool
}

func newPen(size int, width float32) *pen {
	return &pen{z: vector.NewRasterizer(size, size), size: size, width: width}
}

func (p *pen) segment(a, b point) {
	ax, ay, bx, by := a.X, a.Y, b.X, b.Y
	dx, dy := bx-ax, by-ay
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l == 0 {
		return
	}
	nx, ny := -dy/l*p.width/2, dx/l*p.width/2
	p.z.MoveTo(ax+nx, ay+ny)
	p.z.LineTo(bx+nx, by+ny)
	p.z.LineTo(bx-nx, by-ny)
	p.z.LineTo(ax-nx, ay-ny)
	p.z.ClosePath()
	p.dirty = true
}

func (p *pen) draw(dst *image.RGBA, c color.RGBA) {
	if p.dirty {
		p.z.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
	}
	p.z.Reset(p.size, p.size)
	p.dirty = false
}

func labelSamples(img *image.NRGBA, samples []pose.Sample, opts Options, proj projection) {
	every := opts.LabelEvery
	if every < 0 {
		return
	}
	if every == 0 {
		every = max(1, len(samples)/10)
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(labelColor),
		Face: basicfont.Face7x13,
	}
	for i := 0; i < len(samples); i += every {
		q := proj(samples[i].Midpoint)
		d.Dot = fixed.P(int(q.X)+3, int(q.Y)-3)
		d.DrawString(strconv.Itoa(samples[i].Index))
	}
}

func railSpacing(samples []pose.Sample) float64 {
	var sum float64
	for _, s := range samples {
		sum += s.RailB.Sub(s.RailA).Norm()
	}
	if sum == 0 {
		return 1
	}
	return sum / float64(len(samples))
}
