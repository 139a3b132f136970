package cad

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"

	"github.com/Moult/stone-drone-robots/internal/pose"
)

// Layers written by WritePathDXF.
const (
	LayerRailA   = "RAIL_A"
	LayerRailB   = "RAIL_B"
	LayerMidline = "MIDLINE"
	LayerAxisX   = "AXIS_X"
	LayerAxisY   = "AXIS_Y"
	LayerAxisZ   = "AXIS_Z"
)

// WritePathDXF draws the rails, the tool midline and each sample's frame
// axes into a new drawing at path. Axis ticks are tick units long; zero
// picks a quarter of the mean rail spacing.
func WritePathDXF(path string, samples []pose.Sample, tick float64) error {
	if len(samples) == 0 {
		return fmt.Errorf("cad: write %s: no samples", path)
	}
	if tick <= 0 {
		tick = 0.25 * meanSpacing(samples)
	}

	d := dxf.NewDrawing()
	d.Header().LtScale = 1.0

	polyline := func(layer string, pick func(pose.Sample) r3.Vector) error {
		if err := d.ChangeLayer(layer); err != nil {
			return err
		}
		for i := 1; i < len(samples); i++ {
			a, b := pick(samples[i-1]), pick(samples[i])
			if _, err := d.Line(a.X, a.Y, a.Z, b.X, b.Y, b.Z); err != nil {
				return err
			}
		}
		return nil
	}
	ticks := func(layer string, pick func(pose.Frame) r3.Vector) error {
		if err := d.ChangeLayer(layer); err != nil {
			return err
		}
		for _, s := range samples {
			a := s.Midpoint
			b := a.Add(pick(s.Frame).Mul(tick))
			if _, err := d.Line(a.X, a.Y, a.Z, b.X, b.Y, b.Z); err != nil {
				return err
			}
		}
		return nil
	}

	for _, l := range []struct {
		name string
		cl   color.ColorNumber
	}{
		{LayerRailA, color.White},
		{LayerRailB, color.White},
		{LayerMidline, color.Yellow},
		{LayerAxisX, color.Red},
		{LayerAxisY, color.Green},
		{LayerAxisZ, color.Blue},
	} {
		if _, err := d.AddLayer(l.name, l.cl, dxf.DefaultLineType, false); err != nil {
			return fmt.Errorf("cad: layer %s: %w", l.name, err)
		}
	}

	steps := []func() error{
		func() error { return polyline(LayerRailA, func(s pose.Sample) r3.Vector { return s.RailA }) },
		func() error { return polyline(LayerRailB, func(s pose.Sample) r3.Vector { return s.RailB }) },
		func() error { return polyline(LayerMidline, func(s pose.Sample) r3.Vector { return s.Midpoint }) },
		func() error { return ticks(LayerAxisX, func(f pose.Frame) r3.Vector { return f.X }) },
		func() error { return ticks(LayerAxisY, func(f pose.Frame) r3.Vector { return f.Y }) },
		func() error { return ticks(LayerAxisZ, func(f pose.Frame) r3.Vector { return f.Z }) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return fmt.Errorf("cad: draw %s: %w", path, err)
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("cad: save %s: %w", path, err)
	}
	return nil
}

func meanSpacing(samples []pose.Sample) float64 {
	var sum float64
	for _, s := range samples {
		sum += s.RailB.Sub(s.RailA).Norm()
	}
	mean := sum / float64(len(samples))
	if mean == 0 {
		return 1
	}
	return mean
}
