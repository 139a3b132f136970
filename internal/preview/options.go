// Package preview draws traced tool paths as small raster images.
package preview

import (
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"strings"
)

// ErrUnknownFormat is returned for image formats Encode cannot write.
var ErrUnknownFormat = errors.New("unknown image format")

// View names the plane the path is projected onto.
type View string

const (
	ViewTop   View = "top"   // scene X right, Y up
	ViewFront View = "front" // scene X right, Z up
	ViewSide  View = "side"  // scene Y right, Z up
)

// ParseView accepts "top", "front" or "side". Empty means top.
func ParseView(s string) (View, error) {
	switch v := View(strings.ToLower(s)); v {
	case "":
		return ViewTop, nil
	case ViewTop, ViewFront, ViewSide:
		return v, nil
	}
	return "", fmt.Errorf("preview: unknown view %q", s)
}

// Options controls Render.
type Options struct {
	Size        int  // output edge length in pixels
	Supersample int  // render scale before downsampling
	View        View // projection plane
	LabelEvery  int  // label every n-th sample; 0 picks about ten labels, <0 disables
	TickLength  float64
}

// DefaultOptions mirrors the config defaults.
func DefaultOptions() Options {
	return Options{Size: 512, Supersample: 4, View: ViewTop}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Size <= 0 {
		o.Size = d.Size
	}
	if o.Supersample <= 0 {
		o.Supersample = 1
	}
	if o.View == "" {
		o.View = d.View
	}
	return o
}

var (
	railColor    = color.RGBA{150, 150, 160, 255}
	midlineColor = color.RGBA{240, 200, 40, 255}
	axisColors   = [3]color.RGBA{{220, 50, 50, 255}, {50, 190, 70, 255}, {60, 110, 230, 255}}
	labelColor   = color.RGBA{235, 235, 235, 255}
)

// FormatFromPath returns the lower-case extension of path without its dot.
func FormatFromPath(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}
