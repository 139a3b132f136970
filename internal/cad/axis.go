// Package cad reads reference geometry from DXF drawings and writes traced
// paths back out for review in CAD.
package cad

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/rpaloschi/dxf-go/document"
	"github.com/rpaloschi/dxf-go/entities"
)

// DefaultLayer holds the reference axis when none is named.
const DefaultLayer = "Target"

// ReadAxisFile opens path and calls ReadAxisDXF.
func ReadAxisFile(path, layer string) (r3.Vector, error) {
	f, err := os.Open(path)
	if err != nil {
		return r3.Vector{}, fmt.Errorf("cad: open %s: %w", path, err)
	}
	defer f.Close()
	axis, err := ReadAxisDXF(f, layer)
	if err != nil {
		return r3.Vector{}, fmt.Errorf("%s: %w", path, err)
	}
	return axis, nil
}

// ReadAxisDXF returns the unit direction from the first to the second point
// of the first LINE, POLYLINE or LWPOLYLINE on layer. Layer names compare
// case-insensitively. An empty layer means DefaultLayer.
func ReadAxisDXF(r io.Reader, layer string) (r3.Vector, error) {
	if layer == "" {
		layer = DefaultLayer
	}
	doc, err := document.DxfDocumentFromStream(r)
	if err != nil {
		return r3.Vector{}, fmt.Errorf("cad: parse dxf: %w", err)
	}

	for _, entity := range doc.Entities.Entities {
		from, to, name, ok := firstSegment(entity)
		if !ok || !strings.EqualFold(name, layer) {
			continue
		}
		d := to.Sub(from)
		if d.Norm() == 0 {
			return r3.Vector{}, fmt.Errorf("cad: layer %q: %w", layer, ErrDegenerateReference)
		}
		return d.Normalize(), nil
	}
	return r3.Vector{}, fmt.Errorf("cad: layer %q: %w", layer, ErrNoReference)
}

// firstSegment extracts the first two points of a linear entity.
func firstSegment(entity any) (from, to r3.Vector, layer string, ok bool) {
	switch e := entity.(type) {
	case *entities.Line:
		return r3.Vector{X: e.Start.X, Y: e.Start.Y, Z: e.Start.Z},
			r3.Vector{X: e.End.X, Y: e.End.Y, Z: e.End.Z}, e.LayerName, true
	case *entities.Polyline:
		if len(e.Vertices) < 2 {
			return
		}
		a, b := e.Vertices[0].Location, e.Vertices[1].Location
		return r3.Vector{X: a.X, Y: a.Y, Z: a.Z}, r3.Vector{X: b.X, Y: b.Y, Z: b.Z}, e.LayerName, true
	case *entities.LWPolyline:
		if len(e.Points) < 2 {
			return
		}
		a, b := e.Points[0].Point, e.Points[1].Point
		return r3.Vector{X: a.X, Y: a.Y}, r3.Vector{X: b.X, Y: b.Y}, e.LayerName, true
	}
	return
}
