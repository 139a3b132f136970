package main

import (
	"fmt"
	"math"
	"os"

	"github.com/golang/geo/r3"
	"github.com/spf13/pflag"

	"github.com/Moult/stone-drone-robots/internal/edgeloop"
	"github.com/Moult/stone-drone-robots/internal/krl"
	"github.com/Moult/stone-drone-robots/internal/mesh"
)

func main() {
	krlMode := pflag.Bool("krl", false, "Arguments are KRL programs: summarise their LIN poses")
	verbose := pflag.BoolP("verbose", "v", false, "Print every vertex")
	pflag.Parse()

	status := 0
	for _, arg := range pflag.Args() {
		var err error
		if *krlMode {
			err = inspectProgram(arg)
		} else {
			err = inspectMesh(arg, *verbose)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", arg, err)
			status = 1
		}
	}
	os.Exit(status)
}

func inspectMesh(path string, verbose bool) error {
	m, err := mesh.ReadPLY(path)
	if err != nil {
		return err
	}
	fmt.Printf("\n=== %s (vertices=%d edges=%d) ===\n", path, len(m.Vertices), len(m.Edges))

	lo := r3.Vector{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := r3.Vector{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for i, v := range m.Vertices {
		p := v.Position
		lo = r3.Vector{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = r3.Vector{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
		if verbose {
			fmt.Printf("  v[%d] pos=(%.3f, %.3f, %.3f) n=(%.3f, %.3f, %.3f) |n|=%.4f\n",
				i, p.X, p.Y, p.Z, v.Normal.X, v.Normal.Y, v.Normal.Z, v.Normal.Norm())
		}
	}
	if len(m.Vertices) > 0 {
		fmt.Printf("  bounds x=[%.3f..%.3f] y=[%.3f..%.3f] z=[%.3f..%.3f]\n", lo.X, hi.X, lo.Y, hi.Y, lo.Z, hi.Z)
	}

	for i, edges := range m.Loops() {
		start := endpoint(edges)
		first, err := mesh.FirstEdgeAt(start, edges)
		if err != nil {
			return err
		}
		loop, err := edgeloop.OrderLoop(start, first, edges)
		if err != nil {
			fmt.Printf("  loop[%d] edges=%d start=%d: %v\n", i, len(edges), start, err)
			continue
		}
		kind := "open"
		if loop.Closed() {
			kind = "closed"
		}
		fmt.Printf("  loop[%d] %s vertices=%d %d..%d\n", i, kind, len(loop), loop[0], loop[len(loop)-1])
	}
	return nil
}

// endpoint returns a degree-1 vertex of the component, or the first
// edge's first vertex when there is none.
func endpoint(edges []mesh.Edge) int {
	degree := map[int]int{}
	for _, e := range edges {
		degree[e[0]]++
		degree[e[1]]++
	}
	for _, e := range edges {
		for _, v := range e {
			if degree[v] == 1 {
				return v
			}
		}
	}
	return edges[0][0]
}

func inspectProgram(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	poses, err := krl.ReadPoses(f)
	if err != nil {
		return err
	}
	fmt.Printf("\n=== %s (LIN=%d) ===\n", path, len(poses))
	if len(poses) == 0 {
		return nil
	}

	lo, hi := poses[0], poses[0]
	singular := 0
	for _, p := range poses {
		lo.X, hi.X = min(lo.X, p.X), max(hi.X, p.X)
		lo.Y, hi.Y = min(lo.Y, p.Y), max(hi.Y, p.Y)
		lo.Z, hi.Z = min(lo.Z, p.Z), max(hi.Z, p.Z)
		if p.B == 90 || p.B == -90 {
			singular++
		}
	}
	fmt.Printf("  X=[%d..%d] Y=[%d..%d] Z=[%d..%d] mm\n", lo.X, hi.X, lo.Y, hi.Y, lo.Z, hi.Z)
	fmt.Printf("  first: %v\n  last:  %v\n", poses[0], poses[len(poses)-1])
	if singular > 0 {
		fmt.Printf("  gimbal-locked poses (B=±90): %d\n", singular)
	}
	return nil
}
