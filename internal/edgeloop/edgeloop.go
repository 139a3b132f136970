// Package edgeloop walks the two rails of a wire surface into ordered,
// index-aligned vertex sequences.
package edgeloop

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Moult/stone-drone-robots/internal/mesh"
)

var (
	// ErrDisconnectedLoop is returned when no remaining edge touches the
	// current tail of the walk.
	ErrDisconnectedLoop = errors.New("loop is not a single connected chain")

	// ErrBranchedLoop is returned when the walk reaches a vertex it has
	// already visited before the edge set is exhausted.
	ErrBranchedLoop = errors.New("loop revisits a vertex")

	// ErrStartNotOnEdge is returned when the start vertex is not an endpoint of the start edge.
	ErrStartNotOnEdge = errors.New("start vertex is not on start edge")
)

// OrderedLoop lists vertex indices in walk order.
type OrderedLoop []int

// Closed reports whether the walk ended back on its start vertex.
func (l OrderedLoop) Closed() bool {
	return len(l) > 2 && l[0] == l[len(l)-1]
}

// Start selects where a rail walk begins. A nil Edge means the first
// loop edge touching Vertex.
type Start struct {
	Vertex int
	Edge   *mesh.Edge
}

// LoopPair holds the resolved vertices of both rails. Index i of A
// corresponds to index i of B.
type LoopPair struct {
	A []mesh.Vertex
	B []mesh.Vertex
}

// OrderLoop walks edges from start, consuming startEdge first and then, at
// each step, the first remaining edge incident to the tail. The walk ends
// when every edge is consumed. edges is not modified.
func OrderLoop(start int, startEdge mesh.Edge, edges []mesh.Edge) (OrderedLoop, error) {
	next, ok := startEdge.Other(start)
	if !ok {
		return nil, fmt.Errorf("edgeloop: vertex %d, edge %d-%d: %w", start, startEdge[0], startEdge[1], ErrStartNotOnEdge)
	}

	remaining := slices.Clone(edges)
	i := slices.IndexFunc(remaining, startEdge.Same)
	if i < 0 {
		return nil, fmt.Errorf("edgeloop: start edge %d-%d not in loop: %w", startEdge[0], startEdge[1], ErrDisconnectedLoop)
	}
	remaining = slices.Delete(remaining, i, i+1)

	ordered := make(OrderedLoop, 0, len(edges)+1)
	ordered = append(ordered, start, next)
	visited := map[int]bool{start: true, next: true}

	for len(remaining) > 0 {
		tail := ordered[len(ordered)-1]
		j := slices.IndexFunc(remaining, func(e mesh.Edge) bool { return e.Touches(tail) })
		if j < 0 {
			return nil, fmt.Errorf("edgeloop: no edge at vertex %d, %d edges left: %w", tail, len(remaining), ErrDisconnectedLoop)
		}
		v, _ := remaining[j].Other(tail)
		remaining = slices.Delete(remaining, j, j+1)

		// Only the final edge of a closed loop may come back to a visited vertex.
		if visited[v] && !(v == start && len(remaining) == 0) {
			return nil, fmt.Errorf("edgeloop: vertex %d reached twice: %w", v, ErrBranchedLoop)
		}
		visited[v] = true
		ordered = append(ordered, v)
	}

	return ordered, nil
}

// Walk orders the rail containing s.Vertex. The rail's edge set is the
// vertex's connected component in m.
func Walk(m *mesh.Mesh, s Start) (OrderedLoop, error) {
	edges, err := m.LoopOf(s.Vertex)
	if err != nil {
		return nil, fmt.Errorf("edgeloop: %w", err)
	}

	var startEdge mesh.Edge
	if s.Edge != nil {
		startEdge = *s.Edge
	} else if startEdge, err = mesh.FirstEdgeAt(s.Vertex, edges); err != nil {
		return nil, fmt.Errorf("edgeloop: %w", err)
	}
	return OrderLoop(s.Vertex, startEdge, edges)
}

// Pair walks both rails and resolves them to vertices. The two rails are
// not checked against each other; equal length is the synthesizer's
// precondition.
func Pair(m *mesh.Mesh, a, b Start) (LoopPair, error) {
	loopA, err := Walk(m, a)
	if err != nil {
		return LoopPair{}, fmt.Errorf("rail A: %w", err)
	}
	loopB, err := Walk(m, b)
	if err != nil {
		return LoopPair{}, fmt.Errorf("rail B: %w", err)
	}

	va, err := m.Resolve(loopA)
	if err != nil {
		return LoopPair{}, err
	}
	vb, err := m.Resolve(loopB)
	if err != nil {
		return LoopPair{}, err
	}
	return LoopPair{A: va, B: vb}, nil
}
