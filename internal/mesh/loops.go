package mesh

import "fmt"

// Validate checks that every edge joins two distinct, existing vertices.
func (m *Mesh) Validate() error {
	n := len(m.Vertices)
	for i, e := range m.Edges {
		if e[0] < 0 || e[0] >= n || e[1] < 0 || e[1] >= n {
			return fmt.Errorf("mesh: edge %d (%d-%d) with %d vertices: %w", i, e[0], e[1], n, ErrEdgeIndex)
		}
		if e[0] == e[1] {
			return fmt.Errorf("mesh: edge %d on vertex %d: %w", i, e[0], ErrSelfLoop)
		}
	}
	return nil
}

// Loops partitions the edge set into connected components.
// Components are ordered by their first edge in m.Edges, and edges keep
// their original relative order within a component. The mesh must be valid.
func (m *Mesh) Loops() [][]Edge {
	parent := make([]int, len(m.Vertices))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(v int) int {
		for parent[v] != v {
			parent[v] = parent[parent[v]]
			v = parent[v]
		}
		return v
	}
	for _, e := range m.Edges {
		a, b := find(e[0]), find(e[1])
		if a != b {
			parent[b] = a
		}
	}

	slot := make(map[int]int)
	var loops [][]Edge
	for _, e := range m.Edges {
		root := find(e[0])
		i, ok := slot[root]
		if !ok {
			i = len(loops)
			slot[root] = i
			loops = append(loops, nil)
		}
		loops[i] = append(loops[i], e)
	}
	return loops
}

// LoopOf returns the connected edge set containing vertex v.
func (m *Mesh) LoopOf(v int) ([]Edge, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if v < 0 || v >= len(m.Vertices) {
		return nil, fmt.Errorf("mesh: vertex %d of %d: %w", v, len(m.Vertices), ErrVertexIndex)
	}
	for _, loop := range m.Loops() {
		for _, e := range loop {
			if e.Touches(v) {
				return loop, nil
			}
		}
	}
	return nil, fmt.Errorf("mesh: vertex %d: %w", v, ErrNoEdges)
}

// FirstEdgeAt returns the first edge in edges touching v.
func FirstEdgeAt(v int, edges []Edge) (Edge, error) {
	for _, e := range edges {
		if e.Touches(v) {
			return e, nil
		}
	}
	return Edge{}, fmt.Errorf("mesh: vertex %d: %w", v, ErrNoEdges)
}

// Resolve looks up the vertices behind a list of indices.
func (m *Mesh) Resolve(ids []int) ([]Vertex, error) {
	out := make([]Vertex, len(ids))
	for i, id := range ids {
		if id < 0 || id >= len(m.Vertices) {
			return nil, fmt.Errorf("mesh: vertex %d of %d: %w", id, len(m.Vertices), ErrVertexIndex)
		}
		out[i] = m.Vertices[id]
	}
	return out, nil
}
