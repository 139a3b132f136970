package mesh

import "github.com/golang/geo/r3"

// Vertex holds a position and a unit surface normal.
type Vertex struct {
	Position r3.Vector `json:"position"`
	Normal   r3.Vector `json:"normal"`
}

// Edge is an unordered pair of vertex indices.
type Edge [2]int

// Touches reports whether v is one of the edge's endpoints.
func (e Edge) Touches(v int) bool {
	return e[0] == v || e[1] == v
}

// Other returns the endpoint opposite v. ok is false if v is not an endpoint.
func (e Edge) Other(v int) (other int, ok bool) {
	switch v {
	case e[0]:
		return e[1], true
	case e[1]:
		return e[0], true
	}
	return 0, false
}

// Same reports whether e and o join the same two vertices, in either order.
func (e Edge) Same(o Edge) bool {
	return e == o || (e[0] == o[1] && e[1] == o[0])
}

// Mesh holds the vertices and the rail edges of a wire surface.
type Mesh struct {
	Vertices []Vertex `json:"vertices"`
	Edges    []Edge   `json:"edges"`
}
