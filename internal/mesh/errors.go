package mesh

import "errors"

var (
	// ErrMissingNormals is returned when a vertex element carries no nx/ny/nz properties.
	ErrMissingNormals = errors.New("vertex normals missing")

	// ErrEdgeIndex is returned when an edge references a vertex that does not exist.
	ErrEdgeIndex = errors.New("edge references unknown vertex")

	// ErrSelfLoop is returned when an edge joins a vertex to itself.
	ErrSelfLoop = errors.New("edge joins a vertex to itself")

	// ErrVertexIndex is returned when a vertex index is out of range.
	ErrVertexIndex = errors.New("vertex index out of range")

	// ErrNoEdges is returned when a vertex has no incident edge.
	ErrNoEdges = errors.New("vertex has no incident edge")
)
