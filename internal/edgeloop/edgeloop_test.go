package edgeloop

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Moult/stone-drone-robots/internal/mesh"
)

// ribbon builds two straight rails of n vertices each. Rail A holds
// vertices 0..n-1, rail B holds n..2n-1. Edges are listed out of order to
// make the walk do the sorting.
func ribbon(n int) *mesh.Mesh {
	m := &mesh.Mesh{}
	for rail := 0; rail < 2; rail++ {
		for i := 0; i < n; i++ {
			m.Vertices = append(m.Vertices, mesh.Vertex{
				Position: r3.Vector{X: float64(i), Y: float64(rail)},
				Normal:   r3.Vector{Z: 1},
			})
		}
	}
	for rail := 0; rail < 2; rail++ {
		base := rail * n
		for i := n - 2; i >= 0; i-- {
			if i%2 == 0 {
				m.Edges = append(m.Edges, mesh.Edge{base + i, base + i + 1})
			} else {
				m.Edges = append(m.Edges, mesh.Edge{base + i + 1, base + i})
			}
		}
	}
	return m
}

func TestOrderLoop_OpenChain(t *testing.T) {
	edges := []mesh.Edge{{2, 3}, {1, 0}, {3, 4}, {1, 2}}
	before := append([]mesh.Edge(nil), edges...)

	loop, err := OrderLoop(0, mesh.Edge{1, 0}, edges)
	require.NoError(t, err)
	assert.Equal(t, OrderedLoop{0, 1, 2, 3, 4}, loop)
	assert.False(t, loop.Closed())
	assert.Equal(t, before, edges, "caller's edge set must not be consumed")
}

func TestOrderLoop_FromOtherEnd(t *testing.T) {
	edges := []mesh.Edge{{2, 3}, {1, 0}, {3, 4}, {1, 2}}
	loop, err := OrderLoop(4, mesh.Edge{3, 4}, edges)
	require.NoError(t, err)
	assert.Equal(t, OrderedLoop{4, 3, 2, 1, 0}, loop)
}

func TestOrderLoop_ClosedLoopFollowsStartEdge(t *testing.T) {
	edges := []mesh.Edge{{0, 1}, {1, 2}, {2, 3}, {3, 0}}

	loop, err := OrderLoop(0, mesh.Edge{0, 3}, edges)
	require.NoError(t, err)
	assert.Equal(t, OrderedLoop{0, 3, 2, 1, 0}, loop)
	assert.True(t, loop.Closed())

	loop, err = OrderLoop(0, mesh.Edge{0, 1}, edges)
	require.NoError(t, err)
	assert.Equal(t, OrderedLoop{0, 1, 2, 3, 0}, loop)
}

func TestOrderLoop_Disconnected(t *testing.T) {
	// Gap between 2 and 3.
	edges := []mesh.Edge{{0, 1}, {1, 2}, {3, 4}}
	loop, err := OrderLoop(0, mesh.Edge{0, 1}, edges)
	assert.ErrorIs(t, err, ErrDisconnectedLoop)
	assert.Nil(t, loop, "no truncated sequence on failure")

	// Starting mid-chain strands the other half.
	_, err = OrderLoop(1, mesh.Edge{1, 2}, []mesh.Edge{{0, 1}, {1, 2}, {2, 3}})
	assert.ErrorIs(t, err, ErrDisconnectedLoop)

	_, err = OrderLoop(0, mesh.Edge{0, 9}, edges)
	assert.ErrorIs(t, err, ErrDisconnectedLoop)
}

func TestOrderLoop_Branched(t *testing.T) {
	// 0-1-2-3-1: the walk comes back to 1 with edge 1-4 still unused.
	edges := []mesh.Edge{{0, 1}, {1, 2}, {2, 3}, {3, 1}, {1, 4}}
	_, err := OrderLoop(0, mesh.Edge{0, 1}, edges)
	assert.ErrorIs(t, err, ErrBranchedLoop)
}

func TestOrderLoop_StartNotOnEdge(t *testing.T) {
	_, err := OrderLoop(5, mesh.Edge{0, 1}, []mesh.Edge{{0, 1}})
	assert.ErrorIs(t, err, ErrStartNotOnEdge)
}

func TestOrderLoop_SingleEdge(t *testing.T) {
	loop, err := OrderLoop(7, mesh.Edge{7, 8}, []mesh.Edge{{7, 8}})
	require.NoError(t, err)
	assert.Equal(t, OrderedLoop{7, 8}, loop)
}

func TestPair(t *testing.T) {
	m := ribbon(4)

	pair, err := Pair(m, Start{Vertex: 0}, Start{Vertex: 4})
	require.NoError(t, err)
	require.Len(t, pair.A, 4)
	require.Len(t, pair.B, 4)
	for i := range pair.A {
		assert.Equal(t, float64(i), pair.A[i].Position.X)
		assert.Equal(t, 0.0, pair.A[i].Position.Y)
		assert.Equal(t, float64(i), pair.B[i].Position.X)
		assert.Equal(t, 1.0, pair.B[i].Position.Y)
	}
}

func TestPair_ExplicitStartEdge(t *testing.T) {
	m := ribbon(3)
	// Start both rails from their far end.
	ea, eb := mesh.Edge{2, 1}, mesh.Edge{5, 4}

	pair, err := Pair(m, Start{Vertex: 2, Edge: &ea}, Start{Vertex: 5, Edge: &eb})
	require.NoError(t, err)
	assert.Equal(t, 2.0, pair.A[0].Position.X)
	assert.Equal(t, 0.0, pair.A[2].Position.X)
	assert.Equal(t, 0.0, pair.B[2].Position.X)
}

func TestPair_DoesNotCheckLengths(t *testing.T) {
	m := ribbon(3)
	// Drop the 3-4 edge of rail B, leaving 4-5.
	m.Edges = m.Edges[:len(m.Edges)-1]

	pair, err := Pair(m, Start{Vertex: 0}, Start{Vertex: 4})
	require.NoError(t, err)
	assert.Len(t, pair.A, 3)
	assert.Len(t, pair.B, 2)
}

func TestPair_Errors(t *testing.T) {
	m := ribbon(3)
	_, err := Pair(m, Start{Vertex: 0}, Start{Vertex: 99})
	assert.ErrorIs(t, err, mesh.ErrVertexIndex)

	// Vertex 1 sits mid-rail: walking away from the first edge strands the rest.
	_, err = Pair(m, Start{Vertex: 1}, Start{Vertex: 3})
	assert.ErrorIs(t, err, ErrDisconnectedLoop)
}
