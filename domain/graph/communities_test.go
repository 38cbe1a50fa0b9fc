package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two triangles joined by a single bridge edge
func twoCliqueGraph() *Graph {
	g := NewUndirected()
	g.AddEdge("a", "b", &EdgeAttrs{Weight: 1})
	g.AddEdge("b", "c", &EdgeAttrs{Weight: 1})
	g.AddEdge("c", "a", &EdgeAttrs{Weight: 1})
	g.AddEdge("x", "y", &EdgeAttrs{Weight: 1})
	g.AddEdge("y", "z", &EdgeAttrs{Weight: 1})
	g.AddEdge("z", "x", &EdgeAttrs{Weight: 1})
	g.AddEdge("c", "x", &EdgeAttrs{Weight: 1})
	return g
}

func TestDetectCommunitiesEmptyGraph(t *testing.T) {
	report := DetectCommunities(NewUndirected())

	assert.Equal(t, 0, report.NumCommunities)
	assert.Equal(t, 0.0, report.Modularity)
	require.NotNil(t, report.Communities)
	assert.Empty(t, report.Communities)
}

func TestDetectCommunitiesEdgelessGraph(t *testing.T) {
	g := NewUndirected()
	g.AddNode("a", nil)
	g.AddNode("b", nil)

	report := DetectCommunities(g)
	assert.Equal(t, 0, report.NumCommunities)
	assert.Empty(t, report.Communities)
}

func TestDetectCommunitiesTwoCliques(t *testing.T) {
	report := DetectCommunities(twoCliqueGraph())

	require.Equal(t, 2, report.NumCommunities)
	require.Len(t, report.Communities, 2)

	var all [][]string
	for i, c := range report.Communities {
		assert.Equal(t, i, c.ID)
		assert.Equal(t, len(c.Nodes), c.Size)
		all = append(all, c.Nodes)
	}

	// Members sorted ascending within each community
	assert.ElementsMatch(t, [][]string{
		{"a", "b", "c"},
		{"x", "y", "z"},
	}, all)

	assert.Greater(t, report.Modularity, 0.0)
}

func TestDetectCommunitiesOrderedBySize(t *testing.T) {
	g := twoCliqueGraph()
	g.AddEdge("a", "d", &EdgeAttrs{Weight: 1})
	g.AddEdge("b", "d", &EdgeAttrs{Weight: 1})
	g.AddEdge("c", "d", &EdgeAttrs{Weight: 1})

	report := DetectCommunities(g)
	require.NotEmpty(t, report.Communities)
	for i := 1; i < len(report.Communities); i++ {
		assert.GreaterOrEqual(t,
			report.Communities[i-1].Size, report.Communities[i].Size)
	}
}

func TestDetectCommunitiesDeterministic(t *testing.T) {
	first := DetectCommunities(twoCliqueGraph())
	for i := 0; i < 5; i++ {
		again := DetectCommunities(twoCliqueGraph())
		assert.Equal(t, first, again)
	}
}

func TestModularityUsesEdgeWeights(t *testing.T) {
	light := twoCliqueGraph()

	heavy := twoCliqueGraph()
	heavy.EdgeAttrsOf("a", "b").Weight = 10
	heavy.EdgeAttrsOf("x", "y").Weight = 10

	lr := DetectCommunities(light)
	hr := DetectCommunities(heavy)
	assert.NotEqual(t, lr.Modularity, hr.Modularity)
}
