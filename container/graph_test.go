package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopoOrderDependenciesFirst(t *testing.T) {
	g := newDepGraph()
	g.addEdge("store", "config")
	g.addEdge("reporter", "store")
	g.addEdge("reporter", "config")
	g.addNode("standalone")

	order, err := g.topoOrder()
	require.NoError(t, err)
	require.Len(t, order, 4)

	pos := make(map[string]int, len(order))
	for i, name := range order {
		pos[name] = i
	}
	assert.Less(t, pos["config"], pos["store"])
	assert.Less(t, pos["store"], pos["reporter"])
}

func TestTopoOrderDeterministic(t *testing.T) {
	build := func() []string {
		g := newDepGraph()
		for _, name := range []string{"c", "a", "b"} {
			g.addNode(name)
		}
		order, err := g.topoOrder()
		require.NoError(t, err)
		return order
	}

	assert.Equal(t, []string{"a", "b", "c"}, build())
	assert.Equal(t, build(), build())
}

func TestTopoOrderDetectsCycle(t *testing.T) {
	g := newDepGraph()
	g.addEdge("b", "a")
	g.addEdge("c", "b")
	g.addEdge("a", "c")

	_, err := g.topoOrder()
	require.Error(t, err)

	var cyc *CycleError
	require.ErrorAs(t, err, &cyc)
	assert.Len(t, cyc.Cycle, 4)
	assert.Equal(t, cyc.Cycle[0], cyc.Cycle[len(cyc.Cycle)-1])
}

func TestDependentsOfTransitive(t *testing.T) {
	g := newDepGraph()
	g.addEdge("store", "config")
	g.addEdge("reporter", "store")
	g.addEdge("api", "store")

	assert.Equal(t, []string{"api", "reporter", "store"}, g.dependentsOf("config"))
	assert.Equal(t, []string{"config"}, g.dependenciesOf("store"))
	assert.Empty(t, g.dependentsOf("reporter"))
}
