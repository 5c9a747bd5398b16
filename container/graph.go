package container

import (
	"fmt"
	"sort"
	"strings"
)

// CycleError reports a cycle in the manifest's startup ordering edges.
// These edges must be acyclic; circular field references belong in
// injectors, where the registry resolves them through early references.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("startup dependency cycle: %s", strings.Join(e.Cycle, " -> "))
}

// PlanStartOrder validates a manifest and returns the creation order a
// container would use, considering only the manifest's dependsOn edges.
// Constructor deps declared on definitions are added when an actual
// container is built; tooling that has no factories uses this.
func PlanStartOrder(m *Manifest) ([]string, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	graph := manifestGraph(m)
	return graph.topoOrder()
}

// manifestGraph builds the startup graph from a validated manifest.
func manifestGraph(m *Manifest) *depGraph {
	graph := newDepGraph()
	for i := range m.Beans {
		spec := &m.Beans[i]
		graph.addNode(spec.Name)
		for _, dep := range spec.DependsOn {
			graph.addEdge(spec.Name, dep)
		}
	}
	return graph
}

// depGraph holds the startup ordering edges between bean names, using
// adjacency lists in both directions.
type depGraph struct {
	nodes      map[string]bool
	downstream map[string][]string
	upstream   map[string][]string
}

func newDepGraph() *depGraph {
	return &depGraph{
		nodes:      make(map[string]bool),
		downstream: make(map[string][]string),
		upstream:   make(map[string][]string),
	}
}

func (g *depGraph) addNode(name string) {
	g.nodes[name] = true
}

// addEdge records that dependent must start after dependency.
func (g *depGraph) addEdge(dependent, dependency string) {
	g.addNode(dependent)
	g.addNode(dependency)
	g.downstream[dependency] = appendUnique(g.downstream[dependency], dependent)
	g.upstream[dependent] = appendUnique(g.upstream[dependent], dependency)
}

// topoOrder returns the bean names in a creation-safe order:
// dependencies before dependents. Ties break alphabetically so the order
// is deterministic. Returns a CycleError if the edges are cyclic.
func (g *depGraph) topoOrder() ([]string, error) {
	indegree := make(map[string]int, len(g.nodes))
	for name := range g.nodes {
		indegree[name] = len(g.upstream[name])
	}

	ready := make([]string, 0, len(g.nodes))
	for name, deg := range indegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		current := ready[0]
		ready = ready[1:]
		order = append(order, current)

		released := make([]string, 0, len(g.downstream[current]))
		for _, dep := range g.downstream[current] {
			indegree[dep]--
			if indegree[dep] == 0 {
				released = append(released, dep)
			}
		}
		sort.Strings(released)
		ready = append(ready, released...)
	}

	if len(order) != len(g.nodes) {
		return nil, &CycleError{Cycle: g.findCycle()}
	}
	return order, nil
}

// findCycle walks upstream edges iteratively until a name repeats,
// returning the closed cycle for error reporting.
func (g *depGraph) findCycle() []string {
	// Any node still carrying an upstream edge inside a cycle will loop.
	remaining := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		remaining = append(remaining, name)
	}
	sort.Strings(remaining)

	for _, start := range remaining {
		path := []string{start}
		index := map[string]int{start: 0}
		current := start

		for {
			ups := g.upstream[current]
			if len(ups) == 0 {
				break
			}
			next := ups[0]
			if at, seen := index[next]; seen {
				cycle := append([]string{}, path[at:]...)
				return append(cycle, next)
			}
			index[next] = len(path)
			path = append(path, next)
			current = next
		}
	}
	return nil
}

// dependenciesOf returns the direct upstream names of a bean.
func (g *depGraph) dependenciesOf(name string) []string {
	deps := make([]string, len(g.upstream[name]))
	copy(deps, g.upstream[name])
	sort.Strings(deps)
	return deps
}

// dependentsOf returns every bean that transitively depends on name,
// using an explicit stack instead of recursion.
func (g *depGraph) dependentsOf(name string) []string {
	stack := []string{name}
	visited := map[string]bool{}
	var out []string

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[current] {
			continue
		}
		visited[current] = true
		if current != name {
			out = append(out, current)
		}
		stack = append(stack, g.downstream[current]...)
	}

	sort.Strings(out)
	return out
}

func appendUnique(slice []string, item string) []string {
	for _, existing := range slice {
		if existing == item {
			return slice
		}
	}
	return append(slice, item)
}
