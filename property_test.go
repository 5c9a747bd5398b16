package beanpot

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type graphNode struct {
	id   int
	deps []*graphNode
}

// TestRandomAcyclicGraphResolves builds random acyclic dependency graphs
// and checks the core creation invariants hold: every constructor runs
// exactly once, repeated lookups return the identical instance, and
// teardown visits beans in reverse creation order.
func TestRandomAcyclicGraphResolves(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(t, "beans")

		deps := make([][]int, n)
		for i := 1; i < n; i++ {
			for j := 0; j < i; j++ {
				if rapid.Bool().Draw(t, fmt.Sprintf("edge_%d_%d", i, j)) {
					deps[i] = append(deps[i], j)
				}
			}
		}

		var created []string
		obs := &creationOrderObserver{BaseObserver: NewBaseObserver("order"), created: &created}
		registry := NewRegistry(WithObserver(obs))

		var destroyed []string
		counts := make([]int, n)
		defs := make([]*Definition, n)
		for i := 0; i < n; i++ {
			i := i
			defs[i] = NewDefinition(
				func(ctx *CreateCtx) (any, error) {
					counts[i]++
					ctx.OnDestroy(func() error {
						destroyed = append(destroyed, beanName(i))
						return nil
					})
					return &graphNode{id: i}, nil
				},
				WithInject(func(ctx *CreateCtx, instance any) error {
					node := instance.(*graphNode)
					for _, j := range deps[i] {
						dep, err := ctx.Resolve(beanName(j), defs[j])
						if err != nil {
							return err
						}
						node.deps = append(node.deps, dep.(*graphNode))
					}
					return nil
				}),
			)
		}

		instances := make([]any, n)
		for i := n - 1; i >= 0; i-- {
			v, err := registry.GetOrCreate(beanName(i), defs[i])
			require.NoError(t, err)
			instances[i] = v
		}

		for i := 0; i < n; i++ {
			assert.Equal(t, 1, counts[i], "constructor for %s", beanName(i))

			again, err := registry.GetOrCreate(beanName(i), defs[i])
			require.NoError(t, err)
			assert.Same(t, instances[i], again)

			node := instances[i].(*graphNode)
			require.Len(t, node.deps, len(deps[i]))
			for k, j := range deps[i] {
				assert.Same(t, instances[j], node.deps[k])
			}
		}

		require.NoError(t, registry.DestroyAll())

		require.Len(t, destroyed, n)
		for i, name := range destroyed {
			assert.Equal(t, created[len(created)-1-i], name)
		}
	})
}

// TestRandomFieldCycleResolves closes a random-length chain with a
// field-style back edge and checks the cycle resolves with the
// early-exposed instance keeping identity.
func TestRandomFieldCycleResolves(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 6).Draw(t, "chain")

		registry := NewRegistry()

		defs := make([]*Definition, n)
		for i := 0; i < n; i++ {
			i := i
			next := (i + 1) % n
			defs[i] = NewDefinition(
				func(ctx *CreateCtx) (any, error) {
					return &graphNode{id: i}, nil
				},
				WithInject(func(ctx *CreateCtx, instance any) error {
					dep, err := ctx.Resolve(beanName(next), defs[next])
					if err != nil {
						return err
					}
					instance.(*graphNode).deps = []*graphNode{dep.(*graphNode)}
					return nil
				}),
			)
		}

		start := rapid.IntRange(0, n-1).Draw(t, "start")
		got, err := registry.GetOrCreate(beanName(start), defs[start])
		require.NoError(t, err)

		// Walking the ring from any node comes back to the identical
		// finished instances.
		node := got.(*graphNode)
		for step := 0; step < n; step++ {
			require.Len(t, node.deps, 1)
			node = node.deps[0]
		}
		assert.Same(t, got, node)

		assert.Equal(t, n, registry.Len())
	})
}

// TestRandomConstructorCycleFailsFast verifies a ring of constructor
// edges of any length is rejected structurally.
func TestRandomConstructorCycleFailsFast(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 6).Draw(t, "ring")

		registry := NewRegistry()

		defs := make([]*Definition, n)
		for i := 0; i < n; i++ {
			i := i
			next := (i + 1) % n
			defs[i] = NewDefinition(func(ctx *CreateCtx) (any, error) {
				if _, err := ctx.Resolve(beanName(next), defs[next]); err != nil {
					return nil, err
				}
				return &graphNode{id: i}, nil
			})
		}

		_, err := registry.GetOrCreate(beanName(0), defs[0])
		require.Error(t, err)

		cyc, ok := err.(*ConstructorCycleError)
		require.True(t, ok, "expected *ConstructorCycleError, got %T", err)
		assert.Len(t, cyc.Cycle, n+1)

		// Everything rolled back.
		assert.Equal(t, 0, registry.Len())
		for i := 0; i < n; i++ {
			assert.False(t, registry.IsInCreation(beanName(i)))
		}
	})
}

func beanName(i int) string {
	return fmt.Sprintf("bean-%d", i)
}

type creationOrderObserver struct {
	BaseObserver
	created *[]string
}

func (o *creationOrderObserver) Created(name string, elapsed time.Duration, earlyUsed bool) {
	*o.created = append(*o.created, name)
}
