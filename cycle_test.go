package beanpot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type alpha struct {
	Beta *beta
	Self *alpha
}

type beta struct {
	Alpha *alpha
}

func TestFieldCycleResolvesThroughEarlyReference(t *testing.T) {
	registry := NewRegistry()

	var alphaDef, betaDef *Definition

	alphaDef = NewDefinition(
		func(ctx *CreateCtx) (any, error) {
			return &alpha{}, nil
		},
		WithInject(func(ctx *CreateCtx, instance any) error {
			b, err := ctx.Resolve("beta", betaDef)
			if err != nil {
				return err
			}
			instance.(*alpha).Beta = b.(*beta)
			return nil
		}),
	)

	betaDef = NewDefinition(
		func(ctx *CreateCtx) (any, error) {
			return &beta{}, nil
		},
		WithInject(func(ctx *CreateCtx, instance any) error {
			a, err := ctx.Resolve("alpha", alphaDef)
			if err != nil {
				return err
			}
			instance.(*beta).Alpha = a.(*alpha)
			return nil
		}),
	)

	got, err := registry.GetOrCreate("alpha", alphaDef)
	require.NoError(t, err)

	a := got.(*alpha)
	require.NotNil(t, a.Beta)
	require.NotNil(t, a.Beta.Alpha)

	// The early reference beta received is the same instance alpha's
	// creation finished with.
	assert.Same(t, a, a.Beta.Alpha)

	finishedBeta, err := registry.GetOrCreate("beta", betaDef)
	require.NoError(t, err)
	assert.Same(t, a.Beta, finishedBeta)
}

func TestSelfReferenceResolves(t *testing.T) {
	registry := NewRegistry()

	var def *Definition
	def = NewDefinition(
		func(ctx *CreateCtx) (any, error) {
			return &alpha{}, nil
		},
		WithInject(func(ctx *CreateCtx, instance any) error {
			self, err := ctx.Resolve("alpha", def)
			if err != nil {
				return err
			}
			instance.(*alpha).Self = self.(*alpha)
			return nil
		}),
	)

	got, err := registry.GetOrCreate("alpha", def)
	require.NoError(t, err)

	a := got.(*alpha)
	assert.Same(t, a, a.Self)
}

func TestConstructorCycleFailsFast(t *testing.T) {
	registry := NewRegistry()

	var alphaDef, betaDef *Definition

	alphaDef = NewDefinition(func(ctx *CreateCtx) (any, error) {
		if _, err := ctx.Resolve("beta", betaDef); err != nil {
			return nil, err
		}
		return &alpha{}, nil
	}, WithConstructorDeps("beta"))

	betaDef = NewDefinition(func(ctx *CreateCtx) (any, error) {
		if _, err := ctx.Resolve("alpha", alphaDef); err != nil {
			return nil, err
		}
		return &beta{}, nil
	}, WithConstructorDeps("alpha"))

	_, err := registry.GetOrCreate("alpha", alphaDef)
	require.Error(t, err)

	// The structural failure surfaces directly, not buried inside
	// per-bean wrappers.
	cyc, ok := err.(*ConstructorCycleError)
	require.True(t, ok, "expected *ConstructorCycleError, got %T", err)
	assert.Equal(t, []string{"alpha", "beta", "alpha"}, cyc.Cycle)

	// Both attempts rolled back; nothing is finished or stuck in creation.
	assert.False(t, registry.Contains("alpha"))
	assert.False(t, registry.Contains("beta"))
	assert.False(t, registry.IsInCreation("alpha"))
	assert.False(t, registry.IsInCreation("beta"))
}

func TestThreeNodeConstructorCycle(t *testing.T) {
	registry := NewRegistry()

	var aDef, bDef, cDef *Definition

	aDef = NewDefinition(func(ctx *CreateCtx) (any, error) {
		if _, err := ctx.Resolve("b", bDef); err != nil {
			return nil, err
		}
		return &widget{}, nil
	})
	bDef = NewDefinition(func(ctx *CreateCtx) (any, error) {
		if _, err := ctx.Resolve("c", cDef); err != nil {
			return nil, err
		}
		return &widget{}, nil
	})
	cDef = NewDefinition(func(ctx *CreateCtx) (any, error) {
		if _, err := ctx.Resolve("a", aDef); err != nil {
			return nil, err
		}
		return &widget{}, nil
	})

	_, err := registry.GetOrCreate("a", aDef)
	require.Error(t, err)

	cyc, ok := err.(*ConstructorCycleError)
	require.True(t, ok, "expected *ConstructorCycleError, got %T", err)
	assert.Equal(t, []string{"a", "b", "c", "a"}, cyc.Cycle)
}

func TestMixedCycleResolvesWhenBackEdgeIsFieldStyle(t *testing.T) {
	registry := NewRegistry()

	var alphaDef, betaDef *Definition

	// alpha depends on beta through a field; beta needs alpha in its
	// constructor. The back edge lands during alpha's population, when an
	// early reference exists, so the cycle resolves.
	alphaDef = NewDefinition(
		func(ctx *CreateCtx) (any, error) {
			return &alpha{}, nil
		},
		WithInject(func(ctx *CreateCtx, instance any) error {
			b, err := ctx.Resolve("beta", betaDef)
			if err != nil {
				return err
			}
			instance.(*alpha).Beta = b.(*beta)
			return nil
		}),
	)

	betaDef = NewDefinition(func(ctx *CreateCtx) (any, error) {
		a, err := ctx.Resolve("alpha", alphaDef)
		if err != nil {
			return nil, err
		}
		return &beta{Alpha: a.(*alpha)}, nil
	}, WithConstructorDeps("alpha"))

	got, err := registry.GetOrCreate("alpha", alphaDef)
	require.NoError(t, err)

	a := got.(*alpha)
	require.NotNil(t, a.Beta)
	assert.Same(t, a, a.Beta.Alpha)
}

func TestMixedCycleFailsWhenBackEdgeIsConstructorStyle(t *testing.T) {
	registry := NewRegistry()

	var alphaDef, betaDef *Definition

	// alpha needs beta in its constructor; beta reaches back to alpha
	// during its own population. alpha has no raw instance yet when the
	// back edge fires, so the cycle is unresolvable.
	alphaDef = NewDefinition(func(ctx *CreateCtx) (any, error) {
		if _, err := ctx.Resolve("beta", betaDef); err != nil {
			return nil, err
		}
		return &alpha{}, nil
	}, WithConstructorDeps("beta"))

	betaDef = NewDefinition(
		func(ctx *CreateCtx) (any, error) {
			return &beta{}, nil
		},
		WithInject(func(ctx *CreateCtx, instance any) error {
			_, err := ctx.Resolve("alpha", alphaDef)
			return err
		}),
	)

	_, err := registry.GetOrCreate("alpha", alphaDef)
	require.Error(t, err)

	cyc, ok := err.(*ConstructorCycleError)
	require.True(t, ok, "expected *ConstructorCycleError, got %T", err)
	assert.Equal(t, []string{"alpha", "beta", "alpha"}, cyc.Cycle)
}

func TestDiamondDependencySharesSingleInstance(t *testing.T) {
	registry := NewRegistry()

	var leafCalls int
	leafDef := NewDefinition(func(ctx *CreateCtx) (any, error) {
		leafCalls++
		return &widget{id: 99}, nil
	})

	branch := func() *Definition {
		return NewDefinition(func(ctx *CreateCtx) (any, error) {
			leaf, err := ctx.Resolve("leaf", leafDef)
			if err != nil {
				return nil, err
			}
			return leaf, nil
		})
	}

	left, err := registry.GetOrCreate("left", branch())
	require.NoError(t, err)
	right, err := registry.GetOrCreate("right", branch())
	require.NoError(t, err)

	assert.Same(t, left, right)
	assert.Equal(t, 1, leafCalls)
}
