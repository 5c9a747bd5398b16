package beanpot

// Phase marks where in the creation protocol a bean currently is.
type Phase string

const (
	// PhaseConstructing covers the constructor invocation. No early
	// reference exists yet.
	PhaseConstructing Phase = "constructing"
	// PhasePopulating covers dependency population. Early references
	// may be handed to dependents from here on.
	PhasePopulating Phase = "populating"
	// PhaseInitializing covers the post-processor finalize hook.
	PhaseInitializing Phase = "initializing"
)

type destroyEntry struct {
	fn    func() error
	order int
}

// CreateCtx is handed to constructors and injectors. It carries the
// creation chain used for structural cycle detection, exposes the
// reentrant lookup primitive, and collects destroy callbacks.
//
// A CreateCtx is bound to the goroutine driving its creation; nested
// Resolve calls must happen on that goroutine.
type CreateCtx struct {
	registry *Registry
	name     string
	chain    []string
	phase    Phase
	destroys []destroyEntry
}

// Name returns the name of the bean being created.
func (ctx *CreateCtx) Name() string {
	return ctx.name
}

// Phase returns the current creation phase.
func (ctx *CreateCtx) Phase() Phase {
	return ctx.phase
}

// Chain returns the creation path from the top-level request down to
// this bean, ending with this bean's name.
func (ctx *CreateCtx) Chain() []string {
	out := make([]string, len(ctx.chain))
	copy(out, ctx.chain)
	return out
}

// Registry returns the owning registry.
func (ctx *CreateCtx) Registry() *Registry {
	return ctx.registry
}

// Resolve looks up or creates another bean from within a constructor or
// injector. This is the reentrant path that resolves circular
// field/setter dependencies: if the requested name is already in
// creation on this chain and has a raw instance, an early (possibly
// wrapped) reference is returned instead of recursing.
func (ctx *CreateCtx) Resolve(name string, def *Definition) (any, error) {
	return ctx.registry.getOrCreate(ctx, name, def)
}

// OnDestroy registers a callback invoked during DestroyAll. Callbacks
// for a bean run in reverse registration order.
func (ctx *CreateCtx) OnDestroy(fn func() error) {
	ctx.destroys = append(ctx.destroys, destroyEntry{
		fn:    fn,
		order: len(ctx.destroys),
	})
}

func (ctx *CreateCtx) inChain(name string) bool {
	for _, n := range ctx.chain {
		if n == name {
			return true
		}
	}
	return false
}

// cycleFrom returns the chain suffix starting at name, closed with name
// again, for ConstructorCycleError reporting.
func (ctx *CreateCtx) cycleFrom(name string) []string {
	for i, n := range ctx.chain {
		if n == name {
			cycle := make([]string, 0, len(ctx.chain)-i+1)
			cycle = append(cycle, ctx.chain[i:]...)
			return append(cycle, name)
		}
	}
	return []string{name, name}
}
