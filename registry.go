package beanpot

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"
)

// creation tracks one in-flight construction. Callers for the same name
// from other goroutines wait on done, then retry against the settled
// registry state.
type creation struct {
	done *sync.WaitGroup
}

// earlyProducer is the deferred early-reference producer installed for a
// name at the start of population. raw is kept alongside the closure so
// observers can tell whether the produced reference was wrapped.
type earlyProducer struct {
	raw     any
	produce func() (any, error)
}

// Registry is a process-wide store of singleton beans keyed by name. It
// creates, caches, and exposes instances, serves early (possibly
// wrapped) references to dependents on circular paths, and guarantees
// at most one post-processor wrap per bean.
//
// A single mutex guards all four state mappings; user code
// (constructors, injectors, post-processors, observers) always runs
// outside the lock.
type Registry struct {
	mu         sync.Mutex
	finished   map[string]any
	early      map[string]any
	factories  map[string]*earlyProducer
	inCreation map[string]*creation

	destroys    map[string][]destroyEntry
	finishOrder []string

	processors []InstancePostProcessor
	observers  []Observer
}

// RegistryOption is a modifier for registries.
type RegistryOption func(*Registry)

// WithPostProcessor returns an option that registers a post-processor.
func WithPostProcessor(p InstancePostProcessor) RegistryOption {
	return func(r *Registry) {
		r.UsePostProcessor(p)
	}
}

// WithObserver returns an option that registers an observer.
func WithObserver(o Observer) RegistryOption {
	return func(r *Registry) {
		r.UseObserver(o)
	}
}

// NewRegistry creates a new empty singleton registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		finished:   make(map[string]any),
		early:      make(map[string]any),
		factories:  make(map[string]*earlyProducer),
		inCreation: make(map[string]*creation),
		destroys:   make(map[string][]destroyEntry),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// UsePostProcessor registers a post-processor. Processors run in Order()
// sequence for both WrapEarly and FinalizeInit.
func (r *Registry) UsePostProcessor(p InstancePostProcessor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.processors = append(r.processors, p)
	sort.SliceStable(r.processors, func(i, j int) bool {
		return r.processors[i].Order() < r.processors[j].Order()
	})
}

// UseObserver registers a lifecycle observer.
func (r *Registry) UseObserver(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.observers = append(r.observers, o)
	sort.SliceStable(r.observers, func(i, j int) bool {
		return r.observers[i].Order() < r.observers[j].Order()
	})
}

func (r *Registry) processorChain() []InstancePostProcessor {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]InstancePostProcessor, len(r.processors))
	copy(out, r.processors)
	return out
}

func (r *Registry) observerChain() []Observer {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Observer, len(r.observers))
	copy(out, r.observers)
	return out
}

// GetOrCreate returns the finished instance for name, creating it first
// if necessary. Concurrent callers for the same name trigger exactly one
// construction; the rest block until it settles. A failed creation is
// rolled back completely and may be retried with a later call.
func (r *Registry) GetOrCreate(name string, def *Definition) (any, error) {
	return r.getOrCreate(nil, name, def)
}

// getOrCreate is the creation protocol entry point. parent is nil for
// top-level requests and the requesting bean's context on the reentrant
// path.
func (r *Registry) getOrCreate(parent *CreateCtx, name string, def *Definition) (any, error) {
	if name == "" {
		return nil, newCreationError(name, "", errors.New("empty bean name"))
	}

	// Finished beans are served without consulting the definition; a
	// lookup-only caller may pass nil.
	r.mu.Lock()
	if v, ok := r.finished[name]; ok {
		r.mu.Unlock()
		return v, nil
	}
	r.mu.Unlock()

	if def == nil || def.construct == nil {
		return nil, newCreationError(name, "", ErrNilConstructor)
	}
	if def.scope != ScopeSingleton {
		return nil, newCreationError(name, "", fmt.Errorf("%w: %q", ErrUnsupportedScope, def.scope))
	}

	for {
		r.mu.Lock()

		if v, ok := r.finished[name]; ok {
			r.mu.Unlock()
			return v, nil
		}

		if c, ok := r.inCreation[name]; ok {
			if parent != nil && parent.inChain(name) {
				return r.resolveReentrantLocked(parent, name)
			}
			// Another caller owns this creation. Wait for it to settle,
			// then retry: either the finished instance is there, or the
			// attempt failed and was rolled back.
			wg := c.done
			r.mu.Unlock()
			wg.Wait()
			continue
		}

		// Transient residue without an owning creation means a previous
		// attempt was never rolled back.
		if _, leaked := r.factories[name]; leaked {
			r.mu.Unlock()
			return nil, &DuplicateCreationError{Name: name}
		}
		if _, leaked := r.early[name]; leaked {
			r.mu.Unlock()
			return nil, &DuplicateCreationError{Name: name}
		}

		wg := &sync.WaitGroup{}
		wg.Add(1)
		r.inCreation[name] = &creation{done: wg}
		r.mu.Unlock()
		break
	}

	ctx := &CreateCtx{registry: r, name: name, phase: PhaseConstructing}
	if parent != nil {
		ctx.chain = append(ctx.chain, parent.chain...)
	}
	ctx.chain = append(ctx.chain, name)

	for _, o := range r.observerChain() {
		o.CreationStarted(name, ctx.Chain())
	}

	start := time.Now()
	instance, earlyUsed, err := r.create(ctx, name, def)
	if err != nil {
		r.rollback(name, ctx)
		for _, o := range r.observerChain() {
			o.CreationFailed(name, err)
		}
		return nil, err
	}

	for _, o := range r.observerChain() {
		o.Created(name, time.Since(start), earlyUsed)
	}

	return instance, nil
}

// resolveReentrantLocked serves a lookup for a name that is in creation
// on the caller's own chain. Entered with the registry lock held; always
// unlocks.
func (r *Registry) resolveReentrantLocked(parent *CreateCtx, name string) (any, error) {
	if v, ok := r.early[name]; ok {
		r.mu.Unlock()
		return v, nil
	}

	producer, ok := r.factories[name]
	if !ok {
		// The owning creation is still inside its constructor: no raw
		// instance exists to expose, so the cycle is unresolvable.
		cycle := parent.cycleFrom(name)
		r.mu.Unlock()
		return nil, &ConstructorCycleError{Cycle: cycle}
	}

	// Removing the producer before invoking it guarantees at most one
	// invocation per creation attempt.
	delete(r.factories, name)
	r.mu.Unlock()

	obj, err := producer.produce()
	if err != nil {
		return nil, newCreationError(name, PhasePopulating, err)
	}

	r.mu.Lock()
	r.early[name] = obj
	r.mu.Unlock()

	wrapped := !sameRef(producer.raw, obj)
	for _, o := range r.observerChain() {
		o.EarlyReferenceExposed(name, wrapped)
	}

	return obj, nil
}

// create runs the creation protocol for one name: construct, install the
// early-reference producer, populate, finalize, commit. Reports whether
// an early-exposed instance became the final one.
func (r *Registry) create(ctx *CreateCtx, name string, def *Definition) (any, bool, error) {
	ctx.phase = PhaseConstructing
	raw, err := def.construct(ctx)
	if err != nil {
		return nil, false, wrapCreation(name, PhaseConstructing, err)
	}
	if raw == nil {
		return nil, false, newCreationError(name, PhaseConstructing, ErrNilInstance)
	}

	// Install the producer before population so any dependent requesting
	// this name mid-construction can obtain a usable reference.
	r.mu.Lock()
	r.factories[name] = &earlyProducer{
		raw: raw,
		produce: func() (any, error) {
			return r.applyWrapEarly(raw, name)
		},
	}
	r.mu.Unlock()

	ctx.phase = PhasePopulating
	if def.inject != nil {
		if err := def.inject(ctx, raw); err != nil {
			return nil, false, wrapCreation(name, PhasePopulating, err)
		}
	}

	ctx.phase = PhaseInitializing
	r.mu.Lock()
	exposed, earlyUsed := r.early[name]
	r.mu.Unlock()

	var final any
	if earlyUsed {
		// A dependent already holds the early-exposed instance. That
		// exact instance becomes the final one; FinalizeInit is skipped
		// to preserve the single-wrap guarantee.
		final = exposed
	} else {
		final, err = r.applyFinalizeInit(raw, name)
		if err != nil {
			return nil, false, wrapCreation(name, PhaseInitializing, err)
		}
		if final == nil {
			final = raw
		}
	}

	r.mu.Lock()
	delete(r.factories, name)
	delete(r.early, name)
	r.finished[name] = final
	if len(ctx.destroys) > 0 {
		r.destroys[name] = ctx.destroys
	}
	r.finishOrder = append(r.finishOrder, name)
	c := r.inCreation[name]
	delete(r.inCreation, name)
	r.mu.Unlock()

	if c != nil {
		c.done.Done()
	}

	return final, earlyUsed, nil
}

// rollback removes every trace of a failed creation so a later
// GetOrCreate can retry from scratch, and releases resources the failed
// attempt registered, LIFO.
func (r *Registry) rollback(name string, ctx *CreateCtx) {
	r.mu.Lock()
	delete(r.factories, name)
	delete(r.early, name)
	c := r.inCreation[name]
	delete(r.inCreation, name)
	r.mu.Unlock()

	if c != nil {
		c.done.Done()
	}

	for i := len(ctx.destroys) - 1; i >= 0; i-- {
		if err := ctx.destroys[i].fn(); err != nil {
			r.notifyDestroyError(&DestroyError{Name: name, Err: err})
		}
	}
}

// wrapCreation wraps step failures in a CreationError carrying the bean
// name. Constructor cycle errors pass through unwrapped so the caller
// sees the structural failure directly.
func wrapCreation(name string, phase Phase, err error) error {
	var cyc *ConstructorCycleError
	if errors.As(err, &cyc) {
		return err
	}
	return newCreationError(name, phase, err)
}

// ResolveEarlyReference returns the instance for name if one is
// observable right now: the finished instance, or the early-exposed one
// while creation is underway. It never invokes the early-reference
// producer; it exists for dependency population and diagnostics.
func (r *Registry) ResolveEarlyReference(name string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.finished[name]; ok {
		return v, true
	}
	if _, ok := r.inCreation[name]; ok {
		if v, ok := r.early[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// DestroyAll clears all registry state and runs destroy callbacks in
// reverse creation order (and, within a bean, reverse registration
// order). It refuses to run while any creation is in flight; callers
// must quiesce first.
func (r *Registry) DestroyAll() error {
	r.mu.Lock()
	if len(r.inCreation) > 0 {
		names := make([]string, 0, len(r.inCreation))
		for name := range r.inCreation {
			names = append(names, name)
		}
		sort.Strings(names)
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrCreationInFlight, strings.Join(names, ", "))
	}

	order := r.finishOrder
	destroys := r.destroys
	r.finished = make(map[string]any)
	r.early = make(map[string]any)
	r.factories = make(map[string]*earlyProducer)
	r.destroys = make(map[string][]destroyEntry)
	r.finishOrder = nil
	r.mu.Unlock()

	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		name := order[i]
		entries := destroys[name]
		for j := len(entries) - 1; j >= 0; j-- {
			if err := entries[j].fn(); err != nil {
				derr := &DestroyError{Name: name, Err: err}
				if !r.notifyDestroyError(derr) {
					errs = append(errs, derr)
				}
			}
		}
		for _, o := range r.observerChain() {
			o.Destroyed(name)
		}
	}

	return errors.Join(errs...)
}

func (r *Registry) notifyDestroyError(derr *DestroyError) bool {
	for _, o := range r.observerChain() {
		if o.DestroyError(derr) {
			return true
		}
	}
	return false
}

// Contains reports whether name holds a finished instance.
func (r *Registry) Contains(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.finished[name]
	return ok
}

// IsInCreation reports whether name is currently being constructed.
func (r *Registry) IsInCreation(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.inCreation[name]
	return ok
}

// Names returns the sorted names of all finished beans.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.finished))
	for name := range r.finished {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of finished beans.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.finished)
}

// sameRef reports whether two instances are the same pointer. Used only
// for the wrapped flag on observer events; non-pointer instances are
// conservatively reported as wrapped when substituted.
func sameRef(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() == reflect.Pointer && vb.Kind() == reflect.Pointer {
		return va.Pointer() == vb.Pointer()
	}
	return false
}
