package beanpot

import "time"

// Observer receives lifecycle notifications from the registry. Observers
// carry cross-cutting concerns (logging, metrics, tracing) without
// touching the creation protocol; all callbacks run outside the registry
// lock and must not mutate registry state.
type Observer interface {
	// Name returns the observer's name.
	Name() string

	// Order determines notification order (lower = earlier).
	Order() int

	// CreationStarted fires when a name enters creation. chain is the
	// creation path that led here, ending with name.
	CreationStarted(name string, chain []string)

	// EarlyReferenceExposed fires when a dependent pulls a reference to
	// a bean still in creation. wrapped reports whether a post-processor
	// substituted the raw instance.
	EarlyReferenceExposed(name string, wrapped bool)

	// Created fires when a name reaches the finished state. earlyUsed
	// reports whether the early-exposed instance became the final one.
	Created(name string, elapsed time.Duration, earlyUsed bool)

	// CreationFailed fires after rollback, before the error propagates.
	CreationFailed(name string, err error)

	// Destroyed fires per bean during DestroyAll.
	Destroyed(name string)

	// DestroyError handles a destroy callback failure. Returning true
	// marks the error handled; unhandled errors are collected into the
	// DestroyAll result.
	DestroyError(err *DestroyError) bool
}

// BaseObserver provides no-op defaults for Observer. Embed it and
// override the callbacks you care about.
type BaseObserver struct {
	name string
}

// NewBaseObserver creates a base observer with the given name.
func NewBaseObserver(name string) BaseObserver {
	return BaseObserver{name: name}
}

func (o *BaseObserver) Name() string {
	return o.name
}

func (o *BaseObserver) Order() int {
	return 100
}

func (o *BaseObserver) CreationStarted(string, []string) {}

func (o *BaseObserver) EarlyReferenceExposed(string, bool) {}

func (o *BaseObserver) Created(string, time.Duration, bool) {}

func (o *BaseObserver) CreationFailed(string, error) {}

func (o *BaseObserver) Destroyed(string) {}

func (o *BaseObserver) DestroyError(*DestroyError) bool {
	return false
}
