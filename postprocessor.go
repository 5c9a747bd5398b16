package beanpot

// InstancePostProcessor transforms instances at fixed points of the
// creation protocol. The registry guarantees when and how often the
// hooks fire; it implements no wrapping logic itself.
//
// WrapEarly runs inside the early-reference producer, before the bean
// finishes creation. FinalizeInit runs once construction and population
// complete, and is skipped entirely when an early-wrapped instance
// already took precedence (the single-wrap guarantee).
type InstancePostProcessor interface {
	// Name returns the processor's name.
	Name() string

	// Order determines chain position (lower = earlier).
	Order() int

	// WrapEarly may substitute a stand-in for a raw instance that is
	// being exposed before its creation finished. Returning the input
	// unchanged is the common case.
	WrapEarly(instance any, name string) (any, error)

	// FinalizeInit may substitute the final instance after population.
	FinalizeInit(instance any, name string) (any, error)
}

// BasePostProcessor provides pass-through defaults for
// InstancePostProcessor. Embed it and override what you need.
type BasePostProcessor struct {
	name string
}

// NewBasePostProcessor creates a base post-processor with the given name.
func NewBasePostProcessor(name string) BasePostProcessor {
	return BasePostProcessor{name: name}
}

func (p *BasePostProcessor) Name() string {
	return p.name
}

func (p *BasePostProcessor) Order() int {
	return 100
}

func (p *BasePostProcessor) WrapEarly(instance any, _ string) (any, error) {
	return instance, nil
}

func (p *BasePostProcessor) FinalizeInit(instance any, _ string) (any, error) {
	return instance, nil
}

// applyWrapEarly chains every processor's WrapEarly over the raw
// instance, in Order() sequence. Called from the early-reference
// producer, outside the registry lock.
func (r *Registry) applyWrapEarly(raw any, name string) (any, error) {
	instance := raw
	for _, p := range r.processorChain() {
		wrapped, err := p.WrapEarly(instance, name)
		if err != nil {
			return nil, err
		}
		if wrapped != nil {
			instance = wrapped
		}
	}
	return instance, nil
}

// applyFinalizeInit chains every processor's FinalizeInit over the
// populated instance, in Order() sequence.
func (r *Registry) applyFinalizeInit(raw any, name string) (any, error) {
	instance := raw
	for _, p := range r.processorChain() {
		final, err := p.FinalizeInit(instance, name)
		if err != nil {
			return nil, err
		}
		if final != nil {
			instance = final
		}
	}
	return instance, nil
}
