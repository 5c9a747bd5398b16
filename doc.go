// Package beanpot provides a singleton bean registry with
// circular-dependency resolution and proxy-aware early references.
//
// # Overview
//
// Beanpot organizes code around three core concepts:
//
//  1. Definitions: how to construct and populate one named bean
//  2. Registry: creates, caches, and exposes singleton instances
//  3. Post-processors: hooks that may wrap instances exactly once
//
// # Basic Usage
//
// Create a registry and ask it for beans by name:
//
//	registry := beanpot.NewRegistry()
//
//	configDef := beanpot.NewDefinition(func(ctx *beanpot.CreateCtx) (any, error) {
//	    return &Config{Port: 8080}, nil
//	})
//
//	serverDef := beanpot.NewDefinition(
//	    func(ctx *beanpot.CreateCtx) (any, error) {
//	        cfg, err := ctx.Resolve("config", configDef)
//	        if err != nil {
//	            return nil, err
//	        }
//	        return NewServer(cfg.(*Config).Port), nil
//	    },
//	    beanpot.WithConstructorDeps("config"),
//	)
//
//	srv, err := registry.GetOrCreate("server", serverDef)
//
// # Circular Dependencies
//
// Field/setter-style cycles resolve through early references. Put the
// dependency lookup in the injector rather than the constructor:
//
//	aDef := beanpot.NewDefinition(
//	    func(ctx *beanpot.CreateCtx) (any, error) { return &A{}, nil },
//	    beanpot.WithInject(func(ctx *beanpot.CreateCtx, instance any) error {
//	        b, err := ctx.Resolve("b", bDef)
//	        if err != nil {
//	            return err
//	        }
//	        instance.(*A).B = b.(*B)
//	        return nil
//	    }),
//	)
//
// While "a" is mid-creation, a dependent that resolves "a" receives an
// early reference produced on demand. Cycles that run through
// constructors have no raw instance to expose and fail fast with
// ConstructorCycleError instead of deadlocking.
//
// # Post-Processing
//
// Post-processors may substitute a wrapped stand-in (a proxy) for a raw
// instance. The registry guarantees the wrap happens at most once per
// bean: if a dependent pulled an early-wrapped reference, that exact
// instance becomes the finished one and FinalizeInit is skipped.
//
//	type TxProxyProcessor struct {
//	    beanpot.BasePostProcessor
//	}
//
//	func (p *TxProxyProcessor) WrapEarly(instance any, name string) (any, error) {
//	    if svc, ok := instance.(Transactional); ok {
//	        return NewTxProxy(svc), nil
//	    }
//	    return instance, nil
//	}
//
//	registry := beanpot.NewRegistry(
//	    beanpot.WithPostProcessor(&TxProxyProcessor{
//	        BasePostProcessor: beanpot.NewBasePostProcessor("tx-proxy"),
//	    }),
//	)
//
// # Observers
//
// Observers receive lifecycle notifications (creation started, early
// reference exposed, created, failed, destroyed) for cross-cutting
// concerns. The observers subpackage ships slog logging, Prometheus
// metrics, and OpenTelemetry tracing observers.
//
// # Resource Teardown
//
// Register destroy callbacks from constructors or injectors:
//
//	dbDef := beanpot.NewDefinition(func(ctx *beanpot.CreateCtx) (any, error) {
//	    db := OpenDB()
//	    ctx.OnDestroy(func() error {
//	        return db.Close()
//	    })
//	    return db, nil
//	})
//
// DestroyAll runs callbacks in reverse creation order and clears all
// state; the same names can then be created fresh.
//
// # Thread Safety
//
// GetOrCreate is safe for concurrent use. Creation of unrelated names
// proceeds concurrently; concurrent requests for the same name result in
// exactly one construction, with the losers blocking until it settles.
// DestroyAll must not run while a creation is in flight and returns
// ErrCreationInFlight if it would.
package beanpot
