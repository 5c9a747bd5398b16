package observers

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/beanpot-io/beanpot-go"
)

// TracingObserver opens one span per bean creation, from CreationStarted
// to Created or CreationFailed. Nested creations show up as sibling spans
// keyed by bean name; the registry does not thread a context through user
// code, so spans are correlated by the chain attribute rather than
// parent-child links.
type TracingObserver struct {
	beanpot.BaseObserver
	tracer trace.Tracer

	mu    sync.Mutex
	spans map[string]trace.Span
}

// NewTracingObserver creates a tracing observer using the given provider.
func NewTracingObserver(provider trace.TracerProvider) *TracingObserver {
	return &TracingObserver{
		BaseObserver: beanpot.NewBaseObserver("tracing"),
		tracer:       provider.Tracer("beanpot"),
		spans:        make(map[string]trace.Span),
	}
}

func (o *TracingObserver) CreationStarted(name string, chain []string) {
	_, span := o.tracer.Start(context.Background(), "bean.create",
		trace.WithAttributes(
			attribute.String("bean.name", name),
			attribute.StringSlice("bean.chain", chain),
		),
	)

	o.mu.Lock()
	o.spans[name] = span
	o.mu.Unlock()
}

func (o *TracingObserver) EarlyReferenceExposed(name string, wrapped bool) {
	o.mu.Lock()
	span, ok := o.spans[name]
	o.mu.Unlock()
	if !ok {
		return
	}

	span.AddEvent("early reference exposed",
		trace.WithAttributes(attribute.Bool("bean.wrapped", wrapped)),
	)
}

func (o *TracingObserver) Created(name string, elapsed time.Duration, earlyUsed bool) {
	span, ok := o.pop(name)
	if !ok {
		return
	}

	span.SetAttributes(attribute.Bool("bean.early_used", earlyUsed))
	span.SetStatus(codes.Ok, "")
	span.End()
}

func (o *TracingObserver) CreationFailed(name string, err error) {
	span, ok := o.pop(name)
	if !ok {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}

func (o *TracingObserver) pop(name string) (trace.Span, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	span, ok := o.spans[name]
	if ok {
		delete(o.spans, name)
	}
	return span, ok
}
