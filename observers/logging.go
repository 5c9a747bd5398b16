// Package observers provides ready-made lifecycle observers for the
// beanpot registry: structured logging via slog, Prometheus metrics, and
// OpenTelemetry spans per bean creation.
package observers

import (
	"log/slog"
	"time"

	"github.com/beanpot-io/beanpot-go"
)

// LoggingObserver emits a structured log line per lifecycle event.
type LoggingObserver struct {
	beanpot.BaseObserver
	logger *slog.Logger
}

// NewLoggingObserver creates a logging observer. A nil logger falls back
// to slog.Default.
func NewLoggingObserver(logger *slog.Logger) *LoggingObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{
		BaseObserver: beanpot.NewBaseObserver("logging"),
		logger:       logger,
	}
}

func (o *LoggingObserver) CreationStarted(name string, chain []string) {
	o.logger.Debug("bean creation started",
		"bean", name,
		"chain", chain,
	)
}

func (o *LoggingObserver) EarlyReferenceExposed(name string, wrapped bool) {
	o.logger.Debug("early reference exposed",
		"bean", name,
		"wrapped", wrapped,
	)
}

func (o *LoggingObserver) Created(name string, elapsed time.Duration, earlyUsed bool) {
	o.logger.Info("bean created",
		"bean", name,
		"elapsed", elapsed,
		"early_used", earlyUsed,
	)
}

func (o *LoggingObserver) CreationFailed(name string, err error) {
	o.logger.Error("bean creation failed",
		"bean", name,
		"error", err,
	)
}

func (o *LoggingObserver) Destroyed(name string) {
	o.logger.Info("bean destroyed", "bean", name)
}

func (o *LoggingObserver) DestroyError(derr *beanpot.DestroyError) bool {
	o.logger.Error("bean destroy callback failed",
		"bean", derr.Name,
		"error", derr.Err,
	)
	// Logged, not handled; DestroyAll still reports it.
	return false
}
