package observers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/beanpot-io/beanpot-go"
)

// Metrics holds the registry-level Prometheus collectors.
type Metrics struct {
	CreationsTotal   *prometheus.CounterVec
	CreationDuration *prometheus.HistogramVec
	EarlyReferences  *prometheus.CounterVec
	DestroyedTotal   prometheus.Counter
	DestroyErrors    prometheus.Counter
	BeansLive        prometheus.Gauge
}

// NewMetrics creates the collectors under the beanpot namespace.
func NewMetrics() *Metrics {
	return &Metrics{
		CreationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "beanpot",
				Subsystem: "registry",
				Name:      "creations_total",
				Help:      "Total bean creation attempts by outcome",
			},
			[]string{"bean", "status"},
		),

		CreationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "beanpot",
				Subsystem: "registry",
				Name:      "creation_duration_seconds",
				Help:      "Bean creation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"bean"},
		),

		EarlyReferences: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "beanpot",
				Subsystem: "registry",
				Name:      "early_references_total",
				Help:      "Early references handed to dependents on circular paths",
			},
			[]string{"bean", "wrapped"},
		),

		DestroyedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "beanpot",
				Subsystem: "registry",
				Name:      "destroyed_total",
				Help:      "Beans torn down by DestroyAll",
			},
		),

		DestroyErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "beanpot",
				Subsystem: "registry",
				Name:      "destroy_errors_total",
				Help:      "Destroy callback failures",
			},
		),

		BeansLive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "beanpot",
				Subsystem: "registry",
				Name:      "beans_live",
				Help:      "Finished beans currently held by the registry",
			},
		),
	}
}

// Register registers all collectors with the given registerer.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.CreationsTotal,
		m.CreationDuration,
		m.EarlyReferences,
		m.DestroyedTotal,
		m.DestroyErrors,
		m.BeansLive,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// MetricsObserver feeds registry lifecycle events into Prometheus.
type MetricsObserver struct {
	beanpot.BaseObserver
	metrics *Metrics
}

// NewMetricsObserver creates a metrics observer. A nil metrics value gets
// a fresh, unregistered collector set; call Metrics().Register to expose
// it.
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	if m == nil {
		m = NewMetrics()
	}
	return &MetricsObserver{
		BaseObserver: beanpot.NewBaseObserver("metrics"),
		metrics:      m,
	}
}

// Metrics returns the underlying collector set.
func (o *MetricsObserver) Metrics() *Metrics {
	return o.metrics
}

func (o *MetricsObserver) EarlyReferenceExposed(name string, wrapped bool) {
	label := "false"
	if wrapped {
		label = "true"
	}
	o.metrics.EarlyReferences.WithLabelValues(name, label).Inc()
}

func (o *MetricsObserver) Created(name string, elapsed time.Duration, earlyUsed bool) {
	o.metrics.CreationsTotal.WithLabelValues(name, "success").Inc()
	o.metrics.CreationDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	o.metrics.BeansLive.Inc()
}

func (o *MetricsObserver) CreationFailed(name string, err error) {
	o.metrics.CreationsTotal.WithLabelValues(name, "failure").Inc()
}

func (o *MetricsObserver) Destroyed(name string) {
	o.metrics.DestroyedTotal.Inc()
	o.metrics.BeansLive.Dec()
}

func (o *MetricsObserver) DestroyError(derr *beanpot.DestroyError) bool {
	o.metrics.DestroyErrors.Inc()
	return false
}
