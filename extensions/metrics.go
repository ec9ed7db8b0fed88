package extensions

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	scoped "github.com/pumped-fn/scoped-go"
)

// MetricsExtension exports Prometheus metrics for provider builds, cache
// hits, invalidations and scope lifetimes.
type MetricsExtension struct {
	scoped.BaseExtension

	Builds        *prometheus.CounterVec
	BuildDuration *prometheus.HistogramVec
	CacheHits     *prometheus.CounterVec
	Invalidations *prometheus.CounterVec
	Disposals     *prometheus.CounterVec
	LiveScopes    prometheus.Gauge
}

// NewMetricsExtension creates the collectors under namespace and registers
// them with reg.
func NewMetricsExtension(namespace string, reg prometheus.Registerer) (*MetricsExtension, error) {
	e := &MetricsExtension{
		BaseExtension: scoped.NewBaseExtension("metrics"),
		Builds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_builds_total",
				Help:      "Total number of provider factory runs",
			},
			[]string{"provider", "result"},
		),
		BuildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_build_duration_seconds",
				Help:      "Provider factory duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_cache_hits_total",
				Help:      "Total number of reads served from a cached slot",
			},
			[]string{"provider"},
		),
		Invalidations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_invalidations_total",
				Help:      "Total number of cleared slots",
			},
			[]string{"provider"},
		),
		Disposals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scope_disposals_total",
				Help:      "Total number of scope disposals",
			},
			[]string{"result"},
		),
		LiveScopes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "scopes_live",
				Help:      "Number of scopes created and not yet disposed",
			},
		),
	}

	collectors := []prometheus.Collector{
		e.Builds,
		e.BuildDuration,
		e.CacheHits,
		e.Invalidations,
		e.Disposals,
		e.LiveScopes,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering scope metrics: %w", err)
		}
	}

	return e, nil
}

func (e *MetricsExtension) Init(scope *scoped.Scope) error {
	e.LiveScopes.Inc()
	return nil
}

func (e *MetricsExtension) OnChild(child *scoped.Scope) {
	e.LiveScopes.Inc()
}

func (e *MetricsExtension) OnRemount(scope *scoped.Scope) {
	e.LiveScopes.Inc()
}

func (e *MetricsExtension) OnHit(op *scoped.Operation) {
	e.CacheHits.WithLabelValues(op.Provider.String()).Inc()
}

func (e *MetricsExtension) Wrap(ctx context.Context, next func(context.Context) (any, error), op *scoped.Operation) (any, error) {
	start := time.Now()
	result, err := next(ctx)

	switch op.Kind {
	case scoped.OpBuild:
		name := op.Provider.String()
		e.BuildDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		e.Builds.WithLabelValues(name, resultLabel(err)).Inc()
	case scoped.OpInvalidate:
		if err == nil {
			e.Invalidations.WithLabelValues(op.Provider.String()).Inc()
		}
	case scoped.OpDispose:
		e.Disposals.WithLabelValues(resultLabel(err)).Inc()
		if err == nil {
			e.LiveScopes.Dec()
		}
	}

	return result, err
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
