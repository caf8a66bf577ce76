// Package metrics exposes Prometheus collectors for the classifier, the
// content generator and the HTTP API on a dedicated registry.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/malu-oliver/agent-financeiro/internal/llm"
)

const namespace = "agentfin"

// Metrics holds every collector. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	classifications *prometheus.CounterVec
	contents        *prometheus.CounterVec
	simulations     prometheus.Counter
	llmFallbacks    prometheus.Counter
	llmRequests     *prometheus.CounterVec
	llmDuration     *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	trackedUsers    prometheus.Gauge
	effectiveness   prometheus.Gauge
	checkpoints     *prometheus.CounterVec
}

// New registers the collectors, plus the Go and process collectors, on a
// fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Profile classifications by dominant profile and scoring path.",
		}, []string{"profile", "path"}),
		contents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_generations_total",
			Help:      "Generated educational texts by source.",
		}, []string{"source"}),
		simulations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulations_total",
			Help:      "Investment simulations run.",
		}),
		llmFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_fallbacks_total",
			Help:      "Texts served from templates because the model failed.",
		}),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "requests_total",
			Help:      "Model calls by purpose and outcome.",
		}, []string{"purpose", "outcome"}),
		llmDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "request_duration_seconds",
			Help:      "Model call latency by purpose.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"purpose"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		trackedUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_users",
			Help:      "Users with a classification history.",
		}),
		effectiveness: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pattern_effectiveness_mean",
			Help:      "Mean learned signature effectiveness.",
		}),
		checkpoints: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkpoints_total",
			Help:      "Learning-state checkpoints by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.classifications,
		m.contents,
		m.simulations,
		m.llmFallbacks,
		m.llmRequests,
		m.llmDuration,
		m.httpRequests,
		m.httpDuration,
		m.trackedUsers,
		m.effectiveness,
		m.checkpoints,
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveClassification(profile string, fallback bool) {
	if m == nil {
		return
	}
	path := "regex"
	if fallback {
		path = "fallback"
	}
	m.classifications.WithLabelValues(profile, path).Inc()
}

func (m *Metrics) ObserveContent(source string) {
	if m == nil {
		return
	}
	m.contents.WithLabelValues(source).Inc()
	if source == "fallback" {
		m.llmFallbacks.Inc()
	}
}

func (m *Metrics) ObserveSimulation() {
	if m == nil {
		return
	}
	m.simulations.Inc()
}

// ObserveLLM records one model call. The outcome label is "ok" or the
// failure kind.
func (m *Metrics) ObserveLLM(purpose string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	switch kind, ok := llm.KindOf(err); {
	case err == nil:
	case ok:
		outcome = kind.String()
	case errors.Is(err, context.DeadlineExceeded):
		outcome = "timeout"
	case errors.Is(err, context.Canceled):
		outcome = "canceled"
	default:
		outcome = "error"
	}
	m.llmRequests.WithLabelValues(purpose, outcome).Inc()
	m.llmDuration.WithLabelValues(purpose).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// SetLearningState updates the gauges derived from the classifier.
func (m *Metrics) SetLearningState(users int, meanEffectiveness float64) {
	if m == nil {
		return
	}
	m.trackedUsers.Set(float64(users))
	m.effectiveness.Set(meanEffectiveness)
}

func (m *Metrics) ObserveCheckpoint(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.checkpoints.WithLabelValues(outcome).Inc()
}
