// Package metrics exposes build telemetry as Prometheus metrics. The
// recorder is optional: a nil *Recorder is safe to call everywhere, so the
// one-shot build command can skip registration entirely.
package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder registers and feeds the sitebuilder metric set.
type Recorder struct {
	registry      *prom.Registry
	buildDuration prom.Histogram
	stageDuration *prom.HistogramVec
	buildOutcome  *prom.CounterVec
	pagesEmitted  prom.Gauge
	componentsCat prom.Gauge
}

// NewRecorder constructs and registers the metric set on the given registry
// (a fresh registry when nil).
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{registry: reg}
	r.buildDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: "sitebuilder",
		Name:      "build_duration_seconds",
		Help:      "Total duration of one build pass",
		Buckets:   prom.DefBuckets,
	})
	r.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: "sitebuilder",
		Name:      "stage_duration_seconds",
		Help:      "Duration of individual build stages",
		Buckets:   prom.DefBuckets,
	}, []string{"stage"})
	r.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "sitebuilder",
		Name:      "build_outcomes_total",
		Help:      "Build outcomes by final status",
	}, []string{"outcome"})
	r.pagesEmitted = prom.NewGauge(prom.GaugeOpts{
		Namespace: "sitebuilder",
		Name:      "pages_emitted",
		Help:      "Pages written by the most recent build pass",
	})
	r.componentsCat = prom.NewGauge(prom.GaugeOpts{
		Namespace: "sitebuilder",
		Name:      "components_catalogued",
		Help:      "Components in the catalog of the most recent build pass",
	})
	reg.MustRegister(r.buildDuration, r.stageDuration, r.buildOutcome, r.pagesEmitted, r.componentsCat)
	return r
}

// ObserveStage records the duration of one build stage.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveBuild records the outcome of one build pass.
func (r *Recorder) ObserveBuild(d time.Duration, success bool, pages, components int) {
	if r == nil {
		return
	}
	r.buildDuration.Observe(d.Seconds())
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	r.buildOutcome.WithLabelValues(outcome).Inc()
	r.pagesEmitted.Set(float64(pages))
	r.componentsCat.Set(float64(components))
}

// Handler returns the HTTP handler serving this recorder's registry.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
