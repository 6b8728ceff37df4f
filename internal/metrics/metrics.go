// Package metrics provides Prometheus metrics for the advisor service
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeEmpty     = "empty"
	OutcomeCached    = "cached"
	OutcomeOK        = "ok"
	OutcomeStale     = "stale"
)

// Metrics owns its registry so several instances can coexist in one process.
// All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	// Chat metrics
	StreamsTotal   *prometheus.CounterVec
	FragmentsTotal *prometheus.CounterVec

	// Speech metrics
	SpeechTotal   *prometheus.CounterVec
	PlaybackState prometheus.Gauge

	// Workspace metrics
	SyncsTotal *prometheus.CounterVec
	Sources    *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{registry: reg}

	m.StreamsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_chat_streams_total",
			Help: "Total number of answer streams by category and outcome",
		},
		[]string{"category", "outcome"},
	)

	m.FragmentsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_chat_fragments_total",
			Help: "Total number of streamed answer fragments",
		},
		[]string{"category"},
	)

	m.SpeechTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_speech_synthesis_total",
			Help: "Speech synthesis requests by outcome",
		},
		[]string{"outcome"},
	)

	m.PlaybackState = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "advisor_playback_state",
			Help: "Playback controller state (0 idle, 1 preparing, 2 playing)",
		},
	)

	m.SyncsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_workspace_syncs_total",
			Help: "Workspace persistence syncs by outcome",
		},
		[]string{"outcome"},
	)

	m.Sources = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "advisor_sources",
			Help: "Number of sources in the workspace by category",
		},
		[]string{"category"},
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordStream(category, outcome string) {
	if m == nil {
		return
	}
	m.StreamsTotal.WithLabelValues(category, outcome).Inc()
}

func (m *Metrics) RecordFragment(category string) {
	if m == nil {
		return
	}
	m.FragmentsTotal.WithLabelValues(category).Inc()
}

func (m *Metrics) RecordSpeech(outcome string) {
	if m == nil {
		return
	}
	m.SpeechTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetPlaybackState(state float64) {
	if m == nil {
		return
	}
	m.PlaybackState.Set(state)
}

func (m *Metrics) RecordSync(outcome string) {
	if m == nil {
		return
	}
	m.SyncsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetSources(category string, n int) {
	if m == nil {
		return
	}
	m.Sources.WithLabelValues(category).Set(float64(n))
}
