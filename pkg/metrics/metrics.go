// Package metrics holds the Prometheus instruments for routing and selfie analysis.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the shell.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	TargetsReceived   *prometheus.CounterVec
	TargetsDispatched *prometheus.CounterVec
	TargetsBuffered   prometheus.Counter
	TargetsDropped    prometheus.Counter
	DecodeFailures    *prometheus.CounterVec
	ActionFailures    *prometheus.CounterVec
	ViewsConnected    prometheus.Gauge
	Analyses          *prometheus.CounterVec
	DetectorErrors    prometheus.Counter
}

// New creates the metrics and registers them with reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TargetsReceived: f.NewCounterVec(prometheus.CounterOpts{
			Name: "moodshell_router_targets_received_total",
			Help: "Navigation targets handed to the router, by kind",
		}, []string{"kind"}),
		TargetsDispatched: f.NewCounterVec(prometheus.CounterOpts{
			Name: "moodshell_router_targets_dispatched_total",
			Help: "Navigation targets dispatched, by outcome (navigate, reload, action, unknown_action)",
		}, []string{"outcome"}),
		TargetsBuffered: f.NewCounter(prometheus.CounterOpts{
			Name: "moodshell_router_targets_buffered_total",
			Help: "Targets buffered because no content view was registered",
		}),
		TargetsDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "moodshell_router_targets_replaced_total",
			Help: "Buffered targets replaced by a later arrival before being flushed",
		}),
		DecodeFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "moodshell_router_decode_failures_total",
			Help: "Notification or deep-link payloads that produced no target, by reason",
		}, []string{"reason"}),
		ActionFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "moodshell_router_action_failures_total",
			Help: "Native action handlers that returned an error or panicked",
		}, []string{"action"}),
		ViewsConnected: f.NewGauge(prometheus.GaugeOpts{
			Name: "moodshell_bridge_views_connected",
			Help: "Content views currently connected to the bridge",
		}),
		Analyses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "moodshell_selfie_analyses_total",
			Help: "Selfie analyses, by resulting expression (or \"undetected\")",
		}, []string{"expression"}),
		DetectorErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "moodshell_selfie_detector_errors_total",
			Help: "Face detector failures treated as no faces",
		}),
	}
}

func (m *Metrics) IncReceived(kind string) {
	if m == nil {
		return
	}
	m.TargetsReceived.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncDispatched(outcome string) {
	if m == nil {
		return
	}
	m.TargetsDispatched.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncBuffered(replaced bool) {
	if m == nil {
		return
	}
	m.TargetsBuffered.Inc()
	if replaced {
		m.TargetsDropped.Inc()
	}
}

func (m *Metrics) IncDecodeFailure(reason string) {
	if m == nil {
		return
	}
	m.DecodeFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncActionFailure(action string) {
	if m == nil {
		return
	}
	m.ActionFailures.WithLabelValues(action).Inc()
}

func (m *Metrics) SetViewsConnected(n int) {
	if m == nil {
		return
	}
	m.ViewsConnected.Set(float64(n))
}

func (m *Metrics) IncAnalysis(expression string) {
	if m == nil {
		return
	}
	m.Analyses.WithLabelValues(expression).Inc()
}

func (m *Metrics) IncDetectorError() {
	if m == nil {
		return
	}
	m.DetectorErrors.Inc()
}
