package telemetry

import (
	"log"
	"net/http"
	"time"

	"github.com/mohammad-safakhou/newsdesk/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run outcomes recorded by RecordRun.
const (
	OutcomeFinished     = "finished"
	OutcomeInconclusive = "inconclusive"
	OutcomeFailed       = "failed"
)

// Telemetry holds the agent collectors on a private registry. A nil
// *Telemetry is valid and records nothing.
type Telemetry struct {
	config   config.TelemetryConfig
	logger   *log.Logger
	registry *prometheus.Registry

	steps        prometheus.Counter
	parseErrors  *prometheus.CounterVec
	toolCalls    *prometheus.CounterVec
	toolLatency  *prometheus.HistogramVec
	modelCalls   *prometheus.CounterVec
	modelLatency prometheus.Histogram
	runs         *prometheus.CounterVec
	runDuration  prometheus.Histogram
	coverage     prometheus.Histogram
}

// NewTelemetry creates the collectors and registers them.
func NewTelemetry(cfg config.TelemetryConfig) *Telemetry {
	t := &Telemetry{
		config:   cfg,
		logger:   log.New(log.Writer(), "[TELEMETRY] ", log.LstdFlags),
		registry: prometheus.NewRegistry(),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "newsdesk", Name: "agent_steps_total",
			Help: "Model turns taken by the research loop.",
		}),
		parseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "newsdesk", Name: "agent_parse_errors_total",
			Help: "Model turns that violated the tag protocol, by reason.",
		}, []string{"reason"}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "newsdesk", Name: "agent_tool_calls_total",
			Help: "Tool invocations by tool and status.",
		}, []string{"tool", "status"}),
		toolLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "newsdesk", Name: "agent_tool_seconds",
			Help:    "Tool invocation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool"}),
		modelCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "newsdesk", Name: "llm_calls_total",
			Help: "Model calls by provider and status.",
		}, []string{"provider", "status"}),
		modelLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "newsdesk", Name: "llm_call_seconds",
			Help:    "Model call latency.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "newsdesk", Name: "research_runs_total",
			Help: "Research runs by outcome.",
		}, []string{"outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "newsdesk", Name: "research_run_seconds",
			Help:    "End-to-end research run duration.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		coverage: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "newsdesk", Name: "attribution_coverage_ratio",
			Help:    "Share of output tokens attributed to a source.",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
	}
	t.registry.MustRegister(
		t.steps, t.parseErrors, t.toolCalls, t.toolLatency,
		t.modelCalls, t.modelLatency, t.runs, t.runDuration, t.coverage,
		collectors.NewGoCollector(),
	)
	return t
}

// Registry exposes the underlying registry, mostly for tests.
func (t *Telemetry) Registry() *prometheus.Registry {
	if t == nil {
		return nil
	}
	return t.registry
}

// Handler serves the registry in the Prometheus text format.
func (t *Telemetry) Handler() http.Handler {
	if t == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}

func (t *Telemetry) RecordStep() {
	if t == nil {
		return
	}
	t.steps.Inc()
}

func (t *Telemetry) RecordParseError(reason string) {
	if t == nil {
		return
	}
	t.parseErrors.WithLabelValues(reason).Inc()
}

// RecordToolCall counts one tool invocation. err decides the status label.
func (t *Telemetry) RecordToolCall(tool string, d time.Duration, err error) {
	if t == nil {
		return
	}
	t.toolCalls.WithLabelValues(tool, status(err)).Inc()
	t.toolLatency.WithLabelValues(tool).Observe(d.Seconds())
}

func (t *Telemetry) RecordModelCall(provider string, d time.Duration, err error) {
	if t == nil {
		return
	}
	t.modelCalls.WithLabelValues(provider, status(err)).Inc()
	t.modelLatency.Observe(d.Seconds())
}

func (t *Telemetry) RecordRun(outcome string, d time.Duration) {
	if t == nil {
		return
	}
	t.runs.WithLabelValues(outcome).Inc()
	t.runDuration.Observe(d.Seconds())
	if t.config.Enabled {
		t.logger.Printf("run %s in %s", outcome, d.Round(time.Millisecond))
	}
}

func (t *Telemetry) RecordCoverage(ratio float64) {
	if t == nil {
		return
	}
	t.coverage.Observe(ratio)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
