package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LLMMetrics captures calls made to the hosted model API.
type LLMMetrics interface {
	ObserveLLMCall(operation, status string, durationSeconds float64)
	AddTokens(kind string, n int)
}

// HTTPMetrics captures inbound request metrics.
type HTTPMetrics interface {
	ObserveRequest(method, route, status string, durationSeconds float64)
}

// SynthesisMetrics counts synthesis outcomes ("success", "upstream_error", ...).
type SynthesisMetrics interface {
	IncSynthesis(outcome string)
}

// Noop implements every metrics interface without emitting anything.
type Noop struct{}

func (Noop) ObserveLLMCall(string, string, float64)         {}
func (Noop) AddTokens(string, int)                          {}
func (Noop) ObserveRequest(string, string, string, float64) {}
func (Noop) IncSynthesis(string)                            {}

// Prom implements the metrics interfaces on a private Prometheus registry.
type Prom struct {
	registry        *prometheus.Registry
	llmCalls        *prometheus.CounterVec
	llmDuration     *prometheus.HistogramVec
	llmTokens       *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	synthesis       *prometheus.CounterVec
}

func NewProm(namespace string) *Prom {
	p := &Prom{
		registry: prometheus.NewRegistry(),
		llmCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_calls_total",
			Help:      "Calls to the model API by operation and status",
		}, []string{"operation", "status"}),
		llmDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_call_duration_seconds",
			Help:      "Model API round-trip time",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"operation"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_total",
			Help:      "Tokens reported by the model API by kind",
		}, []string{"kind"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		synthesis: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesis_total",
			Help:      "Document synthesis attempts by outcome",
		}, []string{"outcome"}),
	}
	p.registry.MustRegister(
		p.llmCalls, p.llmDuration, p.llmTokens,
		p.requests, p.requestDuration, p.synthesis,
	)
	return p
}

func (p *Prom) ObserveLLMCall(operation, status string, durationSeconds float64) {
	p.llmCalls.WithLabelValues(operation, status).Inc()
	p.llmDuration.WithLabelValues(operation).Observe(durationSeconds)
}

func (p *Prom) AddTokens(kind string, n int) {
	if n <= 0 {
		return
	}
	p.llmTokens.WithLabelValues(kind).Add(float64(n))
}

func (p *Prom) ObserveRequest(method, route, status string, durationSeconds float64) {
	p.requests.WithLabelValues(method, route, status).Inc()
	p.requestDuration.WithLabelValues(method, route).Observe(durationSeconds)
}

func (p *Prom) IncSynthesis(outcome string) {
	p.synthesis.WithLabelValues(outcome).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (p *Prom) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
