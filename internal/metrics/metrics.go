// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metrics surface used by the services, the toggle engine
// and the HTTP middleware.
type Recorder interface {
	RecordHTTPRequest(method string, statusCode int, duration time.Duration)
	RecordToggle(kind string, active bool)
	RecordTokenEvent(event, outcome string)
	RecordMediaFailure(op string)
}

// Collector is the Prometheus backed Recorder.
type Collector struct {
	httpRequests *prometheus.CounterVec
	httpLatency  prometheus.Histogram
	toggles      *prometheus.CounterVec
	tokens       *prometheus.CounterVec
	mediaFail    *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vidstream_http_requests_total",
			Help: "HTTP responses by method and status code.",
		}, []string{"method", "status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vidstream_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		toggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vidstream_relation_toggles_total",
			Help: "Relation toggles by kind and resulting state.",
		}, []string{"kind", "state"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vidstream_token_events_total",
			Help: "Credential issues, rotations and revocations by outcome.",
		}, []string{"event", "outcome"}),
		mediaFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vidstream_media_failures_total",
			Help: "Object store failures by operation.",
		}, []string{"op"}),
	}

	reg.MustRegister(c.httpRequests, c.httpLatency, c.toggles, c.tokens, c.mediaFail)
	return c
}

func (c *Collector) RecordHTTPRequest(method string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.Observe(duration.Seconds())
}

func (c *Collector) RecordToggle(kind string, active bool) {
	state := "inactive"
	if active {
		state = "active"
	}
	c.toggles.WithLabelValues(kind, state).Inc()
}

func (c *Collector) RecordTokenEvent(event, outcome string) {
	c.tokens.WithLabelValues(event, outcome).Inc()
}

func (c *Collector) RecordMediaFailure(op string) {
	c.mediaFail.WithLabelValues(op).Inc()
}

// Discard is a Recorder that drops everything.
type Discard struct{}

func (Discard) RecordHTTPRequest(string, int, time.Duration) {}
func (Discard) RecordToggle(string, bool)                    {}
func (Discard) RecordTokenEvent(string, string)              {}
func (Discard) RecordMediaFailure(string)                    {}

// OrDiscard returns r, or Discard when r is nil.
func OrDiscard(r Recorder) Recorder {
	if r == nil {
		return Discard{}
	}
	return r
}

// Handler returns the Prometheus scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
