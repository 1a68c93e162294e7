// Package metrics exposes request and feed metrics in Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	feeds    *prometheus.HistogramVec
}

// New builds a private registry so that several servers (tests) can coexist
// in one process.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blogicum",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "blogicum",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		feeds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "blogicum",
			Name:      "feed_posts",
			Help:      "Posts returned per feed page.",
			Buckets:   prometheus.LinearBuckets(0, 5, 6),
		}, []string{"feed"}),
	}
	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.feeds,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest records one served request. An empty route means no
// pattern matched.
func (m *Metrics) ObserveRequest(route, method string, code int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveFeed(feed string, posts int) {
	m.feeds.WithLabelValues(feed).Observe(float64(posts))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
