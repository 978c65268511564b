package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "helpdesk"

// Metrics owns a private registry with the crawler, chat and HTTP collectors.
type Metrics struct {
	registry *prometheus.Registry
	pages    *prometheus.CounterVec
	chats    *prometheus.CounterVec
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// New registers all collectors, Go runtime and process stats included.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crawler",
			Name:      "pages_total",
			Help:      "Crawled pages by outcome (extracted or skip reason).",
		}, []string{"outcome"}),
		chats: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "replies_total",
			Help:      "Chat turns by outcome and whether knowledge-base context was attached.",
		}, []string{"outcome", "context"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.pages, m.chats, m.requests, m.latency,
	)
	return m
}

// ObservePage counts one dequeued crawl page.
func (m *Metrics) ObservePage(outcome string) {
	m.pages.WithLabelValues(outcome).Inc()
}

// ObserveChat counts one chat turn.
func (m *Metrics) ObserveChat(outcome string, contextDocs bool) {
	m.chats.WithLabelValues(outcome, strconv.FormatBool(contextDocs)).Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, code int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.latency.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
