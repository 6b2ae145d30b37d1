package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// GatewayMetrics records request-level and engine-level counters for the
// storefront gateway.
type GatewayMetrics struct {
	requestDuration *prometheus.HistogramVec
	ordersSubmitted *prometheus.CounterVec
	historyPages    *prometheus.CounterVec
	staleDiscarded  prometheus.Counter
}

// NewGatewayMetrics registers the gateway metrics on the provided registerer.
func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	if reg == nil {
		return &GatewayMetrics{}
	}
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of gateway HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
	ordersSubmitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_submitted_total",
		Help: "Order submissions grouped by outcome.",
	}, []string{"outcome"})
	historyPages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "history_pages_fetched_total",
		Help: "Order history pages fetched grouped by kind (first/next).",
	}, []string{"kind"})
	staleDiscarded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "history_stale_responses_discarded_total",
		Help: "History responses dropped because their query was superseded.",
	})
	reg.MustRegister(requestDuration, ordersSubmitted, historyPages, staleDiscarded)
	return &GatewayMetrics{
		requestDuration: requestDuration,
		ordersSubmitted: ordersSubmitted,
		historyPages:    historyPages,
		staleDiscarded:  staleDiscarded,
	}
}

// ObserveRequest records the duration for the given route/method pair.
func (g *GatewayMetrics) ObserveRequest(route, method string, duration time.Duration) {
	if g == nil || g.requestDuration == nil {
		return
	}
	g.requestDuration.WithLabelValues(normalizeLabel(route), normalizeLabel(method)).Observe(duration.Seconds())
}

// IncOrderSubmitted counts an order submission outcome ("success"/"failure").
func (g *GatewayMetrics) IncOrderSubmitted(outcome string) {
	if g == nil || g.ordersSubmitted == nil {
		return
	}
	g.ordersSubmitted.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncHistoryPage counts a fetched history page ("first"/"next").
func (g *GatewayMetrics) IncHistoryPage(kind string) {
	if g == nil || g.historyPages == nil {
		return
	}
	g.historyPages.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncStaleDiscarded counts a dropped stale history response.
func (g *GatewayMetrics) IncStaleDiscarded() {
	if g == nil || g.staleDiscarded == nil {
		return
	}
	g.staleDiscarded.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
