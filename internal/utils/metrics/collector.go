// internal/utils/metrics/collector.go
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricType identifies a metric held by the Collector.
type MetricType string

const (
	ReloadCounterType     MetricType = "reload_counter"
	ReloadDurationType    MetricType = "reload_duration"
	TokensGaugeType       MetricType = "tokens"
	SuppressedCounterType MetricType = "suppressed_lines"
	PriceDirectionType    MetricType = "price_direction"
	QuoteLatencyType      MetricType = "quote_latency"
)

const namespace = "limit_bot"

// Collector owns the bot's metrics and the registry they are exposed from.
// A nil *Collector is valid and records nothing.
type Collector struct {
	metrics  sync.Map
	registry *prometheus.Registry
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}
	c.initializeMetrics()
	return c
}

func (c *Collector) initializeMetrics() {
	metricsMap := map[MetricType]prometheus.Collector{
		ReloadCounterType: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "token_reloads_total",
				Help:      "Token file reloads by outcome",
			},
			[]string{"outcome"},
		),
		ReloadDurationType: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "token_reload_duration_seconds",
				Help:      "Time spent rebuilding and reconciling the token set",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
			},
		),
		TokensGaugeType: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tokens",
				Help:      "Tokens in the live set",
			},
			[]string{"kind"},
		),
		SuppressedCounterType: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "suppressed_lines_total",
				Help:      "Console lines suppressed as repeats",
			},
			[]string{"kind"},
		),
		PriceDirectionType: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "price_samples_total",
				Help:      "Rendered price samples by direction",
			},
			[]string{"direction"},
		),
		QuoteLatencyType: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "quote_latency_seconds",
				Help:      "Latency of price requests",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"source", "status"},
		),
	}

	for metricType, metric := range metricsMap {
		c.metrics.Store(metricType, metric)
		c.registry.MustRegister(metric)
	}
}

// Registry returns the registry the metrics are registered with.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Reset clears every vector metric (useful in tests).
func (c *Collector) Reset() {
	if c == nil {
		return
	}
	c.metrics.Range(func(_, value interface{}) bool {
		switch m := value.(type) {
		case *prometheus.CounterVec:
			m.Reset()
		case *prometheus.GaugeVec:
			m.Reset()
		case *prometheus.HistogramVec:
			m.Reset()
		}
		return true
	})
}

// Metric returns the metric registered under t.
func (c *Collector) Metric(t MetricType) (prometheus.Collector, bool) {
	if c == nil {
		return nil, false
	}
	m, ok := c.metrics.Load(t)
	if !ok {
		return nil, false
	}
	metric, ok := m.(prometheus.Collector)
	return metric, ok
}

func (c *Collector) counterVec(t MetricType) (*prometheus.CounterVec, bool) {
	if c == nil {
		return nil, false
	}
	m, ok := c.metrics.Load(t)
	if !ok {
		return nil, false
	}
	vec, ok := m.(*prometheus.CounterVec)
	return vec, ok
}

// RecordReload records one reload attempt.
func (c *Collector) RecordReload(success bool, duration time.Duration) {
	counter, ok := c.counterVec(ReloadCounterType)
	if !ok {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	counter.WithLabelValues(outcome).Inc()

	if m, ok := c.metrics.Load(ReloadDurationType); ok {
		if hist, ok := m.(prometheus.Histogram); ok {
			hist.Observe(duration.Seconds())
		}
	}
}

// SetTokens publishes the size of the live set. kind is "total", "enabled"
// or "derived".
func (c *Collector) SetTokens(kind string, n int) {
	if c == nil {
		return
	}
	if m, ok := c.metrics.Load(TokensGaugeType); ok {
		if gauge, ok := m.(*prometheus.GaugeVec); ok {
			gauge.WithLabelValues(kind).Set(float64(n))
		}
	}
}

// RecordSuppressed counts a line hidden by the repeat gate.
func (c *Collector) RecordSuppressed(kind string) {
	if counter, ok := c.counterVec(SuppressedCounterType); ok {
		counter.WithLabelValues(kind).Inc()
	}
}

// RecordDirection counts a rendered price sample.
func (c *Collector) RecordDirection(direction string) {
	if counter, ok := c.counterVec(PriceDirectionType); ok {
		counter.WithLabelValues(direction).Inc()
	}
}

// RecordQuoteLatency records the duration of a price request.
func (c *Collector) RecordQuoteLatency(source string, duration time.Duration, err error) {
	if c == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	if m, ok := c.metrics.Load(QuoteLatencyType); ok {
		if hist, ok := m.(*prometheus.HistogramVec); ok {
			hist.WithLabelValues(source, status).Observe(duration.Seconds())
		}
	}
}
