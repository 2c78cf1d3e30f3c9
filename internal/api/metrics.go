package api

import (
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector collects and exposes Prometheus metrics
type MetricsCollector struct {
	// Counters
	requestsTotal *Counter
	lookupTotal   *Counter
	errorTotal    *Counter

	// Histograms
	requestDuration *Histogram

	// Gauges
	jokesTotal  *Gauge
	goroutines  *Gauge
	memoryAlloc *Gauge

	startTime time.Time
}

// Counter is a monotonically increasing counter
type Counter struct {
	name   string
	help   string
	labels []string
	values sync.Map // map[string]*uint64
}

// Histogram tracks distributions of values
type Histogram struct {
	name    string
	help    string
	labels  []string
	buckets []float64
	values  sync.Map // map[string]*histogramValue
}

type histogramValue struct {
	mu      sync.Mutex
	sum     float64
	count   uint64
	buckets []uint64
}

// Gauge is a metric that can go up and down
type Gauge struct {
	name   string
	help   string
	labels []string
	values sync.Map // map[string]*atomic.Value (float64)
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	m := &MetricsCollector{
		startTime: time.Now(),
	}

	m.requestsTotal = &Counter{
		name:   "jokebox_requests_total",
		help:   "Total number of HTTP requests",
		labels: []string{"route", "status"},
	}

	m.lookupTotal = &Counter{
		name:   "jokebox_lookups_total",
		help:   "Total number of joke lookups",
		labels: []string{"kind", "outcome"},
	}

	m.errorTotal = &Counter{
		name:   "jokebox_errors_total",
		help:   "Total number of request errors",
		labels: []string{"code"},
	}

	m.requestDuration = &Histogram{
		name:    "jokebox_request_duration_seconds",
		help:    "Duration of HTTP requests in seconds",
		labels:  []string{"route"},
		buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}

	m.jokesTotal = &Gauge{
		name: "jokebox_jokes_total",
		help: "Number of jokes in the loaded dataset",
	}

	m.goroutines = &Gauge{
		name: "jokebox_goroutines",
		help: "Number of goroutines",
	}

	m.memoryAlloc = &Gauge{
		name: "jokebox_memory_alloc_bytes",
		help: "Bytes of allocated heap objects",
	}

	return m
}

// RecordRequest records a completed HTTP request
func (m *MetricsCollector) RecordRequest(route string, status int, duration time.Duration) {
	m.requestsTotal.Inc(route, fmt.Sprintf("%d", status))
	m.requestDuration.Observe(duration.Seconds(), route)
}

// RecordLookup records a joke lookup and its outcome
func (m *MetricsCollector) RecordLookup(kind, outcome string) {
	m.lookupTotal.Inc(kind, outcome)
}

// RecordError records a request error by code
func (m *MetricsCollector) RecordError(code string) {
	m.errorTotal.Inc(code)
}

// SetJokesTotal updates the dataset size gauge
func (m *MetricsCollector) SetJokesTotal(n int) {
	m.jokesTotal.Set(float64(n))
}

// Inc increments a counter for the given label values
func (c *Counter) Inc(labelValues ...string) {
	key := strings.Join(labelValues, "\x00")
	v, _ := c.values.LoadOrStore(key, new(uint64))
	atomic.AddUint64(v.(*uint64), 1)
}

// Observe records a value in the histogram for the given label values
func (h *Histogram) Observe(value float64, labelValues ...string) {
	key := strings.Join(labelValues, "\x00")
	v, _ := h.values.LoadOrStore(key, &histogramValue{
		buckets: make([]uint64, len(h.buckets)),
	})
	hv := v.(*histogramValue)

	hv.mu.Lock()
	defer hv.mu.Unlock()
	hv.sum += value
	hv.count++
	for i, bound := range h.buckets {
		if value <= bound {
			hv.buckets[i]++
		}
	}
}

// Set sets a gauge for the given label values
func (g *Gauge) Set(value float64, labelValues ...string) {
	key := strings.Join(labelValues, "\x00")
	v, _ := g.values.LoadOrStore(key, new(atomic.Value))
	v.(*atomic.Value).Store(value)
}

// Render produces the Prometheus text exposition format
func (m *MetricsCollector) Render() string {
	var b strings.Builder

	// Refresh runtime gauges at scrape time
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.goroutines.Set(float64(runtime.NumGoroutine()))
	m.memoryAlloc.Set(float64(ms.Alloc))

	renderCounter(&b, m.requestsTotal)
	renderCounter(&b, m.lookupTotal)
	renderCounter(&b, m.errorTotal)
	renderHistogram(&b, m.requestDuration)
	renderGauge(&b, m.jokesTotal)
	renderGauge(&b, m.goroutines)
	renderGauge(&b, m.memoryAlloc)

	fmt.Fprintf(&b, "# HELP jokebox_uptime_seconds Time since the server started\n")
	fmt.Fprintf(&b, "# TYPE jokebox_uptime_seconds gauge\n")
	fmt.Fprintf(&b, "jokebox_uptime_seconds %g\n", time.Since(m.startTime).Seconds())

	return b.String()
}

func renderCounter(b *strings.Builder, c *Counter) {
	fmt.Fprintf(b, "# HELP %s %s\n# TYPE %s counter\n", c.name, c.help, c.name)
	for _, key := range sortedKeys(&c.values) {
		v, _ := c.values.Load(key)
		fmt.Fprintf(b, "%s%s %d\n", c.name, formatLabels(c.labels, key), atomic.LoadUint64(v.(*uint64)))
	}
}

func renderGauge(b *strings.Builder, g *Gauge) {
	fmt.Fprintf(b, "# HELP %s %s\n# TYPE %s gauge\n", g.name, g.help, g.name)
	for _, key := range sortedKeys(&g.values) {
		v, _ := g.values.Load(key)
		val, _ := v.(*atomic.Value).Load().(float64)
		fmt.Fprintf(b, "%s%s %g\n", g.name, formatLabels(g.labels, key), val)
	}
}

func renderHistogram(b *strings.Builder, h *Histogram) {
	fmt.Fprintf(b, "# HELP %s %s\n# TYPE %s histogram\n", h.name, h.help, h.name)
	for _, key := range sortedKeys(&h.values) {
		v, _ := h.values.Load(key)
		hv := v.(*histogramValue)

		hv.mu.Lock()
		labels := splitLabelKey(h.labels, key)
		for i, bound := range h.buckets {
			bucketLabels := append(append([]string{}, labels...), fmt.Sprintf("le=\"%g\"", bound))
			fmt.Fprintf(b, "%s_bucket{%s} %d\n", h.name, strings.Join(bucketLabels, ","), hv.buckets[i])
		}
		infLabels := append(append([]string{}, labels...), "le=\"+Inf\"")
		fmt.Fprintf(b, "%s_bucket{%s} %d\n", h.name, strings.Join(infLabels, ","), hv.count)
		fmt.Fprintf(b, "%s_sum%s %g\n", h.name, formatLabels(h.labels, key), hv.sum)
		fmt.Fprintf(b, "%s_count%s %d\n", h.name, formatLabels(h.labels, key), hv.count)
		hv.mu.Unlock()
	}
}

func sortedKeys(m *sync.Map) []string {
	var keys []string
	m.Range(func(k, _ interface{}) bool {
		keys = append(keys, k.(string))
		return true
	})
	sort.Strings(keys)
	return keys
}

func splitLabelKey(labels []string, key string) []string {
	if len(labels) == 0 {
		return nil
	}
	values := strings.Split(key, "\x00")
	pairs := make([]string, 0, len(labels))
	for i, name := range labels {
		if i < len(values) {
			pairs = append(pairs, fmt.Sprintf("%s=%q", name, values[i]))
		}
	}
	return pairs
}

func formatLabels(labels []string, key string) string {
	pairs := splitLabelKey(labels, key)
	if len(pairs) == 0 {
		return ""
	}
	return "{" + strings.Join(pairs, ",") + "}"
}

// handleMetrics serves the Prometheus text exposition
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(s.metrics.Render()))
}
