package observability

import (
	"errors"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives pipeline measurements.
type Recorder interface {
	// Observe records a sample (seconds for durations, plain units otherwise).
	Observe(metric string, value float64)
	// Inc counts one event with a reason label.
	Inc(metric, reason string)
}

type NopRecorder struct{}

func (NopRecorder) Observe(string, float64) {}
func (NopRecorder) Inc(string, string)      {}

// PrometheusRecorder lazily registers one histogram per observed metric and
// one counter vector per counted metric. Dots in names become underscores.
type PrometheusRecorder struct {
	reg prometheus.Registerer

	mu         sync.Mutex
	histograms map[string]prometheus.Histogram
	counters   map[string]*prometheus.CounterVec
}

func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &PrometheusRecorder{
		reg:        reg,
		histograms: make(map[string]prometheus.Histogram),
		counters:   make(map[string]*prometheus.CounterVec),
	}
}

// PromName converts a dotted metric name to a Prometheus identifier.
func PromName(metric string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(metric)
}

func bucketsFor(metric string) []float64 {
	switch {
	case strings.HasSuffix(metric, ".duration"):
		return prometheus.ExponentialBuckets(0.005, 2, 12)
	case strings.HasSuffix(metric, ".bytes"):
		return prometheus.ExponentialBuckets(16*1024, 2, 12)
	default:
		return prometheus.ExponentialBuckets(1, 2, 10)
	}
}

func (p *PrometheusRecorder) Observe(metric string, value float64) {
	p.mu.Lock()
	h, ok := p.histograms[metric]
	if !ok {
		h = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    PromName(metric),
			Help:    "Distribution of " + metric + ".",
			Buckets: bucketsFor(metric),
		})
		h = register(p.reg, h)
		p.histograms[metric] = h
	}
	p.mu.Unlock()
	h.Observe(value)
}

func (p *PrometheusRecorder) Inc(metric, reason string) {
	p.mu.Lock()
	c, ok := p.counters[metric]
	if !ok {
		c = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: PromName(metric) + "_total",
			Help: "Count of " + metric + " by reason.",
		}, []string{"reason"})
		c = register(p.reg, c)
		p.counters[metric] = c
	}
	p.mu.Unlock()
	c.WithLabelValues(reason).Inc()
}

// register returns the collector already registered under the same
// descriptor when there is one.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}
