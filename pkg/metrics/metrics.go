// Package metrics records roster load and query statistics as Prometheus
// metrics.
//
// # Overview
//
// Each Collector owns a private prometheus.Registry, so several collectors
// (one per test, one per CLI run) never clash on registration:
//   - cohortdata_records_loaded_total counts parsed records
//   - cohortdata_malformed_lines_total counts rejected lines
//   - cohortdata_load_duration_seconds observes load latency
//   - cohortdata_queries_total{query,status} counts queries by outcome
//   - cohortdata_query_duration_seconds{query} observes query latency
//
// # Basic Usage
//
//	collector := metrics.NewCollector("cli")
//	timer := metrics.NewTimer("load")
//	ds, err := roster.Load(ctx, path)
//	collector.RecordLoad(ds.Len(), timer.Stop())
//
//	// Dump everything in the Prometheus text format
//	_ = collector.WriteText(os.Stdout)
package metrics

import (
	"io"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

const namespace = "cohortdata"

// Query outcome labels.
const (
	StatusSuccess  = "success"
	StatusNotFound = "not_found"
	StatusError    = "error"
)

// Collector provides a centralized metrics collection interface for one
// component. It is safe for concurrent use.
type Collector struct {
	name           string
	registry       *prometheus.Registry
	recordsLoaded  prometheus.Counter
	malformedLines prometheus.Counter
	loadDuration   prometheus.Histogram
	queries        *prometheus.CounterVec
	queryDuration  *prometheus.HistogramVec
	startTime      time.Time
	mu             sync.RWMutex
	loads          int
}

// NewCollector creates a collector with its own registry. The name parameter
// is attached as a constant "component" label.
func NewCollector(name string) *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	labels := prometheus.Labels{"component": name}

	return &Collector{
		name:     name,
		registry: reg,
		recordsLoaded: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "records_loaded_total",
			Help:        "Total number of roster records parsed",
			ConstLabels: labels,
		}),
		malformedLines: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "malformed_lines_total",
			Help:        "Total number of lines rejected by the parser",
			ConstLabels: labels,
		}),
		loadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "load_duration_seconds",
			Help:        "Time to open, decompress and parse a roster file",
			ConstLabels: labels,
			Buckets: []float64{
				0.0001, // 100μs - small local file
				0.001,  // 1ms
				0.01,   // 10ms
				0.1,    // 100ms - remote object
				1,      // 1s
				10,     // 10s - large remote object
			},
		}),
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "queries_total",
			Help:        "Total number of queries executed",
			ConstLabels: labels,
		}, []string{"query", "status"}),
		queryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "query_duration_seconds",
			Help:        "Query latency over a loaded dataset",
			ConstLabels: labels,
			Buckets:     []float64{1e-6, 1e-5, 1e-4, 1e-3, 1e-2, 1e-1},
		}, []string{"query"}),
		startTime: time.Now(),
	}
}

// Name returns the component name.
func (c *Collector) Name() string {
	return c.name
}

// Registry returns the collector's registry, for use with promhttp or a
// custom gatherer.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordLoad records a successful load of n records.
func (c *Collector) RecordLoad(n int, d time.Duration) {
	c.recordsLoaded.Add(float64(n))
	c.loadDuration.Observe(d.Seconds())

	c.mu.Lock()
	c.loads++
	c.mu.Unlock()
}

// RecordMalformed counts a rejected line.
func (c *Collector) RecordMalformed() {
	c.malformedLines.Inc()
}

// RecordQuery counts one query with its outcome and latency.
func (c *Collector) RecordQuery(query, status string, d time.Duration) {
	c.queries.WithLabelValues(query, status).Inc()
	c.queryDuration.WithLabelValues(query).Observe(d.Seconds())
}

// GetAll returns a summary of the collector state
func (c *Collector) GetAll() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return map[string]interface{}{
		"component":  c.name,
		"start_time": c.startTime,
		"uptime":     time.Since(c.startTime).Seconds(),
		"loads":      c.loads,
	}
}

// StartTime returns when the collector was created
func (c *Collector) StartTime() time.Time {
	return c.startTime
}

// WriteText writes every metric in the Prometheus text exposition format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// Timer provides a simple timing mechanism for measuring operation durations.
// It captures the start time on creation and calculates elapsed time on stop.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Name returns the timer's label.
func (t *Timer) Name() string {
	return t.name
}

// Stop returns the elapsed duration since creation. It may be called more
// than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
