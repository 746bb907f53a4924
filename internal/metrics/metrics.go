// Package metrics records operational counters and timings for the
// dashboard loader. Callers depend only on Backend; concrete systems
// (Prometheus Pushgateway, Datadog) live in subpackages and are installed
// at startup with SetBackend. Until then every call is a no-op.
package metrics

import (
	"sync"
	"time"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is implemented by every metrics sink.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a duration-like value.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes buffered metrics, if the backend buffers.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs a concrete backend. Passing nil keeps the current one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStep counts one execution of a loader step and its latency.
// Steps are "fetch", "normalize", "classify", "goals", "merge" and so on.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "step": step, "status": status}

	b := current()
	b.IncCounter("painel_step_total", 1, lbls)
	b.ObserveHistogram("painel_step_duration_seconds", d.Seconds(), lbls)
}

// RecordRows adds delta to the record counter for kind. Kinds used by the
// loader:
//   - "loaded": inspection rows read from a source
//   - "kept": rows surviving normalization
//   - "date_failures": rows whose DATA did not parse
//   - "reinspections": rows classified as re-inspections
//   - "goals": goal rows accepted
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter("painel_records_total", float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordSource counts one source load outcome ("ok" or "failed").
func RecordSource(job, status string) {
	current().IncCounter("painel_sources_total", 1, Labels{
		"job":    job,
		"status": status,
	})
}
