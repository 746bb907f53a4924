// Package prompush pushes loader metrics to a Prometheus Pushgateway.
// A batch run of the dashboard loader is short-lived, so a scrape
// endpoint would usually be gone before Prometheus reads it.
package prompush

import (
	"fmt"

	"vistoria/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const defaultJob = "painel"

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string
	jobName    string
	reg        *prometheus.Registry

	stepCounter   *prometheus.CounterVec // painel_step_total
	stepDuration  *prometheus.SummaryVec // painel_step_duration_seconds
	recordCounter *prometheus.CounterVec // painel_records_total
	sourceCounter *prometheus.CounterVec // painel_sources_total
}

// NewBackend builds a backend pushing under jobName to gatewayURL.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = defaultJob
	}

	reg := prometheus.NewRegistry()

	// job is the Pushgateway grouping key, so it is not a label here.
	stepCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "painel_step_total",
			Help: "Loader step executions by step and status.",
		},
		[]string{"step", "status"},
	)
	stepDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "painel_step_duration_seconds",
			Help:       "Loader step duration in seconds by step and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step", "status"},
	)
	recordCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "painel_records_total",
			Help: "Inspection and goal rows by kind (loaded, kept, date_failures, ...).",
		},
		[]string{"kind"},
	)
	sourceCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "painel_sources_total",
			Help: "Source loads by outcome.",
		},
		[]string{"status"},
	)

	for name, c := range map[string]prometheus.Collector{
		"step counter":   stepCounter,
		"step summary":   stepDuration,
		"record counter": recordCounter,
		"source counter": sourceCounter,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		stepCounter:   stepCounter,
		stepDuration:  stepDuration,
		recordCounter: recordCounter,
		sourceCounter: sourceCounter,
	}, nil
}

// IncCounter routes known metric names to their collectors; unknown names
// are dropped.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "painel_step_total":
		if b.stepCounter != nil {
			b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)
		}
	case "painel_records_total":
		if b.recordCounter != nil {
			b.recordCounter.WithLabelValues(labels["kind"]).Add(delta)
		}
	case "painel_sources_total":
		if b.sourceCounter != nil {
			b.sourceCounter.WithLabelValues(labels["status"]).Add(delta)
		}
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != "painel_step_duration_seconds" || b.stepDuration == nil {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the registry to the Pushgateway, replacing the job's group.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
