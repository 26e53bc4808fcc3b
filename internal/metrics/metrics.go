// Package metrics records schema engine activity in Prometheus collectors.
//
// All methods are safe on a nil *Recorder so callers that do not care about
// metrics can pass nil.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// DefaultJob is the Pushgateway job name used when none is given.
const DefaultJob = "gridfields"

// Command outcome labels.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Recorder holds the engine's collectors.
type Recorder struct {
	commands        *prometheus.CounterVec // "gridfields_commands_total"
	persistFailures prometheus.Counter     // "gridfields_persist_failures_total"
	dropped         prometheus.Counter     // "gridfields_notifications_dropped_total"
	fields          *prometheus.GaugeVec   // "gridfields_fields"

	gatherer prometheus.Gatherer // nil if reg cannot be gathered
}

// New creates the collectors and registers them with reg. A nil reg uses a
// fresh private registry. Push works only when reg is also a Gatherer.
func New(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	commands := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridfields_commands_total",
			Help: "Schema commands executed, partitioned by command and status.",
		},
		[]string{"command", "status"},
	)
	persistFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gridfields_persist_failures_total",
			Help: "Field revisions the store failed to record.",
		},
	)
	dropped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gridfields_notifications_dropped_total",
			Help: "Field change notifications dropped because the consumer was full.",
		},
	)
	fields := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gridfields_fields",
			Help: "Number of fields per loaded grid.",
		},
		[]string{"grid_id"},
	)

	for name, c := range map[string]prometheus.Collector{
		"commands counter":         commands,
		"persist failures counter": persistFailures,
		"dropped counter":          dropped,
		"fields gauge":             fields,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register %s: %w", name, err)
		}
	}

	gatherer, _ := reg.(prometheus.Gatherer)
	return &Recorder{
		gatherer:        gatherer,
		commands:        commands,
		persistFailures: persistFailures,
		dropped:         dropped,
		fields:          fields,
	}, nil
}

// Command counts one execution of a schema command.
func (r *Recorder) Command(name string, err error) {
	if r == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	r.commands.WithLabelValues(name, status).Inc()
}

// PersistFailed counts a store failure.
func (r *Recorder) PersistFailed() {
	if r == nil {
		return
	}
	r.persistFailures.Inc()
}

// NotificationDropped counts a dropped change notification.
func (r *Recorder) NotificationDropped() {
	if r == nil {
		return
	}
	r.dropped.Inc()
}

// FieldCount records the current number of fields of a grid.
func (r *Recorder) FieldCount(gridID string, n int) {
	if r == nil {
		return
	}
	r.fields.WithLabelValues(gridID).Set(float64(n))
}

// Push sends every collector to the Pushgateway at gatewayURL under job
// (DefaultJob if empty), replacing the metrics previously pushed for it.
func (r *Recorder) Push(gatewayURL, job string) error {
	if r == nil {
		return nil
	}
	if gatewayURL == "" {
		return errors.New("metrics: pushgateway URL is required")
	}
	if r.gatherer == nil {
		return errors.New("metrics: registry cannot be gathered")
	}
	if job == "" {
		job = DefaultJob
	}
	if err := push.New(gatewayURL, job).Gatherer(r.gatherer).Push(); err != nil {
		return fmt.Errorf("metrics: push to %s: %w", gatewayURL, err)
	}
	return nil
}
