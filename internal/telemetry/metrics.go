package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/offices"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Office lifecycle metrics
	OfficesCreatedTotal  metric.Int64Counter
	OfficesReplacedTotal metric.Int64Counter
	OfficesPatchedTotal  metric.Int64Counter
	OfficesDeletedTotal  metric.Int64Counter
	ConflictsTotal       metric.Int64Counter

	// Relationship metrics
	AssignmentsTotal        metric.Int64Counter
	UnassignmentsTotal      metric.Int64Counter
	CascadeUnassignedTotal  metric.Int64Counter
	PartialWriteFailedTotal metric.Int64Counter

	// Failure metrics
	OperationFailuresTotal metric.Int64Counter

	// HTTP metrics
	RequestDuration metric.Float64Histogram
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	// Office lifecycle metrics
	m.OfficesCreatedTotal, _ = meter.Int64Counter(
		"offices.created.total",
		metric.WithDescription("Total number of offices created"),
		metric.WithUnit("{office}"),
	)

	m.OfficesReplacedTotal, _ = meter.Int64Counter(
		"offices.replaced.total",
		metric.WithDescription("Total number of full office replacements"),
		metric.WithUnit("{office}"),
	)

	m.OfficesPatchedTotal, _ = meter.Int64Counter(
		"offices.patched.total",
		metric.WithDescription("Total number of partial office updates"),
		metric.WithUnit("{office}"),
	)

	m.OfficesDeletedTotal, _ = meter.Int64Counter(
		"offices.deleted.total",
		metric.WithDescription("Total number of offices deleted"),
		metric.WithUnit("{office}"),
	)

	m.ConflictsTotal, _ = meter.Int64Counter(
		"offices.conflicts.total",
		metric.WithDescription("Total number of writes rejected by the uniqueness check"),
		metric.WithUnit("{conflict}"),
	)

	// Relationship metrics
	m.AssignmentsTotal, _ = meter.Int64Counter(
		"offices.employees.assigned.total",
		metric.WithDescription("Total number of employees assigned to an office"),
		metric.WithUnit("{employee}"),
	)

	m.UnassignmentsTotal, _ = meter.Int64Counter(
		"offices.employees.unassigned.total",
		metric.WithDescription("Total number of employees removed from an office"),
		metric.WithUnit("{employee}"),
	)

	m.CascadeUnassignedTotal, _ = meter.Int64Counter(
		"offices.employees.cascade_unassigned.total",
		metric.WithDescription("Total number of employees released because their office was deleted"),
		metric.WithUnit("{employee}"),
	)

	m.PartialWriteFailedTotal, _ = meter.Int64Counter(
		"offices.employees.partial_write_failed.total",
		metric.WithDescription("Total number of link updates where the employee was written but the office write failed"),
		metric.WithUnit("{failure}"),
	)

	// Failure metrics
	m.OperationFailuresTotal, _ = meter.Int64Counter(
		"offices.operations.failed.total",
		metric.WithDescription("Total number of operations that failed on a storage error"),
		metric.WithUnit("{error}"),
	)

	// HTTP metrics
	m.RequestDuration, _ = meter.Float64Histogram(
		"offices.http.request.duration",
		metric.WithDescription("Duration of HTTP requests"),
		metric.WithUnit("ms"),
	)

	return m
}
