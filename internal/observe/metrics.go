// Package observe provides application-wide observability primitives for
// clapscan: OpenTelemetry metrics, tracing, structured logging, and HTTP
// middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all clapscan metrics.
const meterName = "github.com/soundprobe/clapscan"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms ---

	// ScanDuration tracks the wall time of enumerating and processing one
	// scan selection. Use with attribute.String("selection", ...).
	ScanDuration metric.Float64Histogram

	// ClassifyDuration tracks per-file classifier backend latency.
	ClassifyDuration metric.Float64Histogram

	// --- Counters ---

	// FilesDiscovered counts files returned by enumeration. Use with
	// attribute.String("selection", ...).
	FilesDiscovered metric.Int64Counter

	// FilesScanned counts files that completed the report step. Use with
	// attributes: attribute.String("selection", ...), attribute.String("status", ...)
	FilesScanned metric.Int64Counter

	// InventoryWrites counts rows written to the inventory store. Use with
	// attribute.String("status", ...).
	InventoryWrites metric.Int64Counter

	// --- Error counters ---

	// SNRParseFailures counts filenames whose SNR token could not be
	// parsed. Use with attribute.String("selection", ...).
	SNRParseFailures metric.Int64Counter

	// ClassifyErrors counts classifier backend failures. Use with
	// attribute.String("backend", ...).
	ClassifyErrors metric.Int64Counter

	// --- Gauges ---

	// ScansInFlight tracks the number of scan selections currently being
	// processed.
	ScansInFlight metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time on the admin
	// server. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds). Scan
// selections over a large tree can run for minutes, so the upper buckets
// stretch further than typical request-latency boundaries.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.ScanDuration, err = m.Float64Histogram("clapscan.scan.duration",
		metric.WithDescription("Wall time of one scan selection."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ClassifyDuration, err = m.Float64Histogram("clapscan.classify.duration",
		metric.WithDescription("Per-file classifier backend latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.FilesDiscovered, err = m.Int64Counter("clapscan.files.discovered",
		metric.WithDescription("Total files returned by enumeration, by selection."),
	); err != nil {
		return nil, err
	}
	if met.FilesScanned, err = m.Int64Counter("clapscan.files.scanned",
		metric.WithDescription("Total files reported, by selection and status."),
	); err != nil {
		return nil, err
	}
	if met.InventoryWrites, err = m.Int64Counter("clapscan.inventory.writes",
		metric.WithDescription("Total inventory rows written, by status."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.SNRParseFailures, err = m.Int64Counter("clapscan.snr.parse_failures",
		metric.WithDescription("Total filenames with an unparseable SNR token, by selection."),
	); err != nil {
		return nil, err
	}
	if met.ClassifyErrors, err = m.Int64Counter("clapscan.classify.errors",
		metric.WithDescription("Total classifier backend failures, by backend."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ScansInFlight, err = m.Int64UpDownCounter("clapscan.scans.in_flight",
		metric.WithDescription("Number of scan selections currently being processed."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("clapscan.http.request.duration",
		metric.WithDescription("Admin HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordFileScanned is a convenience method that records a scanned-file
// counter increment with the standard attribute set.
func (m *Metrics) RecordFileScanned(ctx context.Context, selection, status string) {
	m.FilesScanned.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("selection", selection),
			attribute.String("status", status),
		),
	)
}

// RecordSNRParseFailure is a convenience method that records an SNR parse
// failure counter increment.
func (m *Metrics) RecordSNRParseFailure(ctx context.Context, selection string) {
	m.SNRParseFailures.Add(ctx, 1,
		metric.WithAttributes(attribute.String("selection", selection)),
	)
}

// RecordClassifyError is a convenience method that records a classifier
// backend failure counter increment.
func (m *Metrics) RecordClassifyError(ctx context.Context, backend string) {
	m.ClassifyErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("backend", backend)),
	)
}

// RecordInventoryWrite is a convenience method that records an inventory
// write counter increment.
func (m *Metrics) RecordInventoryWrite(ctx context.Context, status string) {
	m.InventoryWrites.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
}
