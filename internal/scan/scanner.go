// Package scan drives the dataset scan pipeline: enumerate a selection,
// parse the SNR out of each filename, report the file, hand it to the
// classifier backend, and optionally persist the result.
//
// Error semantics are deliberately strict: the first malformed filename or
// backend failure aborts the scan and propagates to the caller. Files
// reported before the failure stay reported (and persisted, when an
// inventory store is configured).
package scan

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/soundprobe/clapscan/internal/classify"
	"github.com/soundprobe/clapscan/internal/dataset"
	"github.com/soundprobe/clapscan/internal/inventory"
	"github.com/soundprobe/clapscan/internal/observe"
)

// Scanner walks scan selections through the report → classify → persist
// pipeline. Construct one with [New]; the zero value is not usable.
type Scanner struct {
	layout      dataset.Layout
	backend     classify.Provider
	backendName string
	store       inventory.Store
	metrics     *observe.Metrics
}

// Option customises a [Scanner].
type Option func(*Scanner)

// WithInventory makes the scanner persist every scanned file to store.
func WithInventory(store inventory.Store) Option {
	return func(s *Scanner) { s.store = store }
}

// WithMetrics overrides the metrics instance used by the scanner. Without
// this option the scanner records to [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Scanner) { s.metrics = m }
}

// WithBackendName sets the backend name attached to classifier error
// metrics. Defaults to "stub".
func WithBackendName(name string) Option {
	return func(s *Scanner) { s.backendName = name }
}

// New creates a [Scanner] over the given dataset layout and classifier
// backend.
func New(layout dataset.Layout, backend classify.Provider, opts ...Option) *Scanner {
	s := &Scanner{
		layout:      layout,
		backend:     backend,
		backendName: "stub",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	return s
}

// Summary aggregates counts across one [Scanner.Run] call.
type Summary struct {
	// Discovered is the total number of files returned by enumeration.
	Discovered int

	// Scanned is the number of files that completed the pipeline.
	Scanned int
}

// Run processes the given selections in order. Each selection is
// enumerated and its files walked through the pipeline sequentially.
// A selection that matches zero files is not an error; the run simply
// moves on. Run stops at the first failure and returns it together with
// the counts accumulated so far.
func (s *Scanner) Run(ctx context.Context, selections []string) (Summary, error) {
	var sum Summary
	for _, sel := range selections {
		if err := s.runSelection(ctx, sel, &sum); err != nil {
			return sum, err
		}
	}
	return sum, nil
}

// runSelection enumerates one selection and walks its files.
func (s *Scanner) runSelection(ctx context.Context, sel string, sum *Summary) error {
	ctx, span := observe.StartSpan(ctx, "scan "+sel,
		trace.WithAttributes(attribute.String("selection", sel)),
	)
	defer span.End()

	s.metrics.ScansInFlight.Add(ctx, 1)
	defer s.metrics.ScansInFlight.Add(ctx, -1)
	start := time.Now()
	defer func() {
		s.metrics.ScanDuration.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributes(attribute.String("selection", sel)),
		)
	}()

	files, err := s.layout.Enumerate(sel)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	sum.Discovered += len(files)
	s.metrics.FilesDiscovered.Add(ctx, int64(len(files)),
		metric.WithAttributes(attribute.String("selection", sel)),
	)
	observe.Logger(ctx).Info("selection enumerated",
		"selection", sel,
		"files", len(files),
	)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.processFile(ctx, sel, file); err != nil {
			s.metrics.RecordFileScanned(ctx, sel, "error")
			return err
		}
		s.metrics.RecordFileScanned(ctx, sel, "ok")
		sum.Scanned++
	}
	return nil
}

// processFile runs one file through parse → report → classify → persist.
func (s *Scanner) processFile(ctx context.Context, sel string, file dataset.File) error {
	snr, err := dataset.ParseSNR(file.Path)
	if err != nil {
		s.metrics.RecordSNRParseFailure(ctx, sel)
		return fmt.Errorf("scan: %w", err)
	}

	// The per-file status line.
	observe.Logger(ctx).Info("processing file",
		"path", file.Path,
		"snr", snr,
	)

	classifyStart := time.Now()
	res, err := s.backend.Classify(ctx, file, snr)
	s.metrics.ClassifyDuration.Record(ctx, time.Since(classifyStart).Seconds(),
		metric.WithAttributes(attribute.String("backend", s.backendName)),
	)
	if err != nil {
		s.metrics.RecordClassifyError(ctx, s.backendName)
		return fmt.Errorf("scan: classify %q: %w", file.Path, err)
	}

	if s.store == nil {
		return nil
	}
	rec := &inventory.Record{
		Path:        file.Path,
		Split:       file.Split,
		Selection:   file.Selection,
		Subcategory: file.Subcategory,
		SNR:         snr,
		Label:       res.Label,
		Confidence:  res.Confidence,
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		s.metrics.RecordInventoryWrite(ctx, "error")
		return fmt.Errorf("scan: persist %q: %w", file.Path, err)
	}
	s.metrics.RecordInventoryWrite(ctx, "ok")
	return nil
}
