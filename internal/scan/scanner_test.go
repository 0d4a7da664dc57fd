package scan_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/soundprobe/clapscan/internal/classify"
	"github.com/soundprobe/clapscan/internal/classify/mock"
	"github.com/soundprobe/clapscan/internal/dataset"
	"github.com/soundprobe/clapscan/internal/inventory"
	"github.com/soundprobe/clapscan/internal/observe"
	"github.com/soundprobe/clapscan/internal/scan"
)

// memStore is an in-memory inventory.Store for scanner tests.
type memStore struct {
	recs      []inventory.Record
	insertErr error
}

func (s *memStore) Insert(_ context.Context, rec *inventory.Record) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	rec.ID = int64(len(s.recs) + 1)
	s.recs = append(s.recs, *rec)
	return nil
}

func (s *memStore) ListBySelection(_ context.Context, selection string) ([]inventory.Record, error) {
	if selection == "" {
		return s.recs, nil
	}
	var out []inventory.Record
	for _, r := range s.recs {
		if r.Selection == selection {
			out = append(out, r)
		}
	}
	return out, nil
}

func testMetrics(t *testing.T) *observe.Metrics {
	t.Helper()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m
}

func touch(t *testing.T, elem ...string) string {
	t.Helper()
	path := filepath.Join(elem...)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_ReportsAndClassifiesEveryFile(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	touch(t, root, "augmentations", "speech_in_wind", "audio", "w1", "mix_0_SNR_3.5.wav")
	touch(t, root, "augmentations", "speech_in_wind", "audio", "w1", "mix_1_SNR_-2.wav")
	touch(t, root, "augmentations", "speech_in_wind", "audio", "w2", "mix_2_SNR_0.wav")

	backend := &mock.Provider{Result: classify.Result{Label: "speech", Confidence: 0.8}}
	s := scan.New(dataset.NewLayout(root), backend, scan.WithMetrics(testMetrics(t)))

	sum, err := s.Run(context.Background(), []string{"speech_in_wind"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Discovered != 3 || sum.Scanned != 3 {
		t.Errorf("Summary = %+v, want Discovered=3 Scanned=3", sum)
	}

	calls := backend.Calls()
	if len(calls) != 3 {
		t.Fatalf("backend saw %d files, want 3", len(calls))
	}
	snrs := map[float64]bool{}
	for _, c := range calls {
		snrs[c.SNR] = true
	}
	for _, want := range []float64{3.5, -2, 0} {
		if !snrs[want] {
			t.Errorf("backend never saw SNR %v; calls: %+v", want, calls)
		}
	}
}

func TestRun_EmptySelectionIsNotAnError(t *testing.T) {
	t.Parallel()

	backend := &mock.Provider{}
	s := scan.New(dataset.NewLayout(t.TempDir()), backend, scan.WithMetrics(testMetrics(t)))

	sum, err := s.Run(context.Background(), []string{"babble", "speech", "speech_in_music"})
	if err != nil {
		t.Fatalf("Run over empty tree: %v", err)
	}
	if sum.Discovered != 0 || sum.Scanned != 0 {
		t.Errorf("Summary = %+v, want zero counts", sum)
	}
	if len(backend.Calls()) != 0 {
		t.Errorf("backend should not be invoked for empty selections")
	}
}

func TestRun_StopsAtFirstMalformedFilename(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	// Glob returns sorted paths, so the malformed file sits between two
	// well-formed ones.
	touch(t, root, "val", "wind", "audio", "w1", "a_SNR_1.wav")
	touch(t, root, "val", "wind", "audio", "w1", "b_no_marker.wav")
	touch(t, root, "val", "wind", "audio", "w1", "c_SNR_3.wav")

	backend := &mock.Provider{}
	s := scan.New(dataset.NewLayout(root), backend, scan.WithMetrics(testMetrics(t)))

	sum, err := s.Run(context.Background(), []string{"wind"})
	if err == nil {
		t.Fatal("expected error for malformed filename, got nil")
	}
	if !errors.Is(err, dataset.ErrNoSNRMarker) {
		t.Errorf("error should wrap ErrNoSNRMarker, got: %v", err)
	}
	if sum.Scanned != 1 {
		t.Errorf("Scanned = %d, want 1 (only the file before the failure)", sum.Scanned)
	}
	if got := len(backend.Calls()); got != 1 {
		t.Errorf("backend saw %d files, want 1", got)
	}
}

func TestRun_PropagatesClassifierError(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	touch(t, root, "val", "music", "audio", "m1", "song_SNR_5.wav")

	backendErr := errors.New("backend unavailable")
	backend := &mock.Provider{Err: backendErr}
	s := scan.New(dataset.NewLayout(root), backend,
		scan.WithMetrics(testMetrics(t)),
		scan.WithBackendName("clap-http"),
	)

	_, err := s.Run(context.Background(), []string{"music"})
	if !errors.Is(err, backendErr) {
		t.Fatalf("expected wrapped backend error, got: %v", err)
	}
}

func TestRun_PersistsToInventory(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	touch(t, root, "val", "babble", "audio", "babble_restaurant", "Resampled_kr_noise_restaurant_5__0_SNR_3.5.wav")

	backend := &mock.Provider{Result: classify.Result{Label: "babble", Confidence: 0.97}}
	store := &memStore{}
	s := scan.New(dataset.NewLayout(root), backend,
		scan.WithMetrics(testMetrics(t)),
		scan.WithInventory(store),
	)

	if _, err := s.Run(context.Background(), []string{"babble"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(store.recs) != 1 {
		t.Fatalf("store has %d records, want 1", len(store.recs))
	}
	rec := store.recs[0]
	if rec.SNR != 3.5 {
		t.Errorf("SNR = %v, want 3.5", rec.SNR)
	}
	if rec.Split != "val" {
		t.Errorf("Split = %q, want %q", rec.Split, "val")
	}
	if rec.Selection != "babble" {
		t.Errorf("Selection = %q, want %q", rec.Selection, "babble")
	}
	if rec.Subcategory != "babble_restaurant" {
		t.Errorf("Subcategory = %q, want %q", rec.Subcategory, "babble_restaurant")
	}
	if rec.Label != "babble" || rec.Confidence != 0.97 {
		t.Errorf("Label/Confidence = %q/%v, want babble/0.97", rec.Label, rec.Confidence)
	}
}

func TestRun_PropagatesInventoryError(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	touch(t, root, "val", "machine", "audio", "m1", "drill_SNR_2.wav")

	storeErr := errors.New("connection refused")
	s := scan.New(dataset.NewLayout(root), &mock.Provider{},
		scan.WithMetrics(testMetrics(t)),
		scan.WithInventory(&memStore{insertErr: storeErr}),
	)

	_, err := s.Run(context.Background(), []string{"machine"})
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got: %v", err)
	}
}

func TestRun_UnknownSelection(t *testing.T) {
	t.Parallel()

	s := scan.New(dataset.NewLayout(t.TempDir()), &mock.Provider{}, scan.WithMetrics(testMetrics(t)))
	if _, err := s.Run(context.Background(), []string{"thunder"}); err == nil {
		t.Fatal("expected error for unknown selection, got nil")
	}
}

func TestRun_CancelledContext(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	touch(t, root, "val", "speech", "audio", "kr", "clean_SNR_10.wav")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := scan.New(dataset.NewLayout(root), &mock.Provider{}, scan.WithMetrics(testMetrics(t)))
	if _, err := s.Run(ctx, []string{"speech"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got: %v", err)
	}
}
