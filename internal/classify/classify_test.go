package classify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/soundprobe/clapscan/internal/classify"
	"github.com/soundprobe/clapscan/internal/classify/stub"
	"github.com/soundprobe/clapscan/internal/dataset"
)

func TestRegistry_CreateRegistered(t *testing.T) {
	t.Parallel()

	reg := classify.NewRegistry()
	reg.Register("stub", func(s classify.Settings) (classify.Provider, error) {
		return stub.New(s)
	})

	p, err := reg.Create("stub", classify.Settings{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p == nil {
		t.Fatal("Create returned nil provider")
	}
}

func TestRegistry_CreateUnknown(t *testing.T) {
	t.Parallel()

	reg := classify.NewRegistry()
	_, err := reg.Create("clap-http", classify.Settings{})
	if !errors.Is(err, classify.ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got: %v", err)
	}
}

func TestRegistry_RegisterOverwrites(t *testing.T) {
	t.Parallel()

	reg := classify.NewRegistry()
	reg.Register("x", func(classify.Settings) (classify.Provider, error) {
		t.Fatal("overwritten factory must not be called")
		return nil, nil
	})
	reg.Register("x", func(s classify.Settings) (classify.Provider, error) {
		return stub.New(s)
	})

	if _, err := reg.Create("x", classify.Settings{}); err != nil {
		t.Fatalf("Create after overwrite: %v", err)
	}
}

func TestStub_Classify(t *testing.T) {
	t.Parallel()

	p, err := stub.New(classify.Settings{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	file := dataset.File{Path: "/data/val/wind/audio/w1/gust_SNR_2.wav", Selection: "wind"}
	res, err := p.Classify(context.Background(), file, 2)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Label != stub.Label {
		t.Errorf("Label = %q, want %q", res.Label, stub.Label)
	}
	if res.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", res.Confidence)
	}
}

func TestStub_ClassifyCancelledContext(t *testing.T) {
	t.Parallel()

	p, _ := stub.New(classify.Settings{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Classify(ctx, dataset.File{Path: "x_SNR_1.wav"}, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got: %v", err)
	}
}
