// Package stub provides the placeholder classification backend.
//
// It performs no audio processing: each call logs the file it would have
// classified and returns a fixed "unclassified" result. It exists so the
// scan pipeline has a working default until a real CLAP backend is wired
// in.
package stub

import (
	"context"

	"github.com/soundprobe/clapscan/internal/classify"
	"github.com/soundprobe/clapscan/internal/dataset"
	"github.com/soundprobe/clapscan/internal/observe"
)

// Label is the fixed label returned for every file.
const Label = "unclassified"

// Provider is the stub backend. The zero value is ready to use.
type Provider struct{}

// Compile-time interface check.
var _ classify.Provider = (*Provider)(nil)

// New returns a stub backend. The settings are accepted for factory
// compatibility and ignored.
func New(classify.Settings) (*Provider, error) {
	return &Provider{}, nil
}

// Classify logs the file and returns the fixed [Label] without touching
// the audio. It fails only when ctx is already done.
func (p *Provider) Classify(ctx context.Context, file dataset.File, snr float64) (classify.Result, error) {
	if err := ctx.Err(); err != nil {
		return classify.Result{}, err
	}
	observe.Logger(ctx).Debug("stub classifier invoked",
		"path", file.Path,
		"snr", snr,
	)
	return classify.Result{Label: Label}, nil
}
