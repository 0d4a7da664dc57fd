// Package mock provides a test double for the classify.Provider interface.
//
// Use Provider in unit tests to verify which files the scanner hands to
// the backend and to feed controlled results without a live service.
//
// Example:
//
//	p := &mock.Provider{Result: classify.Result{Label: "wind", Confidence: 0.9}}
//	res, err := p.Classify(ctx, file, snr)
package mock

import (
	"context"
	"sync"

	"github.com/soundprobe/clapscan/internal/classify"
	"github.com/soundprobe/clapscan/internal/dataset"
)

// Call records a single invocation of Classify.
type Call struct {
	// File is the dataset file passed to Classify.
	File dataset.File
	// SNR is the parsed SNR passed to Classify.
	SNR float64
}

// Provider is a mock implementation of classify.Provider.
// Zero values cause Classify to return a zero Result and nil error.
type Provider struct {
	mu sync.Mutex

	// Result is returned from every Classify call.
	Result classify.Result

	// Err, if non-nil, is returned from Classify instead of Result.
	Err error

	// calls records every invocation in order.
	calls []Call
}

// Compile-time interface check.
var _ classify.Provider = (*Provider)(nil)

// Classify records the call and returns the configured Result or Err.
func (p *Provider) Classify(_ context.Context, file dataset.File, snr float64) (classify.Result, error) {
	p.mu.Lock()
	p.calls = append(p.calls, Call{File: file, SNR: snr})
	p.mu.Unlock()
	if p.Err != nil {
		return classify.Result{}, p.Err
	}
	return p.Result, nil
}

// Calls returns a copy of all recorded invocations.
func (p *Provider) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Call, len(p.calls))
	copy(out, p.calls)
	return out
}
