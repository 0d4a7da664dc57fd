// Package classify defines the Provider interface for audio classification
// backends and a name-based registry for constructing them.
//
// A classification backend receives an enumerated dataset file together
// with the SNR recovered from its filename and returns a label for the
// dominant sound class. The default backend ("stub") performs no audio
// processing at all: it stands in for a real CLAP-style classifier so the
// scan pipeline can be exercised end to end without a model runtime.
package classify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/soundprobe/clapscan/internal/dataset"
)

// Result is the outcome of classifying a single audio file.
type Result struct {
	// Label is the predicted sound class (e.g. "babble", "speech").
	// The stub backend always returns "unclassified".
	Label string

	// Confidence is the backend's confidence in Label, in [0, 1].
	// Backends that do not produce calibrated scores may report 0.
	Confidence float64
}

// Provider is the abstraction over any classification backend.
//
// Implementations must be safe for concurrent use.
type Provider interface {
	// Classify labels the given file. The snr value is the
	// signal-to-noise ratio parsed from the filename; backends may use it
	// as a prior or ignore it.
	//
	// Returns an error if the backend cannot produce a result (e.g.
	// unreachable service or ctx already cancelled).
	Classify(ctx context.Context, file dataset.File, snr float64) (Result, error)
}

// Settings is the configuration block handed to backend factories. It
// mirrors the classifier entry of the YAML config without importing the
// config package.
type Settings struct {
	// BaseURL overrides the backend's default endpoint, for backends that
	// talk to a service. Ignored by the stub.
	BaseURL string

	// APIKey authenticates against the backend's service if any.
	APIKey string

	// Model selects a specific model within the backend.
	Model string

	// Options holds backend-specific values not covered by the standard
	// fields above.
	Options map[string]any
}

// ErrNotRegistered is returned by [Registry.Create] when no factory has
// been registered under the requested backend name.
var ErrNotRegistered = errors.New("classify: backend not registered")

// Registry maps backend names to their constructor functions. It is safe
// for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]func(Settings) (Provider, error)
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]func(Settings) (Provider, error))}
}

// Register registers a backend factory under name. Subsequent calls with
// the same name overwrite the previous registration.
func (r *Registry) Register(name string, factory func(Settings) (Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Create instantiates the backend registered under name.
// Returns [ErrNotRegistered] if no factory has been registered for name.
func (r *Registry) Create(name string, settings Settings) (Provider, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotRegistered, name)
	}
	return factory(settings)
}

// Names returns the registered backend names in unspecified order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}
