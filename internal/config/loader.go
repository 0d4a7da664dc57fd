package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/soundprobe/clapscan/internal/dataset"
)

// ValidBackendNames lists classifier backend names that ship with clapscan.
// Used by [Validate] to warn about unrecognised backend names; third-party
// backends registered at runtime are still allowed.
var ValidBackendNames = []string{"stub"}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Dataset
	if cfg.Dataset.Root == "" {
		errs = append(errs, errors.New("dataset.root is required"))
	}

	// Scan selections: each must name a category or augmentation set, and
	// duplicates are rejected so a sequence is never iterated twice.
	seen := make(map[string]int, len(cfg.Scan.Selections))
	for i, sel := range cfg.Scan.Selections {
		prefix := fmt.Sprintf("scan.selections[%d]", i)
		if !dataset.Category(sel).IsValid() && !dataset.Augmentation(sel).IsValid() {
			errs = append(errs, fmt.Errorf("%s %q is not a known category or augmentation", prefix, sel))
			continue
		}
		if prev, ok := seen[sel]; ok {
			errs = append(errs, fmt.Errorf("%s %q is a duplicate of scan.selections[%d]", prefix, sel, prev))
		}
		seen[sel] = i
	}
	if len(cfg.Scan.Selections) == 0 {
		slog.Warn("scan.selections is empty; every category and augmentation set will be scanned")
	}

	// Classifier backend name — warn for unknown names.
	if name := cfg.Classifier.Name; name != "" && !slices.Contains(ValidBackendNames, name) {
		slog.Warn("unknown classifier backend — may be a typo or third-party backend",
			"name", name,
			"known", ValidBackendNames,
		)
	}

	// Inventory availability
	if cfg.Inventory.PostgresDSN == "" {
		slog.Warn("inventory.postgres_dsn is empty; scan results will not be persisted")
	}

	return errors.Join(errs...)
}

// Selections returns the configured scan selections, defaulting to every
// base category followed by every augmentation set when none are given.
func (c *Config) Selections() []string {
	if len(c.Scan.Selections) > 0 {
		return c.Scan.Selections
	}
	all := make([]string, 0, len(dataset.Categories)+len(dataset.Augmentations))
	for _, cat := range dataset.Categories {
		all = append(all, string(cat))
	}
	for _, aug := range dataset.Augmentations {
		all = append(all, string(aug))
	}
	return all
}
