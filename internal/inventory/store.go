// Package inventory persists scan results so that dataset runs can be
// queried after the fact (which files were seen, at which SNR, and what the
// classifier said about them).
package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Record is one scanned file as stored in the inventory.
type Record struct {
	// ID is the database-assigned row identifier. Zero until persisted.
	ID int64

	// Path is the full filesystem path of the scanned file. Unique: a
	// re-scan of the same file replaces its previous record.
	Path string

	// Split is the dataset split the file belongs to ("" for augmentation
	// files).
	Split string

	// Selection is the category or augmentation set the file was scanned
	// under.
	Selection string

	// Subcategory is the directory directly containing the file.
	Subcategory string

	// SNR is the signal-to-noise ratio parsed from the filename.
	SNR float64

	// Label is the classifier backend's predicted sound class.
	Label string

	// Confidence is the backend's confidence in Label, in [0, 1].
	Confidence float64

	// ScannedAt is when the record was written. Set by the store.
	ScannedAt time.Time
}

// Validate checks that the record can be persisted.
func (r *Record) Validate() error {
	var errs []error
	if r.Path == "" {
		errs = append(errs, errors.New("inventory: record path is required"))
	}
	if r.Selection == "" {
		errs = append(errs, errors.New("inventory: record selection is required"))
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		errs = append(errs, fmt.Errorf("inventory: confidence %v is out of range [0, 1]", r.Confidence))
	}
	return errors.Join(errs...)
}

// Store persists scan records.
// Implementations must be safe for concurrent use.
type Store interface {
	// Insert writes a record, replacing any previous record for the same
	// path. The record is validated first. On success ID and ScannedAt are
	// filled in.
	Insert(ctx context.Context, rec *Record) error

	// ListBySelection returns all records for the given selection, ordered
	// by path. An empty selection returns every record.
	ListBySelection(ctx context.Context, selection string) ([]Record, error)
}
