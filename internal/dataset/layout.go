package dataset

import (
	"fmt"
	"path/filepath"
	"strings"
)

// augmentationsDir is the fixed directory name holding the mixture sets.
const augmentationsDir = "augmentations"

// Layout locates dataset files underneath a configurable root directory.
// The zero value is not usable; construct one with [NewLayout].
type Layout struct {
	root string
}

// NewLayout returns a [Layout] rooted at root. The root is cleaned but not
// required to exist: enumerating a missing tree simply yields no files.
func NewLayout(root string) Layout {
	return Layout{root: filepath.Clean(root)}
}

// Root returns the cleaned dataset root directory.
func (l Layout) Root() string { return l.root }

// CategoryPattern returns the glob pattern matching all files of the given
// base category across every split and subcategory:
//
//	<root>/*/<category>/audio/*/*.wav
func (l Layout) CategoryPattern(c Category) string {
	return filepath.Join(l.root, "*", string(c), "audio", "*", "*.wav")
}

// AugmentationPattern returns the glob pattern matching all files of the
// given augmentation set:
//
//	<root>/augmentations/<augmentation>/audio/*/*.wav
func (l Layout) AugmentationPattern(a Augmentation) string {
	return filepath.Join(l.root, augmentationsDir, string(a), "audio", "*", "*.wav")
}

// EnumerateCategory returns all files of the base category c. Wildcards
// expand at exactly the depths of [Layout.CategoryPattern]; matching is
// never recursive. Zero matches yield an empty slice, not an error.
func (l Layout) EnumerateCategory(c Category) ([]File, error) {
	if !c.IsValid() {
		return nil, fmt.Errorf("dataset: unknown category %q", c)
	}
	matches, err := filepath.Glob(l.CategoryPattern(c))
	if err != nil {
		return nil, fmt.Errorf("dataset: enumerate category %q: %w", c, err)
	}
	files := make([]File, 0, len(matches))
	for _, m := range matches {
		files = append(files, l.decompose(m, string(c)))
	}
	return files, nil
}

// EnumerateAugmentation returns all files of the augmentation set a.
// Semantics match [Layout.EnumerateCategory].
func (l Layout) EnumerateAugmentation(a Augmentation) ([]File, error) {
	if !a.IsValid() {
		return nil, fmt.Errorf("dataset: unknown augmentation %q", a)
	}
	matches, err := filepath.Glob(l.AugmentationPattern(a))
	if err != nil {
		return nil, fmt.Errorf("dataset: enumerate augmentation %q: %w", a, err)
	}
	files := make([]File, 0, len(matches))
	for _, m := range matches {
		files = append(files, l.decompose(m, string(a)))
	}
	return files, nil
}

// Enumerate resolves selection as either a base category or an augmentation
// name and returns its files. Unknown names are an error.
func (l Layout) Enumerate(selection string) ([]File, error) {
	if c := Category(selection); c.IsValid() {
		return l.EnumerateCategory(c)
	}
	if a := Augmentation(selection); a.IsValid() {
		return l.EnumerateAugmentation(a)
	}
	return nil, fmt.Errorf("dataset: unknown selection %q", selection)
}

// decompose recovers the layout coordinates of a matched path. The glob
// patterns guarantee the shape of the path relative to the root:
// <split>/<category>/audio/<sub>/<name> for categories and
// augmentations/<augmentation>/audio/<sub>/<name> for mixtures.
func (l Layout) decompose(path, selection string) File {
	f := File{Path: path, Selection: selection}
	rel, err := filepath.Rel(l.root, path)
	if err != nil {
		return f
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) != 5 {
		return f
	}
	if parts[0] != augmentationsDir {
		f.Split = parts[0]
	}
	f.Subcategory = parts[3]
	return f
}
