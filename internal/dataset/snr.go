package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// snrMarker is the literal token preceding the SNR value in mixture
// filenames.
const snrMarker = "SNR_"

// wavSuffix is the extension stripped before parsing the SNR token.
const wavSuffix = ".wav"

// ErrNoSNRMarker is returned by [ParseSNR] when the filename contains no
// SNR_ token.
var ErrNoSNRMarker = errors.New("dataset: filename has no SNR_ marker")

// ParseSNR extracts the signal-to-noise ratio embedded in the filename of
// path. The text after the last SNR_ marker, with the .wav suffix
// stripped, is parsed as a floating-point number:
//
//	Resampled_kr_noise_restaurant_5__0_SNR_3.5.wav → 3.5
//
// A missing marker yields [ErrNoSNRMarker]; a non-numeric remainder yields
// a wrapped [strconv.ParseFloat] error. Callers decide whether that stops
// a scan — see the scan package, which treats both as fatal.
func ParseSNR(path string) (float64, error) {
	name := filepath.Base(path)
	idx := strings.LastIndex(name, snrMarker)
	if idx < 0 {
		return 0, fmt.Errorf("%w: %q", ErrNoSNRMarker, name)
	}
	raw := strings.TrimSuffix(name[idx+len(snrMarker):], wavSuffix)
	snr, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("dataset: parse SNR token %q in %q: %w", raw, name, err)
	}
	return snr, nil
}
