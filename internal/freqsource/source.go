// Package freqsource reads instantaneous per-core CPU frequency from the
// operating system. Platform-specific readers are selected at build time.
package freqsource

import (
	"context"
	"errors"
	"math"
)

// Sentinel errors describing why a read could not be served. Callers
// classify failures with errors.Is.
var (
	// ErrNotSupported means the frequency facility is absent on this
	// platform or kernel build.
	ErrNotSupported = errors.New("cpu frequency facility not present")
	// ErrAccessDenied means the facility exists but the process lacks
	// the privilege to read it.
	ErrAccessDenied = errors.New("cpu frequency facility access denied")
	// ErrMalformed means the OS returned data that could not be parsed.
	ErrMalformed = errors.New("cpu frequency facility returned malformed data")
)

// Reading is one logical core's frequency at a single point in time.
// Available is false when the core exists but no frequency could be
// determined for it.
type Reading struct {
	Core         int
	FrequencyKHz uint64
	Available    bool
}

// Reader reads the current frequency of every visible logical core.
type Reader interface {
	// ReadAllCores returns one Reading per logical core, ordered by
	// core index. The core count may differ between calls if cores are
	// hot-added or removed.
	ReadAllCores(ctx context.Context) ([]Reading, error)
}

// NewReader creates a frequency reader for the current platform.
func NewReader() Reader {
	return newPlatformReader()
}

// mhzToKHz converts a floating-point MHz value to integer kHz,
// rounding to nearest with ties to even. Non-finite and negative
// inputs yield 0.
func mhzToKHz(mhz float64) uint64 {
	if math.IsNaN(mhz) || math.IsInf(mhz, 0) || mhz <= 0 {
		return 0
	}
	return uint64(math.RoundToEven(mhz * 1000))
}
