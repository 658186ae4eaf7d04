//go:build !linux && !windows

package freqsource

import "context"

// UnsupportedReader is a fallback for platforms without a frequency facility.
type UnsupportedReader struct{}

// newPlatformReader creates a fallback reader for unsupported platforms.
func newPlatformReader() Reader {
	return &UnsupportedReader{}
}

// ReadAllCores always reports the facility as absent.
func (r *UnsupportedReader) ReadAllCores(ctx context.Context) ([]Reading, error) {
	return nil, ErrNotSupported
}
