// Package bridge is the boundary layer of the frequency collector. It
// drives the sampler, translates internal errors into the small fixed
// status code set that crosses the language boundary, and guarantees
// that exactly one of the JSON payload or the error message is populated
// in every result.
package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/CristiGvl/freqbridge/internal/freqsource"
	"github.com/CristiGvl/freqbridge/internal/report"
	"github.com/CristiGvl/freqbridge/internal/sampler"
)

// Status is the outcome of a collection. The integer values are a wire
// contract shared with C callers and must not change.
type Status int

const (
	// StatusOK means the collection succeeded and the JSON payload is valid.
	StatusOK Status = 0
	// StatusUnavailable means the frequency facility is absent on this host.
	StatusUnavailable Status = 1
	// StatusPermission means the process lacks the privilege to read the facility.
	StatusPermission Status = 2
	// StatusInternal covers contract violations, timeouts, malformed OS
	// data and encoding failures.
	StatusInternal Status = 3
)

// StatusText maps a status code to a human-readable description. It is
// total: codes outside the defined set map to a generic fallback.
func StatusText(status Status) string {
	switch status {
	case StatusOK:
		return "ok"
	case StatusUnavailable:
		return "cpu frequency data unavailable on this host"
	case StatusPermission:
		return "insufficient privilege to read cpu frequency"
	case StatusInternal:
		return "internal collector error"
	default:
		return "unknown status"
	}
}

// Result is the outcome of one Collect call. When Status is StatusOK,
// JSON and ActualIntervalMS are set and ErrMessage is empty; otherwise
// ErrMessage is set and JSON is empty.
type Result struct {
	Status           Status
	JSON             string
	ActualIntervalMS float64
	ErrMessage       string
}

// Collector runs single-shot frequency collections. It holds no mutable
// state, so concurrent Collect calls are independent.
type Collector struct {
	reader freqsource.Reader
	opts   sampler.Options
}

// New creates a Collector backed by the platform frequency reader.
func New() *Collector {
	return NewWithReader(freqsource.NewReader(), sampler.Options{})
}

// NewWithReader creates a Collector around an explicit reader. Used to
// substitute a scripted source in tests.
func NewWithReader(reader freqsource.Reader, opts sampler.Options) *Collector {
	return &Collector{reader: reader, opts: opts}
}

// Collect takes sampleCount readings spaced intervalMS apart and encodes
// them. It blocks for roughly sampleCount*intervalMS plus read latency.
// All failures are reported through the Result status; nothing escapes
// as a panic.
func (c *Collector) Collect(ctx context.Context, intervalMS, sampleCount int) Result {
	series, err := sampler.New(c.reader, c.opts).Collect(ctx, intervalMS, sampleCount)
	if err != nil {
		return failure(err)
	}

	payload, err := report.Encode(series)
	if err != nil {
		return failure(fmt.Errorf("encoding sample series: %w", err))
	}

	return Result{
		Status:           StatusOK,
		JSON:             string(payload),
		ActualIntervalMS: series.ActualIntervalMS,
	}
}

func failure(err error) Result {
	return Result{
		Status:     statusFor(err),
		ErrMessage: err.Error(),
	}
}

// statusFor classifies an error into the wire status set. Anything not
// explicitly recognized is an internal failure.
func statusFor(err error) Status {
	switch {
	case errors.Is(err, freqsource.ErrNotSupported):
		return StatusUnavailable
	case errors.Is(err, freqsource.ErrAccessDenied):
		return StatusPermission
	default:
		return StatusInternal
	}
}
