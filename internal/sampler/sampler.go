// Package sampler takes repeated, time-spaced per-core frequency readings
// and collects them into an ordered series.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CristiGvl/freqbridge/internal/freqsource"
)

var (
	// ErrInvalidInterval is returned for a negative sample interval.
	ErrInvalidInterval = errors.New("sample interval must not be negative")
	// ErrInvalidCount is returned for a sample count below 1.
	ErrInvalidCount = errors.New("sample count must be at least 1")
	// ErrReadTimeout is returned when a single source read exceeds the
	// watchdog bound.
	ErrReadTimeout = errors.New("cpu frequency read timed out")
)

// DefaultReadTimeout bounds a single source read. A read that stalls
// longer than this aborts the whole collection instead of hanging it.
const DefaultReadTimeout = 2 * time.Second

// Tick is one sampling pass across all cores.
type Tick struct {
	Index    int
	At       time.Time
	Readings []freqsource.Reading
}

// Series is the ordered sequence of ticks produced by one collection.
type Series struct {
	RequestedIntervalMS int
	RequestedCount      int
	ActualIntervalMS    float64 // mean observed inter-tick spacing; 0 for a single sample
	Ticks               []Tick
}

// Options configures a Sampler.
type Options struct {
	// ReadTimeout bounds a single source read. Zero or negative selects
	// DefaultReadTimeout.
	ReadTimeout time.Duration
}

func normalizeOptions(opts Options) Options {
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	return opts
}

// Sampler drives a frequency source at a fixed cadence.
type Sampler struct {
	reader      freqsource.Reader
	readTimeout time.Duration
}

// New creates a Sampler around the given source.
func New(reader freqsource.Reader, opts Options) *Sampler {
	opts = normalizeOptions(opts)
	return &Sampler{
		reader:      reader,
		readTimeout: opts.ReadTimeout,
	}
}

// Collect takes sampleCount ticks, sleeping intervalMS between consecutive
// ticks. There is no sleep before the first tick or after the last. Any
// tick failure aborts the collection; a partial series is never returned.
// intervalMS of 0 samples back-to-back.
func (s *Sampler) Collect(ctx context.Context, intervalMS, sampleCount int) (*Series, error) {
	if intervalMS < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidInterval, intervalMS)
	}

	if sampleCount < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, sampleCount)
	}

	interval := time.Duration(intervalMS) * time.Millisecond

	// Capacity hint only; an absurd count from an untrusted caller must
	// not allocate everything up front.
	capHint := sampleCount
	if capHint > 1024 {
		capHint = 1024
	}
	ticks := make([]Tick, 0, capHint)

	for i := 0; i < sampleCount; i++ {
		if i > 0 && interval > 0 {
			if err := sleepCtx(ctx, interval); err != nil {
				return nil, err
			}
		}

		readings, err := s.readOnce(ctx)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}

		ticks = append(ticks, Tick{
			Index:    i,
			At:       time.Now(),
			Readings: readings,
		})
	}

	return &Series{
		RequestedIntervalMS: intervalMS,
		RequestedCount:      sampleCount,
		ActualIntervalMS:    meanSpacingMS(ticks),
		Ticks:               ticks,
	}, nil
}

// readOnce performs a single watchdog-bounded read. The read runs in its
// own goroutine so a source stuck inside a blocking syscall cannot hang
// the collection past the watchdog.
func (s *Sampler) readOnce(ctx context.Context) ([]freqsource.Reading, error) {
	readCtx, cancel := context.WithTimeout(ctx, s.readTimeout)
	defer cancel()

	type readResult struct {
		readings []freqsource.Reading
		err      error
	}

	done := make(chan readResult, 1)
	go func() {
		readings, err := s.reader.ReadAllCores(readCtx)
		done <- readResult{readings: readings, err: err}
	}()

	select {
	case res := <-done:
		return res.readings, res.err
	case <-readCtx.Done():
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w after %s", ErrReadTimeout, s.readTimeout)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// meanSpacingMS averages the observed wall-clock deltas between
// consecutive ticks. Timestamps carry Go's monotonic clock reading, so
// the deltas are immune to wall-clock adjustments.
func meanSpacingMS(ticks []Tick) float64 {
	if len(ticks) < 2 {
		return 0
	}

	var total time.Duration
	for i := 1; i < len(ticks); i++ {
		total += ticks[i].At.Sub(ticks[i-1].At)
	}

	mean := total / time.Duration(len(ticks)-1)
	return float64(mean) / float64(time.Millisecond)
}
