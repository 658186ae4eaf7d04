// Package report reduces a sample series into its JSON document.
//
// Encoding is deterministic: the same series always yields byte-identical
// output. Field order is fixed by the payload struct definitions and
// frequencies are integer kHz, so no unstable formatting is involved.
package report

import (
	"encoding/json"
	"errors"

	"github.com/CristiGvl/freqbridge/internal/sampler"
)

// ErrEmptySeries is returned when a series has no ticks to encode.
var ErrEmptySeries = errors.New("cannot encode an empty sample series")

type corePayload struct {
	Index     int     `json:"index"`
	Frequency *uint64 `json:"frequency"` // kHz, null when unavailable
}

type tickPayload struct {
	Tick      int           `json:"tick"`
	CoreCount int           `json:"core_count"`
	Cores     []corePayload `json:"cores"`
}

type seriesPayload struct {
	IntervalRequestedMS int           `json:"interval_requested_ms"`
	IntervalActualMS    float64       `json:"interval_actual_ms"`
	SampleCount         int           `json:"sample_count"`
	Samples             []tickPayload `json:"samples"`
}

// Encode serializes a series. The core set observed on the first tick is
// the canonical schema for every tick: cores that appear later are
// dropped, cores that disappear encode a null frequency for their index.
func Encode(series *sampler.Series) ([]byte, error) {
	if series == nil || len(series.Ticks) == 0 {
		return nil, ErrEmptySeries
	}

	canonical := make([]int, 0, len(series.Ticks[0].Readings))
	for _, reading := range series.Ticks[0].Readings {
		canonical = append(canonical, reading.Core)
	}

	payload := seriesPayload{
		IntervalRequestedMS: series.RequestedIntervalMS,
		IntervalActualMS:    series.ActualIntervalMS,
		SampleCount:         len(series.Ticks),
		Samples:             make([]tickPayload, 0, len(series.Ticks)),
	}

	for _, tick := range series.Ticks {
		byCore := make(map[int]*uint64, len(tick.Readings))
		for _, reading := range tick.Readings {
			if !reading.Available {
				continue
			}
			khz := reading.FrequencyKHz
			byCore[reading.Core] = &khz
		}

		cores := make([]corePayload, 0, len(canonical))
		for _, core := range canonical {
			cores = append(cores, corePayload{
				Index:     core,
				Frequency: byCore[core],
			})
		}

		payload.Samples = append(payload.Samples, tickPayload{
			Tick:      tick.Index,
			CoreCount: len(canonical),
			Cores:     cores,
		})
	}

	return json.Marshal(payload)
}
