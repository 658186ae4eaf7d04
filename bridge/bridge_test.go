package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CristiGvl/freqbridge/internal/freqsource"
	"github.com/CristiGvl/freqbridge/internal/sampler"
)

// fakeSource serves a fixed four-core host and can fail on a chosen tick.
type fakeSource struct {
	cores   int
	failAt  int
	failErr error
	calls   int
}

func newFakeSource(cores int) *fakeSource {
	return &fakeSource{cores: cores, failAt: -1}
}

func (f *fakeSource) ReadAllCores(ctx context.Context) ([]freqsource.Reading, error) {
	call := f.calls
	f.calls++

	if f.failErr != nil && call == f.failAt {
		return nil, f.failErr
	}

	readings := make([]freqsource.Reading, 0, f.cores)
	for i := 0; i < f.cores; i++ {
		readings = append(readings, freqsource.Reading{
			Core:         i,
			FrequencyKHz: 3_000_000,
			Available:    true,
		})
	}
	return readings, nil
}

func TestCollectOK(t *testing.T) {
	c := NewWithReader(newFakeSource(4), sampler.Options{})

	res := c.Collect(context.Background(), 0, 3)

	require.Equal(t, StatusOK, res.Status)
	assert.NotEmpty(t, res.JSON)
	assert.Empty(t, res.ErrMessage, "success must leave the error output untouched")

	var doc struct {
		SampleCount int `json:"sample_count"`
		Samples     []struct {
			CoreCount int `json:"core_count"`
		} `json:"samples"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.JSON), &doc))
	assert.Equal(t, 3, doc.SampleCount)
	require.Len(t, doc.Samples, 3)
	for _, sample := range doc.Samples {
		assert.Equal(t, 4, sample.CoreCount)
	}
}

func TestCollectSingleSampleReportsZeroInterval(t *testing.T) {
	c := NewWithReader(newFakeSource(2), sampler.Options{})

	res := c.Collect(context.Background(), 100, 1)

	require.Equal(t, StatusOK, res.Status)
	assert.Equal(t, float64(0), res.ActualIntervalMS)
}

func TestCollectNegativeIntervalIsInternal(t *testing.T) {
	c := NewWithReader(newFakeSource(2), sampler.Options{})

	res := c.Collect(context.Background(), -5, 3)

	assert.Equal(t, StatusInternal, res.Status)
	assert.NotEmpty(t, res.ErrMessage)
	assert.Empty(t, res.JSON, "failure must leave the JSON output untouched")
}

func TestCollectZeroSampleCountIsInternal(t *testing.T) {
	c := NewWithReader(newFakeSource(2), sampler.Options{})

	res := c.Collect(context.Background(), 0, 0)

	assert.Equal(t, StatusInternal, res.Status)
	assert.NotEmpty(t, res.ErrMessage)
	assert.Empty(t, res.JSON)
}

func TestCollectStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Status
	}{
		{name: "facility absent", err: freqsource.ErrNotSupported, expected: StatusUnavailable},
		{name: "privilege missing", err: freqsource.ErrAccessDenied, expected: StatusPermission},
		{name: "malformed data", err: freqsource.ErrMalformed, expected: StatusInternal},
		{name: "unclassified failure", err: errors.New("boom"), expected: StatusInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := newFakeSource(2)
			source.failAt = 0
			source.failErr = tt.err
			c := NewWithReader(source, sampler.Options{})

			res := c.Collect(context.Background(), 0, 1)

			assert.Equal(t, tt.expected, res.Status)
			assert.NotEmpty(t, res.ErrMessage)
			assert.Empty(t, res.JSON)
		})
	}
}

func TestCollectMidRunFailureMapsTickError(t *testing.T) {
	source := newFakeSource(4)
	source.failAt = 2
	source.failErr = freqsource.ErrNotSupported
	c := NewWithReader(source, sampler.Options{})

	res := c.Collect(context.Background(), 0, 5)

	assert.Equal(t, StatusUnavailable, res.Status)
	assert.Empty(t, res.JSON, "a partial series must not be returned")
	assert.NotEmpty(t, res.ErrMessage)
}

func TestStatusTextIsTotal(t *testing.T) {
	for _, status := range []Status{StatusOK, StatusUnavailable, StatusPermission, StatusInternal} {
		assert.NotEmpty(t, StatusText(status))
	}

	assert.Equal(t, "unknown status", StatusText(Status(99)))
	assert.Equal(t, "unknown status", StatusText(Status(-1)))
}

func TestCollectIsIndependentAcrossCalls(t *testing.T) {
	c := NewWithReader(newFakeSource(2), sampler.Options{})

	first := c.Collect(context.Background(), 0, 1)
	second := c.Collect(context.Background(), 0, 1)

	require.Equal(t, StatusOK, first.Status)
	require.Equal(t, StatusOK, second.Status)
	assert.Equal(t, first.JSON, second.JSON, "identical inputs against a stable source must encode identically")
}
