package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CristiGvl/freqbridge/bridge"
	"github.com/CristiGvl/freqbridge/internal/freqsource"
	"github.com/CristiGvl/freqbridge/internal/sampler"
)

type stubSource struct {
	err error
}

func (s *stubSource) ReadAllCores(ctx context.Context) ([]freqsource.Reading, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []freqsource.Reading{
		{Core: 0, FrequencyKHz: 2_400_000, Available: true},
		{Core: 1, FrequencyKHz: 2_400_000, Available: true},
	}, nil
}

func testServer(source freqsource.Reader) *Server {
	return newServer(bridge.NewWithReader(source, sampler.Options{}))
}

func TestGetFrequencyOK(t *testing.T) {
	server := testServer(&stubSource{})

	req := httptest.NewRequest("GET", "/api/frequency?interval_ms=0&samples=2", nil)
	resp, err := server.app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var doc struct {
		SampleCount int `json:"sample_count"`
		Samples     []struct {
			CoreCount int `json:"core_count"`
		} `json:"samples"`
	}
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, 2, doc.SampleCount)
	require.Len(t, doc.Samples, 2)
	assert.Equal(t, 2, doc.Samples[0].CoreCount)
}

func TestGetFrequencyUnavailable(t *testing.T) {
	server := testServer(&stubSource{err: freqsource.ErrNotSupported})

	req := httptest.NewRequest("GET", "/api/frequency?interval_ms=0&samples=1", nil)
	resp, err := server.app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 503, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var doc map[string]string
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.NotEmpty(t, doc["error"])
}

func TestGetFrequencyPermissionDenied(t *testing.T) {
	server := testServer(&stubSource{err: freqsource.ErrAccessDenied})

	req := httptest.NewRequest("GET", "/api/frequency?samples=1&interval_ms=0", nil)
	resp, err := server.app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 403, resp.StatusCode)
}

func TestGetFrequencyInvalidArguments(t *testing.T) {
	server := testServer(&stubSource{})

	req := httptest.NewRequest("GET", "/api/frequency?interval_ms=0&samples=-3", nil)
	resp, err := server.app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 500, resp.StatusCode)
}

func TestHealthCheck(t *testing.T) {
	server := testServer(&stubSource{})

	req := httptest.NewRequest("GET", "/api/health", nil)
	resp, err := server.app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
}
