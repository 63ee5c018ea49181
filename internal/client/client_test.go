package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blochview/internal/catalog"
	"blochview/internal/config"
	"blochview/internal/logging"
	"blochview/internal/processor"
	"blochview/internal/server"
)

func fastRetries(c *Client) {
	c.newBackOff = func() backoff.BackOff {
		return backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Millisecond), 5)
	}
}

func TestProcessAgainstServer(t *testing.T) {
	cfg := config.Default()
	srv := httptest.NewServer(server.New(cfg, logging.Discard(), processor.New()).Handler())
	defer srv.Close()

	bell, err := catalog.Lookup("bell_state")
	require.NoError(t, err)

	res, err := New(srv.URL + "/").Process(context.Background(), bell.Circuit)
	require.NoError(t, err)
	require.Len(t, res.Qubits, 2)
	assert.InDelta(t, 0, res.Qubits[0].BlochCoordinates.Z, 1e-9)
	assert.InDelta(t, 0.5, res.Qubits[1].DensityMatrix[0][0][0], 1e-9)
}

func TestRetriesTemporaryFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"Too many requests","kind":"rate_limited"}`))
		case 2:
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"Service temporarily unavailable","kind":"unavailable"}`))
		default:
			_, _ = w.Write([]byte(`{"num_qubits":1,"qubits":[{"index":0,"bloch_coordinates":{"x":0,"y":0,"z":1},"density_matrix":[[[1,0],[0,0]],[[0,0],[0,0]]]}]}`))
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	fastRetries(c)
	res, err := c.Process(context.Background(), catalog.Examples()["superposition"].Circuit)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 1.0, res.Qubits[0].BlochCoordinates.Z)
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"gate 0: invalid parameter: control equals target","kind":"invalid_parameter"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	fastRetries(c)
	_, err := c.Process(context.Background(), catalog.Examples()["bell_state"].Circuit)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, IsClientFault(err))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "invalid_parameter", apiErr.Kind)
}

func TestGivesUpAfterRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("down"))
	}))
	defer srv.Close()

	c := New(srv.URL)
	fastRetries(c)
	_, err := c.Process(context.Background(), catalog.Examples()["bell_state"].Circuit)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.Equal(t, "down", apiErr.Message)
	assert.False(t, IsClientFault(err))
}

func TestNoRetriesWhenDisabled(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := New(srv.URL, WithMaxElapsed(0)).Process(context.Background(), catalog.Examples()["bell_state"].Circuit)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
