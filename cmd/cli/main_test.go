package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAPIClient_Retries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(healthResponse{Status: "degraded"})
			return
		}
		json.NewEncoder(w).Encode(healthResponse{Status: "ok", Database: "ok"})
	}))
	t.Cleanup(srv.Close)

	_, err := newAPIClient(srv.URL, 0).Health(context.Background())
	require.Error(t, err)

	health, err := newAPIClient(srv.URL, 1).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, int32(2), hits.Load())
}
