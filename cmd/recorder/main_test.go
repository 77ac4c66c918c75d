package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xolium-sdk/internal/domain"
	"xolium-sdk/internal/recorder"
	"xolium-sdk/internal/storage/memory"
)

type staticSource struct{}

func (staticSource) LiquidityGraph(context.Context) (domain.LiquidityGraph, error) {
	return domain.LiquidityGraph{
		AsOfMs: 1000,
		Edges:  []domain.LiquidityEdge{{FromMint: "A", ToMint: "B", Venue: "orca", LiquidityUSD: 10}},
	}, nil
}

func TestHealth(t *testing.T) {
	runner := recorder.NewRunner(recorder.Options{
		Source:    staticSource{},
		Snapshots: memory.NewGraphSnapshotStore(),
		Interval:  time.Minute,
	})
	srv := httptest.NewServer(newMux(runner))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	_, err = runner.RecordOnce(context.Background())
	require.NoError(t, err)

	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
