// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClusterCockpit/cc-probius/pkg/bufpool"
)

func resetPools(t *testing.T) {
	t.Helper()
	poolsMu.Lock()
	pools = map[string]*bufpool.Pool{}
	poolsMu.Unlock()
}

func TestCheckPoolBelowThresholdIsHealthy(t *testing.T) {
	pool := bufpool.NewPool(64, 1, 10)
	for i := 0; i < 5; i++ {
		require.NotNil(t, pool.Get())
	}

	st := checkPool("events", pool)
	assert.Equal(t, "events", st.Name)
	assert.Equal(t, 10, st.Capacity)
	assert.Equal(t, 5, st.Outstanding)
	assert.InDelta(t, 0.5, st.Occupancy, 0.0001)
	assert.True(t, st.Healthy)
}

func TestCheckPoolAboveThresholdIsUnhealthy(t *testing.T) {
	pool := bufpool.NewPool(64, 1, 10)
	for i := 0; i < 10; i++ {
		require.NotNil(t, pool.Get())
	}

	st := checkPool("events", pool)
	assert.Equal(t, 1.0, st.Occupancy)
	assert.False(t, st.Healthy)
}

func TestRegisterPoolAndPoolStatusesSorted(t *testing.T) {
	resetPools(t)
	defer resetPools(t)

	a := bufpool.NewPool(64, 1, 4)
	b := bufpool.NewPool(64, 1, 8)
	RegisterPool("zzz", a)
	RegisterPool("aaa", b)

	statuses := poolStatuses()
	require.Len(t, statuses, 2)
	assert.Equal(t, "aaa", statuses[0].Name)
	assert.Equal(t, "zzz", statuses[1].Name)
	assert.Equal(t, 8, statuses[0].Capacity)
	assert.Equal(t, 4, statuses[1].Capacity)
}

func TestComputeStatusReflectsWorstPool(t *testing.T) {
	resetPools(t)
	defer resetPools(t)

	healthyPool := bufpool.NewPool(64, 1, 10)
	healthyPool.Get()

	unhealthyPool := bufpool.NewPool(64, 1, 10)
	for i := 0; i < 10; i++ {
		unhealthyPool.Get()
	}

	RegisterPool("healthy", healthyPool)
	RegisterPool("unhealthy", unhealthyPool)

	status := computeStatus()
	assert.Equal(t, "Unhealthy", status.Status)
	assert.Len(t, status.Pools, 2)
}

func TestComputeStatusAllHealthy(t *testing.T) {
	resetPools(t)
	defer resetPools(t)

	pool := bufpool.NewPool(64, 1, 10)
	pool.Get()
	RegisterPool("events", pool)

	status := computeStatus()
	assert.Equal(t, "Healthy", status.Status)
}

func TestHandlerServesJSON(t *testing.T) {
	resetPools(t)
	defer resetPools(t)

	pool := bufpool.NewPool(64, 1, 10)
	RegisterPool("events", pool)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	Handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var decoded Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, "Healthy", decoded.Status)
	require.Len(t, decoded.Pools, 1)
	assert.Equal(t, "events", decoded.Pools[0].Name)
}

func TestNewRouterServesHealthzAndMetrics(t *testing.T) {
	resetPools(t)
	defer resetPools(t)

	router := NewRouter()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
