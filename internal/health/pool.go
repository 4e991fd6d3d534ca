// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package health exposes the ambient observability surface around the
// tracing pipeline: a /healthz JSON endpoint over buffer-pool occupancy,
// Prometheus gauges, an optional gops diagnostics agent, and an optional
// NATS heartbeat publisher. None of this is part of the wire protocol
// itself (spec.md §6 names only the sink and decoder interfaces); it is
// the ambient stack every teacher service this module imitates carries
// alongside its domain logic.
package health

import (
	"sort"
	"sync"

	"github.com/ClusterCockpit/cc-probius/pkg/bufpool"
)

// MaxPoolOccupancy is the outstanding/capacity ratio above which a pool
// is reported unhealthy — the backpressure analogue of the teacher's
// MaxMissingDataPoints/MaxUnhealthyMetrics staleness thresholds in
// internal/memorystore/healthcheck.go, applied to pool exhaustion instead
// of stale buffers.
const MaxPoolOccupancy = 0.9

// PoolStatus summarizes one named buffer pool's occupancy.
type PoolStatus struct {
	Name        string  `json:"name"`
	Capacity    int     `json:"capacity"`
	Outstanding int     `json:"outstanding"`
	Occupancy   float64 `json:"occupancy"`
	Healthy     bool    `json:"healthy"`
}

var (
	poolsMu sync.Mutex
	pools   = map[string]*bufpool.Pool{}
)

// RegisterPool makes pool's occupancy observable under name, via both
// the /healthz JSON endpoint and the probius_pool_* Prometheus gauges.
// Call once per pool at startup, after probius.Init.
func RegisterPool(name string, pool *bufpool.Pool) {
	poolsMu.Lock()
	pools[name] = pool
	poolsMu.Unlock()
	poolCapacity.WithLabelValues(name).Set(float64(pool.Capacity()))
}

func checkPool(name string, pool *bufpool.Pool) PoolStatus {
	capacity := pool.Capacity()
	outstanding := pool.Outstanding()
	occupancy := 0.0
	if capacity > 0 {
		occupancy = float64(outstanding) / float64(capacity)
	}
	return PoolStatus{
		Name:        name,
		Capacity:    capacity,
		Outstanding: outstanding,
		Occupancy:   occupancy,
		Healthy:     occupancy < MaxPoolOccupancy,
	}
}

// poolStatuses snapshots every registered pool's occupancy, in
// name-sorted order, updating the outstanding gauge as it goes.
func poolStatuses() []PoolStatus {
	poolsMu.Lock()
	names := make([]string, 0, len(pools))
	for name := range pools {
		names = append(names, name)
	}
	snapshot := make(map[string]*bufpool.Pool, len(pools))
	for name, pool := range pools {
		snapshot[name] = pool
	}
	poolsMu.Unlock()

	sort.Strings(names)

	out := make([]PoolStatus, 0, len(names))
	for _, name := range names {
		st := checkPool(name, snapshot[name])
		poolOutstanding.WithLabelValues(name).Set(float64(st.Outstanding))
		out = append(out, st)
	}
	return out
}
