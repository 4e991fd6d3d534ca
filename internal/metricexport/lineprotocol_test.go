// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package metricexport

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClusterCockpit/cc-probius/pkg/mproto"
)

func TestMetricNamesOrderedByIndex(t *testing.T) {
	agg := mproto.TraceAggregate{
		Nodes: []mproto.AggNode{
			{Op: mproto.TraceOpAggregate{Kind: mproto.OpPushScope}},
			{Op: mproto.TraceOpAggregate{Kind: mproto.OpMetric, MetricName: "bytes", MetricIndex: 1}},
			{Op: mproto.TraceOpAggregate{Kind: mproto.OpMetric, MetricName: "iterations", MetricIndex: 0}},
		},
		Metrics: make([]mproto.MetricAggregate, 2),
	}

	names := MetricNames(agg)
	require.Len(t, names, 2)
	assert.Equal(t, "iterations", names[0])
	assert.Equal(t, "bytes", names[1])
}

func TestEncodeSkipsUntouchedSlots(t *testing.T) {
	agg := mproto.TraceAggregate{
		Nodes: []mproto.AggNode{
			{Op: mproto.TraceOpAggregate{Kind: mproto.OpMetric, MetricName: "iterations", MetricIndex: 0}},
			{Op: mproto.TraceOpAggregate{Kind: mproto.OpMetric, MetricName: "unused", MetricIndex: 1}},
		},
		Metrics: []mproto.MetricAggregate{
			{Count: 3, Sum: 9, Min: 1, Max: 5},
			mproto.Identity(),
		},
	}

	out, err := Encode("worker-1", agg, time.Unix(0, 1_700_000_000_000))
	require.NoError(t, err)

	line := string(out)
	assert.True(t, strings.HasPrefix(line, "iterations,source=worker-1 "))
	assert.Contains(t, line, "count=3u")
	assert.Contains(t, line, "sum=9i")
	assert.Contains(t, line, "min=1i")
	assert.Contains(t, line, "max=5i")
	assert.NotContains(t, line, "unused")
}

func TestEncodeEmptyAggregateProducesNoLines(t *testing.T) {
	agg := mproto.TraceAggregate{
		Nodes:   []mproto.AggNode{{Op: mproto.TraceOpAggregate{Kind: mproto.OpMetric, MetricName: "iterations"}}},
		Metrics: []mproto.MetricAggregate{mproto.Identity()},
	}

	out, err := Encode("worker-1", agg, time.Now())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestEncodeDeltaMismatchedNamesErrors(t *testing.T) {
	delta := mproto.TraceAggregateDelta{
		Metrics: []mproto.MetricAggregate{{Count: 1, Sum: 1, Min: 1, Max: 1}},
	}
	_, err := EncodeDelta("worker-1", nil, delta, time.Now())
	assert.Error(t, err)
}

func TestEncodeDeltaUsesSuppliedNames(t *testing.T) {
	names := []string{"iterations"}
	delta := mproto.TraceAggregateDelta{
		Metrics: []mproto.MetricAggregate{{Count: 2, Sum: 4, Min: 2, Max: 2}},
	}

	out, err := EncodeDelta("worker-1", names, delta, time.Unix(0, 42))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "iterations,source=worker-1 "))
}
