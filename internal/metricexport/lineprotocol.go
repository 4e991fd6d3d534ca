// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package metricexport renders aggregated trace metrics as InfluxDB
// line protocol, the same wire format the teacher's pkg/metricstore
// ingests over NATS — but in the opposite direction: this package is
// the encode side, turning a mproto.TraceAggregate's metric vector into
// lines an external time-series database can subscribe to and store,
// rather than decoding lines received from elsewhere.
package metricexport

import (
	"fmt"
	"time"

	"github.com/influxdata/line-protocol/v2/lineprotocol"

	"github.com/ClusterCockpit/cc-probius/pkg/mproto"
)

// MetricNames returns the recorder-supplied name of every metric slot in
// agg, ordered by MetricIndex. The result can be kept alongside a full
// flush and reused to label the metric-only vectors of later
// TraceAggregateDelta events, which carry no node graph of their own.
func MetricNames(agg mproto.TraceAggregate) []string {
	names := make([]string, len(agg.Metrics))
	for _, node := range agg.Nodes {
		if node.Op.Kind == mproto.OpMetric {
			names[node.Op.MetricIndex] = node.Op.MetricName
		}
	}
	return names
}

// Encode renders every non-empty metric slot in agg as one InfluxDB
// line-protocol line tagged with source. Fields are the online
// accumulator's count/sum/min/max; slots never updated since the last
// reset (Count == 0) are skipped since their min/max sentinels
// (mproto.Identity()) carry no meaningful sample.
func Encode(source string, agg mproto.TraceAggregate, at time.Time) ([]byte, error) {
	return encode(source, MetricNames(agg), agg.Metrics, at)
}

// EncodeDelta is the TraceAggregateDelta analogue of Encode. delta has
// no node graph of its own, so names must be supplied by the caller —
// typically the result of MetricNames on the TraceAggregate the delta's
// accumulators were reset from.
func EncodeDelta(source string, names []string, delta mproto.TraceAggregateDelta, at time.Time) ([]byte, error) {
	return encode(source, names, delta.Metrics, at)
}

func encode(source string, names []string, metrics []mproto.MetricAggregate, at time.Time) ([]byte, error) {
	if len(names) != len(metrics) {
		return nil, fmt.Errorf("metricexport: %d metric names for %d metric slots", len(names), len(metrics))
	}

	var enc lineprotocol.Encoder
	enc.SetPrecision(lineprotocol.Nanosecond)

	for i, m := range metrics {
		if m.Count == 0 {
			continue
		}
		if names[i] == "" {
			continue
		}

		enc.StartLine(names[i])
		enc.AddTag("source", source)
		enc.AddField("count", lineprotocol.UintValue(m.Count))
		enc.AddField("sum", lineprotocol.IntValue(m.Sum))
		enc.AddField("min", lineprotocol.IntValue(m.Min))
		enc.AddField("max", lineprotocol.IntValue(m.Max))
		enc.EndLine(at)
	}

	if err := enc.Err(); err != nil {
		return nil, fmt.Errorf("metricexport: encode: %w", err)
	}
	return enc.Bytes(), nil
}
