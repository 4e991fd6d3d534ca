// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package mproto

// TraceAggregate is the body of a flush_full event: the full graph plus
// the (pre-reset) metric vector.
type TraceAggregate struct {
	StartNanos uint64
	Nodes      []AggNode
	Counters   []uint32
	Metrics    []MetricAggregate
}

const TraceAggregateBaseLen = 8 + 8 + 8 + 8 // 32

func (v TraceAggregate) Encode() []byte {
	scratch := &scratchWriter{}
	dst := make([]byte, TraceAggregateBaseLen)
	v.encodeInto(dst, scratch)
	return append(dst, scratch.buf...)
}

func (v TraceAggregate) encodeInto(dst []byte, scratch *scratchWriter) {
	putU64(dst[0:8], v.StartNanos)

	nodesOff, nodesCount := encodeNodeSeq(v.Nodes, scratch)
	putU32(dst[8:12], nodesOff)
	putU32(dst[12:16], nodesCount)

	countersOff, countersCount := encodeU32Seq(v.Counters, scratch)
	putU32(dst[16:20], countersOff)
	putU32(dst[20:24], countersCount)

	metricsOff, metricsCount := encodeMetricSeq(v.Metrics, scratch)
	putU32(dst[24:28], metricsOff)
	putU32(dst[28:32], metricsCount)
}

func DecodeTraceAggregate(buf []byte) (TraceAggregate, error) {
	if err := need(buf, TraceAggregateBaseLen); err != nil {
		return TraceAggregate{}, decodeErr("TraceAggregate", err)
	}
	base, scratch := buf[:TraceAggregateBaseLen], buf[TraceAggregateBaseLen:]

	startNanos, _ := getU64(base[0:8])

	nodesOff, _ := getU32(base[8:12])
	nodesCount, _ := getU32(base[12:16])
	nodes, err := decodeNodeSeq(scratch, nodesOff, nodesCount)
	if err != nil {
		return TraceAggregate{}, decodeErr("TraceAggregate.Nodes", err)
	}

	countersOff, _ := getU32(base[16:20])
	countersCount, _ := getU32(base[20:24])
	counters, err := decodeU32Seq(scratch, countersOff, countersCount)
	if err != nil {
		return TraceAggregate{}, decodeErr("TraceAggregate.Counters", err)
	}

	metricsOff, _ := getU32(base[24:28])
	metricsCount, _ := getU32(base[28:32])
	metrics, err := decodeMetricSeq(scratch, metricsOff, metricsCount)
	if err != nil {
		return TraceAggregate{}, decodeErr("TraceAggregate.Metrics", err)
	}

	return TraceAggregate{
		StartNanos: startNanos,
		Nodes:      nodes,
		Counters:   counters,
		Metrics:    metrics,
	}, nil
}

// TraceAggregateDelta is an incremental flush body: the accumulator
// contents over [StartNanos, EndNanos) without the graph, which the
// consumer is assumed to already hold from a prior TraceAggregate.
type TraceAggregateDelta struct {
	StartNanos uint64
	EndNanos   uint64
	Counters   []uint32
	Metrics    []MetricAggregate
}

const TraceAggregateDeltaBaseLen = 8 + 8 + 8 + 8 // 32

func (v TraceAggregateDelta) Encode() []byte {
	scratch := &scratchWriter{}
	dst := make([]byte, TraceAggregateDeltaBaseLen)
	v.encodeInto(dst, scratch)
	return append(dst, scratch.buf...)
}

func (v TraceAggregateDelta) encodeInto(dst []byte, scratch *scratchWriter) {
	putU64(dst[0:8], v.StartNanos)
	putU64(dst[8:16], v.EndNanos)

	countersOff, countersCount := encodeU32Seq(v.Counters, scratch)
	putU32(dst[16:20], countersOff)
	putU32(dst[20:24], countersCount)

	metricsOff, metricsCount := encodeMetricSeq(v.Metrics, scratch)
	putU32(dst[24:28], metricsOff)
	putU32(dst[28:32], metricsCount)
}

func DecodeTraceAggregateDelta(buf []byte) (TraceAggregateDelta, error) {
	if err := need(buf, TraceAggregateDeltaBaseLen); err != nil {
		return TraceAggregateDelta{}, decodeErr("TraceAggregateDelta", err)
	}
	base, scratch := buf[:TraceAggregateDeltaBaseLen], buf[TraceAggregateDeltaBaseLen:]

	startNanos, _ := getU64(base[0:8])
	endNanos, _ := getU64(base[8:16])

	countersOff, _ := getU32(base[16:20])
	countersCount, _ := getU32(base[20:24])
	counters, err := decodeU32Seq(scratch, countersOff, countersCount)
	if err != nil {
		return TraceAggregateDelta{}, decodeErr("TraceAggregateDelta.Counters", err)
	}

	metricsOff, _ := getU32(base[24:28])
	metricsCount, _ := getU32(base[28:32])
	metrics, err := decodeMetricSeq(scratch, metricsOff, metricsCount)
	if err != nil {
		return TraceAggregateDelta{}, decodeErr("TraceAggregateDelta.Metrics", err)
	}

	return TraceAggregateDelta{
		StartNanos: startNanos,
		EndNanos:   endNanos,
		Counters:   counters,
		Metrics:    metrics,
	}, nil
}
