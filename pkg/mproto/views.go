// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// This file implements the lazy (buffer, offset) views promised by the
// package doc comment (§4.1, §4.7): a View wraps a record's base and
// scratch spans without copying or decoding anything, and each accessor
// resolves only the field it names. Unlike the owned Decode* forms,
// which always materialize every nested element up front, a View over
// TraceAggregate can read node 9000 of 9001 without ever touching the
// other 9000 — the whole point of keeping the decoder iterator's Body
// as raw bytes (decode_events.go) instead of eagerly decoding it.
//
// §8 requires View accessors to agree with the corresponding Decode*
// field for the same input; codec_test.go checks this directly.
package mproto

// CreateSourceView is the lazy counterpart to CreateSource.
type CreateSourceView struct {
	base, scratch []byte
}

// ViewCreateSource wraps buf without decoding it.
func ViewCreateSource(buf []byte) (CreateSourceView, error) {
	if err := need(buf, CreateSourceBaseLen); err != nil {
		return CreateSourceView{}, decodeErr("CreateSource", err)
	}
	return CreateSourceView{base: buf[:CreateSourceBaseLen], scratch: buf[CreateSourceBaseLen:]}, nil
}

// NameBytes returns v's Name field as a slice aliasing the scratch
// region directly, with no copy.
func (v CreateSourceView) NameBytes() ([]byte, error) {
	off, _ := getU32(v.base[0:4])
	length, _ := getU32(v.base[4:8])
	b, err := scratchSlice(v.scratch, off, length)
	if err != nil {
		return nil, decodeErr("CreateSource.Name", err)
	}
	return b, nil
}

// Name is NameBytes converted to a string, allocating.
func (v CreateSourceView) Name() (string, error) {
	b, err := v.NameBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Parent reports v's Parent field and whether it is present.
func (v CreateSourceView) Parent() (SourceId, bool, error) {
	present, err := getOptionHeader(v.base[8:9])
	if err != nil {
		return SourceId{}, false, decodeErr("CreateSource.Parent", err)
	}
	if !present {
		return SourceId{}, false, nil
	}
	p, err := decodeSourceId(v.base[9:17], v.scratch)
	if err != nil {
		return SourceId{}, false, decodeErr("CreateSource.Parent", err)
	}
	return p, true, nil
}

// IsRecurring returns v's IsRecurring field.
func (v CreateSourceView) IsRecurring() (bool, error) {
	b, err := getBool(v.base[17:18])
	if err != nil {
		return false, decodeErr("CreateSource.IsRecurring", err)
	}
	return b, nil
}

// SinkHandshakeView is the lazy counterpart to SinkHandshake.
type SinkHandshakeView struct {
	base, scratch []byte
}

// ViewSinkHandshake wraps buf without decoding it.
func ViewSinkHandshake(buf []byte) (SinkHandshakeView, error) {
	if err := need(buf, SinkHandshakeBaseLen); err != nil {
		return SinkHandshakeView{}, decodeErr("SinkHandshake", err)
	}
	return SinkHandshakeView{base: buf[:SinkHandshakeBaseLen], scratch: buf[SinkHandshakeBaseLen:]}, nil
}

// AppNameBytes returns v's AppName field with no copy.
func (v SinkHandshakeView) AppNameBytes() ([]byte, error) {
	off, _ := getU32(v.base[0:4])
	length, _ := getU32(v.base[4:8])
	b, err := scratchSlice(v.scratch, off, length)
	if err != nil {
		return nil, decodeErr("SinkHandshake.AppName", err)
	}
	return b, nil
}

// AppName is AppNameBytes converted to a string, allocating.
func (v SinkHandshakeView) AppName() (string, error) {
	b, err := v.AppNameBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (v SinkHandshakeView) SessionIdHi() uint64 { n, _ := getU64(v.base[8:16]); return n }
func (v SinkHandshakeView) SessionIdLo() uint64 { n, _ := getU64(v.base[16:24]); return n }

// TraceView is the lazy counterpart to Trace.
type TraceView struct {
	base, scratch []byte
}

// ViewTrace wraps buf without decoding it.
func ViewTrace(buf []byte) (TraceView, error) {
	if err := need(buf, TraceBaseLen); err != nil {
		return TraceView{}, decodeErr("Trace", err)
	}
	return TraceView{base: buf[:TraceBaseLen], scratch: buf[TraceBaseLen:]}, nil
}

func (v TraceView) StartNanos() uint64 { n, _ := getU64(v.base[0:8]); return n }

// Payload returns v's op-stream bytes aliasing the scratch region
// directly — unlike DecodeTrace, which clones Payload so the owned
// Trace can outlive buf.
func (v TraceView) Payload() ([]byte, error) {
	off, _ := getU32(v.base[8:12])
	length, _ := getU32(v.base[12:16])
	b, err := scratchSlice(v.scratch, off, length)
	if err != nil {
		return nil, decodeErr("Trace.Payload", err)
	}
	return b, nil
}

// TraceAggregateView is the lazy counterpart to TraceAggregate. Node,
// Counter and Metric each resolve a single element against the shared
// scratch region rather than decoding the whole sequence.
type TraceAggregateView struct {
	base, scratch []byte
}

// ViewTraceAggregate wraps buf without decoding it.
func ViewTraceAggregate(buf []byte) (TraceAggregateView, error) {
	if err := need(buf, TraceAggregateBaseLen); err != nil {
		return TraceAggregateView{}, decodeErr("TraceAggregate", err)
	}
	return TraceAggregateView{base: buf[:TraceAggregateBaseLen], scratch: buf[TraceAggregateBaseLen:]}, nil
}

func (v TraceAggregateView) StartNanos() uint64 { n, _ := getU64(v.base[0:8]); return n }

func (v TraceAggregateView) NodeCount() int {
	n, _ := getU32(v.base[12:16])
	return int(n)
}

// Node decodes only the i'th node of the sequence.
func (v TraceAggregateView) Node(i int) (AggNode, error) {
	off, _ := getU32(v.base[8:12])
	count, _ := getU32(v.base[12:16])
	if i < 0 || uint32(i) >= count {
		return AggNode{}, decodeErr("TraceAggregate.Nodes", ErrBadScratch)
	}
	region, err := scratchSlice(v.scratch, off+uint32(i)*uint32(AggNodeBaseLen), uint32(AggNodeBaseLen))
	if err != nil {
		return AggNode{}, decodeErr("TraceAggregate.Nodes", err)
	}
	return decodeAggNode(region, v.scratch)
}

func (v TraceAggregateView) CounterCount() int {
	n, _ := getU32(v.base[20:24])
	return int(n)
}

// Counter decodes only the i'th counter.
func (v TraceAggregateView) Counter(i int) (uint32, error) {
	off, _ := getU32(v.base[16:20])
	count, _ := getU32(v.base[20:24])
	if i < 0 || uint32(i) >= count {
		return 0, decodeErr("TraceAggregate.Counters", ErrBadScratch)
	}
	region, err := scratchSlice(v.scratch, off+uint32(i)*4, 4)
	if err != nil {
		return 0, decodeErr("TraceAggregate.Counters", err)
	}
	val, _ := getU32(region)
	return val, nil
}

func (v TraceAggregateView) MetricCount() int {
	n, _ := getU32(v.base[28:32])
	return int(n)
}

// Metric decodes only the i'th metric slot.
func (v TraceAggregateView) Metric(i int) (MetricAggregate, error) {
	off, _ := getU32(v.base[24:28])
	count, _ := getU32(v.base[28:32])
	if i < 0 || uint32(i) >= count {
		return MetricAggregate{}, decodeErr("TraceAggregate.Metrics", ErrBadScratch)
	}
	region, err := scratchSlice(v.scratch, off+uint32(i)*uint32(MetricAggregateBaseLen), uint32(MetricAggregateBaseLen))
	if err != nil {
		return MetricAggregate{}, decodeErr("TraceAggregate.Metrics", err)
	}
	return decodeMetricAggregate(region, nil)
}

// TraceAggregateDeltaView is the lazy counterpart to TraceAggregateDelta.
type TraceAggregateDeltaView struct {
	base, scratch []byte
}

// ViewTraceAggregateDelta wraps buf without decoding it.
func ViewTraceAggregateDelta(buf []byte) (TraceAggregateDeltaView, error) {
	if err := need(buf, TraceAggregateDeltaBaseLen); err != nil {
		return TraceAggregateDeltaView{}, decodeErr("TraceAggregateDelta", err)
	}
	return TraceAggregateDeltaView{base: buf[:TraceAggregateDeltaBaseLen], scratch: buf[TraceAggregateDeltaBaseLen:]}, nil
}

func (v TraceAggregateDeltaView) StartNanos() uint64 { n, _ := getU64(v.base[0:8]); return n }
func (v TraceAggregateDeltaView) EndNanos() uint64   { n, _ := getU64(v.base[8:16]); return n }

func (v TraceAggregateDeltaView) CounterCount() int {
	n, _ := getU32(v.base[20:24])
	return int(n)
}

// Counter decodes only the i'th counter.
func (v TraceAggregateDeltaView) Counter(i int) (uint32, error) {
	off, _ := getU32(v.base[16:20])
	count, _ := getU32(v.base[20:24])
	if i < 0 || uint32(i) >= count {
		return 0, decodeErr("TraceAggregateDelta.Counters", ErrBadScratch)
	}
	region, err := scratchSlice(v.scratch, off+uint32(i)*4, 4)
	if err != nil {
		return 0, decodeErr("TraceAggregateDelta.Counters", err)
	}
	val, _ := getU32(region)
	return val, nil
}

func (v TraceAggregateDeltaView) MetricCount() int {
	n, _ := getU32(v.base[28:32])
	return int(n)
}

// Metric decodes only the i'th metric slot.
func (v TraceAggregateDeltaView) Metric(i int) (MetricAggregate, error) {
	off, _ := getU32(v.base[24:28])
	count, _ := getU32(v.base[28:32])
	if i < 0 || uint32(i) >= count {
		return MetricAggregate{}, decodeErr("TraceAggregateDelta.Metrics", ErrBadScratch)
	}
	region, err := scratchSlice(v.scratch, off+uint32(i)*uint32(MetricAggregateBaseLen), uint32(MetricAggregateBaseLen))
	if err != nil {
		return MetricAggregate{}, decodeErr("TraceAggregateDelta.Metrics", err)
	}
	return decodeMetricAggregate(region, nil)
}
