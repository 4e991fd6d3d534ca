// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package probius

import (
	"github.com/ClusterCockpit/cc-probius/internal/aggregator"
	"github.com/ClusterCockpit/cc-probius/internal/gls"
	"github.com/ClusterCockpit/cc-probius/pkg/mproto"
)

// DetailScratchBytes is the fixed size of a Trace invocation's
// detail-encoding scratch area (§4.6, §9 "source constant, unchanged").
const DetailScratchBytes = 512

// currentTrace is the goroutine's innermost active Trace, the stand-in
// for original_source's thread-local TRACE_STACK cell.
var currentTrace = gls.NewSlot[*Trace]()

// Trace is created per TraceSource.Trace(closure) call and pushed onto
// the goroutine-local trace stack for the closure's duration (§4.6).
type Trace struct {
	isDetailedTrace bool
	startNanos      uint64
	traceSource     *TraceSource
	cursor          *aggregator.Cursor

	encodeBuf    [DetailScratchBytes]byte
	encodeCursor int
	invalid      bool
}

func newTrace(ts *TraceSource, detailed bool) *Trace {
	return &Trace{
		isDetailedTrace: detailed,
		startNanos:      ts.source.nowNanos(),
		traceSource:     ts,
		cursor:          aggregator.NewCursor(),
	}
}

// finish emits the accumulated detail payload as a Trace event, the Go
// stand-in for original_source's Drop impl for Trace. A no-op unless
// is_detailed_trace and the scratch never overflowed.
func (t *Trace) finish() {
	if !t.isDetailedTrace || t.invalid {
		return
	}
	s := t.traceSource.source
	s.inst.w.events.Trace(s.nextEventId(), t.startNanos, t.encodeBuf[:t.encodeCursor])
}

// pushOp folds op into the aggregator graph and, if this is a detailed
// trace, appends the op's node index plus its per-instance payload to the
// scratch buffer (§4.6 "push_op"). metricValue is only meaningful for
// OpMetric.
func (t *Trace) pushOp(op mproto.TraceOpAggregate, metricValue int64) {
	nodeIndex := t.traceSource.aggregator.Ingest(t.cursor, op, metricValue)

	if t.isDetailedTrace && !t.invalid {
		if !t.tryWriteOp(uint16(nodeIndex), op, metricValue) {
			// §7 "Detail-buffer overflow": mark invalid, continue
			// aggregating, omit the Trace event at finish.
			t.invalid = true
		}
	}
}

// tryWriteOp appends the node index and op's instance payload to the
// scratch buffer, reporting false on overflow without having partially
// written anything past the previous cursor position.
func (t *Trace) tryWriteOp(nodeIndex uint16, op mproto.TraceOpAggregate, metricValue int64) bool {
	start := t.encodeCursor
	if !t.tryWriteU16(nodeIndex) {
		return false
	}

	switch op.Kind {
	case mproto.OpCall:
		if !t.tryWriteSourceId(op.CallSource) {
			t.encodeCursor = start
			return false
		}
	case mproto.OpMetric:
		if !t.tryWriteI64(metricValue) {
			t.encodeCursor = start
			return false
		}
	// PushScope, PopScope, BranchStart, BranchEnd, Label, Tag carry no
	// per-instance payload in the detail stream (§4.6). Channel ops are
	// written by pushChannelOp below, not through this path.
	default:
	}
	return true
}

// pushChannelOp is pushOp's counterpart for the channel kinds (§open
// question 3), whose per-instance detail payload is one or two u64
// versions rather than the single int64 pushOp carries. Only
// ChannelSend/ChannelReceive/ChannelTransfer are wired to a recorder
// entry point; the Global* channel kinds remain codec/aggregator-only
// (see DESIGN.md).
func (t *Trace) pushChannelOp(op mproto.TraceOpAggregate, versions ...uint64) {
	nodeIndex := t.traceSource.aggregator.Ingest(t.cursor, op, 0)

	if t.isDetailedTrace && !t.invalid {
		start := t.encodeCursor
		ok := t.tryWriteU16(uint16(nodeIndex))
		for _, v := range versions {
			ok = ok && t.tryWriteU64(v)
		}
		if !ok {
			t.encodeCursor = start
			t.invalid = true
		}
	}
}

func (t *Trace) tryWrite(n int) ([]byte, bool) {
	if t.encodeCursor+n > DetailScratchBytes {
		return nil, false
	}
	dst := t.encodeBuf[t.encodeCursor : t.encodeCursor+n]
	t.encodeCursor += n
	return dst, true
}

func (t *Trace) tryWriteU16(v uint16) bool {
	dst, ok := t.tryWrite(2)
	if !ok {
		return false
	}
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
	return true
}

func (t *Trace) tryWriteI64(v int64) bool {
	dst, ok := t.tryWrite(8)
	if !ok {
		return false
	}
	u := uint64(v)
	for i := 0; i < 8; i++ {
		dst[i] = byte(u >> (8 * i))
	}
	return true
}

func (t *Trace) tryWriteU64(v uint64) bool {
	dst, ok := t.tryWrite(8)
	if !ok {
		return false
	}
	for i := 0; i < 8; i++ {
		dst[i] = byte(v >> (8 * i))
	}
	return true
}

func (t *Trace) tryWriteSourceId(id mproto.SourceId) bool {
	dst, ok := t.tryWrite(8)
	if !ok {
		return false
	}
	u := id.Source
	for i := 0; i < 8; i++ {
		dst[i] = byte(u >> (8 * i))
	}
	return true
}

func (t *Trace) metric(name string, value int64) {
	t.pushOp(mproto.TraceOpAggregate{Kind: mproto.OpMetric, MetricName: name}, value)
}

func (t *Trace) label(label string) {
	t.pushOp(mproto.TraceOpAggregate{Kind: mproto.OpLabel, Label: label}, 0)
}

func (t *Trace) branchStart() {
	t.pushOp(mproto.TraceOpAggregate{Kind: mproto.OpBranchStart}, 0)
}

func (t *Trace) branchEnd() {
	t.pushOp(mproto.TraceOpAggregate{Kind: mproto.OpBranchEnd}, 0)
}

func (t *Trace) channelSend(channel mproto.SourceId, version uint64) {
	t.pushChannelOp(mproto.TraceOpAggregate{Kind: mproto.OpChannelSend, Channel: channel}, version)
}

func (t *Trace) channelReceive(channel mproto.SourceId, version uint64) {
	t.pushChannelOp(mproto.TraceOpAggregate{Kind: mproto.OpChannelReceive, Channel: channel}, version)
}

func (t *Trace) channelTransfer(from, to mproto.SourceId, fromVersion, toVersion uint64) {
	t.pushChannelOp(mproto.TraceOpAggregate{Kind: mproto.OpChannelTransfer, From: from, To: to}, fromVersion, toVersion)
}

// withCurrentTrace runs f against the goroutine's active trace, if any —
// every free trace_* helper is a no-op outside a TraceSource.Trace scope.
func withCurrentTrace(f func(t *Trace)) {
	if t, ok := currentTrace.Get(); ok {
		f(t)
	}
}

// TraceMetric folds a named metric sample into the active trace, if any.
func TraceMetric(name string, value int64) {
	withCurrentTrace(func(t *Trace) { t.metric(name, value) })
}

// TraceLabel folds a label op into the active trace, if any.
func TraceLabel(label string) {
	withCurrentTrace(func(t *Trace) { t.label(label) })
}

// TraceBranchStart folds a BranchStart op into the active trace, if any.
func TraceBranchStart() {
	withCurrentTrace(func(t *Trace) { t.branchStart() })
}

// TraceBranchEnd folds a BranchEnd op into the active trace, if any.
func TraceBranchEnd() {
	withCurrentTrace(func(t *Trace) { t.branchEnd() })
}

// TraceChannelSend folds a ChannelSend op, carrying version, into the
// active trace, if any.
func TraceChannelSend(channel mproto.SourceId, version uint64) {
	withCurrentTrace(func(t *Trace) { t.channelSend(channel, version) })
}

// TraceChannelReceive folds a ChannelReceive op, carrying version, into
// the active trace, if any.
func TraceChannelReceive(channel mproto.SourceId, version uint64) {
	withCurrentTrace(func(t *Trace) { t.channelReceive(channel, version) })
}

// TraceChannelTransfer folds a ChannelTransfer op, carrying the sender's
// and receiver's versions, into the active trace, if any.
func TraceChannelTransfer(from, to mproto.SourceId, fromVersion, toVersion uint64) {
	withCurrentTrace(func(t *Trace) { t.channelTransfer(from, to, fromVersion, toVersion) })
}

// TraceBranch brackets f with BranchStart/BranchEnd on the active trace,
// if any, running f unconditionally either way.
func TraceBranch[R any](f func() R) R {
	if t, ok := currentTrace.Get(); ok {
		t.branchStart()
		result := f()
		t.branchEnd()
		return result
	}
	return f()
}
