// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package probius

import (
	"github.com/ClusterCockpit/cc-probius/internal/aggregator"
	"github.com/ClusterCockpit/cc-probius/pkg/mproto"
)

// TraceSource is a Source that owns an Aggregator and can scope Trace
// invocations (§4.6).
type TraceSource struct {
	source     *Source
	aggregator *aggregator.Aggregator
}

func newTraceSource(name string, isRecurring bool) *TraceSource {
	inst := tryWithProbius(func(inst *instance) *instance { return inst })
	return &TraceSource{
		source:     newSource(inst, name, isRecurring),
		aggregator: aggregator.New(),
	}
}

// ID returns the trace source's underlying source id.
func (ts *TraceSource) ID() mproto.SourceId { return ts.source.ID() }

// Close emits the trace source's DeleteSource event. The aggregator's
// arena is simply dropped with it — Go's GC reclaims it (§9 "the whole
// arena is released when the TraceSource dies").
func (ts *TraceSource) Close() { ts.source.Close() }

// Trace runs f with a fresh Trace pushed onto the goroutine-local trace
// stack for its duration, restoring whatever trace (if any) was active
// before — mirroring original_source's TraceSource::trace.
func Trace[R any](ts *TraceSource, f func() R) R {
	return traceWith(ts, false, f)
}

// TraceDetailed is Trace with detailed (per-op payload) recording
// enabled for the scope of f.
func TraceDetailed[R any](ts *TraceSource, f func() R) R {
	return traceWith(ts, true, f)
}

func traceWith[R any](ts *TraceSource, detailed bool, f func() R) R {
	t := newTrace(ts, detailed)
	var result R
	currentTrace.With(t, func() { result = f() })
	t.finish()
	return result
}

// FlushAggregateFull serializes and resets the trace source's full
// aggregate graph, emitting it as a TraceAggregate event (§4.5, §6).
// startNanos is the caller-supplied timestamp for the emitted event; see
// DESIGN.md's note on this open question.
func (ts *TraceSource) FlushAggregateFull(startNanos uint64) {
	agg := ts.aggregator.FlushFull(startNanos)
	ts.source.inst.w.events.TraceAggregate(ts.source.nextEventId(), agg)
}
