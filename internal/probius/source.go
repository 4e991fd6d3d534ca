// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package probius

import (
	"sync/atomic"
	"time"

	"github.com/ClusterCockpit/cc-probius/internal/gls"
	"github.com/ClusterCockpit/cc-probius/pkg/mproto"
)

// nextSourceId is the process-wide monotonic SourceId allocator (§5
// "Source id allocation": an atomic counter, relaxed ordering — only
// uniqueness is required).
var nextSourceId uint64

// nextEventSeq is goroutine-local: every source created on the same
// goroutine shares one sequence counter, matching original_source's
// thread_local NEXT_EVENT_SEQ.
var nextEventSeq = gls.NewSlot[uint16]()

func allocEventSeq() mproto.EventSeq {
	seq, _ := nextEventSeq.Get()
	nextEventSeq.Set(seq + 1) // wraps on overflow, same as the source's wrapping_add
	return mproto.EventSeq(seq)
}

// Source is a lifecycle-tracked emitter of CreateSource/DeleteSource
// events (§4.6). Every Component and TraceSource embeds one.
type Source struct {
	inst       *instance
	id         mproto.SourceId
	createTime time.Time
}

// newSource allocates a fresh SourceId and emits its CreateSource event,
// attributing it to the calling goroutine's currently-entered Component
// (if any) as parent — mirroring original_source's
// `component::with_current` lookup inside `Source::new`.
func newSource(inst *instance, name string, isRecurring bool) *Source {
	s := &Source{
		inst:       inst,
		id:         mproto.SourceId{Source: atomic.AddUint64(&nextSourceId, 1) - 1},
		createTime: time.Now(),
	}

	var parent *mproto.SourceId
	if cur, ok := currentComponent.Get(); ok {
		id := cur.ID()
		parent = &id
	}

	s.inst.w.events.CreateSource(s.nextEventId(), name, parent, isRecurring)
	return s
}

// ID returns the process-unique identifier allocated to this source.
func (s *Source) ID() mproto.SourceId { return s.id }

// nowNanos returns nanoseconds elapsed since this source was created,
// mirroring original_source's Source::now_nanos (time since Source
// creation, not since process start or the Unix epoch).
func (s *Source) nowNanos() uint64 {
	return uint64(time.Since(s.createTime).Nanoseconds())
}

func (s *Source) nextEventId() mproto.EventId {
	return mproto.EventId{
		Source:         s.id,
		TimestampNanos: s.nowNanos(),
		Seq:            allocEventSeq(),
	}
}

// Close emits the DeleteSource event, mirroring original_source's
// Drop impl for Source. Callers (Component, TraceSource) call this from
// their own Close/teardown path; Go has no destructors to rely on.
func (s *Source) Close() {
	s.inst.w.events.DeleteSource(s.nextEventId())
}
