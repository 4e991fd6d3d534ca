// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package mproto

import "math"

// SourceId is a process-unique, monotonically allocated identifier.
type SourceId struct {
	Source uint64
}

const SourceIdBaseLen = 8

// SourceIdMax is the all-ones sentinel SourceId, SourceId{Source:
// ^uint64(0)}. Nothing in this module uses it.
var SourceIdMax = SourceId{Source: math.MaxUint64}

func (id SourceId) encodeInto(dst []byte, _ *scratchWriter) {
	putU64(dst, id.Source)
}

func decodeSourceId(base []byte, _ []byte) (SourceId, error) {
	if err := need(base, SourceIdBaseLen); err != nil {
		return SourceId{}, err
	}
	v, _ := getU64(base)
	return SourceId{Source: v}, nil
}

// EventSeq distinguishes events sharing a (source, timestamp) pair.
type EventSeq uint16

const EventSeqBaseLen = 2

func (s EventSeq) encodeInto(dst []byte, _ *scratchWriter) {
	putU16(dst, uint16(s))
}

func decodeEventSeq(base []byte, _ []byte) (EventSeq, error) {
	if err := need(base, EventSeqBaseLen); err != nil {
		return 0, err
	}
	v, _ := getU16(base)
	return EventSeq(v), nil
}

// EventId totally orders events within a source by (TimestampNanos, Seq).
type EventId struct {
	Source         SourceId
	TimestampNanos uint64
	Seq            EventSeq
}

const EventIdBaseLen = SourceIdBaseLen + 8 + EventSeqBaseLen // 18

func (id EventId) encodeInto(dst []byte, scratch *scratchWriter) {
	id.Source.encodeInto(dst[0:8], scratch)
	putU64(dst[8:16], id.TimestampNanos)
	id.Seq.encodeInto(dst[16:18], scratch)
}

func decodeEventId(base []byte, scratch []byte) (EventId, error) {
	if err := need(base, EventIdBaseLen); err != nil {
		return EventId{}, err
	}
	src, err := decodeSourceId(base[0:8], scratch)
	if err != nil {
		return EventId{}, err
	}
	ts, _ := getU64(base[8:16])
	seq, err := decodeEventSeq(base[16:18], scratch)
	if err != nil {
		return EventId{}, err
	}
	return EventId{Source: src, TimestampNanos: ts, Seq: seq}, nil
}

// GlobalSourceId identifies a source across sessions.
type GlobalSourceId struct {
	Session  uint64
	Source   SourceId
}

const GlobalSourceIdBaseLen = 8 + SourceIdBaseLen // 16

func (id GlobalSourceId) encodeInto(dst []byte, scratch *scratchWriter) {
	putU64(dst[0:8], id.Session)
	id.Source.encodeInto(dst[8:16], scratch)
}

func decodeGlobalSourceId(base []byte, scratch []byte) (GlobalSourceId, error) {
	if err := need(base, GlobalSourceIdBaseLen); err != nil {
		return GlobalSourceId{}, err
	}
	session, _ := getU64(base[0:8])
	src, err := decodeSourceId(base[8:16], scratch)
	if err != nil {
		return GlobalSourceId{}, err
	}
	return GlobalSourceId{Session: session, Source: src}, nil
}

// TraceCallerId addresses a specific op within a specific emitted event.
type TraceCallerId struct {
	Event   EventId
	OpIndex uint16
}

const TraceCallerIdBaseLen = EventIdBaseLen + 2 // 20

func (id TraceCallerId) encodeInto(dst []byte, scratch *scratchWriter) {
	id.Event.encodeInto(dst[0:18], scratch)
	putU16(dst[18:20], id.OpIndex)
}

func decodeTraceCallerId(base []byte, scratch []byte) (TraceCallerId, error) {
	if err := need(base, TraceCallerIdBaseLen); err != nil {
		return TraceCallerId{}, err
	}
	evt, err := decodeEventId(base[0:18], scratch)
	if err != nil {
		return TraceCallerId{}, err
	}
	idx, _ := getU16(base[18:20])
	return TraceCallerId{Event: evt, OpIndex: idx}, nil
}
