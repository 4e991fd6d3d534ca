// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package mproto

// EventKind is the closed tag set of top-level event bodies. An unknown
// tag is always a decode error, never silently skipped.
type EventKind uint8

const (
	EventKindCreateSource EventKind = iota
	EventKindDeleteSource
	EventKindTrace
	EventKindTraceAggregate
	EventKindTraceAggregateDelta
	eventKindCount
)

const EventKindBaseLen = 1

func (k EventKind) valid() bool { return k < eventKindCount }

func (k EventKind) String() string {
	switch k {
	case EventKindCreateSource:
		return "CreateSource"
	case EventKindDeleteSource:
		return "DeleteSource"
	case EventKindTrace:
		return "Trace"
	case EventKindTraceAggregate:
		return "TraceAggregate"
	case EventKindTraceAggregateDelta:
		return "TraceAggregateDelta"
	default:
		return "Unknown"
	}
}

func (k EventKind) encodeInto(dst []byte, _ *scratchWriter) {
	dst[0] = byte(k)
}

func decodeEventKind(base []byte, _ []byte) (EventKind, error) {
	if err := need(base, EventKindBaseLen); err != nil {
		return 0, err
	}
	k := EventKind(base[0])
	if !k.valid() {
		return 0, ErrBadEventKind
	}
	return k, nil
}

// EventHeader precedes every event body: (EventId, len, kind). len is the
// byte length of the body that immediately follows the header in the
// frame (not counting the header itself).
type EventHeader struct {
	Id   EventId
	Len  uint16
	Kind EventKind
}

const EventHeaderBaseLen = EventIdBaseLen + 2 + EventKindBaseLen // 21

func (h EventHeader) encodeInto(dst []byte, scratch *scratchWriter) {
	h.Id.encodeInto(dst[0:18], scratch)
	putU16(dst[18:20], h.Len)
	h.Kind.encodeInto(dst[20:21], scratch)
}

// Encode returns the standalone BASE_LEN-sized encoding of h (EventHeader
// carries no variable-length fields, so it has no scratch region).
func (h EventHeader) Encode() []byte {
	dst := make([]byte, EventHeaderBaseLen)
	h.encodeInto(dst, nil)
	return dst
}

func DecodeEventHeader(buf []byte) (EventHeader, error) {
	if err := need(buf, EventHeaderBaseLen); err != nil {
		return EventHeader{}, decodeErr("EventHeader", err)
	}
	id, err := decodeEventId(buf[0:18], nil)
	if err != nil {
		return EventHeader{}, decodeErr("EventHeader.Id", err)
	}
	length, _ := getU16(buf[18:20])
	kind, err := decodeEventKind(buf[20:21], nil)
	if err != nil {
		return EventHeader{}, decodeErr("EventHeader.Kind", err)
	}
	return EventHeader{Id: id, Len: length, Kind: kind}, nil
}
