// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// This file implements the decoder iterator (§4.7): walking a byte
// buffer as a stream of length-framed events. Any decode error or
// truncation terminates iteration rather than panicking — this is the
// corrected behavior for the source's unknown-kind todo!() (§9).
package mproto

// DecodedEvent is one event yielded by EventScanner: the header plus the raw
// (undecoded) body span. Callers matching Kind resolve Body with either
// the owned DecodeCreateSource/DecodeTrace/etc. functions, or the
// matching View* constructor (ViewCreateSource/ViewTrace/etc.) when only
// a few fields are needed and paying to materialize the rest — every
// node of a TraceAggregate, say — isn't worth it.
type DecodedEvent struct {
	Offset int // byte offset of the header within the original buffer
	Id     EventId
	Kind   EventKind
	Body   []byte
}

// EventScanner walks a buffer as a sequence of DecodedEvent, in the
// style of bufio.Scanner: call Scan() in a loop, read Event() after each
// true return, and check Err() once Scan() returns false to distinguish
// "ran out of buffer cleanly" from "hit malformed input".
type EventScanner struct {
	buf    []byte
	offset int
	event  DecodedEvent
	err    error
}

// NewEventScanner returns a scanner over buf starting at its first byte.
func NewEventScanner(buf []byte) *EventScanner {
	return &EventScanner{buf: buf}
}

// Scan advances to the next event. It returns false when the buffer is
// exhausted (Err() == nil) or a decode error occurred (Err() != nil).
func (s *EventScanner) Scan() bool {
	if s.err != nil {
		return false
	}
	if s.offset >= len(s.buf) {
		return false
	}

	headerBuf := s.buf[s.offset:]
	header, err := DecodeEventHeader(headerBuf)
	if err != nil {
		s.err = err
		return false
	}

	bodyStart := s.offset + EventHeaderBaseLen
	bodyEnd := bodyStart + int(header.Len)
	if bodyEnd > len(s.buf) {
		s.err = decodeErr("EventBody", ErrTruncated)
		return false
	}

	s.event = DecodedEvent{
		Offset: s.offset,
		Id:     header.Id,
		Kind:   header.Kind,
		Body:   s.buf[bodyStart:bodyEnd],
	}
	s.offset = bodyEnd
	return true
}

// Event returns the event produced by the most recent successful Scan.
func (s *EventScanner) Event() DecodedEvent { return s.event }

// Err returns the error that stopped iteration, or nil if it stopped
// because the buffer was exhausted.
func (s *EventScanner) Err() error { return s.err }
