// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// This file implements the owned forms of the non-union event bodies:
// CreateSource, DeleteSource, and Trace. Each follows the record layout
// rule (§4.1): fields at consecutive base offsets, variable-length
// fields replaced inline by an (offset, length) scratch descriptor.
package mproto

// CreateSource is the body of an EventKindCreateSource event.
type CreateSource struct {
	Name        string
	Parent      *SourceId // nil when absent
	IsRecurring bool
}

const CreateSourceBaseLen = 8 + (1 + SourceIdBaseLen) + 1 // 18

// Encode serializes v as a standalone buffer: BASE_LEN inline bytes
// followed by its scratch region.
func (v CreateSource) Encode() []byte {
	scratch := &scratchWriter{}
	dst := make([]byte, CreateSourceBaseLen)
	v.encodeInto(dst, scratch)
	return append(dst, scratch.buf...)
}

func (v CreateSource) encodeInto(dst []byte, scratch *scratchWriter) {
	off, length := scratch.putString(v.Name)
	putU32(dst[0:4], off)
	putU32(dst[4:8], length)

	parentDst := dst[8:17]
	if v.Parent != nil {
		putOptionHeader(parentDst[0:1], true)
		v.Parent.encodeInto(parentDst[1:9], scratch)
	} else {
		putOptionHeader(parentDst[0:1], false)
	}

	putBool(dst[17:18], v.IsRecurring)
}

func DecodeCreateSource(buf []byte) (CreateSource, error) {
	if err := need(buf, CreateSourceBaseLen); err != nil {
		return CreateSource{}, decodeErr("CreateSource", err)
	}
	base, scratch := buf[:CreateSourceBaseLen], buf[CreateSourceBaseLen:]

	nameOff, _ := getU32(base[0:4])
	nameLen, _ := getU32(base[4:8])
	nameBytes, err := scratchSlice(scratch, nameOff, nameLen)
	if err != nil {
		return CreateSource{}, decodeErr("CreateSource.Name", err)
	}

	present, err := getOptionHeader(base[8:9])
	if err != nil {
		return CreateSource{}, decodeErr("CreateSource.Parent", err)
	}
	var parent *SourceId
	if present {
		p, err := decodeSourceId(base[9:17], scratch)
		if err != nil {
			return CreateSource{}, decodeErr("CreateSource.Parent", err)
		}
		parent = &p
	}

	recurring, err := getBool(base[17:18])
	if err != nil {
		return CreateSource{}, decodeErr("CreateSource.IsRecurring", err)
	}

	return CreateSource{
		Name:        string(nameBytes),
		Parent:      parent,
		IsRecurring: recurring,
	}, nil
}

// DeleteSource carries no fields.
type DeleteSource struct{}

const DeleteSourceBaseLen = 0

func (DeleteSource) Encode() []byte { return []byte{} }

func DecodeDeleteSource(buf []byte) (DeleteSource, error) {
	_ = buf
	return DeleteSource{}, nil
}

// Trace is the body of a detailed-trace event: the recorder's raw
// op-stream bytes, opaque to mproto itself.
type Trace struct {
	StartNanos uint64
	Payload    []byte
}

const TraceBaseLen = 8 + 8 // 16

func (v Trace) Encode() []byte {
	scratch := &scratchWriter{}
	dst := make([]byte, TraceBaseLen)
	v.encodeInto(dst, scratch)
	return append(dst, scratch.buf...)
}

func (v Trace) encodeInto(dst []byte, scratch *scratchWriter) {
	putU64(dst[0:8], v.StartNanos)
	off, length := scratch.putBytes(v.Payload)
	putU32(dst[8:12], off)
	putU32(dst[12:16], length)
}

func DecodeTrace(buf []byte) (Trace, error) {
	if err := need(buf, TraceBaseLen); err != nil {
		return Trace{}, decodeErr("Trace", err)
	}
	base, scratch := buf[:TraceBaseLen], buf[TraceBaseLen:]

	startNanos, _ := getU64(base[0:8])
	off, _ := getU32(base[8:12])
	length, _ := getU32(base[12:16])
	payload, err := scratchSlice(scratch, off, length)
	if err != nil {
		return Trace{}, decodeErr("Trace.Payload", err)
	}

	out := make([]byte, len(payload))
	copy(out, payload)
	return Trace{StartNanos: startNanos, Payload: out}, nil
}
