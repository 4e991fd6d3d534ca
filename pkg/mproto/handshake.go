// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package mproto

// SinkHandshake is the first frame a TCP sink sends after connecting,
// identifying the emitting process and session.
type SinkHandshake struct {
	AppName      string
	SessionIdHi  uint64
	SessionIdLo  uint64
}

const SinkHandshakeBaseLen = 8 + 8 + 8 // 24

func (v SinkHandshake) Encode() []byte {
	scratch := &scratchWriter{}
	dst := make([]byte, SinkHandshakeBaseLen)
	v.encodeInto(dst, scratch)
	return append(dst, scratch.buf...)
}

func (v SinkHandshake) encodeInto(dst []byte, scratch *scratchWriter) {
	off, length := scratch.putString(v.AppName)
	putU32(dst[0:4], off)
	putU32(dst[4:8], length)
	putU64(dst[8:16], v.SessionIdHi)
	putU64(dst[16:24], v.SessionIdLo)
}

func DecodeSinkHandshake(buf []byte) (SinkHandshake, error) {
	if err := need(buf, SinkHandshakeBaseLen); err != nil {
		return SinkHandshake{}, decodeErr("SinkHandshake", err)
	}
	base, scratch := buf[:SinkHandshakeBaseLen], buf[SinkHandshakeBaseLen:]

	off, _ := getU32(base[0:4])
	length, _ := getU32(base[4:8])
	name, err := scratchSlice(scratch, off, length)
	if err != nil {
		return SinkHandshake{}, decodeErr("SinkHandshake.AppName", err)
	}
	hi, _ := getU64(base[8:16])
	lo, _ := getU64(base[16:24])

	return SinkHandshake{AppName: string(name), SessionIdHi: hi, SessionIdLo: lo}, nil
}
