// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package mproto

import "encoding/binary"

// scratchWriter accumulates the variable-length tail that follows an
// outermost record's fixed-size base. All offset/length descriptors
// written into a base (or into nested elements living in the scratch
// area itself) are relative to the start of this region, never to the
// whole encoded buffer.
type scratchWriter struct {
	buf []byte
}

// reserve appends n zeroed bytes and returns their offset within the
// scratch region along with a slice the caller can write into directly.
func (s *scratchWriter) reserve(n int) (offset uint32, dst []byte) {
	offset = uint32(len(s.buf))
	s.buf = append(s.buf, make([]byte, n)...)
	return offset, s.buf[offset:]
}

// putBytes copies b into the scratch region and returns its descriptor.
func (s *scratchWriter) putBytes(b []byte) (offset, length uint32) {
	offset, dst := s.reserve(len(b))
	copy(dst, b)
	return offset, uint32(len(b))
}

// putString is putBytes for a string, avoiding an intermediate []byte
// allocation beyond what copy(dst, s) already needs.
func (s *scratchWriter) putString(str string) (offset, length uint32) {
	offset, dst := s.reserve(len(str))
	copy(dst, str)
	return offset, uint32(len(str))
}

// scratchSlice resolves a (offset, length) descriptor against a scratch
// region, bounds-checking it first.
func scratchSlice(scratch []byte, offset, length uint32) ([]byte, error) {
	end := uint64(offset) + uint64(length)
	if end > uint64(len(scratch)) {
		return nil, ErrBadScratch
	}
	return scratch[offset : offset+length], nil
}

// --- little-endian primitive helpers ---------------------------------

func putU16(dst []byte, v uint16) { binary.LittleEndian.PutUint16(dst, v) }
func putU32(dst []byte, v uint32) { binary.LittleEndian.PutUint32(dst, v) }
func putU64(dst []byte, v uint64) { binary.LittleEndian.PutUint64(dst, v) }
func putI64(dst []byte, v int64)  { binary.LittleEndian.PutUint64(dst, uint64(v)) }

func getU16(src []byte) (uint16, error) {
	if len(src) < 2 {
		return 0, ErrTruncated
	}
	return binary.LittleEndian.Uint16(src), nil
}

func getU32(src []byte) (uint32, error) {
	if len(src) < 4 {
		return 0, ErrTruncated
	}
	return binary.LittleEndian.Uint32(src), nil
}

func getU64(src []byte) (uint64, error) {
	if len(src) < 8 {
		return 0, ErrTruncated
	}
	return binary.LittleEndian.Uint64(src), nil
}

func getI64(src []byte) (int64, error) {
	v, err := getU64(src)
	return int64(v), err
}

func putBool(dst []byte, v bool) {
	if v {
		dst[0] = 1
	} else {
		dst[0] = 0
	}
}

func getBool(src []byte) (bool, error) {
	if len(src) < 1 {
		return false, ErrTruncated
	}
	return src[0] != 0, nil
}

// putOptionHeader writes the one presence byte for Option<T> at dst[0].
// Absent values leave the following BASE_LEN(T) bytes zero, which the
// caller must arrange for by not writing past dst[0] when present is
// false.
func putOptionHeader(dst []byte, present bool) {
	if present {
		dst[0] = 1
	} else {
		dst[0] = 0
	}
}

func getOptionHeader(src []byte) (bool, error) {
	if len(src) < 1 {
		return false, ErrTruncated
	}
	return src[0] == 1, nil
}

func need(buf []byte, n int) error {
	if len(buf) < n {
		return ErrTruncated
	}
	return nil
}
