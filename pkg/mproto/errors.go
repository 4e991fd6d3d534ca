// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mproto implements the wire codec: a fixed-base-offset binary
// layout where every schema type occupies a constant BASE_LEN at its
// position in a parent record, and variable-length fields (strings,
// sequences) live in a flat scratch region appended after the outermost
// record. Each schema type has an owned (heap-backed) form for
// construction and a lazy (buffer, offset) form for zero-copy decoding.
package mproto

import "errors"

// DecodeError is returned by any accessor or whole-record decode that
// encounters malformed input: a truncated buffer, an out-of-range union
// tag, or a scratch descriptor pointing outside the buffer.
var (
	ErrTruncated    = errors.New("[MPROTO]> buffer truncated")
	ErrBadTag       = errors.New("[MPROTO]> unknown variant tag")
	ErrBadScratch   = errors.New("[MPROTO]> scratch descriptor out of range")
	ErrBadEventKind = errors.New("[MPROTO]> unknown event kind")
)

// DecodeError wraps one of the sentinel errors above with positional
// context. The Decode* functions and View* accessors return it;
// EventScanner stops on it and reports it through Err.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return "[MPROTO]> " + e.Op + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

func decodeErr(op string, err error) error {
	return &DecodeError{Op: op, Err: err}
}
