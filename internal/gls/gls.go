// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package gls provides goroutine-local single-slot storage, the Go
// stand-in for the source's thread_local! ambient pointers (§3.x of
// SPEC_FULL.md, §9 "ambient thread-local context" design note). Each
// Slot holds at most one value per goroutine; With saves the previous
// value on entry and restores it on exit, exactly the lexical
// save/restore discipline the design note prescribes — not a dynamic
// per-goroutine stack.
package gls

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// goroutineID parses the numeric id out of the header line of
// runtime.Stack's output ("goroutine 123 [running]:..."). It is not
// part of any public Go API guarantee, but it is the only way to key
// per-goroutine state without threading a parameter through every call,
// which the spec's "free helper function" ergonomics rule out.
func goroutineID() int64 {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	if i := bytes.IndexByte(buf, ' '); i >= 0 {
		buf = buf[:i]
	}
	id, _ := strconv.ParseInt(string(buf), 10, 64)
	return id
}

// Slot is goroutine-local storage for a single value of type T.
type Slot[T any] struct {
	mu     sync.Mutex
	values map[int64]T
}

// NewSlot returns a ready-to-use Slot.
func NewSlot[T any]() *Slot[T] {
	return &Slot[T]{values: make(map[int64]T)}
}

// Get returns the calling goroutine's current value and whether one is
// set.
func (s *Slot[T]) Get() (T, bool) {
	id := goroutineID()
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[id]
	return v, ok
}

// Set unconditionally overwrites the calling goroutine's value.
func (s *Slot[T]) Set(v T) {
	id := goroutineID()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[id] = v
}

// Clear removes the calling goroutine's value, if any.
func (s *Slot[T]) Clear() {
	id := goroutineID()
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, id)
}

// With sets v as the calling goroutine's value for the duration of fn,
// restoring whatever value (or absence of one) preceded the call. This
// is the save-on-entry/restore-on-exit pattern the ambient component and
// trace stacks are built on.
func (s *Slot[T]) With(v T, fn func()) {
	id := goroutineID()

	s.mu.Lock()
	old, hadOld := s.values[id]
	s.values[id] = v
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if hadOld {
			s.values[id] = old
		} else {
			delete(s.values, id)
		}
		s.mu.Unlock()
	}()

	fn()
}
