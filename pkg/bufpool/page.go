// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package bufpool is a concrete implementation of the fixed-size page
// allocator and single-producer/single-consumer completed-page queue
// that the core tracing pipeline treats as an external collaborator
// (spec §6). It is modeled on the teacher's sync.Pool-backed
// PersistentBufferPool (pkg/metricstore/buffer.go): pages are recycled
// through a bounded free list instead of being released to the garbage
// collector on every flush.
package bufpool

// Page is one fixed-size writable region handed out by a Pool. Once
// MarkComplete is called its CompleteBufferLen is immutable; readers
// (a TCP sink, a test) must treat bytes [0, CompleteBufferLen) as the
// emitted frame, headroom included.
type Page struct {
	buf        []byte
	writtenLen uint32
	complete   bool
	pool       *Pool
}

// Slice returns the page's bytes in [start, end).
func (p *Page) Slice(start, end int) []byte {
	return p.buf[start:end]
}

// SliceMut is Slice for writers; Go has no separate mutable-borrow type,
// so this returns the same backing slice.
func (p *Page) SliceMut(start, end int) []byte {
	return p.buf[start:end]
}

// Len is the page's fixed capacity.
func (p *Page) Len() int { return len(p.buf) }

// MarkComplete records how many bytes of the page are valid and freezes
// CompleteBufferLen.
func (p *Page) MarkComplete(writtenLen uint32) {
	p.writtenLen = writtenLen
	p.complete = true
}

// CompleteBufferLen returns the byte count fixed by the most recent
// MarkComplete call.
func (p *Page) CompleteBufferLen() uint32 { return p.writtenLen }

// IsComplete reports whether MarkComplete has been called since the
// page was last acquired from a Pool.
func (p *Page) IsComplete() bool { return p.complete }

// Release returns the page to its owning pool for reuse.
func (p *Page) Release() {
	if p.pool != nil {
		p.pool.put(p)
	}
}
