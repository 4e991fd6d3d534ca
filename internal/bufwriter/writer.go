// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package bufwriter implements the BufferWriter (§4.3) and the typed
// Event Writer layered over it (§4.4): a bounded, zero-copy byte writer
// that streams events into fixed-size pages drawn from pkg/bufpool,
// reserving a leading headroom on each page for the sink to stamp its
// own framing prefix into later.
package bufwriter

import (
	"sync"

	"github.com/ClusterCockpit/cc-probius/pkg/bufpool"
)

// BufferWriter streams bytes into pages from a single bufpool.Pool,
// switching pages on overflow and handing completed pages to a
// bufpool.BufferChain. Per §5 TryWrite is called from a single tracing
// goroutine, but Flush is not: a dedicated flusher goroutine (the void
// sink, a gocron-scheduled job, a TCP sink pump) drains every writer in
// the process, including this one, from outside the owning goroutine.
// mu guards current/written against that cross-goroutine Flush call
// racing with the owning goroutine's TryWrite.
type BufferWriter struct {
	pool     *bufpool.Pool
	chain    *bufpool.BufferChain
	headroom int

	mu      sync.Mutex
	current *bufpool.Page
	written int // bytes committed on current, headroom included
}

// NewBufferWriter constructs a writer over pool, reserving headroom
// bytes at the start of every page it emits, and pushing completed
// pages onto chain.
func NewBufferWriter(pool *bufpool.Pool, headroom int, chain *bufpool.BufferChain) *BufferWriter {
	return &BufferWriter{pool: pool, chain: chain, headroom: headroom}
}

// IsEmpty reports whether the current page holds nothing beyond its
// reserved headroom.
func (w *BufferWriter) IsEmpty() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current == nil || w.written <= w.headroom
}

// RemainingOnBuffer is the number of bytes still free on the current
// page, or 0 if there is no current page.
func (w *BufferWriter) RemainingOnBuffer() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current == nil {
		return 0
	}
	return w.current.Len() - w.written
}

// switchPage marks the current page complete, enqueues it, and tries to
// acquire a fresh one. Returns false if the pool is exhausted. Callers
// must hold w.mu.
func (w *BufferWriter) switchPage() bool {
	if w.current != nil {
		w.current.MarkComplete(uint32(w.written))
		w.chain.Push(w.current)
		w.current = nil
		w.written = 0
	}

	pg := w.pool.Get()
	if pg == nil {
		return false
	}
	w.current = pg
	w.written = w.headroom
	return true
}

// TryWrite implements the algorithm in §4.3: it exposes exactly length
// bytes of the current (or a freshly switched-to) page to fn and
// commits them. It returns false — the caller's signal to drop the
// event and bump its own dropped-event counter — when no page is
// available from the pool, or when length alone cannot fit on a fresh
// page (a mis-sized write, not an ordinary page-boundary condition).
func (w *BufferWriter) TryWrite(length int, fn func(dst []byte)) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current == nil {
		if !w.switchPage() {
			return false
		}
	}

	if w.written+length > w.current.Len() {
		if !w.switchPage() {
			return false
		}
		if w.written+length > w.current.Len() {
			return false
		}
	}

	dst := w.current.SliceMut(w.written, w.written+length)
	fn(dst)
	w.written += length
	return true
}

// Flush forces a page switch — marking the current page complete even
// if only its headroom was ever written — and drains every completed
// page accumulated so far, in FIFO order. Safe to call from a goroutine
// other than the one calling TryWrite (see mu above).
func (w *BufferWriter) Flush() []*bufpool.Page {
	w.mu.Lock()
	if w.current != nil {
		w.current.MarkComplete(uint32(w.written))
		w.chain.Push(w.current)
		w.current = nil
		w.written = 0
	}
	w.mu.Unlock()
	return w.chain.Drain()
}
