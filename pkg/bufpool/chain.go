// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package bufpool

import "sync"

// BufferChain is a FIFO of completed pages awaiting delivery, matching
// the source's BufferChain contract: Push appends, Drain empties the
// whole chain at once in FIFO order.
type BufferChain struct {
	mu    sync.Mutex
	pages []*Page
}

// Push appends a completed page to the tail of the chain.
func (c *BufferChain) Push(pg *Page) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages = append(c.pages, pg)
}

// Drain removes and returns every page currently in the chain, oldest
// first.
func (c *BufferChain) Drain() []*Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.pages
	c.pages = nil
	return out
}

// Len returns the number of pages currently queued.
func (c *BufferChain) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pages)
}

// Sender is the producer half of a buffer_queue: the tracing thread
// hands off completed pages by ownership move (spec §5: "Transfer is by
// ownership move of a raw page pointer — no shared-mutable data after
// transfer").
type Sender struct {
	ch chan<- *Page
}

// Receiver is the consumer half, read by the sink goroutine.
type Receiver struct {
	ch <-chan *Page
}

// NewQueue returns a bounded single-producer/single-consumer queue of
// Pages, mirroring the source's buffer_queue() -> (Sender, Receiver).
func NewQueue(capacity int) (Sender, Receiver) {
	ch := make(chan *Page, capacity)
	return Sender{ch: ch}, Receiver{ch: ch}
}

// Send enqueues a page, blocking if the queue is full. Calling Send after
// Close panics, as a send on a closed channel does.
func (s Sender) Send(pg *Page) {
	s.ch <- pg
}

// Close signals the consumer that no further pages will be sent.
func (s Sender) Close() {
	close(s.ch)
}

// Recv blocks for the next page. ok is false once the queue has been
// closed and drained — the consumer's cue to stop (matching the sink's
// own "reconnect, recreate the receiver" behavior on write failure,
// §6 TCP sink framing point 4).
func (r Receiver) Recv() (pg *Page, ok bool) {
	pg, ok = <-r.ch
	return pg, ok
}

// Chan exposes the underlying channel for use in a select alongside
// other readiness sources (e.g. a shutdown context).
func (r Receiver) Chan() <-chan *Page { return r.ch }
