// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package probius

import (
	"sync"

	"github.com/ClusterCockpit/cc-probius/internal/bufwriter"
	"github.com/ClusterCockpit/cc-probius/pkg/bufpool"
)

// writer pairs a goroutine's BufferWriter with the typed EventWriter
// over it, mirroring original_source's ProbiusWriter.
type writer struct {
	bufWriter *bufwriter.BufferWriter
	events    *bufwriter.EventWriter
}

func newWriter(pool *bufpool.Pool, headroom int) *writer {
	chain := &bufpool.BufferChain{}
	bw := bufwriter.NewBufferWriter(pool, headroom, chain)
	return &writer{bufWriter: bw, events: bufwriter.NewEventWriter(bw)}
}

func (w *writer) Flush() []*bufpool.Page {
	return w.bufWriter.Flush()
}

// registry tracks every goroutine-local writer created so far. Go has no
// single "the tracing thread" the way the source's thread-local model
// does; a dedicated flusher goroutine (the default void sink, a
// gocron-scheduled job in cmd/cc-probius, or a custom TCP sink pump)
// needs to drain pages produced by every other goroutine's writer, not
// just its own. This is a deliberate generalization of
// original_source's "call flush() from the same thread that wrote the
// data" convention — recorded in DESIGN.md.
var registry = struct {
	mu      sync.Mutex
	writers []*writer
}{}

func registerWriter(w *writer) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.writers = append(registry.writers, w)
}

// Flush drains every completed page from every goroutine-local writer
// created so far, across the whole process.
func Flush() []*bufpool.Page {
	registry.mu.Lock()
	writers := append([]*writer(nil), registry.writers...)
	registry.mu.Unlock()

	var out []*bufpool.Page
	for _, w := range writers {
		out = append(out, w.Flush()...)
	}
	return out
}
