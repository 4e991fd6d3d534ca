// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package sink

import "github.com/ClusterCockpit/cc-probius/pkg/bufpool"

// Flusher bridges a tracing-thread FlushFunc to a Sender feeding a sink
// goroutine (TCP or otherwise), mirroring original_source's
// ProbiusFlusher: periodically pull completed pages and hand them off by
// ownership move through the queue (§5 "Buffer pool handoff").
type Flusher struct {
	flush  FlushFunc
	sender bufpool.Sender
}

// NewFlusher pairs flush with sender.
func NewFlusher(flush FlushFunc, sender bufpool.Sender) *Flusher {
	return &Flusher{flush: flush, sender: sender}
}

// Flush drains every page the writer has completed and pushes each onto
// the sink queue, blocking if the queue is full.
func (f *Flusher) Flush() {
	for _, pg := range f.flush() {
		f.sender.Send(pg)
	}
}
