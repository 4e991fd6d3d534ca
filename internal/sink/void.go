// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sink implements the two output sinks named in §6: a no-op void
// sink that simply recycles completed pages, and a TCP sink that streams
// them to a configured remote address with reconnect/backoff. Both are
// grounded on original_source's void_sink.rs/tcp_sink.rs, adapted to the
// reconnect idiom of the teacher's pkg/nats client.
package sink

import (
	"time"

	"github.com/ClusterCockpit/cc-probius/pkg/bufpool"
	"github.com/ClusterCockpit/cc-probius/pkg/tracelog"
)

// FlushFunc drains whatever pages a writer has completed so far, exactly
// the signature of internal/probius's process-wide Flush().
type FlushFunc func() []*bufpool.Page

const voidSinkInterval = 100 * time.Millisecond

// RunVoidSink calls flush every 100ms and immediately releases every page
// it returns, until stop is closed. It is the default sink installed when
// no application sink has been configured (§6 "Process-wide init").
func RunVoidSink(flush FlushFunc, stop <-chan struct{}) {
	ticker := time.NewTicker(voidSinkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			for _, pg := range flush() {
				pg.Release()
			}
		}
	}
}

// SpawnVoidSink starts RunVoidSink on its own goroutine and returns a
// function that stops it.
func SpawnVoidSink(flush FlushFunc) (stopFn func()) {
	tracelog.Debug("probius: no sink configured, installing void sink")
	stop := make(chan struct{})
	go RunVoidSink(flush, stop)
	return func() { close(stop) }
}
