// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package probius implements the Source/Component/TraceSource/Trace
// recorder (§4.6) and the process-wide entry points (§5, §6) that mirror
// original_source's probius::trace module: Init/Flush, the ambient
// current-component and current-trace stacks, and the free trace_*
// helper functions.
package probius

import (
	"sync"

	"github.com/ClusterCockpit/cc-probius/pkg/bufpool"
)

const (
	defaultBufferSize      = 8192
	defaultNumBatches      = 16
	defaultBuffersPerBatch = 16
)

type appConfig struct {
	bufferHeadroom int
	bufferPool     *bufpool.Pool
}

var (
	appConfigMu      sync.Mutex
	currentAppConfig *appConfig
	defaultSinkOnce  sync.Once
)

// Init configures the process-wide buffer pool and per-page headroom
// every goroutine's writer draws from. It must be called at most once;
// a second call panics — double initialization is a programmer error
// (§6 "Process-wide init", §7 "Misuse").
func Init(bufferHeadroom int, bufferPool *bufpool.Pool) {
	appConfigMu.Lock()
	defer appConfigMu.Unlock()
	if currentAppConfig != nil {
		panic("probius: Init called twice")
	}
	currentAppConfig = &appConfig{bufferHeadroom: bufferHeadroom, bufferPool: bufferPool}
}

// getOrInitAppConfig returns the configured app config, installing the
// default void-sink configuration on first use if Init was never called
// (§6 "If no init has occurred by first use, a default void sink is
// installed").
func getOrInitAppConfig() (cfg *appConfig, isDefault bool) {
	appConfigMu.Lock()
	defer appConfigMu.Unlock()

	if currentAppConfig == nil {
		pool := bufpool.NewPool(defaultBufferSize, defaultNumBatches, defaultBuffersPerBatch)
		currentAppConfig = &appConfig{bufferHeadroom: 0, bufferPool: pool}
		return currentAppConfig, true
	}
	return currentAppConfig, false
}
