// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package probius

import (
	"github.com/ClusterCockpit/cc-probius/internal/gls"
	"github.com/ClusterCockpit/cc-probius/internal/sink"
)

// instance is the goroutine-local equivalent of original_source's
// thread-local Probius: one writer per goroutine that ever touches
// tracing, lazily created on first use.
type instance struct {
	w *writer
}

var currentInstance = gls.NewSlot[*instance]()

// tryWithProbius runs f against the calling goroutine's instance,
// creating it (and the process-wide default sink, on first use across
// the whole process) if necessary. It never returns an error: tracing is
// always available, degrading to the void sink when unconfigured.
func tryWithProbius[R any](f func(*instance) R) R {
	inst, ok := currentInstance.Get()
	if !ok {
		inst = newInstance()
		currentInstance.Set(inst)
	}
	return f(inst)
}

func newInstance() *instance {
	cfg, isDefault := getOrInitAppConfig()
	if isDefault {
		defaultSinkOnce.Do(func() {
			sink.SpawnVoidSink(Flush)
		})
	}

	w := newWriter(cfg.bufferPool, cfg.bufferHeadroom)
	registerWriter(w)
	return &instance{w: w}
}
