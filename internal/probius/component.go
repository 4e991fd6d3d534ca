// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package probius

import (
	"github.com/ClusterCockpit/cc-probius/internal/gls"
	"github.com/ClusterCockpit/cc-probius/pkg/mproto"
)

// currentComponent holds the goroutine's innermost entered Component, if
// any — the Go stand-in for original_source's thread-local
// CURRENT_COMPONENT cell. Read by newSource to attribute a new source's
// parent, and by EnterComponent to nest components.
var currentComponent = gls.NewSlot[*Component]()

// Component is a named, possibly-recurring scope in the call graph (§4.6
// "Component"): entering one establishes it as the ambient parent for any
// Source created for the remainder of f's lexical extent on this
// goroutine.
type Component struct {
	source *Source
}

func newComponent(name string, isRecurring bool) *Component {
	inst := tryWithProbius(func(inst *instance) *instance { return inst })
	return &Component{source: newSource(inst, name, isRecurring)}
}

// ID returns the component's underlying source id.
func (c *Component) ID() mproto.SourceId { return c.source.ID() }

// Close emits the component's DeleteSource event.
func (c *Component) Close() { c.source.Close() }

// enter pushes c as the current component for the duration of f, restoring
// the previous one (if any) afterward — a lexical save/restore matching
// original_source's Component::enter. Reentrant: components nest.
func enter[R any](c *Component, f func() R) R {
	var result R
	currentComponent.With(c, func() { result = f() })
	return result
}

