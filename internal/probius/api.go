// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package probius

// EnterComponent creates a Component named name and enters it for the
// duration of f, restoring the calling goroutine's previous ambient
// component (if any) afterward and emitting the component's
// CreateSource/DeleteSource lifecycle events around f. Mirrors
// original_source's enter_component.
func EnterComponent[R any](name string, f func() R) R {
	c := newComponent(name, false)
	result := enter(c, f)
	c.Close()
	return result
}

// EnterComponentEphemeral is EnterComponent with is_recurring=false,
// matching original_source's enter_component_ephemeral verbatim (the
// source defines both entry points with the same is_recurring argument).
func EnterComponentEphemeral[R any](name string, f func() R) R {
	return EnterComponent(name, f)
}

// NewTraceSource creates a recurring TraceSource, attributed to the
// calling goroutine's ambient component if one is entered.
func NewTraceSource(name string) *TraceSource {
	return newTraceSource(name, true)
}

// NewTraceSourceEphemeral creates a non-recurring TraceSource.
func NewTraceSourceEphemeral(name string) *TraceSource {
	return newTraceSource(name, false)
}
