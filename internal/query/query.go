// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package query compiles boolean filter expressions over decoded trace
// events, the same expr-lang rule-evaluation idiom the teacher's
// internal/tagger package uses to classify jobs: compile once at
// startup, then run the compiled program against a fresh environment
// map per event instead of re-parsing the expression every time.
package query

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ClusterCockpit/cc-probius/pkg/mproto"
)

// Filter is a compiled boolean predicate over a decoded event. Build one
// with Compile and reuse it across a whole scan; it holds no per-event
// state.
type Filter struct {
	program *vm.Program
}

// Compile parses and type-checks expr as a boolean expression evaluated
// against the environment Event builds. A compile error is returned
// immediately rather than deferred to the first Match call.
func Compile(expr_ string) (*Filter, error) {
	program, err := expr.Compile(expr_, expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("query: compile: %w", err)
	}
	return &Filter{program: program}, nil
}

// Match evaluates the filter against ev. Kind-specific fields the
// environment does not need for this particular event (e.g. Name on a
// Trace event) are simply absent from the map rather than zero-valued,
// so a rule referencing them on the wrong kind fails at evaluation time
// rather than silently matching a zero value.
func (f *Filter) Match(ev mproto.DecodedEvent) (bool, error) {
	env := Env(ev)
	out, err := expr.Run(f.program, env)
	if err != nil {
		return false, fmt.Errorf("query: run: %w", err)
	}
	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("query: rule returned non-bool %T", out)
	}
	return matched, nil
}

// Env builds the expr evaluation environment for a decoded event: the
// header fields every event carries, plus the decoded body's fields when
// the body decodes cleanly. A body decode failure is not an error here —
// it simply leaves the kind-specific fields out of the environment, same
// as if the rule never asked for them.
func Env(ev mproto.DecodedEvent) map[string]any {
	env := map[string]any{
		"kind":           ev.Kind.String(),
		"sourceId":       ev.Id.Source.Source,
		"timestampNanos": ev.Id.TimestampNanos,
		"seq":            uint16(ev.Id.Seq),
	}

	switch ev.Kind {
	case mproto.EventKindCreateSource:
		if body, err := mproto.DecodeCreateSource(ev.Body); err == nil {
			env["name"] = body.Name
			env["isRecurring"] = body.IsRecurring
			if body.Parent != nil {
				env["parentSourceId"] = body.Parent.Source
			}
		}
	case mproto.EventKindTrace:
		if body, err := mproto.DecodeTrace(ev.Body); err == nil {
			env["traceStartNanos"] = body.StartNanos
			env["traceBytes"] = len(body.Payload)
		}
	case mproto.EventKindTraceAggregate:
		if body, err := mproto.DecodeTraceAggregate(ev.Body); err == nil {
			env["nodeCount"] = len(body.Nodes)
			env["metricCount"] = len(body.Metrics)
		}
	case mproto.EventKindTraceAggregateDelta:
		if body, err := mproto.DecodeTraceAggregateDelta(ev.Body); err == nil {
			env["metricCount"] = len(body.Metrics)
		}
	}

	return env
}

// Select scans every event in buf and returns the ones f matches. A
// malformed event terminates the scan, mirroring mproto.EventScanner's
// own contract.
func Select(buf []byte, f *Filter) ([]mproto.DecodedEvent, error) {
	var out []mproto.DecodedEvent
	scanner := mproto.NewEventScanner(buf)
	for scanner.Scan() {
		ev := scanner.Event()
		matched, err := f.Match(ev)
		if err != nil {
			return nil, err
		}
		if matched {
			out = append(out, ev)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("query: scan: %w", err)
	}
	return out, nil
}
