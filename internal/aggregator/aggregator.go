// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package aggregator

import (
	"github.com/ClusterCockpit/cc-probius/internal/arena"
	"github.com/ClusterCockpit/cc-probius/pkg/mproto"
)

// Aggregator is the per-TraceSource online control-flow graph (§4.5).
// Not safe for concurrent use — it belongs to a single tracing thread,
// matching §5's single-threaded-per-source scheduling model.
type Aggregator struct {
	startNode *Node
	nodes     arena.Arena[Node]
	metrics   []mproto.MetricAggregate
}

// New returns an empty aggregator.
func New() *Aggregator {
	return &Aggregator{}
}

// NodeCount returns the number of distinct graph nodes observed so far.
func (a *Aggregator) NodeCount() int { return a.nodes.Len() }

// StartNode exposes the graph root for tests and diagnostics; nil until
// the first op has been ingested.
func (a *Aggregator) StartNode() *Node { return a.startNode }

// Ingest folds one observed op into the graph for cursor and returns the
// resulting node's on-wire index (§4.5 "ingest algorithm"). metricValue
// is the instance value to fold into the metric accumulator; it is
// ignored unless op.Kind == mproto.OpMetric.
func (a *Aggregator) Ingest(cursor *Cursor, op mproto.TraceOpAggregate, metricValue int64) int {
	var candidate *Node

	if cursor.Node != nil {
		n := cursor.Node

		// Special case: empty branch (§4.5 step 1). A BranchStart
		// immediately followed by BranchEnd jumps straight to the paired
		// end node without walking n.Next at all.
		if n.Op.Kind == mproto.OpBranchStart && op.Kind == mproto.OpBranchEnd {
			b := n.PairedEnd
			cursor.BranchEnd = b.ParentBranchEnd
			cursor.Node = b
			return b.Index
		}

		if n.Next == nil {
			n.Next = a.resolveNewNode(op, cursor)
		}
		candidate = n.Next
	} else {
		if a.startNode == nil {
			a.startNode = a.resolveNewNode(op, cursor)
		}
		candidate = a.startNode
	}

	m := candidate
	for !m.Op.Equal(op) {
		if m.BranchSibling == nil {
			m.BranchSibling = a.resolveNewNode(op, cursor)
		}
		m = m.BranchSibling
	}

	switch m.Op.Kind {
	case mproto.OpBranchStart:
		cursor.BranchEnd = m.PairedEnd
	case mproto.OpBranchEnd:
		cursor.BranchEnd = m.ParentBranchEnd
	case mproto.OpMetric:
		a.metrics[m.Op.MetricIndex].Update(metricValue)
	}

	cursor.Node = m
	return m.Index
}

// resolveNewNode supplies the node to link into a position that has
// never been visited before. A BranchEnd never gets a fresh allocation
// of its own (§4.5 "Node allocation" - BranchEnd): it always reuses the
// end node paired with the innermost active BranchStart.
func (a *Aggregator) resolveNewNode(op mproto.TraceOpAggregate, cursor *Cursor) *Node {
	if op.Kind == mproto.OpBranchEnd {
		if cursor.BranchEnd == nil {
			panic("probius: BranchEnd with no matching BranchStart")
		}
		return cursor.BranchEnd
	}
	return a.allocNode(op, cursor)
}

// allocNode allocates a brand new graph node for op, applying the
// per-kind rules of §4.5 "Node allocation".
func (a *Aggregator) allocNode(op mproto.TraceOpAggregate, cursor *Cursor) *Node {
	switch op.Kind {
	case mproto.OpBranchStart:
		// Allocate both the start and its paired end atomically.
		startIndex := a.nodes.Len()
		endIndex := startIndex + 1

		parentBranchEnd := cursor.BranchEnd
		op.BranchEnd = uint16(endIndex)
		start := a.nodes.Push(Node{Op: op, Index: startIndex})

		endOp := mproto.TraceOpAggregate{Kind: mproto.OpBranchEnd, ParentBranchEnd: noParentBranchEnd}
		if parentBranchEnd != nil {
			endOp.ParentBranchEnd = uint16(parentBranchEnd.Index)
		}
		end := a.nodes.Push(Node{Op: endOp, Index: endIndex, ParentBranchEnd: parentBranchEnd})

		start.PairedEnd = end
		return start

	case mproto.OpBranchEnd:
		// Never allocated directly; resolveNewNode intercepts this case.
		panic("probius: BranchEnd with no matching BranchStart")

	case mproto.OpMetric:
		metricIndex := len(a.metrics)
		a.metrics = append(a.metrics, mproto.Identity())
		op.MetricIndex = uint16(metricIndex)
		index := a.nodes.Len()
		return a.nodes.Push(Node{Op: op, Index: index})

	default:
		index := a.nodes.Len()
		return a.nodes.Push(Node{Op: op, Index: index})
	}
}

// FlushFull serializes the full graph and the pre-reset metric vector
// into a mproto.TraceAggregate, then resets every metric slot back to
// identity. Topology (node count, indices, edges) is preserved across
// the flush; only accumulators are cleared.
//
// startNanos is the caller-supplied timestamp for the emitted event's
// StartNanos field. The source writes now_nanos() here; a source-side
// TODO suggests the previous flush time would be more correct (§9 open
// question). This implementation takes the timestamp as a parameter so
// the caller decides (internal/probius's TraceSource.FlushAggregateFull
// passes through the value its own caller supplies), and documents the
// decision in DESIGN.md rather than silently picking one.
func (a *Aggregator) FlushFull(startNanos uint64) mproto.TraceAggregate {
	nodes := make([]mproto.AggNode, a.nodes.Len())
	a.nodes.Iter(func(i int, n *Node) bool {
		var branchNext, next *uint16
		if n.BranchSibling != nil {
			v := uint16(n.BranchSibling.Index)
			branchNext = &v
		}
		if n.Next != nil {
			v := uint16(n.Next.Index)
			next = &v
		}
		nodes[i] = mproto.AggNode{Op: n.Op, BranchNext: branchNext, Next: next}
		return true
	})

	metrics := make([]mproto.MetricAggregate, len(a.metrics))
	copy(metrics, a.metrics)

	for i := range a.metrics {
		a.metrics[i].Reset()
	}

	return mproto.TraceAggregate{
		StartNanos: startNanos,
		Nodes:      nodes,
		Counters:   nil,
		Metrics:    metrics,
	}
}
