// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ClusterCockpit/cc-probius/pkg/mproto"
)

func metricOp(name string) mproto.TraceOpAggregate {
	return mproto.TraceOpAggregate{Kind: mproto.OpMetric, MetricName: name}
}

func branchStart() mproto.TraceOpAggregate {
	return mproto.TraceOpAggregate{Kind: mproto.OpBranchStart}
}

func branchEnd() mproto.TraceOpAggregate {
	return mproto.TraceOpAggregate{Kind: mproto.OpBranchEnd}
}

func labelOp(label string) mproto.TraceOpAggregate {
	return mproto.TraceOpAggregate{Kind: mproto.OpLabel, Label: label}
}

// TestIngestIdempotence implements §8: running the same op sequence K
// times against fresh cursors must yield the same graph (same node
// count, same indices returned each time).
func TestIngestIdempotence(t *testing.T) {
	a := New()
	ops := []mproto.TraceOpAggregate{metricOp("start"), labelOp("phase1"), metricOp("end")}

	var firstIndices []int
	for k := 0; k < 5; k++ {
		cur := NewCursor()
		var indices []int
		for _, op := range ops {
			indices = append(indices, a.Ingest(cur, op, 1))
		}
		if k == 0 {
			firstIndices = indices
		} else {
			assert.Equal(t, firstIndices, indices, "repeated ingest of the same sequence must revisit the same nodes")
		}
	}
	assert.Equal(t, 3, a.NodeCount())
}

// TestIngestBranchingDeterminism implements §8 scenario 4: two distinct
// branch bodies observed at the same position must both survive as
// BranchSibling alternatives reachable from the same BranchStart, and
// repeated ingestion of either must land on the same respective nodes.
func TestIngestBranchingDeterminism(t *testing.T) {
	a := New()

	cur1 := NewCursor()
	a.Ingest(cur1, branchStart(), 0)
	aIdx := a.Ingest(cur1, metricOp("A"), 10)
	a.Ingest(cur1, branchEnd(), 0)

	cur2 := NewCursor()
	a.Ingest(cur2, branchStart(), 0)
	bIdx := a.Ingest(cur2, metricOp("B"), 20)
	a.Ingest(cur2, branchEnd(), 0)

	assert.NotEqual(t, aIdx, bIdx, "divergent branch bodies must allocate distinct nodes")

	// Re-running branch A must land on the same node again, not allocate
	// a third one.
	cur3 := NewCursor()
	a.Ingest(cur3, branchStart(), 0)
	aIdxAgain := a.Ingest(cur3, metricOp("A"), 11)
	a.Ingest(cur3, branchEnd(), 0)
	assert.Equal(t, aIdx, aIdxAgain)

	metricNode := a.nodes.At(aIdx)
	assert.Equal(t, uint64(2), a.metrics[metricNode.Op.MetricIndex].Count)
}

// TestIngestEmptyBranchConvergence implements §8 scenario 3's topology:
// Metric(start)[0] -> BranchStart[1] -> Metric(odd)[3] -> BranchEnd[2]
// on one pass, and Metric(start)[0] -> BranchStart[1] -> BranchEnd[2]
// (empty) -> Metric(oddeven)[4] on another, both reconverging correctly.
func TestIngestEmptyBranchConvergence(t *testing.T) {
	a := New()

	// First pass takes the non-empty branch body.
	cur1 := NewCursor()
	startIdx := a.Ingest(cur1, metricOp("start"), 1)
	bsIdx := a.Ingest(cur1, branchStart(), 0)
	oddIdx := a.Ingest(cur1, metricOp("odd"), 1)
	beIdx := a.Ingest(cur1, branchEnd(), 0)
	afterIdx := a.Ingest(cur1, metricOp("oddeven"), 1)

	assert.Equal(t, 0, startIdx)
	assert.Equal(t, 1, bsIdx)
	assert.Equal(t, 3, oddIdx)
	assert.Equal(t, 2, beIdx)
	assert.Equal(t, 4, afterIdx)

	// Second pass takes the empty branch directly from BranchStart to its
	// paired BranchEnd, converging on the same post-branch node.
	cur2 := NewCursor()
	a.Ingest(cur2, metricOp("start"), 1)
	a.Ingest(cur2, branchStart(), 0)
	beIdx2 := a.Ingest(cur2, branchEnd(), 0)
	afterIdx2 := a.Ingest(cur2, metricOp("oddeven"), 1)

	assert.Equal(t, beIdx, beIdx2, "the empty branch must resolve to the same paired BranchEnd node")
	assert.Equal(t, afterIdx, afterIdx2, "both branch paths must reconverge on the same successor node")

	// Exactly 5 nodes total: start, branch-start, branch-end, odd, oddeven.
	assert.Equal(t, 5, a.NodeCount())
}

// TestIngestNestedBranchRejoin verifies an inner BranchEnd restores the
// cursor's BranchEnd to the enclosing branch's paired end, not nil, so a
// subsequent outer BranchEnd still resolves correctly.
func TestIngestNestedBranchRejoin(t *testing.T) {
	a := New()
	cur := NewCursor()

	a.Ingest(cur, branchStart(), 0) // outer start
	a.Ingest(cur, branchStart(), 0) // inner start
	a.Ingest(cur, metricOp("inner"), 1)
	a.Ingest(cur, branchEnd(), 0) // inner end
	assert.NotNil(t, cur.BranchEnd, "closing the inner branch must restore the outer branch's paired end")
	a.Ingest(cur, branchEnd(), 0) // outer end, must not panic
}

// TestIngestBranchEndWithoutMatchingStartPanics implements §7's misuse
// case.
func TestIngestBranchEndWithoutMatchingStartPanics(t *testing.T) {
	a := New()
	cur := NewCursor()
	assert.Panics(t, func() {
		a.Ingest(cur, branchEnd(), 0)
	})
}

// TestFlushFullResetsMetricsPreservesTopology implements §8's
// flush-reset property: FlushFull must zero every metric accumulator
// while leaving node count, op kinds, and edges unchanged so a
// subsequent ingest against the same graph still lands on existing
// nodes.
func TestFlushFullResetsMetricsPreservesTopology(t *testing.T) {
	a := New()
	cur := NewCursor()
	a.Ingest(cur, metricOp("m"), 5)
	a.Ingest(cur, metricOp("m2"), 7)

	nodesBefore := a.NodeCount()

	agg := a.FlushFull(123)
	assert.Equal(t, uint64(123), agg.StartNanos)
	assert.Len(t, agg.Nodes, nodesBefore)
	assert.Equal(t, uint64(1), agg.Metrics[0].Count)
	assert.Equal(t, int64(5), agg.Metrics[0].Sum)

	// Metrics must now read back at identity.
	assert.Equal(t, mproto.Identity(), a.metrics[0])
	assert.Equal(t, mproto.Identity(), a.metrics[1])

	// Re-ingesting the same two ops must still hit the same two nodes,
	// not allocate new ones.
	cur2 := NewCursor()
	i1 := a.Ingest(cur2, metricOp("m"), 100)
	i2 := a.Ingest(cur2, metricOp("m2"), 200)
	assert.Equal(t, 0, i1)
	assert.Equal(t, 1, i2)
	assert.Equal(t, nodesBefore, a.NodeCount())

	agg2 := a.FlushFull(456)
	assert.Equal(t, uint64(1), agg2.Metrics[0].Count)
	assert.Equal(t, int64(100), agg2.Metrics[0].Sum)
}

// TestFlushFullEncodesWireIndices checks the BranchNext/Next descriptors
// FlushFull produces reference the correct on-wire node positions.
func TestFlushFullEncodesWireIndices(t *testing.T) {
	a := New()
	cur := NewCursor()
	a.Ingest(cur, metricOp("a"), 1)
	a.Ingest(cur, metricOp("b"), 1)

	agg := a.FlushFull(0)
	assert.Len(t, agg.Nodes, 2)
	assert.NotNil(t, agg.Nodes[0].Next)
	assert.Equal(t, uint16(1), *agg.Nodes[0].Next)
	assert.Nil(t, agg.Nodes[1].Next)

	buf := agg.Encode()
	decoded, err := mproto.DecodeTraceAggregate(buf)
	assert.NoError(t, err)
	assert.Equal(t, agg.Nodes, decoded.Nodes)
	assert.Equal(t, agg.Metrics, decoded.Metrics)
}
