// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package aggregator implements the online, per-TraceSource aggregate
// control-flow graph (§4.5): incremental folding of repeated op
// sequences into a single graph with branch pairing and online
// min/sum/max/count metric aggregation.
package aggregator

import "github.com/ClusterCockpit/cc-probius/pkg/mproto"

// noParentBranchEnd is the sentinel ParentBranchEnd value a BranchEnd
// node's wire Op carries when there was no enclosing branch at the time
// it was allocated. TraceOpAggregate's ParentBranchEnd/BranchEnd fields
// are plain (non-Option) u16 per §3's data model, so an out-of-range
// sentinel is needed, in the same all-ones style as
// mproto.SourceIdMax = ^uint64(0).
const noParentBranchEnd = ^uint16(0)

// Node is one in-memory aggregator graph node, stored in an
// internal/arena.Arena so its address stays stable for the lifetime of
// the owning Aggregator (§4.2, §9 "cyclic / stable-pointer graph").
type Node struct {
	Op            mproto.TraceOpAggregate
	Next          *Node // successor when the same op repeats
	BranchSibling *Node // alternative op observed at this position
	Index         int   // insertion order, the on-wire node reference

	// PairedEnd is set only on a BranchStart node: the BranchEnd node
	// allocated atomically alongside it.
	PairedEnd *Node

	// ParentBranchEnd is set only on a BranchEnd node: the branch-end
	// node that was active in the cursor immediately before this one's
	// enclosing BranchStart, or nil for an outermost branch.
	ParentBranchEnd *Node
}
