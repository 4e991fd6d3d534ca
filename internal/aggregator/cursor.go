// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package aggregator

// Cursor is a TraceAggregateCursor (§4.5): the walking state for one
// trace invocation. Node is the current position in the graph; BranchEnd
// is the node paired with the innermost active BranchStart, so a
// BranchEnd op can be re-joined to it.
type Cursor struct {
	Node      *Node
	BranchEnd *Node
}

// NewCursor returns a cursor positioned before the first op of a fresh
// trace invocation.
func NewCursor() *Cursor { return &Cursor{} }
