// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package health

import (
	"github.com/google/gops/agent"

	"github.com/ClusterCockpit/cc-probius/pkg/tracelog"
)

// StartGopsAgent starts the github.com/google/gops diagnostics agent so
// an operator can attach with the gops CLI to inspect goroutines, heap
// stats, and GC traces — the same debugging hook cmd/cc-backend exposes
// behind its -gops flag.
func StartGopsAgent() {
	if err := agent.Listen(agent.Options{}); err != nil {
		tracelog.Fatalf("gops/agent.Listen failed: %s", err.Error())
	}
}
