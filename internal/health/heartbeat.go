// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package health

import (
	"encoding/json"
	"time"

	"github.com/ClusterCockpit/cc-probius/pkg/nats"
	"github.com/ClusterCockpit/cc-probius/pkg/tracelog"
)

// HeartbeatSubject is the NATS subject periodic health snapshots are
// published to.
const HeartbeatSubject = "probius.health"

// PublishHeartbeat encodes the current health snapshot as JSON and
// publishes it to HeartbeatSubject. A no-op if no NATS client is
// connected, matching pkg/nats's own degrade-gracefully-without-NATS
// convention (nats.GetClient returns nil and logs a warning itself when
// uninitialized, so this checks for a nil client and then IsConnected).
func PublishHeartbeat() {
	client := nats.GetClient()
	if client == nil || !client.IsConnected() {
		return
	}

	body, err := json.Marshal(computeStatus())
	if err != nil {
		tracelog.Warnf("health: failed to encode heartbeat: %v", err)
		return
	}
	if err := client.Publish(HeartbeatSubject, body); err != nil {
		tracelog.Warnf("health: failed to publish heartbeat: %v", err)
	}
}

// RunHeartbeat publishes a heartbeat every interval until stop is
// closed.
func RunHeartbeat(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			PublishHeartbeat()
		case <-stop:
			return
		}
	}
}
