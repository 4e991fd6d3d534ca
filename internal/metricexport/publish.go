// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package metricexport

import (
	"time"

	"github.com/ClusterCockpit/cc-probius/pkg/mproto"
	"github.com/ClusterCockpit/cc-probius/pkg/nats"
	"github.com/ClusterCockpit/cc-probius/pkg/tracelog"
)

// Subject is the NATS subject encoded metric lines are published to,
// mirroring the teacher's ReceiveNats subscription convention but for
// the publish direction.
const Subject = "probius.metrics"

// Publish encodes agg's metric vector as line protocol, tagged with
// source, and publishes it to Subject. A no-op if no NATS client is
// connected.
func Publish(source string, agg mproto.TraceAggregate, at time.Time) {
	client := nats.GetClient()
	if client == nil || !client.IsConnected() {
		return
	}

	body, err := Encode(source, agg, at)
	if err != nil {
		tracelog.Warnf("metricexport: encode failed: %v", err)
		return
	}
	if len(body) == 0 {
		return
	}
	if err := client.Publish(Subject, body); err != nil {
		tracelog.Warnf("metricexport: publish failed: %v", err)
	}
}
