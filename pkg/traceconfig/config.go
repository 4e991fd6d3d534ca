// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package traceconfig loads and validates the JSON configuration for a
// cc-probius-instrumented process, following the same load order the
// teacher's cmd/cc-backend main.go uses: read an optional .env overlay,
// then a JSON config file decoded with DisallowUnknownFields onto a
// struct pre-populated with defaults.
package traceconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ClusterCockpit/cc-probius/pkg/nats"
	"github.com/ClusterCockpit/cc-probius/pkg/tracelog"
)

// Config is the top-level configuration of a cc-probius-instrumented
// process: where the wire sink dials, how big the page pool
// is, and the ambient health/metrics-export surface.
type Config struct {
	// AppName identifies this process in the TCP sink's handshake frame.
	AppName string `json:"app-name"`

	// SinkMode selects the bufwriter destination: "void" discards every
	// page, "tcp" dials PageAddr over TCP.
	SinkMode string `json:"sink-mode"`
	PageAddr string `json:"page-addr"`

	// Buffer pool sizing (pkg/bufpool.NewPool parameters).
	BufferSize      int `json:"buffer-size"`
	NumBatches      int `json:"num-batches"`
	BuffersPerBatch int `json:"buffers-per-batch"`

	// FlushInterval is how often cmd/cc-probius's gocron job (tcp mode
	// only) runs sink.Flusher.Flush, moving completed pages into the TCP
	// sink's queue.
	FlushInterval string `json:"flush-interval"`

	// HealthAddr is where internal/health.NewRouter is served ("" disables it).
	HealthAddr string `json:"health-addr"`
	Gops       bool   `json:"gops"`

	// HeartbeatInterval is how often internal/health.RunHeartbeat
	// publishes to NATS ("" disables the heartbeat).
	HeartbeatInterval string `json:"heartbeat-interval"`

	Nats nats.NatsConfig `json:"nats"`
}

// Keys holds the global configuration loaded via Init.
var Keys = Config{
	AppName:         "cc-probius",
	SinkMode:        "void",
	BufferSize:      64 * 1024,
	NumBatches:      4,
	BuffersPerBatch: 8,
	FlushInterval:   "10s",
	HealthAddr:      ":8090",
}

const Schema = `{
    "type": "object",
    "description": "Configuration for a cc-probius-instrumented process.",
    "properties": {
        "app-name": {"type": "string"},
        "sink-mode": {"type": "string", "enum": ["void", "tcp"]},
        "page-addr": {"type": "string"},
        "buffer-size": {"type": "integer", "minimum": 1},
        "num-batches": {"type": "integer", "minimum": 1},
        "buffers-per-batch": {"type": "integer", "minimum": 1},
        "flush-interval": {"type": "string"},
        "health-addr": {"type": "string"},
        "gops": {"type": "boolean"},
        "heartbeat-interval": {"type": "string"},
        "nats": {"type": "object"}
    },
    "required": ["sink-mode"]
}`

// Validate compiles schema and checks instance against it, aborting the
// process on failure — the same fail-fast contract as the teacher's
// internal/config.Validate.
func Validate(schema string, instance json.RawMessage) {
	sch, err := jsonschema.CompileString("schema.json", schema)
	if err != nil {
		tracelog.Fatalf("%#v", err)
	}

	var v any
	if err := json.Unmarshal(instance, &v); err != nil {
		tracelog.Fatal(err)
	}

	if err := sch.Validate(v); err != nil {
		tracelog.Fatalf("%#v", err)
	}
}

// Init loads envFile into the process environment (if present), then
// decodes configFile onto Keys (pre-populated with defaults), validating
// it against Schema first. A missing configFile is not an error: the
// defaults in Keys stand as-is, mirroring main.go's handling of a
// missing "./config.json".
func Init(envFile, configFile string) error {
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("traceconfig: parsing %q failed: %w", envFile, err)
	}

	raw, err := os.ReadFile(configFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("traceconfig: reading %q failed: %w", configFile, err)
	}

	Validate(Schema, raw)

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&Keys); err != nil {
		return fmt.Errorf("traceconfig: decoding %q failed: %w", configFile, err)
	}

	nats.Keys = Keys.Nats
	return nil
}
