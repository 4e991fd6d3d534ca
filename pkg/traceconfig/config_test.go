// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package traceconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetKeys(t *testing.T) {
	t.Helper()
	orig := Keys
	t.Cleanup(func() { Keys = orig })
}

func TestInitMissingConfigFileKeepsDefaults(t *testing.T) {
	resetKeys(t)

	err := Init(filepath.Join(t.TempDir(), ".env"), filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, "void", Keys.SinkMode)
	assert.Equal(t, 4, Keys.NumBatches)
}

func TestInitLoadsConfigFile(t *testing.T) {
	resetKeys(t)

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{
		"app-name": "cc-probius-demo",
		"sink-mode": "tcp",
		"page-addr": "127.0.0.1:9000",
		"buffer-size": 4096,
		"num-batches": 2,
		"buffers-per-batch": 16,
		"flush-interval": "5s",
		"health-addr": ":9090",
		"gops": true,
		"heartbeat-interval": "30s",
		"nats": {"address": "nats://localhost:4222"}
	}`), 0o644))

	err := Init(filepath.Join(dir, ".env"), configPath)
	require.NoError(t, err)

	assert.Equal(t, "cc-probius-demo", Keys.AppName)
	assert.Equal(t, "tcp", Keys.SinkMode)
	assert.Equal(t, "127.0.0.1:9000", Keys.PageAddr)
	assert.Equal(t, 4096, Keys.BufferSize)
	assert.Equal(t, 2, Keys.NumBatches)
	assert.Equal(t, 16, Keys.BuffersPerBatch)
	assert.True(t, Keys.Gops)
	assert.Equal(t, "nats://localhost:4222", Keys.Nats.Address)
}

func TestInitLoadsEnvFile(t *testing.T) {
	resetKeys(t)

	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("PROBIUS_TEST_VAR=hello\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("PROBIUS_TEST_VAR") })

	err := Init(envPath, filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, "hello", os.Getenv("PROBIUS_TEST_VAR"))
}
