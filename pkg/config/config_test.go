// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "specmend.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, 5, cfg.Repair.MaxIterations)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadOverlaysFile(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 0.0.0.0
  port: 9000
llm:
  provider: openai
  rate_limit: 1.5
repair:
  max_iterations: 3
logging:
  level: debug
  json: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.InDelta(t, 1.5, cfg.LLM.RateLimit, 1e-9)
	assert.Equal(t, 3, cfg.Repair.MaxIterations)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.JSON)
}

func TestLoadPartialOverlayKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "repair:\n  max_iterations: 2\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Repair.MaxIterations)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, 8090, cfg.Server.Port)
}

func TestLoadRejectsBadProvider(t *testing.T) {
	path := writeConfig(t, "llm:\n  provider: carrier-pigeon\n  rate_limit: 1\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validating config")
}

func TestLoadRejectsBadPort(t *testing.T) {
	path := writeConfig(t, "server:\n  host: 127.0.0.1\n  port: 99999\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "server: [not: a: mapping\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
