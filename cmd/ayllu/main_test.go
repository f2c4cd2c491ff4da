// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"testing"

	"github.com/blinklabs-io/ayllu/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPlugins(t *testing.T) {
	shouldExit, output := listPlugins("badger", "sqlite")
	assert.False(t, shouldExit)
	assert.Empty(t, output)

	shouldExit, output = listPlugins("list", "sqlite")
	assert.True(t, shouldExit)
	assert.Contains(t, output, "Available blob plugins:")
	assert.Contains(t, output, "  badger: ")
	assert.NotContains(t, output, "metadata")

	shouldExit, output = listPlugins("list", "list")
	assert.True(t, shouldExit)
	assert.Contains(t, output, "  sqlite: ")
	assert.Contains(t, output, "Available metadata plugins:")
}

func TestApplyFlags(t *testing.T) {
	cmd, err := newRootCommand()
	require.NoError(t, err)
	require.NoError(t, cmd.ParseFlags([]string{
		"--data-dir", "/srv/ayllu",
		"--api-port", "9090",
		"-m", "sqlite",
	}))
	cfg := &config.Config{
		BlobPlugin:     "badger",
		MetadataPlugin: "sqlite",
		DatabasePath:   ".ayllu",
		ApiPort:        8080,
		MetricsPort:    12799,
	}
	applyFlags(cmd, cfg)
	assert.Equal(t, "/srv/ayllu", cfg.DatabasePath)
	assert.Equal(t, uint(9090), cfg.ApiPort)
	// Flags left unset keep the loaded values
	assert.Equal(t, uint(12799), cfg.MetricsPort)
	assert.Equal(t, "badger", cfg.BlobPlugin)
	assert.Equal(t, "sqlite", cfg.MetadataPlugin)
}

func TestRootCommand(t *testing.T) {
	cmd, err := newRootCommand()
	require.NoError(t, err)
	assert.Contains(t, cmd.Long, "journal")
	names := []string{}
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"serve", "list", "version", "token"})
	for _, flag := range []string{"debug", "config", "blob", "metadata", "data-dir", "api-port", "metrics-port", "blob-badger-gc-interval", "metadata-sqlite-busy-timeout"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}
