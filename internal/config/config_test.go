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

package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blinklabs-io/ayllu/database/plugin"
	"github.com/blinklabs-io/ayllu/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetGlobalConfig() {
	globalConfig = defaultConfig()
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "ayllu.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0o600))
	return tmpFile
}

func TestLoad_WithoutConfigFile_UsesDefaults(t *testing.T) {
	resetGlobalConfig()
	t.Setenv("HOME", t.TempDir())
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
	assert.Equal(t, "0.0.0.0:8080", cfg.ApiListenAddress())
	assert.Equal(t, "0.0.0.0:12799", cfg.MetricsListenAddress())
	assert.Equal(t, ledger.DefaultGovernancePolicy(), cfg.GovernancePolicy())
}

func TestLoad_CompareFullStruct(t *testing.T) {
	resetGlobalConfig()
	tmpFile := writeConfigFile(t, `
databasePath: "/var/lib/ayllu"
bindAddr: "127.0.0.1"
metricsPort: 9100
apiPort: 9000
apiJwtSecret: "s3cret"
shutdownTimeout: "10s"
genesisTime: "2024-06-01T00:00:00Z"
blockInterval: "20s"
votingWindow: 100
quorumBasisPoints: 5000
votingWeight: "member"
tracing: true
`)
	expected := &Config{
		MetadataPlugin:    DefaultMetadataPlugin,
		BlobPlugin:        DefaultBlobPlugin,
		DatabasePath:      "/var/lib/ayllu",
		BindAddr:          "127.0.0.1",
		ShutdownTimeout:   "10s",
		ApiJwtSecret:      "s3cret",
		GenesisTime:       "2024-06-01T00:00:00Z",
		BlockInterval:     "20s",
		VotingWeight:      "member",
		VotingWindow:      100,
		QuorumBasisPoints: 5000,
		MetricsPort:       9100,
		ApiPort:           9000,
		Tracing:           true,
	}
	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, expected, cfg)

	timeout, err := cfg.ShutdownTimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, timeout)
	clock, err := cfg.BlockClock()
	require.NoError(t, err)
	assert.Equal(t, 20*time.Second, clock.BlockInterval())
	assert.Equal(
		t,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		clock.GenesisTime(),
	)
	assert.Equal(
		t,
		ledger.GovernancePolicy{
			VotingWindow:      100,
			QuorumBasisPoints: 5000,
			VotingWeight:      ledger.VotingWeightMember,
		},
		cfg.GovernancePolicy(),
	)
}

func TestLoad_ConfigSection(t *testing.T) {
	resetGlobalConfig()
	tmpFile := writeConfigFile(t, `
config:
  apiPort: 8181
database:
  blob:
    plugin: badger
  metadata:
    plugin: sqlite
`)
	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, uint(8181), cfg.ApiPort)
	assert.Equal(t, "badger", cfg.BlobPlugin)
	assert.Equal(t, "sqlite", cfg.MetadataPlugin)
	// Untouched settings keep their defaults
	assert.Equal(t, ".ayllu", cfg.DatabasePath)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	resetGlobalConfig()
	tmpFile := writeConfigFile(t, `
apiPort: 9000
votingWindow: 100
`)
	t.Setenv("AYLLU_API_PORT", "9500")
	t.Setenv("AYLLU_API_JWT_SECRET", "from-env")
	t.Setenv("AYLLU_DATABASE_PATH", "/tmp/ayllu-env")
	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, uint(9500), cfg.ApiPort)
	assert.Equal(t, "from-env", cfg.ApiJwtSecret)
	assert.Equal(t, "/tmp/ayllu-env", cfg.DatabasePath)
	assert.Equal(t, uint64(100), cfg.VotingWindow)
}

func TestLoad_Invalid(t *testing.T) {
	testDefs := []struct {
		name    string
		content string
	}{
		{name: "quorum", content: "quorumBasisPoints: 10001\n"},
		{name: "weight", content: "votingWeight: \"stake\"\n"},
		{name: "interval", content: "blockInterval: \"0s\"\n"},
		{name: "genesis", content: "genesisTime: \"yesterday\"\n"},
		{name: "timeout", content: "shutdownTimeout: \"soon\"\n"},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			resetGlobalConfig()
			_, err := LoadConfig(writeConfigFile(t, testDef.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	resetGlobalConfig()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestContextRoundTrip(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	cfg := defaultConfig()
	ctx := WithContext(context.Background(), cfg)
	assert.Same(t, cfg, FromContext(ctx))
}

func TestListPlugins(t *testing.T) {
	plugin.Register(plugin.PluginEntry{
		Type:        plugin.PluginTypeBlob,
		Name:        "list-test",
		Description: "plugin listed by the test",
	})
	var buf bytes.Buffer
	ListPlugins(&buf, plugin.PluginTypeBlob)
	assert.Contains(t, buf.String(), "Available blob plugins:")
	assert.Contains(t, buf.String(), "  list-test: plugin listed by the test")
}
