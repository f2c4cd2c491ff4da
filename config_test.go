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

package ayllu

import (
	"testing"
	"time"

	"github.com/blinklabs-io/ayllu/ledger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigOptions(t *testing.T) {
	clock, err := ledger.NewBlockClock(time.Unix(0, 0), time.Minute)
	require.NoError(t, err)
	registry := prometheus.NewRegistry()
	policy := ledger.GovernancePolicy{
		VotingWindow:      10,
		QuorumBasisPoints: 5000,
		VotingWeight:      ledger.VotingWeightMember,
	}
	cfg := NewConfig(
		WithDatabasePath("/tmp/ayllu"),
		WithBlobPlugin("badger"),
		WithMetadataPlugin("sqlite"),
		WithPrometheusRegistry(registry),
		WithTracing(true),
		WithTracingStdout(true),
		WithShutdownTimeout(5*time.Second),
		WithApiListenAddress("127.0.0.1:0"),
		WithApiJwtSecret([]byte("secret")),
		WithBlockClock(clock),
		WithGovernancePolicy(policy),
	)
	assert.NotNil(t, cfg.logger)
	assert.Equal(t, "/tmp/ayllu", cfg.dataDir)
	assert.Equal(t, "badger", cfg.blobPlugin)
	assert.Equal(t, "sqlite", cfg.metadataPlugin)
	assert.Same(t, registry, cfg.promRegistry)
	assert.True(t, cfg.tracing)
	assert.True(t, cfg.tracingStdout)
	assert.Equal(t, 5*time.Second, cfg.shutdownTimeout)
	assert.Equal(t, "127.0.0.1:0", cfg.apiListenAddress)
	assert.Equal(t, []byte("secret"), cfg.apiJwtSecret)
	assert.Same(t, clock, cfg.blockClock)
	assert.Equal(t, policy, cfg.policy)
}

func TestConfigValidate(t *testing.T) {
	clock, err := ledger.NewBlockClock(time.Unix(0, 0), time.Minute)
	require.NoError(t, err)
	testDefs := []struct {
		name    string
		opts    []ConfigOptionFunc
		wantErr bool
	}{
		{name: "api disabled"},
		{
			name: "api without secret",
			opts: []ConfigOptionFunc{
				WithApiListenAddress(":0"),
				WithBlockClock(clock),
			},
			wantErr: true,
		},
		{
			name: "api without clock",
			opts: []ConfigOptionFunc{
				WithApiListenAddress(":0"),
				WithApiJwtSecret([]byte("secret")),
			},
			wantErr: true,
		},
		{
			name: "api",
			opts: []ConfigOptionFunc{
				WithApiListenAddress(":0"),
				WithApiJwtSecret([]byte("secret")),
				WithBlockClock(clock),
			},
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			n, err := New(NewConfig(testDef.opts...))
			if testDef.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NoError(t, n.Stop())
		})
	}
}
