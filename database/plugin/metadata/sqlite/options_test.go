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

package sqlite

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsApply(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	m := &MetadataStoreSqlite{}
	for _, opt := range []SqliteOptionFunc{
		WithDataDir("/var/lib/ayllu"),
		WithLogger(logger),
		WithPromRegistry(reg),
		WithVacuumInterval(6 * time.Hour),
		WithBusyTimeout(250 * time.Millisecond),
	} {
		opt(m)
	}
	assert.Equal(t, "/var/lib/ayllu", m.dataDir)
	assert.Same(t, logger, m.logger)
	assert.Equal(t, prometheus.Registerer(reg), m.promRegistry)
	assert.Equal(t, 6*time.Hour, m.vacuumInterval)
	assert.Equal(t, 250*time.Millisecond, m.busyTimeout)
}

func TestNewWithOptionsDefaults(t *testing.T) {
	store, err := NewWithOptions()
	require.NoError(t, err)
	defer store.Close()
	assert.Equal(t, DefaultVacuumInterval, store.vacuumInterval)
	assert.Equal(t, DefaultBusyTimeout, store.busyTimeout)
	// In-memory stores never schedule a vacuum
	assert.Nil(t, store.timerVacuum)
}

func TestVacuumScheduling(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "meta")
	store, err := NewWithOptions(WithDataDir(dir))
	require.NoError(t, err)
	store.timerMutex.Lock()
	assert.NotNil(t, store.timerVacuum)
	store.timerMutex.Unlock()
	require.NoError(t, store.Close())
	assert.Nil(t, store.timerVacuum)

	disabled, err := NewWithOptions(
		WithDataDir(filepath.Join(t.TempDir(), "meta")),
		WithVacuumInterval(0),
	)
	require.NoError(t, err)
	defer disabled.Close()
	assert.Nil(t, disabled.timerVacuum)
	assert.NoError(t, disabled.runVacuum())
}
