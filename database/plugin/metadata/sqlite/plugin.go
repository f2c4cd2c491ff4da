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
	"sync"
	"time"

	"github.com/blinklabs-io/ayllu/database/plugin"
)

const DefaultDataDir = ".ayllu"

var (
	cmdlineOptions struct {
		dataDir              string
		vacuumIntervalHours  uint64
		busyTimeoutMillisecs uint64
	}
	cmdlineOptionsMutex sync.RWMutex
)

func initCmdlineOptions() {
	cmdlineOptionsMutex.Lock()
	defer cmdlineOptionsMutex.Unlock()
	cmdlineOptions.dataDir = DefaultDataDir
	cmdlineOptions.vacuumIntervalHours = uint64(DefaultVacuumInterval / time.Hour)
	cmdlineOptions.busyTimeoutMillisecs = uint64(DefaultBusyTimeout.Milliseconds())
}

func init() {
	initCmdlineOptions()
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeMetadata,
			Name:               "sqlite",
			Description:        "SQLite tables for communities, members, resources, allocations, disputes and proposals",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options: []plugin.PluginOption{
				{
					Name:         "data-dir",
					Type:         plugin.PluginOptionTypeString,
					Description:  "Data directory for sqlite storage (empty for in-memory)",
					DefaultValue: DefaultDataDir,
					Dest:         &(cmdlineOptions.dataDir),
				},
				{
					Name:         "vacuum-interval",
					Type:         plugin.PluginOptionTypeUint,
					Description:  "Hours between VACUUM runs (0 disables)",
					DefaultValue: uint64(DefaultVacuumInterval / time.Hour),
					Dest:         &(cmdlineOptions.vacuumIntervalHours),
				},
				{
					Name:         "busy-timeout",
					Type:         plugin.PluginOptionTypeUint,
					Description:  "Milliseconds a writer waits on a locked database",
					DefaultValue: uint64(DefaultBusyTimeout.Milliseconds()),
					Dest:         &(cmdlineOptions.busyTimeoutMillisecs),
				},
			},
		},
	)
}

func NewFromCmdlineOptions(ctx plugin.PluginContext) plugin.Plugin {
	cmdlineOptionsMutex.RLock()
	opts := []SqliteOptionFunc{
		WithDataDir(cmdlineOptions.dataDir),
		WithVacuumInterval(
			time.Duration(cmdlineOptions.vacuumIntervalHours)*time.Hour, //nolint:gosec
		),
		WithBusyTimeout(
			time.Duration(cmdlineOptions.busyTimeoutMillisecs)*time.Millisecond, //nolint:gosec
		),
		WithLogger(ctx.Logger),
		WithPromRegistry(ctx.PromRegistry),
	}
	cmdlineOptionsMutex.RUnlock()
	p, err := NewWithOptions(opts...)
	if err != nil {
		// Return a plugin that defers the error to Start()
		return plugin.NewErrorPlugin(err)
	}
	return p
}
