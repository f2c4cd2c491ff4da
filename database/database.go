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

package database

import (
	"errors"
	"io"
	"log/slog"

	"github.com/blinklabs-io/ayllu/database/plugin"
	"github.com/blinklabs-io/ayllu/database/plugin/blob"
	"github.com/blinklabs-io/ayllu/database/plugin/metadata"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	DefaultBlobPlugin     = "badger"
	DefaultMetadataPlugin = "sqlite"
)

// Config holds the settings used to open a Database. An empty DataDir
// keeps both stores in memory.
type Config struct {
	PromRegistry   prometheus.Registerer
	Logger         *slog.Logger
	BlobPlugin     string
	MetadataPlugin string
	DataDir        string
}

// Database pairs the blob store, which holds id counters, the tip height
// and the journal, with the metadata store, which holds the entity tables
type Database struct {
	logger   *slog.Logger
	blob     blob.BlobStore
	metadata metadata.MetadataStore
	config   *Config
}

// Blob returns the underling blob store instance
func (d *Database) Blob() blob.BlobStore {
	return d.blob
}

// DataDir returns the path to the data directory used for storage
func (d *Database) DataDir() string {
	return d.config.DataDir
}

// Logger returns the logger instance
func (d *Database) Logger() *slog.Logger {
	return d.logger
}

// Metadata returns the underlying metadata store instance
func (d *Database) Metadata() metadata.MetadataStore {
	return d.metadata
}

// Transaction starts a new database transaction and returns a handle to it
func (d *Database) Transaction(readWrite bool) *Txn {
	return NewTxn(d, readWrite)
}

// Close cleans up the database connections
func (d *Database) Close() error {
	var err error
	if d.metadata != nil {
		err = errors.Join(err, d.metadata.Close())
	}
	if d.blob != nil {
		err = errors.Join(err, d.blob.Close())
	}
	return err
}

func (d *Database) init() error {
	if d.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return d.checkCommitTimestamp()
}

// New opens the configured blob and metadata plugins. A nil config uses
// the default plugins in memory.
func New(config *Config) (*Database, error) {
	if config == nil {
		config = &Config{}
	}
	if config.BlobPlugin == "" {
		config.BlobPlugin = DefaultBlobPlugin
	}
	if config.MetadataPlugin == "" {
		config.MetadataPlugin = DefaultMetadataPlugin
	}
	// The data dir from the node config wins over plugin defaults
	if err := plugin.SetPluginOption(
		plugin.PluginTypeBlob,
		config.BlobPlugin,
		"data-dir",
		config.DataDir,
	); err != nil {
		return nil, err
	}
	if err := plugin.SetPluginOption(
		plugin.PluginTypeMetadata,
		config.MetadataPlugin,
		"data-dir",
		config.DataDir,
	); err != nil {
		return nil, err
	}
	pluginCtx := plugin.PluginContext{
		Logger:       config.Logger,
		PromRegistry: config.PromRegistry,
	}
	blobDb, err := blob.New(config.BlobPlugin, pluginCtx)
	if err != nil {
		return nil, err
	}
	metadataDb, err := metadata.New(config.MetadataPlugin, pluginCtx)
	if err != nil {
		_ = blobDb.Close()
		return nil, err
	}
	db := &Database{
		logger:   config.Logger,
		blob:     blobDb,
		metadata: metadataDb,
		config:   config,
	}
	if err := db.init(); err != nil {
		// Database is available for recovery, so return it with error
		return db, err
	}
	return db, nil
}
