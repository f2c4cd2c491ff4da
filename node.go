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
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/ayllu/api"
	"github.com/blinklabs-io/ayllu/database"
	"github.com/blinklabs-io/ayllu/event"
	"github.com/blinklabs-io/ayllu/ledger"
)

type Node struct {
	eventBus      *event.EventBus
	db            *database.Database
	ledgerState   *ledger.LedgerState
	api           *api.Api
	shutdownFuncs []func(context.Context) error
	config        Config
	done          chan struct{}
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Node, error) {
	eventBus := event.NewEventBus(cfg.promRegistry, cfg.logger)
	n := &Node{
		config:   cfg,
		eventBus: eventBus,
		done:     make(chan struct{}),
	}
	if err := n.configValidate(); err != nil {
		eventBus.Stop()
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return n, nil
}

// Start opens the database, loads the ledger and starts the API listener
func (n *Node) Start(ctx context.Context) error {
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(); err != nil {
			return err
		}
	}
	// Load database
	db, err := database.New(&database.Config{
		DataDir:        n.config.dataDir,
		Logger:         n.config.logger,
		PromRegistry:   n.config.promRegistry,
		BlobPlugin:     n.config.blobPlugin,
		MetadataPlugin: n.config.metadataPlugin,
	})
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		var dbErr database.CommitTimestampError
		if errors.As(err, &dbErr) {
			n.config.logger.Error(
				"blob and metadata stores diverged, refusing to serve",
				"component", "node",
				"error", err,
			)
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	n.db = db
	// Load state
	state, err := ledger.NewLedgerState(
		ledger.LedgerStateConfig{
			Database:     n.db,
			EventBus:     n.eventBus,
			Logger:       n.config.logger,
			PromRegistry: n.config.promRegistry,
			Policy:       n.config.policy,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to load ledger state: %w", err)
	}
	n.ledgerState = state
	n.eventBus.SubscribeFunc(event.EventTypeAll, n.logEvent)
	// Configure API
	if n.config.apiListenAddress != "" {
		n.api = api.New(
			api.ApiConfig{
				ListenAddress: n.config.apiListenAddress,
				JwtSecret:     n.config.apiJwtSecret,
			},
			n.ledgerState,
			n.config.blockClock,
			n.config.logger,
		)
		if err := n.api.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Run starts the node and blocks until ctx is done or the node is stopped
func (n *Node) Run(ctx context.Context) error {
	if err := n.Start(ctx); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
	case <-n.done:
	}
	return nil
}

// LedgerState returns the loaded ledger, or nil before Start
func (n *Node) LedgerState() *ledger.LedgerState {
	return n.ledgerState
}

// EventBus returns the bus that carries ledger events
func (n *Node) EventBus() *event.EventBus {
	return n.eventBus
}

func (n *Node) logEvent(evt event.Event) {
	n.config.logger.Debug(
		"event: "+string(evt.Type),
		"component", "node",
		"data", evt.Data,
	)
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	// Create shutdown context with timeout (default 30s if not configured)
	shutdownTimeout := 30 * time.Second
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	n.config.logger.Debug("starting graceful shutdown", "component", "node")

	// Phase 1: Stop accepting new calls
	if n.api != nil {
		if stopErr := n.api.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("api shutdown: %w", stopErr))
		}
	}

	// Phase 2: Drain events and close database
	if n.eventBus != nil {
		n.eventBus.Stop()
	}
	if n.db != nil {
		if closeErr := n.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
	}

	// Call registered shutdown functions
	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil

	n.config.logger.Debug("graceful shutdown complete", "component", "node")
	close(n.done)
	return err
}
