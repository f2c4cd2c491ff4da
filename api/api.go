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

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/blinklabs-io/ayllu/ledger"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultListenAddress = ":8080"
	tracerName           = "github.com/blinklabs-io/ayllu/api"
)

// HeightSource supplies the block height used for each call
type HeightSource interface {
	CurrentHeight() uint64
}

// HeightFunc adapts a function to HeightSource
type HeightFunc func() uint64

func (f HeightFunc) CurrentHeight() uint64 {
	return f()
}

type ApiConfig struct {
	ListenAddress string
	// JwtSecret signs and verifies the HS256 bearer tokens that carry the
	// caller identity
	JwtSecret []byte
}

// Api is the HTTP/JSON call surface of the ledger
type Api struct {
	config     ApiConfig
	logger     *slog.Logger
	ledger     *ledger.LedgerState
	heights    HeightSource
	tracer     trace.Tracer
	httpServer *http.Server
	mu         sync.Mutex
}

func New(
	cfg ApiConfig,
	ls *ledger.LedgerState,
	heights HeightSource,
	logger *slog.Logger,
) *Api {
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	logger = logger.With("component", "api")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	return &Api{
		config:  cfg,
		logger:  logger,
		ledger:  ls,
		heights: heights,
		tracer:  otel.Tracer(tracerName),
	}
}

// Start binds the listener and serves in a background goroutine
func (a *Api) Start(ctx context.Context) error {
	if len(a.config.JwtSecret) == 0 {
		return errors.New("API JWT secret not configured")
	}
	a.mu.Lock()
	if a.httpServer != nil {
		a.mu.Unlock()
		return errors.New("server already started")
	}
	server := &http.Server{
		Addr:              a.config.ListenAddress,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 60 * time.Second,
	}
	a.httpServer = server
	a.mu.Unlock()

	// Bind first so port conflicts are reported to the caller
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		a.mu.Lock()
		a.httpServer = nil
		a.mu.Unlock()
		return fmt.Errorf("failed to listen for API server: %w", err)
	}
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(
				"API server error",
				"error", err,
			)
		}
	}()
	a.logger.Info(
		"API listener started on " + ln.Addr().String(),
	)

	go func() {
		<-ctx.Done()
		//nolint:contextcheck
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			30*time.Second,
		)
		defer cancel()
		//nolint:contextcheck
		if err := a.Stop(shutdownCtx); err != nil {
			a.logger.Error(
				"failed to shutdown API server on context cancellation",
				"error", err,
			)
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server
func (a *Api) Stop(ctx context.Context) error {
	a.mu.Lock()
	srv := a.httpServer
	a.httpServer = nil
	a.mu.Unlock()
	if srv == nil {
		return nil
	}
	a.logger.Debug("shutting down API server")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown API server: %w", err)
	}
	return nil
}

// Handler builds the gin engine with every route
func (a *Api) Handler() http.Handler {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		a.requestIdMiddleware(),
		a.tracingMiddleware(),
		a.loggingMiddleware(),
	)
	router.GET("/health", a.handleHealth)

	v1 := router.Group("/api/v1")
	// Queries need no identity
	v1.GET("/tip", a.handleTip)
	v1.GET("/journal", a.handleJournal)
	v1.GET("/communities", a.handleListCommunities)
	v1.GET("/communities/:community", a.handleGetCommunity)
	v1.GET("/communities/:community/members", a.handleListMembers)
	v1.GET("/communities/:community/members/:member", a.handleGetMember)
	v1.GET("/communities/:community/addresses/:address", a.handleGetMemberByAddress)
	v1.GET("/communities/:community/resources", a.handleListResources)
	v1.GET("/communities/:community/resources/:resource/entitlement/:member", a.handleEntitlement)
	v1.GET("/communities/:community/allocation-requests", a.handleListRequests)
	v1.GET("/communities/:community/allocations", a.handleListAllocations)
	v1.GET("/communities/:community/disputes", a.handleListDisputes)
	v1.GET("/communities/:community/proposals", a.handleListProposals)
	v1.GET("/resources/:resource", a.handleGetResource)
	v1.GET("/allocation-requests/:request", a.handleGetRequest)
	v1.GET("/allocations/:allocation", a.handleGetAllocation)
	v1.GET("/disputes/:dispute", a.handleGetDispute)
	v1.GET("/proposals/:proposal", a.handleGetProposal)

	calls := v1.Group("")
	calls.Use(a.authMiddleware())
	calls.POST("/communities", a.handleCreateCommunity)
	calls.POST("/communities/:community/deactivate", a.handleDeactivateCommunity)
	calls.POST("/communities/:community/join", a.handleJoin)
	calls.POST("/communities/:community/leave", a.handleLeave)
	calls.POST("/communities/:community/contribute", a.handleContribute)
	calls.POST("/communities/:community/invitations", a.handleInvite)
	calls.POST("/communities/:community/admins", a.handleMakeAdmin)
	calls.DELETE("/communities/:community/admins/:address", a.handleRevokeAdmin)
	calls.POST("/communities/:community/members/:member/reputation", a.handleUpdateReputation)
	calls.POST("/communities/:community/resources", a.handleAddResource)
	calls.POST("/communities/:community/resources/:resource/deactivate", a.handleDeactivateResource)
	calls.POST("/allocation-requests", a.handleRequestAllocation)
	calls.POST("/allocation-requests/:request/process", a.handleProcessRequest)
	calls.POST("/allocations/:allocation/complete", a.handleCompleteAllocation)
	calls.POST("/disputes", a.handleRaiseDispute)
	calls.POST("/disputes/:dispute/resolve", a.handleResolveDispute)
	calls.POST("/disputes/:dispute/voting", a.handleStartDisputeVoting)
	calls.POST("/disputes/:dispute/votes", a.handleVoteOnDispute)
	calls.POST("/disputes/:dispute/finalize", a.handleFinalizeDispute)
	calls.POST("/proposals", a.handleProposeExpansion)
	calls.POST("/proposals/:proposal/voting", a.handleStartExpansionVoting)
	calls.POST("/proposals/:proposal/votes", a.handleVoteOnExpansion)
	calls.POST("/proposals/:proposal/finalize", a.handleFinalizeExpansion)
	calls.POST("/proposals/:proposal/implement", a.handleImplementExpansion)
	return router
}
