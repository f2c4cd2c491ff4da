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

package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/blinklabs-io/ayllu/database"
	"github.com/blinklabs-io/ayllu/database/models"
	"github.com/blinklabs-io/ayllu/event"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/blinklabs-io/ayllu/ledger"

// MaxHeight is the largest block height a call may carry. Heights and
// other plain integer columns are stored as signed 64-bit values.
const MaxHeight uint64 = math.MaxInt64

// Call carries what the host supplies with every ledger call: the already
// authenticated caller identity and the current block height
type Call struct {
	Caller string
	Height uint64
}

type LedgerStateConfig struct {
	Logger       *slog.Logger
	Database     *database.Database
	EventBus     *event.EventBus
	PromRegistry prometheus.Registerer
	Policy       GovernancePolicy
}

// LedgerState applies ledger calls to the database. Mutating calls are
// serialized and each one runs in a single transaction, so a failed call
// leaves no trace.
type LedgerState struct {
	sync.RWMutex
	config  LedgerStateConfig
	db      *database.Database
	metrics stateMetrics
	tracer  trace.Tracer
}

func NewLedgerState(cfg LedgerStateConfig) (*LedgerState, error) {
	if cfg.Database == nil {
		return nil, errors.New("no database provided")
	}
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	cfg.Policy = cfg.Policy.withDefaults()
	if err := cfg.Policy.validate(); err != nil {
		return nil, err
	}
	ls := &LedgerState{
		config: cfg,
		db:     cfg.Database,
		tracer: otel.Tracer(tracerName),
	}
	ls.metrics.init(cfg.PromRegistry)
	tip, err := ls.db.GetTipHeight(nil)
	if err != nil {
		return nil, fmt.Errorf("load tip height: %w", err)
	}
	ls.metrics.tipHeight.Set(float64(tip))
	ls.config.Logger.Info(
		fmt.Sprintf("loaded ledger at height %d", tip),
		"component", "ledger",
	)
	return ls, nil
}

// Database returns the underlying database
func (ls *LedgerState) Database() *database.Database {
	return ls.db
}

// Policy returns the governance policy in effect
func (ls *LedgerState) Policy() GovernancePolicy {
	return ls.config.Policy
}

// TipHeight returns the height of the last committed call
func (ls *LedgerState) TipHeight() (uint64, error) {
	ls.RLock()
	defer ls.RUnlock()
	return ls.db.GetTipHeight(nil)
}

// mutation collects what a call did so that it can be journaled and
// announced once the transaction commits
type mutation struct {
	communityId uint64
	entityId    uint64
	eventType   event.EventType
	// rejection is returned to the caller after an otherwise successful
	// commit. It carries policy rejections that still change state.
	rejection   error
	afterCommit []func()
}

func (m *mutation) onCommit(fn func()) {
	m.afterCommit = append(m.afterCommit, fn)
}

// apply runs fn as one ledger call in its own transaction. The height is
// checked against the stored tip, and on success the tip advances, a
// journal entry is written and the call's event is published.
func (ls *LedgerState) apply(
	ctx context.Context,
	operation string,
	call Call,
	fn func(txn *database.Txn, m *mutation) error,
) error {
	_, span := ls.tracer.Start(
		ctx,
		"ledger."+operation,
		trace.WithAttributes(
			attribute.String("ledger.caller", call.Caller),
			attribute.Int64("ledger.height", int64(call.Height)), //nolint:gosec
		),
	)
	defer span.End()
	start := time.Now()

	ls.Lock()
	var m mutation
	txn := ls.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		if call.Caller == "" {
			return newError(CodeNotAuthorized, "caller identity required")
		}
		tip, err := ls.db.GetTipHeight(txn)
		if err != nil {
			return err
		}
		if call.Height > MaxHeight {
			return newError(
				CodeInvalidHeight,
				"height %d is above the maximum %d",
				call.Height,
				MaxHeight,
			)
		}
		if call.Height < tip {
			return newError(
				CodeInvalidHeight,
				"height %d is below the ledger tip %d",
				call.Height,
				tip,
			)
		}
		if err := fn(txn, &m); err != nil {
			return err
		}
		if call.Height > tip {
			if err := ls.db.SetTipHeight(call.Height, txn); err != nil {
				return err
			}
		}
		return ls.db.AppendJournal(
			&models.JournalEntry{
				Height:      call.Height,
				Operation:   operation,
				Caller:      call.Caller,
				CommunityID: m.communityId,
				EntityID:    m.entityId,
			},
			txn,
		)
	})
	txn.Release()
	ls.Unlock()

	if err == nil {
		err = m.rejection
		ls.metrics.tipHeight.Set(float64(call.Height))
		for _, fn := range m.afterCommit {
			fn()
		}
		if m.eventType != "" && ls.config.EventBus != nil {
			ls.config.EventBus.Publish(
				m.eventType,
				event.NewEvent(
					m.eventType,
					LedgerEvent{
						Operation:   operation,
						Caller:      call.Caller,
						Height:      call.Height,
						CommunityID: m.communityId,
						EntityID:    m.entityId,
						Rejected:    m.rejection != nil,
					},
				),
			)
		}
	}
	ls.observe(operation, err, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		ls.config.Logger.Debug(
			fmt.Sprintf("ledger call %s failed: %s", operation, err),
			"component", "ledger",
			"caller", call.Caller,
			"height", call.Height,
		)
	}
	return err
}

// view runs a read-only query under the shared lock
func (ls *LedgerState) view(
	ctx context.Context,
	operation string,
	fn func(txn *database.Txn) error,
) error {
	_, span := ls.tracer.Start(ctx, "ledger."+operation)
	defer span.End()
	ls.RLock()
	defer ls.RUnlock()
	txn := ls.db.Transaction(false)
	defer txn.Release()
	if err := fn(txn); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (ls *LedgerState) observe(operation string, err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
		if code := CodeOf(err); code != 0 {
			result = code.String()
		}
	}
	ls.metrics.callsTotal.WithLabelValues(operation, result).Inc()
	ls.metrics.callDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// GetJournal lists committed calls from fromHeight on, oldest first
func (ls *LedgerState) GetJournal(
	ctx context.Context,
	fromHeight uint64,
	limit int,
) ([]models.JournalEntry, error) {
	var ret []models.JournalEntry
	err := ls.view(ctx, "get-journal", func(txn *database.Txn) error {
		entries, err := ls.db.GetJournal(fromHeight, limit, txn)
		ret = entries
		return err
	})
	return ret, err
}
