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
	"testing"
	"time"

	"github.com/blinklabs-io/ayllu/ledger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNode(t *testing.T, opts ...ConfigOptionFunc) *Node {
	t.Helper()
	opts = append(
		[]ConfigOptionFunc{WithPrometheusRegistry(prometheus.NewRegistry())},
		opts...,
	)
	n, err := New(NewConfig(opts...))
	require.NoError(t, err)
	return n
}

func TestNodeStartAndStop(t *testing.T) {
	n := newTestNode(t)
	require.NoError(t, n.Start(context.Background()))
	ls := n.LedgerState()
	require.NotNil(t, ls)

	_, evtCh := n.EventBus().Subscribe(ledger.CommunityCreatedEventType)
	id, err := ls.CreateCommunity(
		context.Background(),
		ledger.Call{Caller: "addr_founder", Height: 1},
		ledger.CommunitySpec{Name: "Ayllu", ContributionThreshold: 100},
	)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	select {
	case evt := <-evtCh:
		data, ok := evt.Data.(ledger.LedgerEvent)
		require.True(t, ok)
		assert.Equal(t, uint64(1), data.CommunityID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for community event")
	}

	require.NoError(t, n.Stop())
	// A second stop is a no-op
	require.NoError(t, n.Stop())
}

func TestNodeRunReturnsOnCancel(t *testing.T) {
	n := newTestNode(t)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- n.Run(ctx)
	}()
	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	require.NoError(t, n.Stop())
}

func TestNodeWithApi(t *testing.T) {
	clock, err := ledger.NewBlockClock(time.Now(), time.Minute)
	require.NoError(t, err)
	n := newTestNode(
		t,
		WithApiListenAddress("127.0.0.1:0"),
		WithApiJwtSecret([]byte("secret")),
		WithBlockClock(clock),
		WithShutdownTimeout(5*time.Second),
	)
	require.NoError(t, n.Start(context.Background()))
	require.NotNil(t, n.api)
	require.NoError(t, n.Stop())
}
