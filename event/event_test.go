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

package event_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/blinklabs-io/ayllu/event"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func receive(t *testing.T, ch <-chan event.Event) event.Event {
	t.Helper()
	select {
	case evt, ok := <-ch:
		require.True(t, ok, "event channel closed unexpectedly")
		return evt
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
	return event.Event{}
}

func TestEventBusSingleSubscriber(t *testing.T) {
	testEvtType := event.EventType("ledger.community.created")
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, subCh := eb.Subscribe(testEvtType)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 999))
	evt := receive(t, subCh)
	assert.Equal(t, testEvtType, evt.Type)
	assert.Equal(t, 999, evt.Data)
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	testEvtType := event.EventType("ledger.member.joined")
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, sub1Ch := eb.Subscribe(testEvtType)
	_, sub2Ch := eb.Subscribe(testEvtType)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, "x"))
	assert.Equal(t, "x", receive(t, sub1Ch).Data)
	assert.Equal(t, "x", receive(t, sub2Ch).Data)
}

func TestEventBusWildcard(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, allCh := eb.Subscribe(event.EventTypeAll)
	_, otherCh := eb.Subscribe("ledger.resource.added")
	eb.Publish("ledger.member.joined", event.NewEvent("ledger.member.joined", 1))
	eb.Publish("ledger.resource.added", event.NewEvent("ledger.resource.added", 2))
	assert.Equal(t, 1, receive(t, allCh).Data)
	assert.Equal(t, 2, receive(t, allCh).Data)
	assert.Equal(t, 2, receive(t, otherCh).Data)
	select {
	case evt := <-otherCh:
		t.Fatalf("received unexpected event: %v", evt)
	default:
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	testEvtType := event.EventType("test.event")
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	subId, subCh := eb.Subscribe(testEvtType)
	eb.Unsubscribe(testEvtType, subId)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 1))
	select {
	case _, ok := <-subCh:
		require.False(t, ok, "received unexpected event")
	case <-time.After(time.Second):
		t.Fatal("subscriber channel was not closed after Unsubscribe")
	}
	// Unknown ids are ignored
	eb.Unsubscribe(testEvtType, subId+100)
}

func TestEventBusSubscribeFunc(t *testing.T) {
	testEvtType := event.EventType("test.func")
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	doneCh := make(chan any, 1)
	eb.SubscribeFunc(testEvtType, func(evt event.Event) {
		doneCh <- evt.Data
	})
	eb.Publish(testEvtType, event.NewEvent(testEvtType, "hello"))
	select {
	case v := <-doneCh:
		assert.Equal(t, "hello", v)
	case <-time.After(time.Second):
		t.Fatal("handler was not called")
	}
}

func TestSubscribeFuncPanicRecovery(t *testing.T) {
	testEvtType := event.EventType("test.panic")
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	var received atomic.Int32
	eb.SubscribeFunc(testEvtType, func(evt event.Event) {
		if received.Add(1) == 1 {
			panic("boom")
		}
	})
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 1))
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 2))
	require.Eventually(
		t,
		func() bool { return received.Load() == 2 },
		time.Second,
		10*time.Millisecond,
	)
}

func TestPublishAsync(t *testing.T) {
	testEvtType := event.EventType("test.async")
	eb := event.NewEventBus(nil, nil)
	_, subCh := eb.Subscribe(testEvtType)
	require.True(t, eb.PublishAsync(testEvtType, event.NewEvent(testEvtType, 7)))
	assert.Equal(t, 7, receive(t, subCh).Data)
	eb.Stop()
	assert.False(t, eb.PublishAsync(testEvtType, event.NewEvent(testEvtType, 8)))
}

func TestEventBusStop(t *testing.T) {
	testEvtType := event.EventType("test.stop")
	eb := event.NewEventBus(nil, nil)
	_, subCh := eb.Subscribe(testEvtType)
	calls := make(chan struct{}, 4)
	eb.SubscribeFunc(testEvtType, func(event.Event) {
		calls <- struct{}{}
	})
	eb.Stop()
	// Stop twice is fine
	eb.Stop()
	select {
	case _, ok := <-subCh:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscriber channel was not closed by Stop")
	}
	eb.Publish(testEvtType, event.NewEvent(testEvtType, "after"))
	select {
	case <-calls:
		t.Fatal("handler called after Stop")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	testEvtType := event.EventType("test.slow")
	reg := prometheus.NewRegistry()
	eb := event.NewEventBus(reg, nil)
	defer eb.Stop()
	_, subCh := eb.Subscribe(testEvtType)
	done := make(chan struct{})
	go func() {
		for i := range event.EventQueueSize + 5 {
			eb.Publish(testEvtType, event.NewEvent(testEvtType, i))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
	assert.Len(t, subCh, event.EventQueueSize)
	count, err := testutil.GatherAndCount(reg, "ayllu_event_bus_delivery_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	count, err = testutil.GatherAndCount(reg, "ayllu_event_bus_events_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

type failingSubscriber struct {
	closed atomic.Bool
}

func (f *failingSubscriber) Deliver(event.Event) error { return assert.AnError }
func (f *failingSubscriber) Close()                    { f.closed.Store(true) }

func TestDeliverFailureUnregisters(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	sub := &failingSubscriber{}
	subId := eb.RegisterSubscriber("test.fail", sub)
	require.NotZero(t, subId)
	eb.Publish("test.fail", event.NewEvent("test.fail", "x"))
	assert.True(t, sub.closed.Load())
}
