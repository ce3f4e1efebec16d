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

	"github.com/blinklabs-io/agora/event"
)

func TestEventBusSingleSubscriber(t *testing.T) {
	defer goleak.VerifyNone(t)
	var testEvtData int = 999
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, subCh := eb.Subscribe(testEvtType)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, testEvtData))
	select {
	case evt, ok := <-subCh:
		require.True(t, ok, "event channel closed unexpectedly")
		assert.Equal(t, testEvtData, evt.Data)
		assert.Equal(t, testEvtType, evt.Type)
	case <-time.After(1 * time.Second):
		t.Fatalf("timeout waiting for event")
	}
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	defer goleak.VerifyNone(t)
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, sub1Ch := eb.Subscribe(testEvtType)
	_, sub2Ch := eb.Subscribe(testEvtType)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, "x"))
	for _, ch := range []<-chan event.Event{sub1Ch, sub2Ch} {
		select {
		case evt := <-ch:
			assert.Equal(t, "x", evt.Data)
		case <-time.After(1 * time.Second):
			t.Fatalf("timeout waiting for event")
		}
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	defer goleak.VerifyNone(t)
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	subId, subCh := eb.Subscribe(testEvtType)
	eb.Unsubscribe(testEvtType, subId)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 1))
	select {
	case _, ok := <-subCh:
		assert.False(t, ok, "received unexpected event")
	case <-time.After(1 * time.Second):
		t.Fatalf("subscriber channel was not closed after Unsubscribe")
	}
}

func TestEventBusSubscribeFuncAndStop(t *testing.T) {
	defer goleak.VerifyNone(t)
	var testEvtType event.EventType = "test.func"
	eb := event.NewEventBus(nil, nil)
	var count atomic.Int32
	done := make(chan struct{}, 3)
	eb.SubscribeFunc(testEvtType, func(event.Event) {
		count.Add(1)
		done <- struct{}{}
	})
	for i := range 3 {
		eb.Publish(testEvtType, event.NewEvent(testEvtType, i))
	}
	for range 3 {
		select {
		case <-done:
		case <-time.After(1 * time.Second):
			t.Fatalf("timeout waiting for handler")
		}
	}
	eb.Stop()
	assert.Equal(t, int32(3), count.Load())

	// A stopped bus stays stopped
	assert.False(t, eb.PublishAsync(testEvtType, event.NewEvent(testEvtType, 4)))
	assert.Equal(t, event.EventSubscriberId(0), eb.SubscribeFunc(testEvtType, func(event.Event) {}))
	_, ch := eb.Subscribe(testEvtType)
	_, ok := <-ch
	assert.False(t, ok)
	eb.Stop()
}

func TestEventBusPublishAsync(t *testing.T) {
	defer goleak.VerifyNone(t)
	var testEvtType event.EventType = "test.async"
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, subCh := eb.Subscribe(testEvtType)
	require.True(t, eb.PublishAsync(testEvtType, event.NewEvent(testEvtType, "async")))
	select {
	case evt := <-subCh:
		assert.Equal(t, "async", evt.Data)
	case <-time.After(1 * time.Second):
		t.Fatalf("timeout waiting for async event")
	}
}

func TestEventBusMetrics(t *testing.T) {
	defer goleak.VerifyNone(t)
	reg := prometheus.NewRegistry()
	var testEvtType event.EventType = "test.metrics"
	eb := event.NewEventBus(reg, nil)
	defer eb.Stop()
	_, subCh := eb.Subscribe(testEvtType)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 1))
	<-subCh
	count, err := testutil.GatherAndCount(reg, "event_bus_events_total", "event_bus_subscribers")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
