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

package event

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSubscriber struct {
	closed bool
}

func (m *mockSubscriber) Deliver(Event) error {
	return errors.New("deliver failed")
}

func (m *mockSubscriber) Close() {
	m.closed = true
}

func TestDeliverFailureUnregisters(t *testing.T) {
	eb := NewEventBus(nil, nil)
	defer eb.Stop()
	sub := &mockSubscriber{}
	subId := eb.RegisterSubscriber("test.fail", sub)
	require.NotZero(t, subId)
	// Publish event should cause deliver failure and unregister
	eb.Publish("test.fail", NewEvent("test.fail", "x"))
	eb.mu.RLock()
	_, exists := eb.subscribers["test.fail"][subId]
	eb.mu.RUnlock()
	assert.False(t, exists, "expected subscriber to be removed after deliver failure")
	assert.True(t, sub.closed, "expected subscriber Close() to be called after deliver failure")
}

func TestChannelSubscriberDeliverNonBlocking(t *testing.T) {
	const bufferSize = 5
	sub := newChannelSubscriber(bufferSize, nil)

	// Fill the buffer completely
	for i := range bufferSize {
		require.NoError(t, sub.Deliver(NewEvent("test", i)))
	}

	// Deliver to the full buffer should return immediately without blocking
	done := make(chan error, 1)
	go func() {
		done <- sub.Deliver(NewEvent("test", "overflow"))
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(1 * time.Second):
		t.Fatal("Deliver blocked on full channel buffer")
	}

	for i := range bufferSize {
		evt := <-sub.ch
		assert.Equal(t, i, evt.Data)
	}
	select {
	case evt := <-sub.ch:
		t.Fatalf("unexpected extra event in channel: %v", evt)
	default:
	}
}

func TestChannelSubscriberDeliverAfterClose(t *testing.T) {
	sub := newChannelSubscriber(5, nil)
	sub.Close()
	sub.Close()
	assert.NoError(t, sub.Deliver(NewEvent("test", "after-close")))
}
