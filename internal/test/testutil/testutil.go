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

// Package testutil provides channel and polling helpers for tests that
// observe asynchronous behavior such as event delivery and listeners.
package testutil

import (
	"testing"
	"time"

	"github.com/blinklabs-io/agora/event"
	"github.com/stretchr/testify/require"
)

// WaitForCondition polls condition until it returns true or the timeout
// expires
func WaitForCondition(
	t *testing.T,
	condition func() bool,
	timeout time.Duration,
	msg string,
) {
	t.Helper()
	require.Eventually(
		t,
		condition,
		timeout,
		10*time.Millisecond,
		msg,
	)
}

// RequireReceive waits for a value on ch or fails the test if the timeout
// expires
func RequireReceive[T any](
	t *testing.T,
	ch <-chan T,
	timeout time.Duration,
	msg string,
) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(timeout):
		t.Fatalf("timeout waiting for channel receive: %s", msg)
		var zero T
		return zero // unreachable
	}
}

// RequireNoReceive verifies that nothing is received on ch within duration
func RequireNoReceive[T any](
	t *testing.T,
	ch <-chan T,
	duration time.Duration,
	msg string,
) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf(
			"unexpected value received on channel: %v: %s",
			v,
			msg,
		)
	case <-time.After(duration):
	}
}

// RequireEvent waits for an event on ch and returns its payload, which must
// be of type T
func RequireEvent[T any](
	t *testing.T,
	ch <-chan event.Event,
	timeout time.Duration,
) T {
	t.Helper()
	evt := RequireReceive(t, ch, timeout, "event")
	data, ok := evt.Data.(T)
	require.Truef(t, ok, "unexpected payload %T for event %s", evt.Data, evt.Type)
	return data
}
