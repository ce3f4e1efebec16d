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

package testutil

import (
	"testing"
	"time"

	"github.com/blinklabs-io/agora/event"
	"github.com/stretchr/testify/assert"
)

func TestRequireReceive(t *testing.T) {
	ch := make(chan int, 1)
	ch <- 42
	assert.Equal(t, 42, RequireReceive(t, ch, time.Second, "value"))
	RequireNoReceive(t, ch, 10*time.Millisecond, "empty channel")
}

func TestRequireEvent(t *testing.T) {
	ch := make(chan event.Event, 1)
	ch <- event.NewEvent(event.VoteCastEventType, event.VoteCastEvent{ProposalIndex: 3})
	data := RequireEvent[event.VoteCastEvent](t, ch, time.Second)
	assert.Equal(t, uint32(3), data.ProposalIndex)
}
