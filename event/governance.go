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

import "github.com/ethereum/go-ethereum/common"

const (
	ComponentDeployedEventType    = EventType("governance.component_deployed")
	ComponentInitialisedEventType = EventType("governance.component_initialised")
	AdminAddedEventType           = EventType("governance.admin_added")
	AdminResignedEventType        = EventType("governance.admin_resigned")
	BallotCreatedEventType        = EventType("governance.ballot_created")
	ProposalsAddedEventType       = EventType("governance.proposals_added")
	BallotStateChangedEventType   = EventType("governance.ballot_state_changed")
	VoterRegisteredEventType      = EventType("governance.voter_registered")
	VoteCastEventType             = EventType("governance.vote_cast")
	SafeActionForwardedEventType  = EventType("governance.safe_action_forwarded")
)

// GovernanceEventTypes lists every event type published by the governance engine
var GovernanceEventTypes = []EventType{
	ComponentDeployedEventType,
	ComponentInitialisedEventType,
	AdminAddedEventType,
	AdminResignedEventType,
	BallotCreatedEventType,
	ProposalsAddedEventType,
	BallotStateChangedEventType,
	VoterRegisteredEventType,
	VoteCastEventType,
	SafeActionForwardedEventType,
}

// ComponentDeployedEvent is emitted when a component is deployed
type ComponentDeployedEvent struct {
	Kind     string
	Address  common.Address
	Deployer common.Address
	Nonce    uint64
	Seq      uint64
}

// ComponentInitialisedEvent is emitted when a component's one-time wiring completes
type ComponentInitialisedEvent struct {
	Kind       string
	Address    common.Address
	References []common.Address
	Seq        uint64
}

type AdminAddedEvent struct {
	Storage  common.Address
	Identity common.Address
	AddedBy  common.Address
	Seq      uint64
}

type AdminResignedEvent struct {
	Storage  common.Address
	Identity common.Address
	Seq      uint64
}

type BallotCreatedEvent struct {
	Storage  common.Address
	Ballot   common.Address
	Title    string
	BallotID uint64
	Seq      uint64
}

type ProposalsAddedEvent struct {
	Ballot     common.Address
	FirstIndex uint32
	Count      uint32
	Seq        uint64
}

// BallotStateChangedEvent is emitted on every ballot lifecycle transition
type BallotStateChangedEvent struct {
	Ballot   common.Address
	BallotID uint64
	From     uint8
	To       uint8
	Seq      uint64
}

type VoterRegisteredEvent struct {
	Storage  common.Address
	Identity common.Address
	Seq      uint64
}

type VoteCastEvent struct {
	Ballot        common.Address
	Voter         common.Address
	ProposalIndex uint32
	Seq           uint64
}

// SafeActionForwardedEvent is emitted when a ballot outcome is forwarded to
// the safe manager
type SafeActionForwardedEvent struct {
	SafeController common.Address
	SafeManager    common.Address
	Ballot         common.Address
	ActionHash     common.Hash
	Nonce          uint64
	Seq            uint64
}
