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

package governance

import (
	"time"

	"github.com/blinklabs-io/agora/database/models"
	"github.com/ethereum/go-ethereum/common"
)

// BallotState is the lifecycle state of a ballot
type BallotState uint8

// Ballot states. The value 2 is reserved for a future variant between
// Active and Closed and is never assigned.
const (
	BallotStateCreated BallotState = 0
	BallotStateActive  BallotState = 1
	BallotStateClosed  BallotState = 3
)

func (s BallotState) String() string {
	switch s {
	case BallotStateCreated:
		return "Created"
	case BallotStateActive:
		return "Active"
	case BallotStateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// next returns the only state reachable from s
func (s BallotState) next() (BallotState, bool) {
	switch s {
	case BallotStateCreated:
		return BallotStateActive, true
	case BallotStateActive:
		return BallotStateClosed, true
	default:
		return s, false
	}
}

// Component kinds
const (
	ComponentKindStorage        = models.ComponentKindStorage
	ComponentKindController     = models.ComponentKindController
	ComponentKindSafeController = models.ComponentKindSafeController
	ComponentKindBallot         = models.ComponentKindBallot
)

type Component struct {
	Kind        string
	Address     common.Address
	Deployer    common.Address
	Nonce       uint64
	CreatedAt   uint64
	CreatedTime time.Time
}

// BallotRecord is the Storage registry entry for a ballot
type BallotRecord struct {
	Title       string
	CreatedTime time.Time
	ID          uint64
	CreatedAt   uint64
	Reference   common.Address
}

type Proposal struct {
	Name        string
	DocumentRef string
	VoteCount   uint64
	Index       uint32
}

// SafeAction is an outbound governance action recorded by a SafeController
type SafeAction struct {
	ProposalName  string
	DocumentRef   string
	Payload       []byte
	Nonce         uint64
	BallotID      uint64
	CreatedAt     uint64
	SafeManager   common.Address
	Pool          common.Address
	Ballot        common.Address
	ActionHash    common.Hash
	ProposalIndex uint32
}

// SafeActionPayload is the encoded form of an outbound action. Its
// keccak256 hash identifies the action.
type SafeActionPayload struct {
	_              struct{} `cbor:",toarray"`
	SafeController []byte
	SafeManager    []byte
	Pool           []byte
	Ballot         []byte
	BallotID       uint64
	ProposalIndex  uint32
	ProposalName   string
	DocumentRef    string
	Nonce          uint64
}

type JournalEntry struct {
	Op     string
	Time   time.Time
	Seq    uint64
	Caller common.Address
	Target common.Address
}

func toAddress(b []byte) common.Address {
	return common.BytesToAddress(b)
}

// addressBytes returns nil for the zero address so that unset references
// are stored as NULL
func addressBytes(a common.Address) []byte {
	if a == (common.Address{}) {
		return nil
	}
	return a.Bytes()
}

func componentFromModel(m *models.Component) Component {
	return Component{
		Kind:        m.Kind,
		Address:     toAddress(m.Address),
		Deployer:    toAddress(m.Deployer),
		Nonce:       m.Nonce,
		CreatedAt:   m.CreatedSeq,
		CreatedTime: m.CreatedTime,
	}
}

func ballotRecordFromModel(m *models.BallotRecord) BallotRecord {
	return BallotRecord{
		ID:          m.BallotID,
		Title:       m.Title,
		Reference:   toAddress(m.Address),
		CreatedAt:   m.CreatedSeq,
		CreatedTime: m.CreatedTime,
	}
}

func proposalFromModel(m *models.Proposal) Proposal {
	return Proposal{
		Index:       m.ProposalIndex,
		Name:        m.Name,
		DocumentRef: m.DocumentRef,
		VoteCount:   m.VoteCount,
	}
}

func safeActionFromModel(m *models.SafeAction) SafeAction {
	return SafeAction{
		Nonce:         m.Nonce,
		SafeManager:   toAddress(m.SafeManager),
		Pool:          toAddress(m.Pool),
		Ballot:        toAddress(m.Ballot),
		BallotID:      m.BallotID,
		ProposalIndex: m.ProposalIndex,
		ProposalName:  m.ProposalName,
		DocumentRef:   m.DocumentRef,
		ActionHash:    common.BytesToHash(m.ActionHash),
		CreatedAt:     m.CreatedSeq,
	}
}
