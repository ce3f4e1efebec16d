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

package models

import (
	"errors"
	"time"
)

var ErrBallotNotFound = errors.New("ballot not found")

// BallotRecord is the Storage registry entry for a ballot. BallotID is
// assigned densely from 0 per Storage.
type BallotRecord struct {
	CreatedTime time.Time
	Title       string `gorm:"not null"`
	Storage     []byte `gorm:"uniqueIndex:idx_ballot_record_storage_id,priority:1;size:20;not null"`
	Address     []byte `gorm:"uniqueIndex;size:20;not null"`
	ID          uint   `gorm:"primarykey"`
	BallotID    uint64 `gorm:"uniqueIndex:idx_ballot_record_storage_id,priority:2;not null"`
	CreatedSeq  uint64 `gorm:"not null"`
}

func (BallotRecord) TableName() string {
	return "ballot_record"
}

// Ballot is the state of a ballot component
type Ballot struct {
	ForwardedNonce *uint64
	Title          string `gorm:"not null"`
	Address        []byte `gorm:"uniqueIndex;size:20;not null"`
	Storage        []byte `gorm:"index;size:20;not null"`
	Controller     []byte `gorm:"size:20;not null"`
	ID             uint   `gorm:"primarykey"`
	State          uint8  `gorm:"index;not null"`
}

func (Ballot) TableName() string {
	return "ballot"
}

// Proposal is an option within a ballot. ProposalIndex is the caller-visible
// identity of the proposal.
type Proposal struct {
	Name          string `gorm:"not null"`
	DocumentRef   string `gorm:"not null"`
	Ballot        []byte `gorm:"uniqueIndex:idx_proposal_ballot_index,priority:1;size:20;not null"`
	ID            uint   `gorm:"primarykey"`
	VoteCount     uint64 `gorm:"not null"`
	ProposalIndex uint32 `gorm:"uniqueIndex:idx_proposal_ballot_index,priority:2;not null"`
}

func (Proposal) TableName() string {
	return "proposal"
}
