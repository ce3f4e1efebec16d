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

// Voter is an identity in the voter registry of a Storage component
type Voter struct {
	Storage       []byte `gorm:"uniqueIndex:idx_voter_storage_identity,priority:1;size:20;not null"`
	Identity      []byte `gorm:"uniqueIndex:idx_voter_storage_identity,priority:2;size:20;not null"`
	ID            uint   `gorm:"primarykey"`
	RegisteredSeq uint64 `gorm:"not null"`
}

func (Voter) TableName() string {
	return "voter"
}

// Vote records a single vote cast on a ballot
type Vote struct {
	Ballot        []byte `gorm:"uniqueIndex:idx_vote_ballot_voter,priority:1;size:20;not null"`
	Voter         []byte `gorm:"uniqueIndex:idx_vote_ballot_voter,priority:2;size:20;not null"`
	ID            uint   `gorm:"primarykey"`
	CastSeq       uint64 `gorm:"not null"`
	ProposalIndex uint32 `gorm:"not null"`
}

func (Vote) TableName() string {
	return "vote"
}
