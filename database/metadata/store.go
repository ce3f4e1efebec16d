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

package metadata

import (
	"github.com/blinklabs-io/agora/database/metadata/sqlite"
	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/database/types"
	"gorm.io/gorm"
)

// MetadataStore is the relational half of the database. All methods accept
// a nil txn to operate outside of a transaction.
type MetadataStore interface {
	// Database
	Close() error
	DB() *gorm.DB
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
	Transaction() types.Txn

	// Components
	CreateComponent(*models.Component, types.Txn) error
	GetComponent([]byte, types.Txn) (*models.Component, error)
	GetComponents(string, types.Txn) ([]models.Component, error)
	CountComponentsByDeployer([]byte, types.Txn) (uint64, error)
	GetStorageState([]byte, types.Txn) (*models.StorageState, error)
	SetStorageState(*models.StorageState, types.Txn) error
	GetControllerState([]byte, types.Txn) (*models.ControllerState, error)
	SetControllerState(*models.ControllerState, types.Txn) error
	GetSafeControllerState(
		[]byte,
		types.Txn,
	) (*models.SafeControllerState, error)
	SetSafeControllerState(*models.SafeControllerState, types.Txn) error

	// Admins
	AddAdmin(*models.Admin, types.Txn) error
	RemoveAdmin([]byte, []byte, types.Txn) error
	IsAdmin([]byte, []byte, types.Txn) (bool, error)
	CountAdmins([]byte, types.Txn) (uint64, error)
	GetAdmins([]byte, types.Txn) ([]models.Admin, error)

	// Ballots
	CreateBallotRecord(*models.BallotRecord, types.Txn) error
	GetBallotRecord([]byte, uint64, types.Txn) (*models.BallotRecord, error)
	GetBallotRecordByAddress([]byte, types.Txn) (*models.BallotRecord, error)
	GetBallotRecords([]byte, types.Txn) ([]models.BallotRecord, error)
	CreateBallot(*models.Ballot, types.Txn) error
	GetBallot([]byte, types.Txn) (*models.Ballot, error)
	SetBallotState([]byte, uint8, types.Txn) error
	SetBallotForwardedNonce([]byte, uint64, types.Txn) error
	AddProposals([]models.Proposal, types.Txn) error
	GetProposals([]byte, types.Txn) ([]models.Proposal, error)
	GetProposal([]byte, uint32, types.Txn) (*models.Proposal, error)
	CountProposals([]byte, types.Txn) (uint32, error)
	IncrementProposalVoteCount([]byte, uint32, types.Txn) error

	// Voters
	AddVoter(*models.Voter, types.Txn) (bool, error)
	IsVoter([]byte, []byte, types.Txn) (bool, error)
	CreateVote(*models.Vote, types.Txn) error
	HasVoted([]byte, []byte, types.Txn) (bool, error)
	GetVotes([]byte, types.Txn) ([]models.Vote, error)

	// Safe actions
	CreateSafeAction(*models.SafeAction, types.Txn) error
	GetSafeAction([]byte, uint64, types.Txn) (*models.SafeAction, error)
	GetSafeActions([]byte, types.Txn) ([]models.SafeAction, error)
}

var _ MetadataStore = (*sqlite.MetadataStoreSqlite)(nil)
