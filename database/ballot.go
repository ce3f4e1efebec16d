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

package database

import (
	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/database/types"
)

func (d *Database) CreateBallotRecord(
	record *models.BallotRecord,
	txn *Txn,
) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	return d.metadata.CreateBallotRecord(record, txn.Metadata())
}

func (d *Database) GetBallotRecord(
	storage []byte,
	ballotID uint64,
	txn *Txn,
) (*models.BallotRecord, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetBallotRecord(storage, ballotID, txn.Metadata())
}

func (d *Database) GetBallotRecordByAddress(
	address []byte,
	txn *Txn,
) (*models.BallotRecord, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetBallotRecordByAddress(address, txn.Metadata())
}

func (d *Database) GetBallotRecords(
	storage []byte,
	txn *Txn,
) ([]models.BallotRecord, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetBallotRecords(storage, txn.Metadata())
}

func (d *Database) CreateBallot(ballot *models.Ballot, txn *Txn) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	return d.metadata.CreateBallot(ballot, txn.Metadata())
}

func (d *Database) GetBallot(address []byte, txn *Txn) (*models.Ballot, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetBallot(address, txn.Metadata())
}

func (d *Database) SetBallotState(address []byte, state uint8, txn *Txn) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	return d.metadata.SetBallotState(address, state, txn.Metadata())
}

func (d *Database) SetBallotForwardedNonce(
	address []byte,
	nonce uint64,
	txn *Txn,
) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	return d.metadata.SetBallotForwardedNonce(address, nonce, txn.Metadata())
}

func (d *Database) AddProposals(proposals []models.Proposal, txn *Txn) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	return d.metadata.AddProposals(proposals, txn.Metadata())
}

func (d *Database) GetProposals(
	ballot []byte,
	txn *Txn,
) ([]models.Proposal, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetProposals(ballot, txn.Metadata())
}

func (d *Database) GetProposal(
	ballot []byte,
	index uint32,
	txn *Txn,
) (*models.Proposal, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetProposal(ballot, index, txn.Metadata())
}

func (d *Database) CountProposals(ballot []byte, txn *Txn) (uint32, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.CountProposals(ballot, txn.Metadata())
}

func (d *Database) IncrementProposalVoteCount(
	ballot []byte,
	index uint32,
	txn *Txn,
) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	return d.metadata.IncrementProposalVoteCount(ballot, index, txn.Metadata())
}
