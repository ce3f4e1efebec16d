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

// AddVoter registers a voter and reports whether it was newly added
func (d *Database) AddVoter(voter *models.Voter, txn *Txn) (bool, error) {
	if txn == nil {
		return false, types.ErrNilTxn
	}
	return d.metadata.AddVoter(voter, txn.Metadata())
}

func (d *Database) IsVoter(storage, identity []byte, txn *Txn) (bool, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.IsVoter(storage, identity, txn.Metadata())
}

func (d *Database) CreateVote(vote *models.Vote, txn *Txn) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	return d.metadata.CreateVote(vote, txn.Metadata())
}

func (d *Database) HasVoted(ballot, voter []byte, txn *Txn) (bool, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.HasVoted(ballot, voter, txn.Metadata())
}

func (d *Database) GetVotes(ballot []byte, txn *Txn) ([]models.Vote, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetVotes(ballot, txn.Metadata())
}
