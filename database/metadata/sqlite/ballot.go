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

package sqlite

import (
	"errors"

	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/database/types"
	"gorm.io/gorm"
)

// CreateBallotRecord appends a ballot to the registry of a Storage
func (d *MetadataStoreSqlite) CreateBallotRecord(
	record *models.BallotRecord,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Create(record); result.Error != nil {
		return result.Error
	}
	return nil
}

// GetBallotRecord returns the registry entry for a ballot id
func (d *MetadataStoreSqlite) GetBallotRecord(
	storage []byte,
	ballotID uint64,
	txn types.Txn,
) (*models.BallotRecord, error) {
	var ret models.BallotRecord
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"storage = ? AND ballot_id = ?",
		storage,
		ballotID,
	).First(&ret); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, models.ErrBallotNotFound
		}
		return nil, result.Error
	}
	return &ret, nil
}

// GetBallotRecordByAddress returns the registry entry for a ballot address
func (d *MetadataStoreSqlite) GetBallotRecordByAddress(
	address []byte,
	txn types.Txn,
) (*models.BallotRecord, error) {
	var ret models.BallotRecord
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("address = ?", address).First(&ret); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, models.ErrBallotNotFound
		}
		return nil, result.Error
	}
	return &ret, nil
}

// GetBallotRecords returns the registry of a Storage ordered by ballot id
func (d *MetadataStoreSqlite) GetBallotRecords(
	storage []byte,
	txn types.Txn,
) ([]models.BallotRecord, error) {
	var ret []models.BallotRecord
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("storage = ?", storage).
		Order("ballot_id").
		Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (d *MetadataStoreSqlite) CreateBallot(
	ballot *models.Ballot,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Create(ballot); result.Error != nil {
		return result.Error
	}
	return nil
}

func (d *MetadataStoreSqlite) GetBallot(
	address []byte,
	txn types.Txn,
) (*models.Ballot, error) {
	var ret models.Ballot
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("address = ?", address).First(&ret); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, models.ErrBallotNotFound
		}
		return nil, result.Error
	}
	return &ret, nil
}

func (d *MetadataStoreSqlite) SetBallotState(
	address []byte,
	state uint8,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Model(&models.Ballot{}).
		Where("address = ?", address).
		Update("state", state)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrBallotNotFound
	}
	return nil
}

// SetBallotForwardedNonce marks the outcome of a ballot as forwarded under
// the given safe action nonce
func (d *MetadataStoreSqlite) SetBallotForwardedNonce(
	address []byte,
	nonce uint64,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Model(&models.Ballot{}).
		Where("address = ?", address).
		Update("forwarded_nonce", nonce)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrBallotNotFound
	}
	return nil
}

// AddProposals appends proposals to a ballot. Callers assign ProposalIndex.
func (d *MetadataStoreSqlite) AddProposals(
	proposals []models.Proposal,
	txn types.Txn,
) error {
	if len(proposals) == 0 {
		return nil
	}
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Create(&proposals); result.Error != nil {
		return result.Error
	}
	return nil
}

// GetProposals returns the proposals of a ballot in index order
func (d *MetadataStoreSqlite) GetProposals(
	ballot []byte,
	txn types.Txn,
) ([]models.Proposal, error) {
	var ret []models.Proposal
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("ballot = ?", ballot).
		Order("proposal_index").
		Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// GetProposal returns a single proposal, or nil if the index does not exist
func (d *MetadataStoreSqlite) GetProposal(
	ballot []byte,
	index uint32,
	txn types.Txn,
) (*models.Proposal, error) {
	var ret models.Proposal
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"ballot = ? AND proposal_index = ?",
		ballot,
		index,
	).First(&ret); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ret, nil
}

func (d *MetadataStoreSqlite) CountProposals(
	ballot []byte,
	txn types.Txn,
) (uint32, error) {
	var count int64
	db, err := d.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	if result := db.Model(&models.Proposal{}).
		Where("ballot = ?", ballot).
		Count(&count); result.Error != nil {
		return 0, result.Error
	}
	return uint32(count), nil // #nosec G115
}

func (d *MetadataStoreSqlite) IncrementProposalVoteCount(
	ballot []byte,
	index uint32,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Model(&models.Proposal{}).
		Where("ballot = ? AND proposal_index = ?", ballot, index).
		Update("vote_count", gorm.Expr("vote_count + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("proposal not found")
	}
	return nil
}
