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
	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/database/types"
	"gorm.io/gorm/clause"
)

// AddVoter adds an identity to the voter registry of a Storage. It reports
// whether a new row was created.
func (d *MetadataStoreSqlite) AddVoter(
	voter *models.Voter,
	txn types.Txn,
) (bool, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return false, err
	}
	onConflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "storage"},
			{Name: "identity"},
		},
		DoNothing: true,
	}
	result := db.Clauses(onConflict).Create(voter)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (d *MetadataStoreSqlite) IsVoter(
	storage []byte,
	identity []byte,
	txn types.Txn,
) (bool, error) {
	var count int64
	db, err := d.resolveDB(txn)
	if err != nil {
		return false, err
	}
	if result := db.Model(&models.Voter{}).Where(
		"storage = ? AND identity = ?",
		storage,
		identity,
	).Count(&count); result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// CreateVote records a vote. The unique (ballot, voter) index rejects a
// second vote by the same identity.
func (d *MetadataStoreSqlite) CreateVote(
	vote *models.Vote,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Create(vote); result.Error != nil {
		return result.Error
	}
	return nil
}

func (d *MetadataStoreSqlite) HasVoted(
	ballot []byte,
	voter []byte,
	txn types.Txn,
) (bool, error) {
	var count int64
	db, err := d.resolveDB(txn)
	if err != nil {
		return false, err
	}
	if result := db.Model(&models.Vote{}).Where(
		"ballot = ? AND voter = ?",
		ballot,
		voter,
	).Count(&count); result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// GetVotes returns the votes cast on a ballot in casting order
func (d *MetadataStoreSqlite) GetVotes(
	ballot []byte,
	txn types.Txn,
) ([]models.Vote, error) {
	var ret []models.Vote
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("ballot = ?", ballot).
		Order("cast_seq").
		Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}
