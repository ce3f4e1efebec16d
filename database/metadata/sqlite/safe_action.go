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

func (d *MetadataStoreSqlite) CreateSafeAction(
	action *models.SafeAction,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Create(action); result.Error != nil {
		return result.Error
	}
	return nil
}

func (d *MetadataStoreSqlite) GetSafeAction(
	safeController []byte,
	nonce uint64,
	txn types.Txn,
) (*models.SafeAction, error) {
	var ret models.SafeAction
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"safe_controller = ? AND nonce = ?",
		safeController,
		nonce,
	).First(&ret); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, models.ErrSafeActionNotFound
		}
		return nil, result.Error
	}
	return &ret, nil
}

// GetSafeActions returns the outbound actions of a SafeController by nonce
func (d *MetadataStoreSqlite) GetSafeActions(
	safeController []byte,
	txn types.Txn,
) ([]models.SafeAction, error) {
	var ret []models.SafeAction
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("safe_controller = ?", safeController).
		Order("nonce").
		Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}
