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

// AddAdmin adds an identity to the admin set of a Storage. Adding an
// existing member is a no-op.
func (d *MetadataStoreSqlite) AddAdmin(
	admin *models.Admin,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	onConflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "storage"},
			{Name: "identity"},
		},
		DoNothing: true,
	}
	if result := db.Clauses(onConflict).Create(admin); result.Error != nil {
		return result.Error
	}
	return nil
}

// RemoveAdmin removes an identity from the admin set of a Storage
func (d *MetadataStoreSqlite) RemoveAdmin(
	storage []byte,
	identity []byte,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Where(
		"storage = ? AND identity = ?",
		storage,
		identity,
	).Delete(&models.Admin{}); result.Error != nil {
		return result.Error
	}
	return nil
}

func (d *MetadataStoreSqlite) IsAdmin(
	storage []byte,
	identity []byte,
	txn types.Txn,
) (bool, error) {
	var count int64
	db, err := d.resolveDB(txn)
	if err != nil {
		return false, err
	}
	if result := db.Model(&models.Admin{}).Where(
		"storage = ? AND identity = ?",
		storage,
		identity,
	).Count(&count); result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

func (d *MetadataStoreSqlite) CountAdmins(
	storage []byte,
	txn types.Txn,
) (uint64, error) {
	var count int64
	db, err := d.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	if result := db.Model(&models.Admin{}).
		Where("storage = ?", storage).
		Count(&count); result.Error != nil {
		return 0, result.Error
	}
	return uint64(count), nil // #nosec G115
}

// GetAdmins returns the admin set of a Storage in the order members were added
func (d *MetadataStoreSqlite) GetAdmins(
	storage []byte,
	txn types.Txn,
) ([]models.Admin, error) {
	var ret []models.Admin
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("storage = ?", storage).
		Order("id").
		Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}
