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
	"gorm.io/gorm/clause"
)

// CreateComponent records a newly deployed component
func (d *MetadataStoreSqlite) CreateComponent(
	component *models.Component,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Create(component); result.Error != nil {
		return result.Error
	}
	return nil
}

// GetComponent returns the component with the given address
func (d *MetadataStoreSqlite) GetComponent(
	address []byte,
	txn types.Txn,
) (*models.Component, error) {
	var ret models.Component
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("address = ?", address).First(&ret); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, models.ErrComponentNotFound
		}
		return nil, result.Error
	}
	return &ret, nil
}

// GetComponents returns all components, optionally filtered by kind, in
// deployment order
func (d *MetadataStoreSqlite) GetComponents(
	kind string,
	txn types.Txn,
) ([]models.Component, error) {
	var ret []models.Component
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	query := db.Order("id")
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if result := query.Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// CountComponentsByDeployer returns the number of components created by the
// given deployer, which is also its next nonce
func (d *MetadataStoreSqlite) CountComponentsByDeployer(
	deployer []byte,
	txn types.Txn,
) (uint64, error) {
	var count int64
	db, err := d.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	if result := db.Model(&models.Component{}).
		Where("deployer = ?", deployer).
		Count(&count); result.Error != nil {
		return 0, result.Error
	}
	return uint64(count), nil // #nosec G115
}

// GetStorageState returns the state of a Storage component, or nil if missing
func (d *MetadataStoreSqlite) GetStorageState(
	address []byte,
	txn types.Txn,
) (*models.StorageState, error) {
	var ret models.StorageState
	if err := d.getStateRow(address, &ret, txn); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ret, nil
}

// SetStorageState creates or updates the state of a Storage component
func (d *MetadataStoreSqlite) SetStorageState(
	state *models.StorageState,
	txn types.Txn,
) error {
	return d.upsertStateRow(
		state,
		state.ID,
		[]string{
			"controller",
			"safe_controller",
			"pool",
			"ballot_count",
			"voter_count",
		},
		txn,
	)
}

// GetControllerState returns the state of a Controller component, or nil if missing
func (d *MetadataStoreSqlite) GetControllerState(
	address []byte,
	txn types.Txn,
) (*models.ControllerState, error) {
	var ret models.ControllerState
	if err := d.getStateRow(address, &ret, txn); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ret, nil
}

// SetControllerState creates or updates the state of a Controller component
func (d *MetadataStoreSqlite) SetControllerState(
	state *models.ControllerState,
	txn types.Txn,
) error {
	return d.upsertStateRow(
		state,
		state.ID,
		[]string{"storage", "safe_controller", "initialised_seq"},
		txn,
	)
}

// GetSafeControllerState returns the state of a SafeController component, or nil if missing
func (d *MetadataStoreSqlite) GetSafeControllerState(
	address []byte,
	txn types.Txn,
) (*models.SafeControllerState, error) {
	var ret models.SafeControllerState
	if err := d.getStateRow(address, &ret, txn); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ret, nil
}

// SetSafeControllerState creates or updates the state of a SafeController component
func (d *MetadataStoreSqlite) SetSafeControllerState(
	state *models.SafeControllerState,
	txn types.Txn,
) error {
	return d.upsertStateRow(
		state,
		state.ID,
		[]string{
			"controller",
			"safe_manager",
			"proposal_counter",
			"initialised_seq",
		},
		txn,
	)
}

func (d *MetadataStoreSqlite) getStateRow(
	address []byte,
	dest any,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Where("address = ?", address).First(dest).Error
}

// upsertStateRow saves a row previously loaded from the store, or inserts a
// new one keyed by address
func (d *MetadataStoreSqlite) upsertStateRow(
	state any,
	id uint,
	updateColumns []string,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if id != 0 {
		if result := db.Save(state); result.Error != nil {
			return result.Error
		}
		return nil
	}
	onConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns(updateColumns),
	}
	if result := db.Clauses(onConflict).Create(state); result.Error != nil {
		return result.Error
	}
	return nil
}
