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

// CreateComponent records a deployed component
func (d *Database) CreateComponent(
	component *models.Component,
	txn *Txn,
) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	return d.metadata.CreateComponent(component, txn.Metadata())
}

// GetComponent returns the component deployed at address
func (d *Database) GetComponent(
	address []byte,
	txn *Txn,
) (*models.Component, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetComponent(address, txn.Metadata())
}

// GetComponents returns deployed components of the given kind, or all of
// them when kind is empty
func (d *Database) GetComponents(
	kind string,
	txn *Txn,
) ([]models.Component, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetComponents(kind, txn.Metadata())
}

// DeployerNonce returns the number of components created by deployer
func (d *Database) DeployerNonce(deployer []byte, txn *Txn) (uint64, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.CountComponentsByDeployer(deployer, txn.Metadata())
}

func (d *Database) GetStorageState(
	address []byte,
	txn *Txn,
) (*models.StorageState, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetStorageState(address, txn.Metadata())
}

func (d *Database) SetStorageState(
	state *models.StorageState,
	txn *Txn,
) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	return d.metadata.SetStorageState(state, txn.Metadata())
}

func (d *Database) GetControllerState(
	address []byte,
	txn *Txn,
) (*models.ControllerState, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetControllerState(address, txn.Metadata())
}

func (d *Database) SetControllerState(
	state *models.ControllerState,
	txn *Txn,
) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	return d.metadata.SetControllerState(state, txn.Metadata())
}

func (d *Database) GetSafeControllerState(
	address []byte,
	txn *Txn,
) (*models.SafeControllerState, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetSafeControllerState(address, txn.Metadata())
}

func (d *Database) SetSafeControllerState(
	state *models.SafeControllerState,
	txn *Txn,
) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	return d.metadata.SetSafeControllerState(state, txn.Metadata())
}
