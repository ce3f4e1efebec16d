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

func (d *Database) AddAdmin(admin *models.Admin, txn *Txn) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	return d.metadata.AddAdmin(admin, txn.Metadata())
}

func (d *Database) RemoveAdmin(storage, identity []byte, txn *Txn) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	return d.metadata.RemoveAdmin(storage, identity, txn.Metadata())
}

func (d *Database) IsAdmin(storage, identity []byte, txn *Txn) (bool, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.IsAdmin(storage, identity, txn.Metadata())
}

func (d *Database) CountAdmins(storage []byte, txn *Txn) (uint64, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.CountAdmins(storage, txn.Metadata())
}

func (d *Database) GetAdmins(storage []byte, txn *Txn) ([]models.Admin, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetAdmins(storage, txn.Metadata())
}
