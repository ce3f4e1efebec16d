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

func (d *Database) CreateSafeAction(action *models.SafeAction, txn *Txn) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	return d.metadata.CreateSafeAction(action, txn.Metadata())
}

func (d *Database) GetSafeAction(
	safeController []byte,
	nonce uint64,
	txn *Txn,
) (*models.SafeAction, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetSafeAction(safeController, nonce, txn.Metadata())
}

func (d *Database) GetSafeActions(
	safeController []byte,
	txn *Txn,
) ([]models.SafeAction, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetSafeActions(safeController, txn.Metadata())
}
