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
	"errors"
	"fmt"
	"math/big"

	"github.com/blinklabs-io/agora/database/types"
	"github.com/fxamacker/cbor/v2"
)

// JournalEntry describes a single committed operation
type JournalEntry struct {
	_      struct{} `cbor:",toarray"`
	Seq    uint64
	Op     string
	Caller []byte
	Target []byte
	Time   int64
}

// JournalSeq returns the sequence number of the last committed operation,
// or 0 when nothing has been committed yet
func (d *Database) JournalSeq(txn *Txn) (uint64, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	val, err := d.Blob().Get(txn.Blob(), []byte(types.JournalSeqBlobKey))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return new(big.Int).SetBytes(val).Uint64(), nil
}

// AppendJournal records an entry and advances the journal sequence. The
// entry sequence must follow the current one.
func (d *Database) AppendJournal(entry JournalEntry, txn *Txn) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	seq, err := d.JournalSeq(txn)
	if err != nil {
		return err
	}
	if entry.Seq != seq+1 {
		return fmt.Errorf(
			"journal sequence gap: expected %d, got %d",
			seq+1,
			entry.Seq,
		)
	}
	cborData, err := cbor.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode journal entry: %w", err)
	}
	if err := d.Blob().Set(txn.Blob(), types.JournalBlobKey(entry.Seq), cborData); err != nil {
		return err
	}
	seqBytes := new(big.Int).SetUint64(entry.Seq).Bytes()
	return d.Blob().Set(txn.Blob(), []byte(types.JournalSeqBlobKey), seqBytes)
}

// Journal returns up to limit entries starting at fromSeq in sequence order.
// A limit of 0 returns all remaining entries.
func (d *Database) Journal(
	fromSeq uint64,
	limit int,
	txn *Txn,
) ([]JournalEntry, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	prefix := []byte(types.JournalBlobKeyPrefix)
	iter := d.Blob().NewIterator(
		txn.Blob(),
		types.BlobIteratorOptions{Prefix: prefix},
	)
	defer iter.Close()
	var ret []JournalEntry
	for iter.Seek(types.JournalBlobKey(fromSeq)); iter.ValidForPrefix(prefix); iter.Next() {
		if limit > 0 && len(ret) >= limit {
			break
		}
		val, err := iter.Item().ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		var entry JournalEntry
		if err := cbor.Unmarshal(val, &entry); err != nil {
			return nil, fmt.Errorf("decode journal entry: %w", err)
		}
		ret = append(ret, entry)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

// SetSafeActionPayload stores the encoded payload of an outbound action
func (d *Database) SetSafeActionPayload(
	safeController []byte,
	nonce uint64,
	payload []byte,
	txn *Txn,
) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	return d.Blob().Set(
		txn.Blob(),
		types.SafeActionBlobKey(safeController, nonce),
		payload,
	)
}

// GetSafeActionPayload returns the encoded payload of an outbound action
func (d *Database) GetSafeActionPayload(
	safeController []byte,
	nonce uint64,
	txn *Txn,
) ([]byte, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.Blob().Get(
		txn.Blob(),
		types.SafeActionBlobKey(safeController, nonce),
	)
}
