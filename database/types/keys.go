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

package types

import (
	"encoding/binary"
	"slices"
)

const (
	JournalBlobKeyPrefix    = "j"
	JournalSeqBlobKey       = "metadata_journal_seq"
	SafeActionBlobKeyPrefix = "sa"
)

func BlobKeyUint64ToBytes(input uint64) []byte {
	ret := make([]byte, 8)
	binary.BigEndian.PutUint64(ret, input)
	return ret
}

// JournalBlobKey returns the key of the journal entry for the given sequence.
// Keys sort in sequence order.
func JournalBlobKey(seq uint64) []byte {
	return slices.Concat(
		[]byte(JournalBlobKeyPrefix),
		BlobKeyUint64ToBytes(seq),
	)
}

// SafeActionBlobKey returns the key of an outbound action payload
func SafeActionBlobKey(safeController []byte, nonce uint64) []byte {
	return slices.Concat(
		[]byte(SafeActionBlobKeyPrefix),
		safeController,
		BlobKeyUint64ToBytes(nonce),
	)
}
