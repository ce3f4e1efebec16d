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

package badger_test

import (
	"testing"

	"github.com/blinklabs-io/agora/database/blob/badger"
	"github.com/blinklabs-io/agora/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...badger.BlobStoreBadgerOptionFunc) *badger.BlobStoreBadger {
	t.Helper()
	store, err := badger.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close() //nolint:errcheck
	})
	return store
}

func TestSetGetCommit(t *testing.T) {
	store := newTestStore(t)

	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("k1"), []byte("v1")))
	// Own writes are visible before commit
	val, err := store.Get(txn, []byte("k1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), val)
	require.NoError(t, txn.Commit())

	readTxn := store.NewTransaction(false)
	defer readTxn.Rollback() //nolint:errcheck
	val, err = store.Get(readTxn, []byte("k1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), val)
}

func TestRollbackDiscardsWrites(t *testing.T) {
	store := newTestStore(t)

	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("k1"), []byte("v1")))
	require.NoError(t, txn.Rollback())

	readTxn := store.NewTransaction(false)
	defer readTxn.Rollback() //nolint:errcheck
	_, err := store.Get(readTxn, []byte("k1"))
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestFinishedTxnRejected(t *testing.T) {
	store := newTestStore(t)

	txn := store.NewTransaction(true)
	require.NoError(t, txn.Commit())
	err := store.Set(txn, []byte("k1"), []byte("v1"))
	require.ErrorIs(t, err, types.ErrTxnFinished)
	_, err = store.Get(nil, []byte("k1"))
	require.ErrorIs(t, err, types.ErrNilTxn)
}

func TestIteratorPrefixOrder(t *testing.T) {
	store := newTestStore(t)

	txn := store.NewTransaction(true)
	for _, seq := range []uint64{3, 1, 2} {
		require.NoError(
			t,
			store.Set(txn, types.JournalBlobKey(seq), []byte{byte(seq)}),
		)
	}
	require.NoError(t, store.Set(txn, []byte("zz"), []byte("other")))
	require.NoError(t, txn.Commit())

	readTxn := store.NewTransaction(false)
	defer readTxn.Rollback() //nolint:errcheck
	prefix := []byte(types.JournalBlobKeyPrefix)
	iter := store.NewIterator(readTxn, types.BlobIteratorOptions{Prefix: prefix})
	defer iter.Close()
	var got []byte
	for iter.Rewind(); iter.ValidForPrefix(prefix); iter.Next() {
		val, err := iter.Item().ValueCopy(nil)
		require.NoError(t, err)
		got = append(got, val...)
	}
	require.NoError(t, iter.Err())
	assert.Equal(t, []byte{1, 2, 3}, got)
}

func TestCommitTimestamp(t *testing.T) {
	store := newTestStore(t)

	ts, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)

	txn := store.NewTransaction(true)
	require.NoError(t, store.SetCommitTimestamp(1700000000123, txn))
	require.NoError(t, txn.Commit())

	ts, err = store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000123), ts)
}

func TestPersistence(t *testing.T) {
	dataDir := t.TempDir()
	store, err := badger.New(badger.WithDataDir(dataDir), badger.WithGc(false))
	require.NoError(t, err)
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("k1"), []byte("v1")))
	require.NoError(t, txn.Commit())
	require.NoError(t, store.Close())

	store = newTestStore(t, badger.WithDataDir(dataDir), badger.WithGc(false))
	readTxn := store.NewTransaction(false)
	defer readTxn.Rollback() //nolint:errcheck
	val, err := store.Get(readTxn, []byte("k1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), val)
}

func TestMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	store := newTestStore(t, badger.WithPromRegistry(registry))

	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("k1"), []byte("value")))
	require.NoError(t, txn.Commit())

	count, err := testutil.GatherAndCount(
		registry,
		"database_blob_writes_total",
		"database_blob_written_bytes_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
