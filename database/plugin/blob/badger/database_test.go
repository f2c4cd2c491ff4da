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
	"time"

	"github.com/blinklabs-io/ayllu/database/plugin/blob/badger"
	"github.com/blinklabs-io/ayllu/database/types"
	"github.com/prometheus/client_golang/prometheus"
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

func TestGetSetDelete(t *testing.T) {
	store := newTestStore(t)

	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("key1"), []byte("value1")))
	require.NoError(t, txn.Commit())

	txn = store.NewTransaction(false)
	val, err := store.Get(txn, []byte("key1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("value1"), val)
	_, err = store.Get(txn, []byte("missing"))
	assert.ErrorIs(t, err, types.ErrBlobKeyNotFound)
	require.NoError(t, txn.Rollback())

	txn = store.NewTransaction(true)
	require.NoError(t, store.Delete(txn, []byte("key1")))
	require.NoError(t, txn.Commit())

	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	_, err = store.Get(txn, []byte("key1"))
	assert.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestRollbackDiscardsWrites(t *testing.T) {
	store := newTestStore(t)
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("key"), []byte("value")))
	require.NoError(t, txn.Rollback())
	// A second rollback or commit on a finished txn is a no-op
	require.NoError(t, txn.Rollback())
	require.NoError(t, txn.Commit())

	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	_, err := store.Get(txn, []byte("key"))
	assert.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestValidateTxn(t *testing.T) {
	store := newTestStore(t)
	other := newTestStore(t)

	_, err := store.Get(nil, []byte("key"))
	assert.ErrorIs(t, err, types.ErrNilTxn)

	otherTxn := other.NewTransaction(false)
	defer otherTxn.Rollback() //nolint:errcheck
	_, err = store.Get(otherTxn, []byte("key"))
	assert.Error(t, err)

	txn := store.NewTransaction(true)
	require.NoError(t, txn.Commit())
	assert.ErrorIs(t, store.Set(txn, []byte("key"), nil), types.ErrTxnFinished)
}

func TestIteratorPrefixAndReverse(t *testing.T) {
	store := newTestStore(t)
	txn := store.NewTransaction(true)
	for _, h := range []uint64{3, 1, 2} {
		require.NoError(t, store.Set(txn, types.JournalBlobKey(h, 0), []byte{byte(h)}))
	}
	require.NoError(t, store.Set(txn, []byte("zz-other"), []byte{9}))
	require.NoError(t, txn.Commit())

	collect := func(reverse bool) []byte {
		txn := store.NewTransaction(false)
		defer txn.Rollback() //nolint:errcheck
		prefix := []byte(types.JournalBlobKeyPrefix)
		iter := store.NewIterator(txn, types.BlobIteratorOptions{Prefix: prefix, Reverse: reverse})
		defer iter.Close()
		var ret []byte
		seek := prefix
		if reverse {
			seek = append(append([]byte{}, prefix...), 0xff)
		}
		for iter.Seek(seek); iter.ValidForPrefix(prefix); iter.Next() {
			val, err := iter.Item().ValueCopy(nil)
			require.NoError(t, err)
			ret = append(ret, val...)
		}
		require.NoError(t, iter.Err())
		return ret
	}
	assert.Equal(t, []byte{1, 2, 3}, collect(false))
	assert.Equal(t, []byte{3, 2, 1}, collect(true))
}

func TestIteratorInvalidTxn(t *testing.T) {
	store := newTestStore(t)
	iter := store.NewIterator(nil, types.BlobIteratorOptions{})
	defer iter.Close()
	assert.False(t, iter.Valid())
	assert.ErrorIs(t, iter.Err(), types.ErrNilTxn)
}

func TestCommitTimestamp(t *testing.T) {
	store := newTestStore(t)
	ts, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)

	assert.ErrorIs(t, store.SetCommitTimestamp(1, nil), types.ErrNilTxn)

	txn := store.NewTransaction(true)
	require.NoError(t, store.SetCommitTimestamp(1712345678901, txn))
	require.NoError(t, txn.Commit())
	ts, err = store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(1712345678901), ts)
}

func TestPersistentStoreWithGc(t *testing.T) {
	dataDir := t.TempDir()
	store, err := badger.New(
		badger.WithDataDir(dataDir),
		badger.WithGc(true, time.Minute),
		badger.WithPromRegistry(prometheus.NewRegistry()),
	)
	require.NoError(t, err)
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("persisted"), []byte("yes")))
	require.NoError(t, txn.Commit())
	require.NoError(t, store.Close())
	// Close is idempotent
	require.NoError(t, store.Close())

	store, err = badger.New(badger.WithDataDir(dataDir), badger.WithGc(false, 0))
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck
	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	val, err := store.Get(txn, []byte("persisted"))
	require.NoError(t, err)
	assert.Equal(t, []byte("yes"), val)
}
