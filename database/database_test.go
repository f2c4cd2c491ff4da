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

package database_test

import (
	"errors"
	"testing"

	"github.com/blinklabs-io/ayllu/database"
	"github.com/blinklabs-io/ayllu/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close() //nolint:errcheck
	})
	return db
}

func TestNewDefaultsToInMemoryPlugins(t *testing.T) {
	db, err := database.New(nil)
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck
	assert.NotNil(t, db.Blob())
	assert.NotNil(t, db.Metadata())
	assert.Equal(t, "", db.DataDir())
	assert.NotNil(t, db.Logger())
}

func TestNewUnknownPlugin(t *testing.T) {
	_, err := database.New(&database.Config{BlobPlugin: "nope"})
	require.Error(t, err)
}

func TestNotFoundSentinels(t *testing.T) {
	db := newTestDatabase(t)
	_, err := db.GetCommunity(1, nil)
	require.ErrorIs(t, err, models.ErrCommunityNotFound)
	_, err = db.GetMember(1, 1, nil)
	require.ErrorIs(t, err, models.ErrMemberNotFound)
	_, err = db.GetMemberByAddress(1, "alice", nil)
	require.ErrorIs(t, err, models.ErrMemberNotFound)
	_, err = db.GetResource(1, nil)
	require.ErrorIs(t, err, models.ErrResourceNotFound)
	_, err = db.GetAllocationRequest(1, nil)
	require.ErrorIs(t, err, models.ErrAllocationRequestNotFound)
	_, err = db.GetAllocation(1, nil)
	require.ErrorIs(t, err, models.ErrAllocationNotFound)
	_, err = db.GetDispute(1, nil)
	require.ErrorIs(t, err, models.ErrDisputeNotFound)
	_, err = db.GetExpansionProposal(1, nil)
	require.ErrorIs(t, err, models.ErrExpansionProposalNotFound)
}

func TestCounters(t *testing.T) {
	db := newTestDatabase(t)
	cur, err := db.CurrentId(database.CounterMember, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), cur)
	for want := uint64(1); want <= 3; want++ {
		id, err := db.NextId(database.CounterMember, 1, nil)
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
	// Scopes are independent
	id, err := db.NextId(database.CounterMember, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
	id, err = db.NextId(database.CounterResource, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
}

func TestTxnRollbackCoversBothStores(t *testing.T) {
	db := newTestDatabase(t)
	errAbort := errors.New("abort")
	txn := db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		id, err := db.NextId(database.CounterCommunity, 0, txn)
		if err != nil {
			return err
		}
		if err := db.SetCommunity(&models.Community{ID: id, Name: "gone"}, txn); err != nil {
			return err
		}
		if err := db.SetTipHeight(10, txn); err != nil {
			return err
		}
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	cur, err := db.CurrentId(database.CounterCommunity, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), cur)
	_, err = db.GetCommunity(1, nil)
	require.ErrorIs(t, err, models.ErrCommunityNotFound)
	tip, err := db.GetTipHeight(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), tip)
}

func TestTxnCommitCoversBothStores(t *testing.T) {
	db := newTestDatabase(t)
	txn := db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		id, err := db.NextId(database.CounterCommunity, 0, txn)
		if err != nil {
			return err
		}
		if err := db.SetCommunity(&models.Community{ID: id, Name: "kept"}, txn); err != nil {
			return err
		}
		return db.SetTipHeight(42, txn)
	})
	require.NoError(t, err)
	// Release after a commit is a no-op
	txn.Release()

	community, err := db.GetCommunity(1, nil)
	require.NoError(t, err)
	assert.Equal(t, "kept", community.Name)
	tip, err := db.GetTipHeight(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), tip)

	metaTs, err := db.Metadata().GetCommitTimestamp()
	require.NoError(t, err)
	blobTs, err := db.Blob().GetCommitTimestamp()
	require.NoError(t, err)
	assert.Positive(t, metaTs)
	assert.Equal(t, metaTs, blobTs)
}

func TestJournal(t *testing.T) {
	db := newTestDatabase(t)
	entries := []models.JournalEntry{
		{Height: 5, Operation: "create-community", Caller: "alice", CommunityID: 1, EntityID: 1},
		{Height: 5, Operation: "join-community", Caller: "bob", CommunityID: 1, EntityID: 2},
		{Height: 9, Operation: "add-resource", Caller: "alice", CommunityID: 1, EntityID: 1},
		{Height: 300, Operation: "contribute", Caller: "bob", CommunityID: 1, EntityID: 2},
	}
	for i := range entries {
		require.NoError(t, db.AppendJournal(&entries[i], nil))
		assert.Equal(t, uint64(i+1), entries[i].Seq)
	}

	all, err := db.GetJournal(0, 0, nil)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, entries, all)

	fromNine, err := db.GetJournal(9, 0, nil)
	require.NoError(t, err)
	require.Len(t, fromNine, 2)
	assert.Equal(t, "add-resource", fromNine[0].Operation)
	// Heights above 255 must still sort after smaller ones
	assert.Equal(t, uint64(300), fromNine[1].Height)

	limited, err := db.GetJournal(0, 3, nil)
	require.NoError(t, err)
	assert.Len(t, limited, 3)
}

func TestCommitTimestampMismatch(t *testing.T) {
	dataDir := t.TempDir()
	db, err := database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	require.NoError(t, db.SetTipHeight(1, nil))
	// Move the metadata timestamp without touching the blob store
	require.NoError(t, db.Metadata().SetCommitTimestamp(1, nil))
	require.NoError(t, db.Close())

	db, err = database.New(&database.Config{DataDir: dataDir})
	require.Error(t, err)
	var tsErr database.CommitTimestampError
	require.ErrorAs(t, err, &tsErr)
	assert.Equal(t, int64(1), tsErr.MetadataTimestamp)
	require.NotNil(t, db)
	require.NoError(t, db.Close())
}

func TestCommitTimestampBlobAhead(t *testing.T) {
	dataDir := t.TempDir()
	db, err := database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	// Simulates a crash after the blob commit of the very first call
	blobTxn := db.Blob().NewTransaction(true)
	require.NoError(t, db.Blob().SetCommitTimestamp(42, blobTxn))
	require.NoError(t, blobTxn.Commit())
	require.NoError(t, db.Close())

	db, err = database.New(&database.Config{DataDir: dataDir})
	var tsErr database.CommitTimestampError
	require.ErrorAs(t, err, &tsErr)
	assert.Equal(t, int64(0), tsErr.MetadataTimestamp)
	assert.Equal(t, int64(42), tsErr.BlobTimestamp)
	require.NoError(t, db.Close())
}
