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
	"fmt"

	"github.com/blinklabs-io/ayllu/database/models"
	"github.com/blinklabs-io/ayllu/database/types"
	"github.com/fxamacker/cbor/v2"
)

// AppendJournal assigns the next journal sequence to entry and stores it
// under its height
func (d *Database) AppendJournal(entry *models.JournalEntry, txn *Txn) error {
	return d.withTxn(txn, true, func(txn *Txn) error {
		seq, err := d.NextId(CounterJournal, 0, txn)
		if err != nil {
			return err
		}
		entry.Seq = seq
		data, err := cbor.Marshal(entry)
		if err != nil {
			return fmt.Errorf("encode journal entry: %w", err)
		}
		return d.blob.Set(
			txn.Blob(),
			types.JournalBlobKey(entry.Height, entry.Seq),
			data,
		)
	})
}

// GetJournal returns up to limit journal entries starting at fromHeight,
// oldest first. A limit of 0 or less returns every entry.
func (d *Database) GetJournal(
	fromHeight uint64,
	limit int,
	txn *Txn,
) ([]models.JournalEntry, error) {
	var ret []models.JournalEntry
	err := d.withTxn(txn, false, func(txn *Txn) error {
		prefix := []byte(types.JournalBlobKeyPrefix)
		iter := d.blob.NewIterator(
			txn.Blob(),
			types.BlobIteratorOptions{Prefix: prefix},
		)
		defer iter.Close()
		for iter.Seek(types.JournalBlobKey(fromHeight, 0)); iter.ValidForPrefix(prefix); iter.Next() {
			if limit > 0 && len(ret) >= limit {
				break
			}
			val, err := iter.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			var entry models.JournalEntry
			if err := cbor.Unmarshal(val, &entry); err != nil {
				return fmt.Errorf("decode journal entry: %w", err)
			}
			ret = append(ret, entry)
		}
		return iter.Err()
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}
