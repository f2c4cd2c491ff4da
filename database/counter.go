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

	"github.com/blinklabs-io/ayllu/database/types"
)

// Id sequences kept in the blob store
const (
	CounterCommunity  = "community"
	CounterMember     = "member"
	CounterResource   = "resource"
	CounterRequest    = "request"
	CounterAllocation = "allocation"
	CounterDispute    = "dispute"
	CounterProposal   = "proposal"
	CounterJournal    = "journal"
)

// CurrentId returns the last id handed out for a sequence, or 0
func (d *Database) CurrentId(kind string, scope uint64, txn *Txn) (uint64, error) {
	var ret uint64
	err := d.withTxn(txn, false, func(txn *Txn) error {
		val, err := d.blob.Get(txn.Blob(), types.CounterBlobKey(kind, scope))
		if err != nil {
			if errors.Is(err, types.ErrBlobKeyNotFound) {
				return nil
			}
			return err
		}
		ret = types.BlobKeyBytesToUint64(val)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("get %s counter: %w", kind, err)
	}
	return ret, nil
}

// NextId advances a sequence and returns the new value. Sequences start at 1.
func (d *Database) NextId(kind string, scope uint64, txn *Txn) (uint64, error) {
	var ret uint64
	err := d.withTxn(txn, true, func(txn *Txn) error {
		cur, err := d.CurrentId(kind, scope, txn)
		if err != nil {
			return err
		}
		ret = cur + 1
		return d.blob.Set(
			txn.Blob(),
			types.CounterBlobKey(kind, scope),
			types.BlobKeyUint64ToBytes(ret),
		)
	})
	if err != nil {
		return 0, fmt.Errorf("advance %s counter: %w", kind, err)
	}
	return ret, nil
}
