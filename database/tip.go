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

	"github.com/blinklabs-io/ayllu/database/types"
)

// GetTipHeight returns the height of the last committed ledger call, or 0
func (d *Database) GetTipHeight(txn *Txn) (uint64, error) {
	var ret uint64
	err := d.withTxn(txn, false, func(txn *Txn) error {
		val, err := d.blob.Get(txn.Blob(), []byte(types.TipBlobKey))
		if err != nil {
			if errors.Is(err, types.ErrBlobKeyNotFound) {
				return nil
			}
			return err
		}
		ret = types.BlobKeyBytesToUint64(val)
		return nil
	})
	return ret, err
}

// SetTipHeight saves the current tip height
func (d *Database) SetTipHeight(height uint64, txn *Txn) error {
	return d.withTxn(txn, true, func(txn *Txn) error {
		return d.blob.Set(
			txn.Blob(),
			[]byte(types.TipBlobKey),
			types.BlobKeyUint64ToBytes(height),
		)
	})
}
