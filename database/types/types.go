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
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
)

// Uint64 stores a uint64 as decimal text so values above the signed
// 64-bit range survive the round trip through sqlite
type Uint64 uint64

func (u Uint64) Value() (driver.Value, error) {
	return strconv.FormatUint(uint64(u), 10), nil
}

func (u *Uint64) Scan(val any) error {
	var v string
	switch tv := val.(type) {
	case string:
		v = tv
	case []byte:
		v = string(tv)
	case int64:
		if tv < 0 {
			return fmt.Errorf("negative value for Uint64: %d", tv)
		}
		*u = Uint64(tv)
		return nil
	default:
		return fmt.Errorf(
			"value was not expected type, wanted string, got %T",
			val,
		)
	}
	tmpUint, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return err
	}
	*u = Uint64(tmpUint)
	return nil
}

var ErrBlobKeyNotFound = errors.New("blob key not found")

var ErrTxnWrongType = errors.New("invalid transaction type")

var ErrNilTxn = errors.New("nil transaction")

var ErrNoStoreAvailable = errors.New("no store available")

var ErrBlobStoreUnavailable = errors.New("blob store unavailable")

var ErrTxnFinished = errors.New("transaction already finished")

type BlobItem interface {
	Key() []byte
	ValueCopy(dst []byte) ([]byte, error)
}

type BlobIterator interface {
	Rewind()
	Seek(prefix []byte)
	Valid() bool
	ValidForPrefix(prefix []byte) bool
	Next()
	Item() BlobItem
	Close()
	Err() error
}

type BlobIteratorOptions struct {
	Prefix  []byte
	Reverse bool
}

// Txn is the store-neutral handle each plugin hands out for its own
// transactions
type Txn interface {
	Commit() error
	Rollback() error
}
