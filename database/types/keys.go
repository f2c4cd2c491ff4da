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
	CounterBlobKeyPrefix = "ct"
	JournalBlobKeyPrefix = "jr"
	TipBlobKey           = "tip_height"

	// CommitTimestampBlobKey marks the last commit shared with the
	// metadata store
	CommitTimestampBlobKey = "commit_timestamp"
)

func BlobKeyUint64ToBytes(input uint64) []byte {
	ret := make([]byte, 8)
	binary.BigEndian.PutUint64(ret, input)
	return ret
}

func BlobKeyBytesToUint64(input []byte) uint64 {
	if len(input) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(input[:8])
}

// CounterBlobKey returns the key of the id sequence for an entity kind.
// The scope separates sequences that restart per parent, such as
// member ids within a community. Global sequences use scope 0.
func CounterBlobKey(kind string, scope uint64) []byte {
	return slices.Concat(
		[]byte(CounterBlobKeyPrefix),
		[]byte(kind),
		[]byte{':'},
		BlobKeyUint64ToBytes(scope),
	)
}

// JournalBlobKey orders journal records by height, then by sequence
func JournalBlobKey(height uint64, seq uint64) []byte {
	return slices.Concat(
		[]byte(JournalBlobKeyPrefix),
		BlobKeyUint64ToBytes(height),
		BlobKeyUint64ToBytes(seq),
	)
}

func JournalBlobKeyHeight(key []byte) uint64 {
	if len(key) < len(JournalBlobKeyPrefix)+8 {
		return 0
	}
	return BlobKeyBytesToUint64(key[len(JournalBlobKeyPrefix):])
}
