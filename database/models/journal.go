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

package models

// JournalEntry is the append-only record written to the blob store for
// every committed mutating call
type JournalEntry struct {
	_           struct{} `cbor:",toarray"`
	Seq         uint64   `json:"seq"`
	Height      uint64   `json:"height"`
	Operation   string   `json:"operation"`
	Caller      string   `json:"caller"`
	CommunityID uint64   `json:"communityId"`
	EntityID    uint64   `json:"entityId"`
}
