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

import "github.com/blinklabs-io/ayllu/database/types"

// VoteKind tells expansion votes and dispute votes apart in the shared
// voter weight table
type VoteKind uint8

const (
	VoteKindExpansion VoteKind = 1
	VoteKindDispute   VoteKind = 2
)

// VoterWeight is a member's ballot weight frozen when a vote opens. Only
// members with a row may vote, and their ballot counts for Weight no
// matter how their contribution changes afterwards.
type VoterWeight struct {
	Kind     VoteKind     `gorm:"primaryKey;autoIncrement:false"`
	VoteID   uint64       `gorm:"primaryKey;autoIncrement:false"`
	MemberID uint64       `gorm:"primaryKey;autoIncrement:false"`
	Weight   types.Uint64 `gorm:"not null"`
}

func (VoterWeight) TableName() string {
	return "voter_weight"
}
