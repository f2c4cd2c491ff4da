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

import (
	"errors"

	"github.com/blinklabs-io/ayllu/database/types"
)

var ErrMemberNotFound = errors.New("member not found")

// Member ids are assigned per community starting at 1, so a member is
// identified by the (CommunityID, MemberID) pair
type Member struct {
	CommunityID  uint64       `gorm:"primaryKey;autoIncrement:false"            json:"communityId"`
	MemberID     uint64       `gorm:"primaryKey;autoIncrement:false"            json:"memberId"`
	Address      string       `gorm:"size:128;index:idx_member_address;not null" json:"address"`
	Contribution types.Uint64 `gorm:"not null"                                  json:"contribution"`
	Reputation   uint64       `gorm:"not null"                                  json:"reputation"`
	JoinHeight   uint64       `gorm:"not null"                                  json:"joinHeight"`
	Role         uint8        `gorm:"not null"                                  json:"role"`
	Active       bool         `gorm:"not null"                                  json:"active"`
}

func (Member) TableName() string {
	return "member"
}
