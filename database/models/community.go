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

var ErrCommunityNotFound = errors.New("community not found")

const (
	MembershipTypeOpen   = "open"
	MembershipTypeClosed = "closed"
)

// Community is a governed group with a shared contribution pool.
// ActiveMemberCount and TotalContribution are kept in step with the
// member records on every membership change.
type Community struct {
	ID                    uint64       `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name                  string       `gorm:"size:128;not null"              json:"name"`
	Description           string       `gorm:"type:text"                      json:"description"`
	MembershipType        string       `gorm:"size:16;not null"               json:"membershipType"`
	Founder               string       `gorm:"size:128;index;not null"        json:"founder"`
	ContributionThreshold types.Uint64 `gorm:"not null"                       json:"contributionThreshold"`
	TotalContribution     types.Uint64 `gorm:"not null"                       json:"totalContribution"`
	ActiveMemberCount     uint64       `gorm:"not null"                       json:"activeMemberCount"`
	ResourceCount         uint64       `gorm:"not null"                       json:"resourceCount"`
	CreatedHeight         uint64       `gorm:"not null"                       json:"createdHeight"`
	Active                bool         `gorm:"not null"                       json:"active"`
}

func (Community) TableName() string {
	return "community"
}

// Invitation admits an address into a closed community
type Invitation struct {
	CommunityID uint64 `gorm:"primaryKey;autoIncrement:false" json:"communityId"`
	Address     string `gorm:"primaryKey;size:128"            json:"address"`
	InvitedBy   uint64 `gorm:"not null"                       json:"invitedBy"`
	AddedHeight uint64 `gorm:"not null"                       json:"addedHeight"`
}

func (Invitation) TableName() string {
	return "invitation"
}
