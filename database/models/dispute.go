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

var ErrDisputeNotFound = errors.New("dispute not found")

type DisputeStatus uint8

const (
	DisputeStatusOpen     DisputeStatus = 1
	DisputeStatusVoting   DisputeStatus = 2
	DisputeStatusResolved DisputeStatus = 3
)

func (s DisputeStatus) String() string {
	switch s {
	case DisputeStatusOpen:
		return "OPEN"
	case DisputeStatusVoting:
		return "VOTING"
	case DisputeStatusResolved:
		return "RESOLVED"
	default:
		return "UNKNOWN"
	}
}

// Dispute holds non-owning references to the resource, allocation and
// member it concerns. Unset references are nil.
type Dispute struct {
	ID                uint64        `gorm:"primaryKey;autoIncrement:false" json:"id"`
	CommunityID       uint64        `gorm:"index;not null"                 json:"communityId"`
	ResourceID        *uint64       `json:"resourceId,omitempty"`
	AllocationID      *uint64       `json:"allocationId,omitempty"`
	AgainstMemberID   *uint64       `json:"againstMemberId,omitempty"`
	RaisedBy          uint64        `gorm:"not null"                       json:"raisedBy"`
	DisputeType       string        `gorm:"size:64;not null"               json:"disputeType"`
	Description       string        `gorm:"type:text"                      json:"description"`
	Resolution        string        `gorm:"type:text"                      json:"resolution,omitempty"`
	VotesUphold       types.Uint64  `gorm:"not null"                       json:"votesUphold"`
	VotesDismiss      types.Uint64  `gorm:"not null"                       json:"votesDismiss"`
	EligibleWeight    types.Uint64  `gorm:"not null"                       json:"eligibleWeight"`
	MaxVoterID        uint64        `gorm:"not null"                       json:"maxVoterId"`
	VotingStartHeight uint64        `json:"votingStartHeight,omitempty"`
	VotingEndHeight   uint64        `json:"votingEndHeight,omitempty"`
	CreatedHeight     uint64        `gorm:"not null"                       json:"createdHeight"`
	ResolvedHeight    *uint64       `json:"resolvedHeight,omitempty"`
	Status            DisputeStatus `gorm:"index;not null"                 json:"status"`
}

func (Dispute) TableName() string {
	return "dispute"
}

type DisputeBallot struct {
	DisputeID uint64       `gorm:"primaryKey;autoIncrement:false"`
	MemberID  uint64       `gorm:"primaryKey;autoIncrement:false"`
	Weight    types.Uint64 `gorm:"not null"`
	Height    uint64       `gorm:"not null"`
	Uphold    bool         `gorm:"not null"`
}

func (DisputeBallot) TableName() string {
	return "dispute_ballot"
}
