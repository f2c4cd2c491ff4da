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

var ErrExpansionProposalNotFound = errors.New("expansion proposal not found")

type ProposalStatus uint8

const (
	ProposalStatusProposed    ProposalStatus = 1
	ProposalStatusVoting      ProposalStatus = 2
	ProposalStatusApproved    ProposalStatus = 3
	ProposalStatusRejected    ProposalStatus = 4
	ProposalStatusImplemented ProposalStatus = 5
)

func (s ProposalStatus) String() string {
	switch s {
	case ProposalStatusProposed:
		return "PROPOSED"
	case ProposalStatusVoting:
		return "VOTING"
	case ProposalStatusApproved:
		return "APPROVED"
	case ProposalStatusRejected:
		return "REJECTED"
	case ProposalStatusImplemented:
		return "IMPLEMENTED"
	default:
		return "UNKNOWN"
	}
}

// ExpansionProposal grows an existing resource when ResourceID is set,
// otherwise it describes a new resource to create
type ExpansionProposal struct {
	ID                    uint64         `gorm:"primaryKey;autoIncrement:false" json:"id"`
	CommunityID           uint64         `gorm:"index;not null"                 json:"communityId"`
	ResourceID            *uint64        `json:"resourceId,omitempty"`
	ProposedBy            uint64         `gorm:"not null"                       json:"proposedBy"`
	Name                  string         `gorm:"size:128;not null"              json:"name"`
	Description           string         `gorm:"type:text"                      json:"description"`
	ResourceType          string         `gorm:"size:16;not null"               json:"resourceType"`
	SupplyDelta           types.Uint64   `gorm:"not null"                       json:"supplyDelta"`
	EstimatedCost         types.Uint64   `gorm:"not null"                       json:"estimatedCost"`
	FundingSource         string         `gorm:"size:128"                       json:"fundingSource"`
	VotesFor              types.Uint64   `gorm:"not null"                       json:"votesFor"`
	VotesAgainst          types.Uint64   `gorm:"not null"                       json:"votesAgainst"`
	EligibleWeight        types.Uint64   `gorm:"not null"                       json:"eligibleWeight"`
	MaxVoterID            uint64         `gorm:"not null"                       json:"maxVoterId"`
	VotingStartHeight     uint64         `json:"votingStartHeight,omitempty"`
	VotingEndHeight       uint64         `json:"votingEndHeight,omitempty"`
	ImplementedResourceID *uint64        `json:"implementedResourceId,omitempty"`
	CreatedHeight         uint64         `gorm:"not null"                       json:"createdHeight"`
	Status                ProposalStatus `gorm:"index;not null"                 json:"status"`
}

func (ExpansionProposal) TableName() string {
	return "expansion_proposal"
}

type ExpansionBallot struct {
	ProposalID uint64       `gorm:"primaryKey;autoIncrement:false"`
	MemberID   uint64       `gorm:"primaryKey;autoIncrement:false"`
	Weight     types.Uint64 `gorm:"not null"`
	Height     uint64       `gorm:"not null"`
	InFavor    bool         `gorm:"not null"`
}

func (ExpansionBallot) TableName() string {
	return "expansion_ballot"
}
