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

var (
	ErrAllocationRequestNotFound = errors.New("allocation request not found")
	ErrAllocationNotFound        = errors.New("allocation not found")
)

type AllocationStatus uint8

const (
	AllocationStatusPending   AllocationStatus = 1
	AllocationStatusApproved  AllocationStatus = 2
	AllocationStatusActive    AllocationStatus = 3
	AllocationStatusCompleted AllocationStatus = 4
	AllocationStatusRejected  AllocationStatus = 5
)

func (s AllocationStatus) String() string {
	switch s {
	case AllocationStatusPending:
		return "PENDING"
	case AllocationStatusApproved:
		return "APPROVED"
	case AllocationStatusActive:
		return "ACTIVE"
	case AllocationStatusCompleted:
		return "COMPLETED"
	case AllocationStatusRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// AllocationRequest is PENDING until processed, then APPROVED (with
// AllocationID set) or REJECTED (with Reason set)
type AllocationRequest struct {
	ID                uint64           `gorm:"primaryKey;autoIncrement:false" json:"id"`
	CommunityID       uint64           `gorm:"index;not null"                 json:"communityId"`
	ResourceID        uint64           `gorm:"index;not null"                 json:"resourceId"`
	MemberID          uint64           `gorm:"not null"                       json:"memberId"`
	Amount            types.Uint64     `gorm:"not null"                       json:"amount"`
	RequestedStart    uint64           `gorm:"not null"                       json:"requestedStart"`
	RequestedDuration *uint64          `json:"requestedDuration,omitempty"`
	Justification     string           `gorm:"type:text"                      json:"justification"`
	Reason            string           `gorm:"type:text"                      json:"reason,omitempty"`
	AllocationID      *uint64          `json:"allocationId,omitempty"`
	CreatedHeight     uint64           `gorm:"not null"                       json:"createdHeight"`
	ProcessedHeight   *uint64          `json:"processedHeight,omitempty"`
	Status            AllocationStatus `gorm:"index;not null"                 json:"status"`
}

func (AllocationRequest) TableName() string {
	return "allocation_request"
}

type Allocation struct {
	ID              uint64           `gorm:"primaryKey;autoIncrement:false" json:"id"`
	CommunityID     uint64           `gorm:"index;not null"                 json:"communityId"`
	ResourceID      uint64           `gorm:"index;not null"                 json:"resourceId"`
	MemberID        uint64           `gorm:"not null"                       json:"memberId"`
	RequestID       uint64           `gorm:"not null"                       json:"requestId"`
	Amount          types.Uint64     `gorm:"not null"                       json:"amount"`
	Duration        *uint64          `json:"duration,omitempty"`
	CreatedHeight   uint64           `gorm:"not null"                       json:"createdHeight"`
	CompletedHeight *uint64          `json:"completedHeight,omitempty"`
	Status          AllocationStatus `gorm:"index;not null"                 json:"status"`
}

func (Allocation) TableName() string {
	return "allocation"
}

// AllocationCooldown records the height of the last approved allocation
// of a resource to a member
type AllocationCooldown struct {
	ResourceID uint64 `gorm:"primaryKey;autoIncrement:false"`
	MemberID   uint64 `gorm:"primaryKey;autoIncrement:false"`
	LastHeight uint64 `gorm:"not null"`
}

func (AllocationCooldown) TableName() string {
	return "allocation_cooldown"
}
