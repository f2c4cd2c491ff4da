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

var ErrResourceNotFound = errors.New("resource not found")

const (
	ResourceTypeDivisible = "DIVISIBLE"
	ResourceTypeTimeBased = "TIME-BASED"
	ResourceTypeUnique    = "UNIQUE"
)

// Resource is a shareable pool owned by one community.
// 0 <= RemainingSupply <= TotalSupply always holds.
type Resource struct {
	ID                  uint64       `gorm:"primaryKey;autoIncrement:false" json:"id"`
	CommunityID         uint64       `gorm:"index;not null"                 json:"communityId"`
	Name                string       `gorm:"size:128;not null"              json:"name"`
	Description         string       `gorm:"type:text"                      json:"description"`
	ResourceType        string       `gorm:"size:16;not null"               json:"resourceType"`
	TotalSupply         types.Uint64 `gorm:"not null"                       json:"totalSupply"`
	RemainingSupply     types.Uint64 `gorm:"not null"                       json:"remainingSupply"`
	MinimumContribution types.Uint64 `gorm:"not null"                       json:"minimumContribution"`
	MaxPerAllocation    types.Uint64 `gorm:"not null"                       json:"maxPerAllocation"`
	CooldownPeriod      uint64       `gorm:"not null"                       json:"cooldownPeriod"`
	CreatedHeight       uint64       `gorm:"not null"                       json:"createdHeight"`
	Active              bool         `gorm:"not null"                       json:"active"`
}

func (Resource) TableName() string {
	return "resource"
}

// ValidResourceType reports whether the string names a known resource type
func ValidResourceType(resourceType string) bool {
	switch resourceType {
	case ResourceTypeDivisible, ResourceTypeTimeBased, ResourceTypeUnique:
		return true
	default:
		return false
	}
}
