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

package sqlite

import (
	"errors"

	"github.com/blinklabs-io/ayllu/database/models"
	"github.com/blinklabs-io/ayllu/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (d *MetadataStoreSqlite) GetAllocationRequest(
	requestId uint64,
	txn types.Txn,
) (*models.AllocationRequest, error) {
	var ret models.AllocationRequest
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.First(&ret, "id = ?", requestId); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ret, nil
}

func (d *MetadataStoreSqlite) GetAllocationRequests(
	communityId uint64,
	txn types.Txn,
) ([]models.AllocationRequest, error) {
	var ret []models.AllocationRequest
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("community_id = ?", communityId).
		Order("id ASC").
		Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (d *MetadataStoreSqlite) SetAllocationRequest(
	request *models.AllocationRequest,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(request); result.Error != nil {
		return result.Error
	}
	return nil
}

func (d *MetadataStoreSqlite) GetAllocation(
	allocationId uint64,
	txn types.Txn,
) (*models.Allocation, error) {
	var ret models.Allocation
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.First(&ret, "id = ?", allocationId); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ret, nil
}

func (d *MetadataStoreSqlite) GetAllocations(
	communityId uint64,
	txn types.Txn,
) ([]models.Allocation, error) {
	var ret []models.Allocation
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("community_id = ?", communityId).
		Order("id ASC").
		Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (d *MetadataStoreSqlite) SetAllocation(
	allocation *models.Allocation,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(allocation); result.Error != nil {
		return result.Error
	}
	return nil
}

// GetAllocationCooldown returns the cooldown marker for a resource and
// member, or nil when the member never received the resource
func (d *MetadataStoreSqlite) GetAllocationCooldown(
	resourceId uint64,
	memberId uint64,
	txn types.Txn,
) (*models.AllocationCooldown, error) {
	var ret models.AllocationCooldown
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"resource_id = ? AND member_id = ?",
		resourceId,
		memberId,
	).First(&ret); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ret, nil
}

func (d *MetadataStoreSqlite) SetAllocationCooldown(
	cooldown *models.AllocationCooldown,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(cooldown); result.Error != nil {
		return result.Error
	}
	return nil
}
