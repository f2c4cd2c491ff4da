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

package database

import (
	"fmt"

	"github.com/blinklabs-io/ayllu/database/models"
)

func (d *Database) GetAllocationRequest(
	requestId uint64,
	txn *Txn,
) (*models.AllocationRequest, error) {
	ret, err := d.metadata.GetAllocationRequest(requestId, metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf("get allocation request %d: %w", requestId, err)
	}
	if ret == nil {
		return nil, models.ErrAllocationRequestNotFound
	}
	return ret, nil
}

func (d *Database) GetAllocationRequests(
	communityId uint64,
	txn *Txn,
) ([]models.AllocationRequest, error) {
	return d.metadata.GetAllocationRequests(communityId, metadataTxn(txn))
}

func (d *Database) SetAllocationRequest(
	request *models.AllocationRequest,
	txn *Txn,
) error {
	return d.withTxn(txn, true, func(txn *Txn) error {
		return d.metadata.SetAllocationRequest(request, txn.Metadata())
	})
}

func (d *Database) GetAllocation(
	allocationId uint64,
	txn *Txn,
) (*models.Allocation, error) {
	ret, err := d.metadata.GetAllocation(allocationId, metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf("get allocation %d: %w", allocationId, err)
	}
	if ret == nil {
		return nil, models.ErrAllocationNotFound
	}
	return ret, nil
}

func (d *Database) GetAllocations(
	communityId uint64,
	txn *Txn,
) ([]models.Allocation, error) {
	return d.metadata.GetAllocations(communityId, metadataTxn(txn))
}

func (d *Database) SetAllocation(allocation *models.Allocation, txn *Txn) error {
	return d.withTxn(txn, true, func(txn *Txn) error {
		return d.metadata.SetAllocation(allocation, txn.Metadata())
	})
}

// GetAllocationCooldown returns nil when the member has never been
// allocated the resource
func (d *Database) GetAllocationCooldown(
	resourceId uint64,
	memberId uint64,
	txn *Txn,
) (*models.AllocationCooldown, error) {
	return d.metadata.GetAllocationCooldown(
		resourceId,
		memberId,
		metadataTxn(txn),
	)
}

func (d *Database) SetAllocationCooldown(
	cooldown *models.AllocationCooldown,
	txn *Txn,
) error {
	return d.withTxn(txn, true, func(txn *Txn) error {
		return d.metadata.SetAllocationCooldown(cooldown, txn.Metadata())
	})
}
