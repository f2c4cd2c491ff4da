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

package ledger

import (
	"context"
	"strings"

	"github.com/blinklabs-io/ayllu/database"
	"github.com/blinklabs-io/ayllu/database/models"
	"github.com/blinklabs-io/ayllu/database/types"
)

// ResourceSpec describes a resource to add to a community
type ResourceSpec struct {
	Name                string
	Description         string
	ResourceType        string
	TotalSupply         uint64
	MinimumContribution uint64
	MaxPerAllocation    uint64
	CooldownPeriod      uint64
}

func (s ResourceSpec) validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return newError(CodeInvalidArgument, "resource name required")
	}
	if !models.ValidResourceType(s.ResourceType) {
		return newError(
			CodeInvalidArgument,
			"unknown resource type %q",
			s.ResourceType,
		)
	}
	if s.TotalSupply == 0 {
		return newError(CodeInvalidArgument, "total supply must be positive")
	}
	if s.MaxPerAllocation == 0 {
		return newError(
			CodeInvalidArgument,
			"max per allocation must be positive",
		)
	}
	if s.CooldownPeriod > MaxHeight {
		return newError(
			CodeInvalidArgument,
			"cooldown period %d exceeds %d blocks",
			s.CooldownPeriod,
			MaxHeight,
		)
	}
	return nil
}

// AddResource adds a resource to a community and returns its id. Resource
// ids are global across communities.
func (ls *LedgerState) AddResource(
	ctx context.Context,
	call Call,
	communityId uint64,
	spec ResourceSpec,
) (uint64, error) {
	var resourceId uint64
	err := ls.apply(ctx, "add-resource", call, func(txn *database.Txn, m *mutation) error {
		community, err := ls.loadActiveCommunity(txn, communityId)
		if err != nil {
			return err
		}
		if _, err := ls.authorize(txn, community, call.Caller, RoleAdmin); err != nil {
			return err
		}
		if err := spec.validate(); err != nil {
			return err
		}
		id, err := ls.createResource(txn, community, spec, call.Height)
		if err != nil {
			return err
		}
		resourceId = id
		m.communityId = communityId
		m.entityId = id
		m.eventType = ResourceAddedEventType
		return nil
	})
	if err != nil {
		return 0, err
	}
	return resourceId, nil
}

func (ls *LedgerState) createResource(
	txn *database.Txn,
	community *models.Community,
	spec ResourceSpec,
	height uint64,
) (uint64, error) {
	id, err := ls.db.NextId(database.CounterResource, 0, txn)
	if err != nil {
		return 0, err
	}
	resource := &models.Resource{
		ID:                  id,
		CommunityID:         community.ID,
		Name:                spec.Name,
		Description:         spec.Description,
		ResourceType:        spec.ResourceType,
		TotalSupply:         types.Uint64(spec.TotalSupply),
		RemainingSupply:     types.Uint64(spec.TotalSupply),
		MinimumContribution: types.Uint64(spec.MinimumContribution),
		MaxPerAllocation:    types.Uint64(spec.MaxPerAllocation),
		CooldownPeriod:      spec.CooldownPeriod,
		CreatedHeight:       height,
		Active:              true,
	}
	if err := ls.db.SetResource(resource, txn); err != nil {
		return 0, err
	}
	community.ResourceCount++
	if err := ls.db.SetCommunity(community, txn); err != nil {
		return 0, err
	}
	return id, nil
}

// DeactivateResource stops new requests and approvals against a resource.
// Outstanding allocations can still complete.
func (ls *LedgerState) DeactivateResource(
	ctx context.Context,
	call Call,
	communityId uint64,
	resourceId uint64,
) error {
	return ls.apply(ctx, "deactivate-resource", call, func(txn *database.Txn, m *mutation) error {
		community, err := ls.loadActiveCommunity(txn, communityId)
		if err != nil {
			return err
		}
		if _, err := ls.authorize(txn, community, call.Caller, RoleAdmin); err != nil {
			return err
		}
		resource, err := ls.loadResource(txn, communityId, resourceId)
		if err != nil {
			return err
		}
		if !resource.Active {
			return newError(
				CodeInvalidState,
				"resource %d is already inactive",
				resourceId,
			)
		}
		resource.Active = false
		if err := ls.db.SetResource(resource, txn); err != nil {
			return err
		}
		m.communityId = communityId
		m.entityId = resourceId
		m.eventType = ResourceDeactivatedEventType
		return nil
	})
}

// reserve takes amount out of the remaining supply
func reserve(resource *models.Resource, amount uint64) error {
	if amount > uint64(resource.RemainingSupply) {
		return newError(
			CodeResourceExhausted,
			"resource %d has %d remaining, %d requested",
			resource.ID,
			resource.RemainingSupply,
			amount,
		)
	}
	resource.RemainingSupply -= types.Uint64(amount)
	return nil
}

// release returns amount to the remaining supply, never beyond the total
func release(resource *models.Resource, amount uint64) {
	free := uint64(resource.TotalSupply - resource.RemainingSupply)
	if amount > free {
		amount = free
	}
	resource.RemainingSupply += types.Uint64(amount)
}

// expand grows both the total and the remaining supply by delta
func expand(resource *models.Resource, delta uint64) error {
	total, err := checkedAdd(uint64(resource.TotalSupply), delta, "total supply")
	if err != nil {
		return err
	}
	resource.TotalSupply = types.Uint64(total)
	resource.RemainingSupply += types.Uint64(delta)
	return nil
}

// canAllocate reports whether the member's cooldown on the resource has
// elapsed at height. A member's first allocation is always allowed.
func (ls *LedgerState) canAllocate(
	txn *database.Txn,
	resource *models.Resource,
	memberId uint64,
	height uint64,
) (bool, error) {
	cooldown, err := ls.db.GetAllocationCooldown(resource.ID, memberId, txn)
	if err != nil {
		return false, err
	}
	if cooldown == nil {
		return true, nil
	}
	if height < cooldown.LastHeight {
		return false, nil
	}
	return height-cooldown.LastHeight >= resource.CooldownPeriod, nil
}

func (ls *LedgerState) GetResource(
	ctx context.Context,
	resourceId uint64,
) (*models.Resource, error) {
	var ret *models.Resource
	err := ls.view(ctx, "get-resource", func(txn *database.Txn) error {
		resource, err := ls.db.GetResource(resourceId, txn)
		if err != nil {
			return wrapNotFound(
				err,
				models.ErrResourceNotFound,
				CodeResourceNotFound,
				"resource %d",
				resourceId,
			)
		}
		ret = resource
		return nil
	})
	return ret, err
}

func (ls *LedgerState) GetResources(
	ctx context.Context,
	communityId uint64,
) ([]models.Resource, error) {
	var ret []models.Resource
	err := ls.view(ctx, "list-resources", func(txn *database.Txn) error {
		if _, err := ls.loadCommunity(txn, communityId); err != nil {
			return err
		}
		resources, err := ls.db.GetResources(communityId, txn)
		ret = resources
		return err
	})
	return ret, err
}
