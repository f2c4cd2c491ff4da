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

	"github.com/blinklabs-io/ayllu/database"
	"github.com/blinklabs-io/ayllu/database/models"
	"github.com/blinklabs-io/ayllu/database/types"
)

// AllocationRequestSpec describes a request for part of a resource on
// behalf of a member
type AllocationRequestSpec struct {
	CommunityID       uint64
	ResourceID        uint64
	MemberID          uint64
	Amount            uint64
	RequestedStart    uint64
	RequestedDuration *uint64
	Justification     string
}

// RequestAllocation files a PENDING allocation request and returns its id.
// Members request for themselves, admins may request for any member. No
// supply is reserved until the request is processed.
func (ls *LedgerState) RequestAllocation(
	ctx context.Context,
	call Call,
	spec AllocationRequestSpec,
) (uint64, error) {
	var requestId uint64
	err := ls.apply(ctx, "request-allocation", call, func(txn *database.Txn, m *mutation) error {
		community, err := ls.loadActiveCommunity(txn, spec.CommunityID)
		if err != nil {
			return err
		}
		caller, err := ls.authorize(txn, community, call.Caller, RoleMember)
		if err != nil {
			return err
		}
		member, err := ls.loadMember(txn, community.ID, spec.MemberID)
		if err != nil {
			return err
		}
		if !member.Active {
			return newError(
				CodeMemberNotFound,
				"member %d of community %d is inactive",
				member.MemberID,
				community.ID,
			)
		}
		if caller.MemberID != member.MemberID &&
			!Authorize(community, caller, RoleAdmin) {
			return newError(
				CodeNotAuthorized,
				"%s may not request on behalf of member %d",
				call.Caller,
				member.MemberID,
			)
		}
		resource, err := ls.loadResource(txn, community.ID, spec.ResourceID)
		if err != nil {
			return err
		}
		if !resource.Active {
			return newError(
				CodeInvalidState,
				"resource %d is inactive",
				resource.ID,
			)
		}
		if spec.Amount == 0 {
			return newError(CodeInvalidArgument, "amount must be positive")
		}
		if spec.RequestedStart > MaxHeight {
			return newError(
				CodeInvalidArgument,
				"requested start %d is above the maximum height",
				spec.RequestedStart,
			)
		}
		if spec.RequestedDuration != nil && *spec.RequestedDuration > MaxHeight {
			return newError(
				CodeInvalidArgument,
				"requested duration %d exceeds %d blocks",
				*spec.RequestedDuration,
				MaxHeight,
			)
		}
		if member.Contribution < resource.MinimumContribution {
			return newError(
				CodeInsufficientContribution,
				"contribution %d is below the resource minimum %d",
				member.Contribution,
				resource.MinimumContribution,
			)
		}
		id, err := ls.db.NextId(database.CounterRequest, 0, txn)
		if err != nil {
			return err
		}
		request := &models.AllocationRequest{
			ID:                id,
			CommunityID:       community.ID,
			ResourceID:        resource.ID,
			MemberID:          member.MemberID,
			Amount:            types.Uint64(spec.Amount),
			RequestedStart:    spec.RequestedStart,
			RequestedDuration: spec.RequestedDuration,
			Justification:     spec.Justification,
			CreatedHeight:     call.Height,
			Status:            models.AllocationStatusPending,
		}
		if err := ls.db.SetAllocationRequest(request, txn); err != nil {
			return err
		}
		requestId = id
		m.communityId = community.ID
		m.entityId = id
		m.eventType = AllocationRequestedEventType
		return nil
	})
	if err != nil {
		return 0, err
	}
	return requestId, nil
}

// ProcessAllocationRequest decides a PENDING request and returns the new
// allocation id. A request refused for cooldown, entitlement or supply is
// still finalized as REJECTED, and the refusal is returned as the error.
func (ls *LedgerState) ProcessAllocationRequest(
	ctx context.Context,
	call Call,
	requestId uint64,
) (uint64, error) {
	var allocationId uint64
	err := ls.apply(ctx, "process-allocation-request", call, func(txn *database.Txn, m *mutation) error {
		request, err := ls.loadRequest(txn, requestId)
		if err != nil {
			return err
		}
		community, err := ls.loadActiveCommunity(txn, request.CommunityID)
		if err != nil {
			return err
		}
		if _, err := ls.authorize(txn, community, call.Caller, RoleAdmin); err != nil {
			return err
		}
		if request.Status != models.AllocationStatusPending {
			return newError(
				CodeInvalidState,
				"allocation request %d is %s",
				requestId,
				request.Status,
			)
		}
		resource, err := ls.loadResource(txn, community.ID, request.ResourceID)
		if err != nil {
			return err
		}
		if !resource.Active {
			return newError(CodeInvalidState, "resource %d is inactive", resource.ID)
		}
		member, err := ls.loadMember(txn, community.ID, request.MemberID)
		if err != nil {
			return err
		}
		if !member.Active {
			return newError(
				CodeInvalidState,
				"member %d left the community",
				member.MemberID,
			)
		}
		m.communityId = community.ID
		amount := uint64(request.Amount)
		// Policy refusals are committed with the request marked REJECTED
		refusal, outcome, err := ls.checkAllocation(
			txn,
			community,
			resource,
			member,
			amount,
			call.Height,
		)
		if err != nil {
			return err
		}
		if refusal != nil {
			height := call.Height
			request.Status = models.AllocationStatusRejected
			request.Reason = refusal.Message
			request.ProcessedHeight = &height
			if err := ls.db.SetAllocationRequest(request, txn); err != nil {
				return err
			}
			m.entityId = requestId
			m.eventType = AllocationRejectedEventType
			m.rejection = refusal
			m.onCommit(func() {
				ls.metrics.allocationOutcomes.WithLabelValues(outcome).Inc()
			})
			return nil
		}
		if err := reserve(resource, amount); err != nil {
			return err
		}
		if err := ls.db.SetResource(resource, txn); err != nil {
			return err
		}
		id, err := ls.db.NextId(database.CounterAllocation, 0, txn)
		if err != nil {
			return err
		}
		allocation := &models.Allocation{
			ID:            id,
			CommunityID:   community.ID,
			ResourceID:    resource.ID,
			MemberID:      member.MemberID,
			RequestID:     requestId,
			Amount:        request.Amount,
			Duration:      request.RequestedDuration,
			CreatedHeight: call.Height,
			Status:        models.AllocationStatusApproved,
		}
		if err := ls.db.SetAllocation(allocation, txn); err != nil {
			return err
		}
		height := call.Height
		request.Status = models.AllocationStatusApproved
		request.AllocationID = &id
		request.ProcessedHeight = &height
		if err := ls.db.SetAllocationRequest(request, txn); err != nil {
			return err
		}
		err = ls.db.SetAllocationCooldown(
			&models.AllocationCooldown{
				ResourceID: resource.ID,
				MemberID:   member.MemberID,
				LastHeight: call.Height,
			},
			txn,
		)
		if err != nil {
			return err
		}
		allocationId = id
		m.entityId = id
		m.eventType = AllocationApprovedEventType
		m.onCommit(func() {
			ls.metrics.allocationOutcomes.WithLabelValues("approved").Inc()
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return allocationId, nil
}

// checkAllocation applies the allocation policy in order: cooldown,
// entitlement, remaining supply. It returns the refusal and its outcome
// label, or nil when the allocation may proceed.
func (ls *LedgerState) checkAllocation(
	txn *database.Txn,
	community *models.Community,
	resource *models.Resource,
	member *models.Member,
	amount uint64,
	height uint64,
) (*Error, string, error) {
	ok, err := ls.canAllocate(txn, resource, member.MemberID, height)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return newError(
			CodeCooldownActive,
			"member %d must wait %d blocks between allocations of resource %d",
			member.MemberID,
			resource.CooldownPeriod,
			resource.ID,
		), "cooldown", nil
	}
	if entitlement := Entitlement(community, resource, member); amount > entitlement {
		return newError(
			CodeAllocationLimitExceeded,
			"amount %d exceeds the entitlement %d",
			amount,
			entitlement,
		), "limit_exceeded", nil
	}
	if amount > uint64(resource.RemainingSupply) {
		return newError(
			CodeResourceExhausted,
			"resource %d has %d remaining, %d requested",
			resource.ID,
			resource.RemainingSupply,
			amount,
		), "exhausted", nil
	}
	return nil, "", nil
}

// CompleteAllocation closes an APPROVED allocation. TIME-BASED supply
// returns to the pool, DIVISIBLE and UNIQUE supply stays consumed.
func (ls *LedgerState) CompleteAllocation(
	ctx context.Context,
	call Call,
	allocationId uint64,
) error {
	return ls.apply(ctx, "complete-allocation", call, func(txn *database.Txn, m *mutation) error {
		allocation, err := ls.loadAllocation(txn, allocationId)
		if err != nil {
			return err
		}
		community, err := ls.loadActiveCommunity(txn, allocation.CommunityID)
		if err != nil {
			return err
		}
		caller, err := ls.authorize(txn, community, call.Caller, RoleMember)
		if err != nil {
			return err
		}
		if caller.MemberID != allocation.MemberID &&
			!Authorize(community, caller, RoleAdmin) {
			return newError(
				CodeNotAuthorized,
				"%s may not complete allocation %d",
				call.Caller,
				allocationId,
			)
		}
		// ACTIVE is never assigned today but completes like APPROVED
		if allocation.Status != models.AllocationStatusApproved &&
			allocation.Status != models.AllocationStatusActive {
			return newError(
				CodeInvalidState,
				"allocation %d is %s",
				allocationId,
				allocation.Status,
			)
		}
		resource, err := ls.loadResource(txn, community.ID, allocation.ResourceID)
		if err != nil {
			return err
		}
		if resource.ResourceType == models.ResourceTypeTimeBased {
			release(resource, uint64(allocation.Amount))
			if err := ls.db.SetResource(resource, txn); err != nil {
				return err
			}
		}
		height := call.Height
		allocation.Status = models.AllocationStatusCompleted
		allocation.CompletedHeight = &height
		if err := ls.db.SetAllocation(allocation, txn); err != nil {
			return err
		}
		m.communityId = community.ID
		m.entityId = allocationId
		m.eventType = AllocationCompletedEventType
		m.onCommit(func() {
			ls.metrics.allocationOutcomes.WithLabelValues("completed").Inc()
		})
		return nil
	})
}

func (ls *LedgerState) GetAllocationRequest(
	ctx context.Context,
	requestId uint64,
) (*models.AllocationRequest, error) {
	var ret *models.AllocationRequest
	err := ls.view(ctx, "get-allocation-request", func(txn *database.Txn) error {
		request, err := ls.loadRequest(txn, requestId)
		ret = request
		return err
	})
	return ret, err
}

func (ls *LedgerState) GetAllocationRequests(
	ctx context.Context,
	communityId uint64,
) ([]models.AllocationRequest, error) {
	var ret []models.AllocationRequest
	err := ls.view(ctx, "list-allocation-requests", func(txn *database.Txn) error {
		if _, err := ls.loadCommunity(txn, communityId); err != nil {
			return err
		}
		requests, err := ls.db.GetAllocationRequests(communityId, txn)
		ret = requests
		return err
	})
	return ret, err
}

func (ls *LedgerState) GetAllocation(
	ctx context.Context,
	allocationId uint64,
) (*models.Allocation, error) {
	var ret *models.Allocation
	err := ls.view(ctx, "get-allocation", func(txn *database.Txn) error {
		allocation, err := ls.loadAllocation(txn, allocationId)
		ret = allocation
		return err
	})
	return ret, err
}

func (ls *LedgerState) GetAllocations(
	ctx context.Context,
	communityId uint64,
) ([]models.Allocation, error) {
	var ret []models.Allocation
	err := ls.view(ctx, "list-allocations", func(txn *database.Txn) error {
		if _, err := ls.loadCommunity(txn, communityId); err != nil {
			return err
		}
		allocations, err := ls.db.GetAllocations(communityId, txn)
		ret = allocations
		return err
	})
	return ret, err
}
