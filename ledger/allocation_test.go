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
	"testing"

	"github.com/blinklabs-io/ayllu/database/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type allocationFixture struct {
	ls          *LedgerState
	communityId uint64
	aliceId     uint64
	bobId       uint64
	resourceId  uint64
}

// newAllocationFixture sets up founder (100), alice (150) and bob (250)
// with a resource added at height 4
func newAllocationFixture(t *testing.T, spec ResourceSpec) allocationFixture {
	t.Helper()
	ls := newTestLedgerState(t, GovernancePolicy{})
	f := allocationFixture{ls: ls}
	f.communityId = newTestCommunity(t, ls)
	f.aliceId = mustJoin(t, ls, f.communityId, testAlice, 150, 2)
	f.bobId = mustJoin(t, ls, f.communityId, testBob, 250, 3)
	f.resourceId = mustAddResource(t, ls, f.communityId, spec, 4)
	return f
}

func (f allocationFixture) request(
	caller string,
	memberId uint64,
	amount uint64,
	height uint64,
) (uint64, error) {
	return f.ls.RequestAllocation(
		context.Background(),
		Call{Caller: caller, Height: height},
		AllocationRequestSpec{
			CommunityID: f.communityId,
			ResourceID:  f.resourceId,
			MemberID:    memberId,
			Amount:      amount,
		},
	)
}

func (f allocationFixture) process(requestId uint64, height uint64) (uint64, error) {
	return f.ls.ProcessAllocationRequest(
		context.Background(),
		Call{Caller: testFounder, Height: height},
		requestId,
	)
}

func (f allocationFixture) remaining(t *testing.T) uint64 {
	t.Helper()
	resource, err := f.ls.GetResource(context.Background(), f.resourceId)
	require.NoError(t, err)
	return uint64(resource.RemainingSupply)
}

func TestRequestAllocationChecks(t *testing.T) {
	f := newAllocationFixture(t, ResourceSpec{
		Name:                "tractor",
		ResourceType:        models.ResourceTypeTimeBased,
		TotalSupply:         100,
		MaxPerAllocation:    50,
		MinimumContribution: 200,
	})
	ctx := context.Background()
	_, err := f.request(testCarol, f.aliceId, 1, 5)
	require.ErrorIs(t, err, ErrNotAuthorized)
	_, err = f.request(testAlice, 42, 1, 5)
	require.ErrorIs(t, err, ErrMemberNotFound)
	_, err = f.request(testAlice, f.bobId, 1, 5)
	require.ErrorIs(t, err, ErrNotAuthorized)
	_, err = f.request(testBob, f.bobId, 0, 5)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = f.request(testAlice, f.aliceId, 1, 5)
	require.ErrorIs(t, err, ErrInsufficientContribution)
	_, err = f.ls.RequestAllocation(
		ctx,
		Call{Caller: testBob, Height: 5},
		AllocationRequestSpec{
			CommunityID: f.communityId,
			ResourceID:  77,
			MemberID:    f.bobId,
			Amount:      1,
		},
	)
	require.ErrorIs(t, err, ErrResourceNotFound)
	tooLong := MaxHeight + 1
	for _, spec := range []AllocationRequestSpec{
		{RequestedStart: MaxHeight + 1},
		{RequestedDuration: &tooLong},
	} {
		spec.CommunityID = f.communityId
		spec.ResourceID = f.resourceId
		spec.MemberID = f.bobId
		spec.Amount = 1
		_, err = f.ls.RequestAllocation(ctx, Call{Caller: testBob, Height: 5}, spec)
		require.ErrorIs(t, err, ErrInvalidArgument)
	}
	requestId, err := f.request(testBob, f.bobId, 10, 6)
	require.NoError(t, err)
	// Admins may request on behalf of a member
	_, err = f.request(testFounder, f.bobId, 10, 7)
	require.NoError(t, err)
	request, err := f.ls.GetAllocationRequest(ctx, requestId)
	require.NoError(t, err)
	assert.Equal(t, models.AllocationStatusPending, request.Status)
	assert.Nil(t, request.ProcessedHeight)
	requests, err := f.ls.GetAllocationRequests(ctx, f.communityId)
	require.NoError(t, err)
	assert.Len(t, requests, 2)
	// Requesting reserves nothing
	assert.Equal(t, uint64(100), f.remaining(t))
}

func TestProcessAllocationOverEntitlement(t *testing.T) {
	f := newAllocationFixture(t, ResourceSpec{
		Name:             "water",
		ResourceType:     models.ResourceTypeDivisible,
		TotalSupply:      100,
		MaxPerAllocation: 100,
	})
	ctx := context.Background()
	entitlement, err := f.ls.CalculateAllocationEntitlement(ctx, f.communityId, f.resourceId, f.aliceId)
	require.NoError(t, err)
	// 100 * 150 / 500
	assert.Equal(t, uint64(30), entitlement)
	requestId, err := f.request(testAlice, f.aliceId, 31, 5)
	require.NoError(t, err)
	_, err = f.ls.ProcessAllocationRequest(ctx, Call{Caller: testAlice, Height: 6}, requestId)
	require.ErrorIs(t, err, ErrNotAuthorized)
	_, err = f.process(requestId, 6)
	require.ErrorIs(t, err, ErrAllocationLimitExceeded)
	assert.Equal(t, uint64(100), f.remaining(t))
	request, err := f.ls.GetAllocationRequest(ctx, requestId)
	require.NoError(t, err)
	assert.Equal(t, models.AllocationStatusRejected, request.Status)
	assert.NotEmpty(t, request.Reason)
	assert.Nil(t, request.AllocationID)
	require.NotNil(t, request.ProcessedHeight)
	assert.Equal(t, uint64(6), *request.ProcessedHeight)
	// A finalized request cannot be processed again
	_, err = f.process(requestId, 7)
	require.ErrorIs(t, err, ErrInvalidState)
	allocations, err := f.ls.GetAllocations(ctx, f.communityId)
	require.NoError(t, err)
	assert.Empty(t, allocations)
	assert.Equal(
		t,
		1.0,
		testutil.ToFloat64(f.ls.metrics.allocationOutcomes.WithLabelValues("limit_exceeded")),
	)
}

func TestProcessAllocationUnknownRequest(t *testing.T) {
	f := newAllocationFixture(t, ResourceSpec{
		Name:             "water",
		ResourceType:     models.ResourceTypeDivisible,
		TotalSupply:      100,
		MaxPerAllocation: 100,
	})
	_, err := f.process(9, 5)
	require.ErrorIs(t, err, ErrRequestNotFound)
}

func TestProcessAllocationCooldown(t *testing.T) {
	f := newAllocationFixture(t, ResourceSpec{
		Name:             "oven",
		ResourceType:     models.ResourceTypeTimeBased,
		TotalSupply:      100,
		MaxPerAllocation: 10,
		CooldownPeriod:   10,
	})
	first, err := f.request(testBob, f.bobId, 5, 5)
	require.NoError(t, err)
	_, err = f.process(first, 5)
	require.NoError(t, err)
	second, err := f.request(testBob, f.bobId, 5, 6)
	require.NoError(t, err)
	_, err = f.process(second, 14)
	require.ErrorIs(t, err, ErrCooldownActive)
	assert.Equal(t, uint64(95), f.remaining(t))
	third, err := f.request(testBob, f.bobId, 5, 15)
	require.NoError(t, err)
	_, err = f.process(third, 15)
	require.NoError(t, err)
	assert.Equal(t, uint64(90), f.remaining(t))
	// Cooldown is tracked per member
	other, err := f.request(testAlice, f.aliceId, 5, 15)
	require.NoError(t, err)
	_, err = f.process(other, 15)
	require.NoError(t, err)
}

func TestCompleteAllocationConsumesDivisible(t *testing.T) {
	for _, resourceType := range []string{models.ResourceTypeDivisible, models.ResourceTypeUnique} {
		t.Run(resourceType, func(t *testing.T) {
			f := newAllocationFixture(t, ResourceSpec{
				Name:             "stock",
				ResourceType:     resourceType,
				TotalSupply:      100,
				MaxPerAllocation: 10,
			})
			requestId, err := f.request(testBob, f.bobId, 4, 5)
			require.NoError(t, err)
			allocationId, err := f.process(requestId, 6)
			require.NoError(t, err)
			require.NoError(t, f.ls.CompleteAllocation(context.Background(), Call{Caller: testFounder, Height: 7}, allocationId))
			assert.Equal(t, uint64(96), f.remaining(t))
		})
	}
}

func TestCompleteAllocationChecks(t *testing.T) {
	f := newAllocationFixture(t, ResourceSpec{
		Name:             "room",
		ResourceType:     models.ResourceTypeTimeBased,
		TotalSupply:      20,
		MaxPerAllocation: 10,
	})
	ctx := context.Background()
	requestId, err := f.request(testBob, f.bobId, 6, 5)
	require.NoError(t, err)
	allocationId, err := f.process(requestId, 6)
	require.NoError(t, err)
	assert.Equal(t, uint64(14), f.remaining(t))
	err = f.ls.CompleteAllocation(ctx, Call{Caller: testAlice, Height: 7}, allocationId)
	require.ErrorIs(t, err, ErrNotAuthorized)
	err = f.ls.CompleteAllocation(ctx, Call{Caller: testBob, Height: 7}, 99)
	require.ErrorIs(t, err, ErrAllocationNotFound)
	require.NoError(t, f.ls.CompleteAllocation(ctx, Call{Caller: testBob, Height: 8}, allocationId))
	assert.Equal(t, uint64(20), f.remaining(t))
	err = f.ls.CompleteAllocation(ctx, Call{Caller: testBob, Height: 9}, allocationId)
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, uint64(20), f.remaining(t))
	assert.Equal(
		t,
		1.0,
		testutil.ToFloat64(f.ls.metrics.allocationOutcomes.WithLabelValues("approved")),
	)
	assert.Equal(
		t,
		1.0,
		testutil.ToFloat64(f.ls.metrics.allocationOutcomes.WithLabelValues("completed")),
	)
}

func TestProcessAllocationInactiveMember(t *testing.T) {
	f := newAllocationFixture(t, ResourceSpec{
		Name:             "room",
		ResourceType:     models.ResourceTypeTimeBased,
		TotalSupply:      20,
		MaxPerAllocation: 10,
	})
	requestId, err := f.request(testBob, f.bobId, 6, 5)
	require.NoError(t, err)
	require.NoError(t, f.ls.LeaveCommunity(context.Background(), Call{Caller: testBob, Height: 6}, f.communityId))
	_, err = f.process(requestId, 7)
	require.ErrorIs(t, err, ErrInvalidState)
	request, err := f.ls.GetAllocationRequest(context.Background(), requestId)
	require.NoError(t, err)
	assert.Equal(t, models.AllocationStatusPending, request.Status)
}
