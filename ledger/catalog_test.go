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
	"math"
	"testing"

	"github.com/blinklabs-io/ayllu/database/models"
	"github.com/blinklabs-io/ayllu/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddResourceValidation(t *testing.T) {
	ls := newTestLedgerState(t, GovernancePolicy{})
	ctx := context.Background()
	id := newTestCommunity(t, ls)
	valid := ResourceSpec{
		Name:             "tools",
		ResourceType:     models.ResourceTypeDivisible,
		TotalSupply:      10,
		MaxPerAllocation: 2,
	}
	testDefs := []struct {
		name   string
		modify func(*ResourceSpec)
	}{
		{name: "no name", modify: func(s *ResourceSpec) { s.Name = " " }},
		{name: "bad type", modify: func(s *ResourceSpec) { s.ResourceType = "SHARED" }},
		{name: "zero supply", modify: func(s *ResourceSpec) { s.TotalSupply = 0 }},
		{name: "zero max", modify: func(s *ResourceSpec) { s.MaxPerAllocation = 0 }},
		{name: "cooldown too long", modify: func(s *ResourceSpec) { s.CooldownPeriod = MaxHeight + 1 }},
	}
	for _, test := range testDefs {
		t.Run(test.name, func(t *testing.T) {
			spec := valid
			test.modify(&spec)
			_, err := ls.AddResource(ctx, Call{Caller: testFounder, Height: 2}, id, spec)
			require.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
	_, err := ls.AddResource(ctx, Call{Caller: testFounder, Height: 2}, 99, valid)
	require.ErrorIs(t, err, ErrCommunityNotFound)
	resourceId := mustAddResource(t, ls, id, valid, 3)
	resource, err := ls.GetResource(ctx, resourceId)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), uint64(resource.RemainingSupply))
	assert.True(t, resource.Active)
	community, err := ls.GetCommunity(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), community.ResourceCount)
}

func TestResourceIdsAreGlobal(t *testing.T) {
	ls := newTestLedgerState(t, GovernancePolicy{})
	ctx := context.Background()
	first := newTestCommunity(t, ls)
	second, err := ls.CreateCommunity(
		ctx,
		Call{Caller: testFounder, Height: 2},
		CommunitySpec{Name: "second", ContributionThreshold: 5},
	)
	require.NoError(t, err)
	spec := ResourceSpec{
		Name:             "seeds",
		ResourceType:     models.ResourceTypeUnique,
		TotalSupply:      3,
		MaxPerAllocation: 1,
	}
	a := mustAddResource(t, ls, first, spec, 3)
	b := mustAddResource(t, ls, second, spec, 4)
	assert.Equal(t, uint64(1), a)
	assert.Equal(t, uint64(2), b)
	// A resource is only visible through its own community
	_, err = ls.CalculateAllocationEntitlement(ctx, first, b, founderMemberId)
	require.ErrorIs(t, err, ErrResourceNotFound)
	_, err = ls.GetResource(ctx, 3)
	require.ErrorIs(t, err, ErrResourceNotFound)
}

func TestDeactivateResource(t *testing.T) {
	ls := newTestLedgerState(t, GovernancePolicy{})
	ctx := context.Background()
	id := newTestCommunity(t, ls)
	aliceId := mustJoin(t, ls, id, testAlice, 100, 2)
	resourceId := mustAddResource(t, ls, id, ResourceSpec{
		Name:             "van",
		ResourceType:     models.ResourceTypeTimeBased,
		TotalSupply:      10,
		MaxPerAllocation: 5,
	}, 3)
	requestId, err := ls.RequestAllocation(
		ctx,
		Call{Caller: testAlice, Height: 4},
		AllocationRequestSpec{CommunityID: id, ResourceID: resourceId, MemberID: aliceId, Amount: 2},
	)
	require.NoError(t, err)
	err = ls.DeactivateResource(ctx, Call{Caller: testAlice, Height: 5}, id, resourceId)
	require.ErrorIs(t, err, ErrNotAuthorized)
	require.NoError(t, ls.DeactivateResource(ctx, Call{Caller: testFounder, Height: 5}, id, resourceId))
	err = ls.DeactivateResource(ctx, Call{Caller: testFounder, Height: 6}, id, resourceId)
	require.ErrorIs(t, err, ErrInvalidState)
	_, err = ls.ProcessAllocationRequest(ctx, Call{Caller: testFounder, Height: 6}, requestId)
	require.ErrorIs(t, err, ErrInvalidState)
	request, err := ls.GetAllocationRequest(ctx, requestId)
	require.NoError(t, err)
	assert.Equal(t, models.AllocationStatusPending, request.Status)
	_, err = ls.RequestAllocation(
		ctx,
		Call{Caller: testAlice, Height: 7},
		AllocationRequestSpec{CommunityID: id, ResourceID: resourceId, MemberID: aliceId, Amount: 2},
	)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestSupplyHelpers(t *testing.T) {
	resource := &models.Resource{ID: 1, TotalSupply: 10, RemainingSupply: 10}
	require.NoError(t, reserve(resource, 4))
	assert.Equal(t, uint64(6), uint64(resource.RemainingSupply))
	require.ErrorIs(t, reserve(resource, 7), ErrResourceExhausted)
	assert.Equal(t, uint64(6), uint64(resource.RemainingSupply))
	release(resource, 100)
	assert.Equal(t, uint64(10), uint64(resource.RemainingSupply))
	require.NoError(t, expand(resource, 5))
	assert.Equal(t, uint64(15), uint64(resource.TotalSupply))
	assert.Equal(t, uint64(15), uint64(resource.RemainingSupply))
	require.ErrorIs(t, expand(resource, math.MaxUint64), ErrInvalidArgument)
	assert.Equal(t, uint64(15), uint64(resource.TotalSupply))
}

func TestEntitlement(t *testing.T) {
	community := &models.Community{TotalContribution: 250}
	resource := &models.Resource{RemainingSupply: 100, MaxPerAllocation: 1000}
	testDefs := []struct {
		contribution uint64
		expected     uint64
	}{
		{contribution: 0, expected: 0},
		{contribution: 1, expected: 0},
		{contribution: 3, expected: 1},
		{contribution: 100, expected: 40},
		{contribution: 150, expected: 60},
		{contribution: 250, expected: 100},
	}
	for _, test := range testDefs {
		member := &models.Member{Contribution: types.Uint64(test.contribution)}
		assert.Equal(t, test.expected, Entitlement(community, resource, member))
	}
	// Capped at the per-allocation maximum
	resource.MaxPerAllocation = 10
	assert.Equal(t, uint64(10), Entitlement(community, resource, &models.Member{Contribution: 150}))
	// No overflow in the intermediate product
	big := &models.Community{TotalContribution: math.MaxUint64}
	full := &models.Resource{RemainingSupply: math.MaxUint64, MaxPerAllocation: math.MaxUint64}
	assert.Equal(
		t,
		uint64(math.MaxUint64/2),
		Entitlement(big, full, &models.Member{Contribution: math.MaxUint64 / 2}),
	)
	assert.Equal(t, uint64(0), Entitlement(&models.Community{}, full, &models.Member{Contribution: 1}))
}

func TestEntitlementMonotonic(t *testing.T) {
	community := &models.Community{TotalContribution: 997}
	resource := &models.Resource{RemainingSupply: 313, MaxPerAllocation: 200}
	var last uint64
	for contribution := uint64(0); contribution <= 997; contribution++ {
		got := Entitlement(community, resource, &models.Member{Contribution: types.Uint64(contribution)})
		require.GreaterOrEqual(t, got, last, "contribution %d", contribution)
		last = got
	}
}

func TestShareOf(t *testing.T) {
	assert.Equal(t, uint64(0), ShareOf(5, 0))
	assert.Equal(t, uint64(600_000), ShareOf(150, 250))
	assert.Equal(t, uint64(ShareScale), ShareOf(250, 250))
	assert.Equal(t, uint64(333_333), ShareOf(1, 3))
	assert.Equal(t, uint64(500_000), ShareOf(math.MaxUint64/2+1, math.MaxUint64))
}
