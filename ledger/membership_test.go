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
	"fmt"
	"math"
	"testing"

	"github.com/blinklabs-io/ayllu/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCommunityValidation(t *testing.T) {
	ls := newTestLedgerState(t, GovernancePolicy{})
	ctx := context.Background()
	testDefs := []struct {
		name string
		spec CommunitySpec
	}{
		{
			name: "missing name",
			spec: CommunitySpec{ContributionThreshold: 1},
		},
		{
			name: "zero threshold",
			spec: CommunitySpec{Name: "x"},
		},
		{
			name: "unknown membership type",
			spec: CommunitySpec{
				Name:                  "x",
				MembershipType:        "secret",
				ContributionThreshold: 1,
			},
		},
	}
	for _, test := range testDefs {
		t.Run(test.name, func(t *testing.T) {
			_, err := ls.CreateCommunity(ctx, Call{Caller: testFounder, Height: 1}, test.spec)
			require.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
	communities, err := ls.GetCommunities(ctx)
	require.NoError(t, err)
	assert.Empty(t, communities)
}

func TestJoinTwice(t *testing.T) {
	ls := newTestLedgerState(t, GovernancePolicy{})
	id := newTestCommunity(t, ls)
	mustJoin(t, ls, id, testAlice, 100, 2)
	_, err := ls.JoinCommunity(context.Background(), Call{Caller: testAlice, Height: 3}, id, 200)
	require.ErrorIs(t, err, ErrAlreadyExists)
	_, err = ls.JoinCommunity(context.Background(), Call{Caller: testFounder, Height: 3}, id, 200)
	require.ErrorIs(t, err, ErrAlreadyExists)
	requireCommunityTotals(t, ls, id)
}

func TestJoinUnknownCommunity(t *testing.T) {
	ls := newTestLedgerState(t, GovernancePolicy{})
	_, err := ls.JoinCommunity(context.Background(), Call{Caller: testAlice, Height: 1}, 42, 100)
	require.ErrorIs(t, err, ErrCommunityNotFound)
}

func TestClosedCommunityInvitation(t *testing.T) {
	ls := newTestLedgerState(t, GovernancePolicy{})
	ctx := context.Background()
	id, err := ls.CreateCommunity(
		ctx,
		Call{Caller: testFounder, Height: 1},
		CommunitySpec{
			Name:                  "closed",
			MembershipType:        models.MembershipTypeClosed,
			ContributionThreshold: 10,
		},
	)
	require.NoError(t, err)
	_, err = ls.JoinCommunity(ctx, Call{Caller: testAlice, Height: 2}, id, 10)
	require.ErrorIs(t, err, ErrNotAuthorized)
	// Only admins invite
	err = ls.InviteMember(ctx, Call{Caller: testBob, Height: 3}, id, testAlice)
	require.ErrorIs(t, err, ErrNotAuthorized)
	require.NoError(t, ls.InviteMember(ctx, Call{Caller: testFounder, Height: 4}, id, testAlice))
	memberId := mustJoin(t, ls, id, testAlice, 10, 5)
	assert.Equal(t, uint64(2), memberId)
	// The invitation does not waive the threshold
	require.NoError(t, ls.InviteMember(ctx, Call{Caller: testFounder, Height: 6}, id, testBob))
	_, err = ls.JoinCommunity(ctx, Call{Caller: testBob, Height: 7}, id, 9)
	require.ErrorIs(t, err, ErrInsufficientContribution)
}

func TestInviteOpenCommunity(t *testing.T) {
	ls := newTestLedgerState(t, GovernancePolicy{})
	id := newTestCommunity(t, ls)
	err := ls.InviteMember(context.Background(), Call{Caller: testFounder, Height: 2}, id, testAlice)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestContribute(t *testing.T) {
	ls := newTestLedgerState(t, GovernancePolicy{})
	ctx := context.Background()
	id := newTestCommunity(t, ls)
	aliceId := mustJoin(t, ls, id, testAlice, 150, 2)
	require.NoError(t, ls.Contribute(ctx, Call{Caller: testAlice, Height: 3}, id, 50))
	err := ls.Contribute(ctx, Call{Caller: testAlice, Height: 4}, id, 0)
	require.ErrorIs(t, err, ErrInvalidArgument)
	err = ls.Contribute(ctx, Call{Caller: testBob, Height: 4}, id, 10)
	require.ErrorIs(t, err, ErrNotAuthorized)
	member, err := ls.GetMember(ctx, id, aliceId)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), uint64(member.Contribution))
	community, err := ls.GetCommunity(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), uint64(community.TotalContribution))
	requireCommunityTotals(t, ls, id)
}

func TestContributeOverflow(t *testing.T) {
	ls := newTestLedgerState(t, GovernancePolicy{})
	ctx := context.Background()
	id := newTestCommunity(t, ls)
	mustJoin(t, ls, id, testAlice, math.MaxUint64-100, 2)
	err := ls.Contribute(ctx, Call{Caller: testAlice, Height: 3}, id, 1)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = ls.JoinCommunity(ctx, Call{Caller: testBob, Height: 3}, id, 100)
	require.ErrorIs(t, err, ErrInvalidArgument)
	requireCommunityTotals(t, ls, id)
}

func TestCommunityTotalsAfterSequence(t *testing.T) {
	ls := newTestLedgerState(t, GovernancePolicy{})
	ctx := context.Background()
	id := newTestCommunity(t, ls)
	height := uint64(2)
	for i := range 12 {
		address := fmt.Sprintf("addr_member_%d", i%5)
		contribution := uint64(100 + i*17)
		_, err := ls.JoinCommunity(ctx, Call{Caller: address, Height: height}, id, contribution)
		if err != nil {
			require.ErrorIs(t, err, ErrAlreadyExists)
			require.NoError(t, ls.Contribute(ctx, Call{Caller: address, Height: height}, id, contribution))
		}
		height++
		if i%4 == 3 {
			require.NoError(t, ls.LeaveCommunity(ctx, Call{Caller: address, Height: height}, id))
			height++
		}
		requireCommunityTotals(t, ls, id)
	}
}

func TestLeaveAndRejoin(t *testing.T) {
	ls := newTestLedgerState(t, GovernancePolicy{})
	ctx := context.Background()
	id := newTestCommunity(t, ls)
	aliceId := mustJoin(t, ls, id, testAlice, 150, 2)
	err := ls.LeaveCommunity(ctx, Call{Caller: testFounder, Height: 3}, id)
	require.ErrorIs(t, err, ErrInvalidState)
	require.NoError(t, ls.LeaveCommunity(ctx, Call{Caller: testAlice, Height: 3}, id))
	err = ls.LeaveCommunity(ctx, Call{Caller: testAlice, Height: 4}, id)
	require.ErrorIs(t, err, ErrNotAuthorized)
	community, err := ls.GetCommunity(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), community.ActiveMemberCount)
	// The contribution stays in the pool
	assert.Equal(t, uint64(250), uint64(community.TotalContribution))
	active, err := ls.GetMembers(ctx, id, false)
	require.NoError(t, err)
	assert.Len(t, active, 1)
	rejoinId := mustJoin(t, ls, id, testAlice, 100, 5)
	assert.NotEqual(t, aliceId, rejoinId)
	member, err := ls.GetMemberByAddress(ctx, id, testAlice)
	require.NoError(t, err)
	assert.Equal(t, rejoinId, member.MemberID)
	assert.True(t, member.Active)
	all, err := ls.GetMembers(ctx, id, true)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	requireCommunityTotals(t, ls, id)
}

func TestMakeAndRevokeAdmin(t *testing.T) {
	ls := newTestLedgerState(t, GovernancePolicy{})
	ctx := context.Background()
	id := newTestCommunity(t, ls)
	mustJoin(t, ls, id, testAlice, 100, 2)
	mustJoin(t, ls, id, testBob, 100, 3)
	err := ls.MakeAdmin(ctx, Call{Caller: testAlice, Height: 4}, id, testBob)
	require.ErrorIs(t, err, ErrNotAuthorized)
	err = ls.MakeAdmin(ctx, Call{Caller: testFounder, Height: 4}, id, testCarol)
	require.ErrorIs(t, err, ErrMemberNotFound)
	require.NoError(t, ls.MakeAdmin(ctx, Call{Caller: testFounder, Height: 5}, id, testAlice))
	// Admins can promote others
	require.NoError(t, ls.MakeAdmin(ctx, Call{Caller: testAlice, Height: 6}, id, testBob))
	require.NoError(t, ls.MakeAdmin(ctx, Call{Caller: testAlice, Height: 7}, id, testBob))
	bob, err := ls.GetMemberByAddress(ctx, id, testBob)
	require.NoError(t, err)
	assert.Equal(t, uint8(RoleAdmin), bob.Role)
	// Promoting the founder keeps the founder role
	require.NoError(t, ls.MakeAdmin(ctx, Call{Caller: testAlice, Height: 8}, id, testFounder))
	founder, err := ls.GetMember(ctx, id, founderMemberId)
	require.NoError(t, err)
	assert.Equal(t, uint8(RoleFounder), founder.Role)

	err = ls.RevokeAdmin(ctx, Call{Caller: testAlice, Height: 9}, id, testBob)
	require.ErrorIs(t, err, ErrNotAuthorized)
	err = ls.RevokeAdmin(ctx, Call{Caller: testFounder, Height: 9}, id, testFounder)
	require.ErrorIs(t, err, ErrInvalidState)
	require.NoError(t, ls.RevokeAdmin(ctx, Call{Caller: testFounder, Height: 10}, id, testBob))
	bob, err = ls.GetMemberByAddress(ctx, id, testBob)
	require.NoError(t, err)
	assert.Equal(t, uint8(RoleMember), bob.Role)
	err = ls.MakeAdmin(ctx, Call{Caller: testBob, Height: 11}, id, testAlice)
	require.ErrorIs(t, err, ErrNotAuthorized)
}

func TestUpdateReputationUnknownMember(t *testing.T) {
	ls := newTestLedgerState(t, GovernancePolicy{})
	id := newTestCommunity(t, ls)
	_, err := ls.UpdateReputation(context.Background(), Call{Caller: testFounder, Height: 2}, id, 7, 5)
	require.ErrorIs(t, err, ErrMemberNotFound)
}

func TestUpdateReputationSaturates(t *testing.T) {
	ls := newTestLedgerState(t, GovernancePolicy{})
	ctx := context.Background()
	id := newTestCommunity(t, ls)
	score, err := ls.UpdateReputation(ctx, Call{Caller: testFounder, Height: 2}, id, founderMemberId, math.MaxInt64)
	require.NoError(t, err)
	assert.Equal(t, MaxReputation, score)
	score, err = ls.UpdateReputation(ctx, Call{Caller: testFounder, Height: 3}, id, founderMemberId, 1)
	require.NoError(t, err)
	assert.Equal(t, MaxReputation, score)
	founder, err := ls.GetMember(ctx, id, founderMemberId)
	require.NoError(t, err)
	assert.Equal(t, MaxReputation, founder.Reputation)
	score, err = ls.UpdateReputation(ctx, Call{Caller: testFounder, Height: 4}, id, founderMemberId, math.MinInt64)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), score)
}

func TestApplyDelta(t *testing.T) {
	testDefs := []struct {
		score    uint64
		delta    int64
		expected uint64
	}{
		{score: 50, delta: 10, expected: 60},
		{score: 50, delta: -10, expected: 40},
		{score: 50, delta: -50, expected: 0},
		{score: 50, delta: -51, expected: 0},
		{score: 50, delta: math.MinInt64, expected: 0},
		{score: MaxReputation, delta: -1, expected: MaxReputation - 1},
		{score: MaxReputation - 1, delta: 5, expected: MaxReputation},
		{score: 0, delta: math.MaxInt64, expected: MaxReputation},
		{score: 50, delta: math.MaxInt64, expected: MaxReputation},
	}
	for _, test := range testDefs {
		assert.Equal(
			t,
			test.expected,
			applyDelta(test.score, test.delta),
			"score %d delta %d",
			test.score,
			test.delta,
		)
	}
}

func TestDeactivateCommunity(t *testing.T) {
	ls := newTestLedgerState(t, GovernancePolicy{})
	ctx := context.Background()
	id := newTestCommunity(t, ls)
	mustJoin(t, ls, id, testAlice, 100, 2)
	require.NoError(t, ls.MakeAdmin(ctx, Call{Caller: testFounder, Height: 3}, id, testAlice))
	err := ls.DeactivateCommunity(ctx, Call{Caller: testAlice, Height: 4}, id)
	require.ErrorIs(t, err, ErrNotAuthorized)
	require.NoError(t, ls.DeactivateCommunity(ctx, Call{Caller: testFounder, Height: 5}, id))
	_, err = ls.JoinCommunity(ctx, Call{Caller: testBob, Height: 6}, id, 100)
	require.ErrorIs(t, err, ErrInvalidState)
	err = ls.Contribute(ctx, Call{Caller: testAlice, Height: 6}, id, 1)
	require.ErrorIs(t, err, ErrInvalidState)
	err = ls.DeactivateCommunity(ctx, Call{Caller: testFounder, Height: 6}, id)
	require.ErrorIs(t, err, ErrInvalidState)
	// Queries still work
	community, err := ls.GetCommunity(ctx, id)
	require.NoError(t, err)
	assert.False(t, community.Active)
}

func TestGetMembersUnknownCommunity(t *testing.T) {
	ls := newTestLedgerState(t, GovernancePolicy{})
	_, err := ls.GetMembers(context.Background(), 9, false)
	require.ErrorIs(t, err, ErrCommunityNotFound)
	_, err = ls.GetMember(context.Background(), 9, 1)
	require.ErrorIs(t, err, ErrCommunityNotFound)
}
