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
	"errors"
	"math"

	"github.com/blinklabs-io/ayllu/database"
	"github.com/blinklabs-io/ayllu/database/models"
	"github.com/blinklabs-io/ayllu/database/types"
)

const (
	// DefaultReputation is the reputation score of a new member
	DefaultReputation = 50
	// MaxReputation is where positive reputation deltas saturate
	MaxReputation uint64 = math.MaxInt64
)

// JoinCommunity adds the caller to a community with an initial
// contribution and returns the new member id
func (ls *LedgerState) JoinCommunity(
	ctx context.Context,
	call Call,
	communityId uint64,
	contribution uint64,
) (uint64, error) {
	var memberId uint64
	err := ls.apply(ctx, "join-community", call, func(txn *database.Txn, m *mutation) error {
		community, err := ls.loadActiveCommunity(txn, communityId)
		if err != nil {
			return err
		}
		if contribution < uint64(community.ContributionThreshold) {
			return newError(
				CodeInsufficientContribution,
				"contribution %d is below the threshold %d",
				contribution,
				community.ContributionThreshold,
			)
		}
		existing, err := ls.db.GetMemberByAddress(communityId, call.Caller, txn)
		if err != nil && !errors.Is(err, models.ErrMemberNotFound) {
			return err
		}
		if existing != nil && existing.Active {
			return newError(
				CodeAlreadyExists,
				"%s is already member %d",
				call.Caller,
				existing.MemberID,
			)
		}
		if community.MembershipType == models.MembershipTypeClosed {
			invitation, err := ls.db.GetInvitation(communityId, call.Caller, txn)
			if err != nil {
				return err
			}
			if invitation == nil {
				return newError(
					CodeNotAuthorized,
					"community %d requires an invitation",
					communityId,
				)
			}
		}
		total, err := checkedAdd(
			uint64(community.TotalContribution),
			contribution,
			"total contribution",
		)
		if err != nil {
			return err
		}
		id, err := ls.db.NextId(database.CounterMember, communityId, txn)
		if err != nil {
			return err
		}
		member := &models.Member{
			CommunityID:  communityId,
			MemberID:     id,
			Address:      call.Caller,
			Contribution: types.Uint64(contribution),
			Reputation:   DefaultReputation,
			Role:         uint8(RoleMember),
			JoinHeight:   call.Height,
			Active:       true,
		}
		if err := ls.db.SetMember(member, txn); err != nil {
			return err
		}
		community.TotalContribution = types.Uint64(total)
		community.ActiveMemberCount++
		if err := ls.db.SetCommunity(community, txn); err != nil {
			return err
		}
		memberId = id
		m.communityId = communityId
		m.entityId = id
		m.eventType = MemberJoinedEventType
		return nil
	})
	if err != nil {
		return 0, err
	}
	return memberId, nil
}

// LeaveCommunity deactivates the caller's membership. The contribution
// stays in the pool. The founder cannot leave.
func (ls *LedgerState) LeaveCommunity(
	ctx context.Context,
	call Call,
	communityId uint64,
) error {
	return ls.apply(ctx, "leave-community", call, func(txn *database.Txn, m *mutation) error {
		community, err := ls.loadActiveCommunity(txn, communityId)
		if err != nil {
			return err
		}
		member, err := ls.authorize(txn, community, call.Caller, RoleMember)
		if err != nil {
			return err
		}
		if member.MemberID == founderMemberId {
			return newError(CodeInvalidState, "the founder cannot leave")
		}
		member.Active = false
		if err := ls.db.SetMember(member, txn); err != nil {
			return err
		}
		community.ActiveMemberCount--
		if err := ls.db.SetCommunity(community, txn); err != nil {
			return err
		}
		m.communityId = communityId
		m.entityId = member.MemberID
		m.eventType = MemberLeftEventType
		return nil
	})
}

// Contribute adds to the caller's contribution and to the community pool
func (ls *LedgerState) Contribute(
	ctx context.Context,
	call Call,
	communityId uint64,
	amount uint64,
) error {
	return ls.apply(ctx, "contribute", call, func(txn *database.Txn, m *mutation) error {
		community, err := ls.loadActiveCommunity(txn, communityId)
		if err != nil {
			return err
		}
		member, err := ls.authorize(txn, community, call.Caller, RoleMember)
		if err != nil {
			return err
		}
		if amount == 0 {
			return newError(CodeInvalidArgument, "contribution must be positive")
		}
		// The pool is the sum of all contributions, so it overflows first
		total, err := checkedAdd(
			uint64(community.TotalContribution),
			amount,
			"total contribution",
		)
		if err != nil {
			return err
		}
		member.Contribution += types.Uint64(amount)
		if err := ls.db.SetMember(member, txn); err != nil {
			return err
		}
		community.TotalContribution = types.Uint64(total)
		if err := ls.db.SetCommunity(community, txn); err != nil {
			return err
		}
		m.communityId = communityId
		m.entityId = member.MemberID
		m.eventType = MemberContributedEventType
		return nil
	})
}

// MakeAdmin promotes an active member to admin. Promoting an admin or the
// founder changes nothing.
func (ls *LedgerState) MakeAdmin(
	ctx context.Context,
	call Call,
	communityId uint64,
	targetAddress string,
) error {
	return ls.apply(ctx, "make-admin", call, func(txn *database.Txn, m *mutation) error {
		community, err := ls.loadActiveCommunity(txn, communityId)
		if err != nil {
			return err
		}
		if _, err := ls.authorize(txn, community, call.Caller, RoleAdmin); err != nil {
			return err
		}
		target, err := ls.loadActiveMemberByAddress(txn, communityId, targetAddress)
		if err != nil {
			return err
		}
		if Role(target.Role) < RoleAdmin {
			target.Role = uint8(RoleAdmin)
			if err := ls.db.SetMember(target, txn); err != nil {
				return err
			}
		}
		m.communityId = communityId
		m.entityId = target.MemberID
		m.eventType = MemberRoleChangedEventType
		return nil
	})
}

// RevokeAdmin returns an admin to plain membership. Only the founder may
// do this and the founder keeps its role.
func (ls *LedgerState) RevokeAdmin(
	ctx context.Context,
	call Call,
	communityId uint64,
	targetAddress string,
) error {
	return ls.apply(ctx, "revoke-admin", call, func(txn *database.Txn, m *mutation) error {
		community, err := ls.loadActiveCommunity(txn, communityId)
		if err != nil {
			return err
		}
		if _, err := ls.authorize(txn, community, call.Caller, RoleFounder); err != nil {
			return err
		}
		target, err := ls.loadActiveMemberByAddress(txn, communityId, targetAddress)
		if err != nil {
			return err
		}
		if target.MemberID == founderMemberId {
			return newError(CodeInvalidState, "the founder cannot be demoted")
		}
		if Role(target.Role) != RoleMember {
			target.Role = uint8(RoleMember)
			if err := ls.db.SetMember(target, txn); err != nil {
				return err
			}
		}
		m.communityId = communityId
		m.entityId = target.MemberID
		m.eventType = MemberRoleChangedEventType
		return nil
	})
}

// UpdateReputation applies a signed delta to a member's reputation and
// returns the new score. The score never drops below 0.
func (ls *LedgerState) UpdateReputation(
	ctx context.Context,
	call Call,
	communityId uint64,
	memberId uint64,
	delta int64,
) (uint64, error) {
	var score uint64
	err := ls.apply(ctx, "update-reputation", call, func(txn *database.Txn, m *mutation) error {
		community, err := ls.loadActiveCommunity(txn, communityId)
		if err != nil {
			return err
		}
		if _, err := ls.authorize(txn, community, call.Caller, RoleAdmin); err != nil {
			return err
		}
		member, err := ls.loadMember(txn, communityId, memberId)
		if err != nil {
			return err
		}
		member.Reputation = applyDelta(member.Reputation, delta)
		if err := ls.db.SetMember(member, txn); err != nil {
			return err
		}
		score = member.Reputation
		m.communityId = communityId
		m.entityId = memberId
		m.eventType = MemberReputationEventType
		return nil
	})
	if err != nil {
		return 0, err
	}
	return score, nil
}

// applyDelta clamps at 0 below and at MaxReputation above
func applyDelta(score uint64, delta int64) uint64 {
	if delta < 0 {
		// Negating math.MinInt64 overflows, so go through uint64
		dec := uint64(-(delta + 1)) + 1
		if dec >= score {
			return 0
		}
		return score - dec
	}
	inc := uint64(delta)
	if score >= MaxReputation || inc > MaxReputation-score {
		return MaxReputation
	}
	return score + inc
}

func (ls *LedgerState) loadActiveMemberByAddress(
	txn *database.Txn,
	communityId uint64,
	address string,
) (*models.Member, error) {
	member, err := ls.loadMemberByAddress(txn, communityId, address)
	if err != nil {
		return nil, err
	}
	if !member.Active {
		return nil, newError(
			CodeMemberNotFound,
			"%s is no longer a member of community %d",
			address,
			communityId,
		)
	}
	return member, nil
}

func (ls *LedgerState) GetMember(
	ctx context.Context,
	communityId uint64,
	memberId uint64,
) (*models.Member, error) {
	var ret *models.Member
	err := ls.view(ctx, "get-member", func(txn *database.Txn) error {
		if _, err := ls.loadCommunity(txn, communityId); err != nil {
			return err
		}
		member, err := ls.loadMember(txn, communityId, memberId)
		ret = member
		return err
	})
	return ret, err
}

func (ls *LedgerState) GetMemberByAddress(
	ctx context.Context,
	communityId uint64,
	address string,
) (*models.Member, error) {
	var ret *models.Member
	err := ls.view(ctx, "get-member-by-address", func(txn *database.Txn) error {
		if _, err := ls.loadCommunity(txn, communityId); err != nil {
			return err
		}
		member, err := ls.loadMemberByAddress(txn, communityId, address)
		ret = member
		return err
	})
	return ret, err
}

func (ls *LedgerState) GetMembers(
	ctx context.Context,
	communityId uint64,
	includeInactive bool,
) ([]models.Member, error) {
	var ret []models.Member
	err := ls.view(ctx, "list-members", func(txn *database.Txn) error {
		if _, err := ls.loadCommunity(txn, communityId); err != nil {
			return err
		}
		members, err := ls.db.GetMembers(communityId, includeInactive, txn)
		ret = members
		return err
	})
	return ret, err
}
