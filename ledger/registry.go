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

const founderMemberId = 1

// CommunitySpec describes a community to create. The founder seeds the
// pool with exactly the contribution threshold.
type CommunitySpec struct {
	Name                  string
	Description           string
	MembershipType        string
	ContributionThreshold uint64
}

// CreateCommunity registers a community with the caller as its founder
// and first member, and returns the new community id
func (ls *LedgerState) CreateCommunity(
	ctx context.Context,
	call Call,
	spec CommunitySpec,
) (uint64, error) {
	var communityId uint64
	err := ls.apply(ctx, "create-community", call, func(txn *database.Txn, m *mutation) error {
		if strings.TrimSpace(spec.Name) == "" {
			return newError(CodeInvalidArgument, "community name required")
		}
		if spec.MembershipType == "" {
			spec.MembershipType = models.MembershipTypeOpen
		}
		if spec.MembershipType != models.MembershipTypeOpen &&
			spec.MembershipType != models.MembershipTypeClosed {
			return newError(
				CodeInvalidArgument,
				"unknown membership type %q",
				spec.MembershipType,
			)
		}
		if spec.ContributionThreshold == 0 {
			return newError(
				CodeInvalidArgument,
				"contribution threshold must be positive",
			)
		}
		id, err := ls.db.NextId(database.CounterCommunity, 0, txn)
		if err != nil {
			return err
		}
		memberId, err := ls.db.NextId(database.CounterMember, id, txn)
		if err != nil {
			return err
		}
		community := &models.Community{
			ID:                    id,
			Name:                  spec.Name,
			Description:           spec.Description,
			MembershipType:        spec.MembershipType,
			Founder:               call.Caller,
			ContributionThreshold: types.Uint64(spec.ContributionThreshold),
			TotalContribution:     types.Uint64(spec.ContributionThreshold),
			ActiveMemberCount:     1,
			CreatedHeight:         call.Height,
			Active:                true,
		}
		if err := ls.db.SetCommunity(community, txn); err != nil {
			return err
		}
		founder := &models.Member{
			CommunityID:  id,
			MemberID:     memberId,
			Address:      call.Caller,
			Contribution: types.Uint64(spec.ContributionThreshold),
			Reputation:   DefaultReputation,
			Role:         uint8(RoleFounder),
			JoinHeight:   call.Height,
			Active:       true,
		}
		if err := ls.db.SetMember(founder, txn); err != nil {
			return err
		}
		communityId = id
		m.communityId = id
		m.entityId = id
		m.eventType = CommunityCreatedEventType
		return nil
	})
	if err != nil {
		return 0, err
	}
	return communityId, nil
}

// DeactivateCommunity closes a community for good. Only the founder may
// do this, and every later mutating call on it fails with InvalidState.
func (ls *LedgerState) DeactivateCommunity(
	ctx context.Context,
	call Call,
	communityId uint64,
) error {
	return ls.apply(ctx, "deactivate-community", call, func(txn *database.Txn, m *mutation) error {
		community, err := ls.loadActiveCommunity(txn, communityId)
		if err != nil {
			return err
		}
		if _, err := ls.authorize(txn, community, call.Caller, RoleFounder); err != nil {
			return err
		}
		community.Active = false
		if err := ls.db.SetCommunity(community, txn); err != nil {
			return err
		}
		m.communityId = communityId
		m.entityId = communityId
		m.eventType = CommunityDeactivatedEventType
		return nil
	})
}

// InviteMember lets an address join a closed community
func (ls *LedgerState) InviteMember(
	ctx context.Context,
	call Call,
	communityId uint64,
	address string,
) error {
	return ls.apply(ctx, "invite-member", call, func(txn *database.Txn, m *mutation) error {
		community, err := ls.loadActiveCommunity(txn, communityId)
		if err != nil {
			return err
		}
		inviter, err := ls.authorize(txn, community, call.Caller, RoleAdmin)
		if err != nil {
			return err
		}
		if community.MembershipType != models.MembershipTypeClosed {
			return newError(
				CodeInvalidState,
				"community %d is open to everyone",
				communityId,
			)
		}
		if strings.TrimSpace(address) == "" {
			return newError(CodeInvalidArgument, "address required")
		}
		invitation := &models.Invitation{
			CommunityID: communityId,
			Address:     address,
			InvitedBy:   inviter.MemberID,
			AddedHeight: call.Height,
		}
		if err := ls.db.SetInvitation(invitation, txn); err != nil {
			return err
		}
		m.communityId = communityId
		m.eventType = MemberInvitedEventType
		return nil
	})
}

func (ls *LedgerState) GetCommunity(
	ctx context.Context,
	communityId uint64,
) (*models.Community, error) {
	var ret *models.Community
	err := ls.view(ctx, "get-community", func(txn *database.Txn) error {
		community, err := ls.loadCommunity(txn, communityId)
		ret = community
		return err
	})
	return ret, err
}

func (ls *LedgerState) GetCommunities(
	ctx context.Context,
) ([]models.Community, error) {
	var ret []models.Community
	err := ls.view(ctx, "list-communities", func(txn *database.Txn) error {
		communities, err := ls.db.GetCommunities(txn)
		ret = communities
		return err
	})
	return ret, err
}
