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

// Resolutions recorded by FinalizeDisputeVoting
const (
	ResolutionUpheld           = "upheld"
	ResolutionDismissed        = "dismissed"
	ResolutionQuorumNotReached = "dismissed: quorum not reached"
)

// DisputeSpec describes a dispute. Each reference is optional and must
// belong to the community when set.
type DisputeSpec struct {
	CommunityID     uint64
	ResourceID      *uint64
	AllocationID    *uint64
	AgainstMemberID *uint64
	DisputeType     string
	Description     string
}

// RaiseDispute opens a dispute and returns its id
func (ls *LedgerState) RaiseDispute(
	ctx context.Context,
	call Call,
	spec DisputeSpec,
) (uint64, error) {
	var disputeId uint64
	err := ls.apply(ctx, "raise-dispute", call, func(txn *database.Txn, m *mutation) error {
		community, err := ls.loadActiveCommunity(txn, spec.CommunityID)
		if err != nil {
			return err
		}
		raiser, err := ls.authorize(txn, community, call.Caller, RoleMember)
		if err != nil {
			return err
		}
		if strings.TrimSpace(spec.DisputeType) == "" {
			return newError(CodeInvalidArgument, "dispute type required")
		}
		if spec.ResourceID != nil {
			if _, err := ls.loadResource(txn, community.ID, *spec.ResourceID); err != nil {
				return err
			}
		}
		if spec.AllocationID != nil {
			allocation, err := ls.loadAllocation(txn, *spec.AllocationID)
			if err != nil {
				return err
			}
			if allocation.CommunityID != community.ID {
				return newError(
					CodeAllocationNotFound,
					"allocation %d in community %d",
					allocation.ID,
					community.ID,
				)
			}
		}
		if spec.AgainstMemberID != nil {
			if _, err := ls.loadMember(txn, community.ID, *spec.AgainstMemberID); err != nil {
				return err
			}
		}
		id, err := ls.db.NextId(database.CounterDispute, 0, txn)
		if err != nil {
			return err
		}
		dispute := &models.Dispute{
			ID:              id,
			CommunityID:     community.ID,
			ResourceID:      spec.ResourceID,
			AllocationID:    spec.AllocationID,
			AgainstMemberID: spec.AgainstMemberID,
			RaisedBy:        raiser.MemberID,
			DisputeType:     spec.DisputeType,
			Description:     spec.Description,
			CreatedHeight:   call.Height,
			Status:          models.DisputeStatusOpen,
		}
		if err := ls.db.SetDispute(dispute, txn); err != nil {
			return err
		}
		disputeId = id
		m.communityId = community.ID
		m.entityId = id
		m.eventType = DisputeRaisedEventType
		return nil
	})
	if err != nil {
		return 0, err
	}
	return disputeId, nil
}

// ResolveDispute lets an admin settle an OPEN or VOTING dispute directly
func (ls *LedgerState) ResolveDispute(
	ctx context.Context,
	call Call,
	disputeId uint64,
	resolution string,
) error {
	return ls.apply(ctx, "resolve-dispute", call, func(txn *database.Txn, m *mutation) error {
		dispute, community, err := ls.loadDisputeForAdmin(txn, call, disputeId)
		if err != nil {
			return err
		}
		if dispute.Status != models.DisputeStatusOpen &&
			dispute.Status != models.DisputeStatusVoting {
			return newError(
				CodeInvalidState,
				"dispute %d is %s",
				disputeId,
				dispute.Status,
			)
		}
		if err := ls.resolveDispute(txn, dispute, resolution, call.Height); err != nil {
			return err
		}
		m.communityId = community.ID
		m.entityId = disputeId
		m.eventType = DisputeResolvedEventType
		m.onCommit(func() {
			ls.metrics.disputeOutcomes.WithLabelValues("admin").Inc()
		})
		return nil
	})
}

// StartDisputeVoting puts an OPEN dispute to a member vote
func (ls *LedgerState) StartDisputeVoting(
	ctx context.Context,
	call Call,
	disputeId uint64,
) error {
	return ls.apply(ctx, "start-dispute-voting", call, func(txn *database.Txn, m *mutation) error {
		dispute, community, err := ls.loadDisputeForAdmin(txn, call, disputeId)
		if err != nil {
			return err
		}
		if dispute.Status != models.DisputeStatusOpen {
			return newError(
				CodeInvalidState,
				"dispute %d is %s",
				disputeId,
				dispute.Status,
			)
		}
		snapshot, err := ls.openVoting(
			txn,
			models.VoteKindDispute,
			disputeId,
			community.ID,
			call.Height,
		)
		if err != nil {
			return err
		}
		dispute.Status = models.DisputeStatusVoting
		dispute.VotesUphold = 0
		dispute.VotesDismiss = 0
		dispute.EligibleWeight = types.Uint64(snapshot.eligibleWeight)
		dispute.MaxVoterID = snapshot.maxVoterId
		dispute.VotingStartHeight = snapshot.startHeight
		dispute.VotingEndHeight = snapshot.endHeight
		if err := ls.db.SetDispute(dispute, txn); err != nil {
			return err
		}
		m.communityId = community.ID
		m.entityId = disputeId
		m.eventType = DisputeVotingEventType
		return nil
	})
}

// VoteOnDispute records the caller's ballot to uphold or dismiss
func (ls *LedgerState) VoteOnDispute(
	ctx context.Context,
	call Call,
	disputeId uint64,
	uphold bool,
) error {
	return ls.apply(ctx, "vote-on-dispute", call, func(txn *database.Txn, m *mutation) error {
		dispute, err := ls.loadDispute(txn, disputeId)
		if err != nil {
			return err
		}
		community, err := ls.loadActiveCommunity(txn, dispute.CommunityID)
		if err != nil {
			return err
		}
		voter, err := ls.authorize(txn, community, call.Caller, RoleMember)
		if err != nil {
			return err
		}
		weight, err := ls.checkBallot(
			txn,
			models.VoteKindDispute,
			disputeId,
			voter,
			dispute.Status == models.DisputeStatusVoting,
			dispute.VotingEndHeight,
			call.Height,
		)
		if err != nil {
			return err
		}
		ballot, err := ls.db.GetDisputeBallot(disputeId, voter.MemberID, txn)
		if err != nil {
			return err
		}
		if ballot != nil {
			return newError(
				CodeAlreadyVoted,
				"member %d already voted on dispute %d",
				voter.MemberID,
				disputeId,
			)
		}
		if uphold {
			tally, err := checkedAdd(uint64(dispute.VotesUphold), weight, "votes")
			if err != nil {
				return err
			}
			dispute.VotesUphold = types.Uint64(tally)
		} else {
			tally, err := checkedAdd(uint64(dispute.VotesDismiss), weight, "votes")
			if err != nil {
				return err
			}
			dispute.VotesDismiss = types.Uint64(tally)
		}
		err = ls.db.SetDisputeBallot(
			&models.DisputeBallot{
				DisputeID: disputeId,
				MemberID:  voter.MemberID,
				Weight:    types.Uint64(weight),
				Height:    call.Height,
				Uphold:    uphold,
			},
			txn,
		)
		if err != nil {
			return err
		}
		if err := ls.db.SetDispute(dispute, txn); err != nil {
			return err
		}
		m.communityId = community.ID
		m.entityId = disputeId
		m.eventType = DisputeVotedEventType
		return nil
	})
}

// FinalizeDisputeVoting resolves a dispute from its ballots once the
// voting window has passed, and returns the resolution
func (ls *LedgerState) FinalizeDisputeVoting(
	ctx context.Context,
	call Call,
	disputeId uint64,
) (string, error) {
	var resolution string
	err := ls.apply(ctx, "finalize-dispute-voting", call, func(txn *database.Txn, m *mutation) error {
		dispute, community, err := ls.loadDisputeForAdmin(txn, call, disputeId)
		if err != nil {
			return err
		}
		if dispute.Status != models.DisputeStatusVoting {
			return newError(
				CodeInvalidState,
				"dispute %d is %s",
				disputeId,
				dispute.Status,
			)
		}
		if call.Height <= dispute.VotingEndHeight {
			return newError(
				CodeVotingWindowNotElapsed,
				"voting on dispute %d ends at height %d",
				disputeId,
				dispute.VotingEndHeight,
			)
		}
		uphold := uint64(dispute.VotesUphold)
		dismiss := uint64(dispute.VotesDismiss)
		// Each member votes once, so the tallies sum to at most the pool
		switch {
		case !ls.config.Policy.QuorumMet(uphold+dismiss, uint64(dispute.EligibleWeight)):
			resolution = ResolutionQuorumNotReached
		case uphold > dismiss:
			resolution = ResolutionUpheld
		default:
			resolution = ResolutionDismissed
		}
		if err := ls.resolveDispute(txn, dispute, resolution, call.Height); err != nil {
			return err
		}
		outcome := resolution
		if outcome == ResolutionQuorumNotReached {
			outcome = "no_quorum"
		}
		m.communityId = community.ID
		m.entityId = disputeId
		m.eventType = DisputeResolvedEventType
		m.onCommit(func() {
			ls.metrics.disputeOutcomes.WithLabelValues(outcome).Inc()
		})
		return nil
	})
	if err != nil {
		return "", err
	}
	return resolution, nil
}

func (ls *LedgerState) loadDisputeForAdmin(
	txn *database.Txn,
	call Call,
	disputeId uint64,
) (*models.Dispute, *models.Community, error) {
	dispute, err := ls.loadDispute(txn, disputeId)
	if err != nil {
		return nil, nil, err
	}
	community, err := ls.loadActiveCommunity(txn, dispute.CommunityID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := ls.authorize(txn, community, call.Caller, RoleAdmin); err != nil {
		return nil, nil, err
	}
	return dispute, community, nil
}

func (ls *LedgerState) resolveDispute(
	txn *database.Txn,
	dispute *models.Dispute,
	resolution string,
	height uint64,
) error {
	dispute.Status = models.DisputeStatusResolved
	dispute.Resolution = resolution
	dispute.ResolvedHeight = &height
	return ls.db.SetDispute(dispute, txn)
}

func (ls *LedgerState) GetDispute(
	ctx context.Context,
	disputeId uint64,
) (*models.Dispute, error) {
	var ret *models.Dispute
	err := ls.view(ctx, "get-dispute", func(txn *database.Txn) error {
		dispute, err := ls.loadDispute(txn, disputeId)
		ret = dispute
		return err
	})
	return ret, err
}

func (ls *LedgerState) GetDisputes(
	ctx context.Context,
	communityId uint64,
) ([]models.Dispute, error) {
	var ret []models.Dispute
	err := ls.view(ctx, "list-disputes", func(txn *database.Txn) error {
		if _, err := ls.loadCommunity(txn, communityId); err != nil {
			return err
		}
		disputes, err := ls.db.GetDisputes(communityId, txn)
		ret = disputes
		return err
	})
	return ret, err
}
