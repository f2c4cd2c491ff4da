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

// ExpansionSpec describes an expansion proposal. With ResourceID set it
// grows that resource, otherwise it creates a resource from Name and
// ResourceType.
type ExpansionSpec struct {
	CommunityID   uint64
	ResourceID    *uint64
	Name          string
	Description   string
	ResourceType  string
	SupplyDelta   uint64
	EstimatedCost uint64
	FundingSource string
}

// ProposeExpansion files an expansion proposal and returns its id
func (ls *LedgerState) ProposeExpansion(
	ctx context.Context,
	call Call,
	spec ExpansionSpec,
) (uint64, error) {
	var proposalId uint64
	err := ls.apply(ctx, "propose-expansion", call, func(txn *database.Txn, m *mutation) error {
		community, err := ls.loadActiveCommunity(txn, spec.CommunityID)
		if err != nil {
			return err
		}
		proposer, err := ls.authorize(txn, community, call.Caller, RoleMember)
		if err != nil {
			return err
		}
		if spec.SupplyDelta == 0 {
			return newError(CodeInvalidArgument, "supply delta must be positive")
		}
		if spec.ResourceID != nil {
			resource, err := ls.loadResource(txn, community.ID, *spec.ResourceID)
			if err != nil {
				return err
			}
			spec.ResourceType = resource.ResourceType
			if spec.Name == "" {
				spec.Name = resource.Name
			}
		} else {
			if strings.TrimSpace(spec.Name) == "" {
				return newError(CodeInvalidArgument, "resource name required")
			}
			if !models.ValidResourceType(spec.ResourceType) {
				return newError(
					CodeInvalidArgument,
					"unknown resource type %q",
					spec.ResourceType,
				)
			}
		}
		id, err := ls.db.NextId(database.CounterProposal, 0, txn)
		if err != nil {
			return err
		}
		proposal := &models.ExpansionProposal{
			ID:            id,
			CommunityID:   community.ID,
			ResourceID:    spec.ResourceID,
			ProposedBy:    proposer.MemberID,
			Name:          spec.Name,
			Description:   spec.Description,
			ResourceType:  spec.ResourceType,
			SupplyDelta:   types.Uint64(spec.SupplyDelta),
			EstimatedCost: types.Uint64(spec.EstimatedCost),
			FundingSource: spec.FundingSource,
			CreatedHeight: call.Height,
			Status:        models.ProposalStatusProposed,
		}
		if err := ls.db.SetExpansionProposal(proposal, txn); err != nil {
			return err
		}
		proposalId = id
		m.communityId = community.ID
		m.entityId = id
		m.eventType = ProposalCreatedEventType
		return nil
	})
	if err != nil {
		return 0, err
	}
	return proposalId, nil
}

// StartExpansionVoting opens voting on a PROPOSED proposal for one voting
// window from the current height
func (ls *LedgerState) StartExpansionVoting(
	ctx context.Context,
	call Call,
	proposalId uint64,
) error {
	return ls.apply(ctx, "start-expansion-voting", call, func(txn *database.Txn, m *mutation) error {
		proposal, community, err := ls.loadProposalForAdmin(txn, call, proposalId)
		if err != nil {
			return err
		}
		if proposal.Status != models.ProposalStatusProposed {
			return newError(
				CodeInvalidState,
				"expansion proposal %d is %s",
				proposalId,
				proposal.Status,
			)
		}
		snapshot, err := ls.openVoting(
			txn,
			models.VoteKindExpansion,
			proposalId,
			community.ID,
			call.Height,
		)
		if err != nil {
			return err
		}
		proposal.Status = models.ProposalStatusVoting
		proposal.VotesFor = 0
		proposal.VotesAgainst = 0
		proposal.EligibleWeight = types.Uint64(snapshot.eligibleWeight)
		proposal.MaxVoterID = snapshot.maxVoterId
		proposal.VotingStartHeight = snapshot.startHeight
		proposal.VotingEndHeight = snapshot.endHeight
		if err := ls.db.SetExpansionProposal(proposal, txn); err != nil {
			return err
		}
		m.communityId = community.ID
		m.entityId = proposalId
		m.eventType = ProposalVotingEventType
		return nil
	})
}

// VoteOnExpansion records the caller's ballot. Each member votes once.
func (ls *LedgerState) VoteOnExpansion(
	ctx context.Context,
	call Call,
	proposalId uint64,
	inFavor bool,
) error {
	return ls.apply(ctx, "vote-on-expansion", call, func(txn *database.Txn, m *mutation) error {
		proposal, err := ls.loadProposal(txn, proposalId)
		if err != nil {
			return err
		}
		community, err := ls.loadActiveCommunity(txn, proposal.CommunityID)
		if err != nil {
			return err
		}
		voter, err := ls.authorize(txn, community, call.Caller, RoleMember)
		if err != nil {
			return err
		}
		weight, err := ls.checkBallot(
			txn,
			models.VoteKindExpansion,
			proposalId,
			voter,
			proposal.Status == models.ProposalStatusVoting,
			proposal.VotingEndHeight,
			call.Height,
		)
		if err != nil {
			return err
		}
		ballot, err := ls.db.GetExpansionBallot(proposalId, voter.MemberID, txn)
		if err != nil {
			return err
		}
		if ballot != nil {
			return newError(
				CodeAlreadyVoted,
				"member %d already voted on expansion proposal %d",
				voter.MemberID,
				proposalId,
			)
		}
		if inFavor {
			tally, err := checkedAdd(uint64(proposal.VotesFor), weight, "votes")
			if err != nil {
				return err
			}
			proposal.VotesFor = types.Uint64(tally)
		} else {
			tally, err := checkedAdd(uint64(proposal.VotesAgainst), weight, "votes")
			if err != nil {
				return err
			}
			proposal.VotesAgainst = types.Uint64(tally)
		}
		err = ls.db.SetExpansionBallot(
			&models.ExpansionBallot{
				ProposalID: proposalId,
				MemberID:   voter.MemberID,
				Weight:     types.Uint64(weight),
				Height:     call.Height,
				InFavor:    inFavor,
			},
			txn,
		)
		if err != nil {
			return err
		}
		if err := ls.db.SetExpansionProposal(proposal, txn); err != nil {
			return err
		}
		m.communityId = community.ID
		m.entityId = proposalId
		m.eventType = ProposalVotedEventType
		return nil
	})
}

// FinalizeExpansionVoting closes voting once the window has passed and
// returns the resulting status. A proposal passes when quorum is met and
// it has more weight for than against.
func (ls *LedgerState) FinalizeExpansionVoting(
	ctx context.Context,
	call Call,
	proposalId uint64,
) (models.ProposalStatus, error) {
	var status models.ProposalStatus
	err := ls.apply(ctx, "finalize-expansion-voting", call, func(txn *database.Txn, m *mutation) error {
		proposal, community, err := ls.loadProposalForAdmin(txn, call, proposalId)
		if err != nil {
			return err
		}
		if proposal.Status != models.ProposalStatusVoting {
			return newError(
				CodeInvalidState,
				"expansion proposal %d is %s",
				proposalId,
				proposal.Status,
			)
		}
		if call.Height <= proposal.VotingEndHeight {
			return newError(
				CodeVotingWindowNotElapsed,
				"voting on expansion proposal %d ends at height %d",
				proposalId,
				proposal.VotingEndHeight,
			)
		}
		votesFor := uint64(proposal.VotesFor)
		votesAgainst := uint64(proposal.VotesAgainst)
		outcome := "rejected"
		switch {
		case !ls.config.Policy.QuorumMet(votesFor+votesAgainst, uint64(proposal.EligibleWeight)):
			proposal.Status = models.ProposalStatusRejected
			outcome = "no_quorum"
		case votesFor > votesAgainst:
			proposal.Status = models.ProposalStatusApproved
			outcome = "approved"
		default:
			proposal.Status = models.ProposalStatusRejected
		}
		if err := ls.db.SetExpansionProposal(proposal, txn); err != nil {
			return err
		}
		status = proposal.Status
		m.communityId = community.ID
		m.entityId = proposalId
		m.eventType = ProposalFinalizedEventType
		m.onCommit(func() {
			ls.metrics.proposalOutcomes.WithLabelValues(outcome).Inc()
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return status, nil
}

// ImplementExpansion applies an APPROVED proposal and returns the id of
// the grown or newly created resource
func (ls *LedgerState) ImplementExpansion(
	ctx context.Context,
	call Call,
	proposalId uint64,
) (uint64, error) {
	var resourceId uint64
	err := ls.apply(ctx, "implement-expansion", call, func(txn *database.Txn, m *mutation) error {
		proposal, community, err := ls.loadProposalForAdmin(txn, call, proposalId)
		if err != nil {
			return err
		}
		if proposal.Status != models.ProposalStatusApproved {
			return newError(
				CodeInvalidState,
				"expansion proposal %d is %s",
				proposalId,
				proposal.Status,
			)
		}
		if proposal.ResourceID != nil {
			resource, err := ls.loadResource(txn, community.ID, *proposal.ResourceID)
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
			if err := expand(resource, uint64(proposal.SupplyDelta)); err != nil {
				return err
			}
			if err := ls.db.SetResource(resource, txn); err != nil {
				return err
			}
			resourceId = resource.ID
		} else {
			id, err := ls.createResource(
				txn,
				community,
				ResourceSpec{
					Name:             proposal.Name,
					Description:      proposal.Description,
					ResourceType:     proposal.ResourceType,
					TotalSupply:      uint64(proposal.SupplyDelta),
					MaxPerAllocation: uint64(proposal.SupplyDelta),
				},
				call.Height,
			)
			if err != nil {
				return err
			}
			resourceId = id
		}
		proposal.ImplementedResourceID = &resourceId
		proposal.Status = models.ProposalStatusImplemented
		if err := ls.db.SetExpansionProposal(proposal, txn); err != nil {
			return err
		}
		m.communityId = community.ID
		m.entityId = proposalId
		m.eventType = ProposalImplementedEventType
		m.onCommit(func() {
			ls.metrics.proposalOutcomes.WithLabelValues("implemented").Inc()
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return resourceId, nil
}

func (ls *LedgerState) loadProposalForAdmin(
	txn *database.Txn,
	call Call,
	proposalId uint64,
) (*models.ExpansionProposal, *models.Community, error) {
	proposal, err := ls.loadProposal(txn, proposalId)
	if err != nil {
		return nil, nil, err
	}
	community, err := ls.loadActiveCommunity(txn, proposal.CommunityID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := ls.authorize(txn, community, call.Caller, RoleAdmin); err != nil {
		return nil, nil, err
	}
	return proposal, community, nil
}

func (ls *LedgerState) GetExpansionProposal(
	ctx context.Context,
	proposalId uint64,
) (*models.ExpansionProposal, error) {
	var ret *models.ExpansionProposal
	err := ls.view(ctx, "get-expansion-proposal", func(txn *database.Txn) error {
		proposal, err := ls.loadProposal(txn, proposalId)
		ret = proposal
		return err
	})
	return ret, err
}

func (ls *LedgerState) GetExpansionProposals(
	ctx context.Context,
	communityId uint64,
) ([]models.ExpansionProposal, error) {
	var ret []models.ExpansionProposal
	err := ls.view(ctx, "list-expansion-proposals", func(txn *database.Txn) error {
		if _, err := ls.loadCommunity(txn, communityId); err != nil {
			return err
		}
		proposals, err := ls.db.GetExpansionProposals(communityId, txn)
		ret = proposals
		return err
	})
	return ret, err
}
