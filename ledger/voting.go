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
	"github.com/blinklabs-io/ayllu/database"
	"github.com/blinklabs-io/ayllu/database/models"
	"github.com/blinklabs-io/ayllu/database/types"
)

// ballotWeight is what one member's ballot counts for under the policy
func (p GovernancePolicy) ballotWeight(member *models.Member) uint64 {
	if p.VotingWeight == VotingWeightMember {
		return 1
	}
	return uint64(member.Contribution)
}

// votingSnapshot summarizes the voter weights frozen when a vote opens.
// Members who join later are not part of it.
type votingSnapshot struct {
	eligibleWeight uint64
	maxVoterId     uint64
	startHeight    uint64
	endHeight      uint64
}

// openVoting freezes the weight of every active member of the community
// for the vote identified by kind and voteId
func (ls *LedgerState) openVoting(
	txn *database.Txn,
	kind models.VoteKind,
	voteId uint64,
	communityId uint64,
	height uint64,
) (votingSnapshot, error) {
	var ret votingSnapshot
	members, err := ls.db.GetMembers(communityId, false, txn)
	if err != nil {
		return ret, err
	}
	policy := ls.config.Policy
	weights := make([]models.VoterWeight, 0, len(members))
	for i := range members {
		weight := policy.ballotWeight(&members[i])
		ret.eligibleWeight, err = checkedAdd(
			ret.eligibleWeight,
			weight,
			"eligible weight",
		)
		if err != nil {
			return ret, err
		}
		weights = append(weights, models.VoterWeight{
			Kind:     kind,
			VoteID:   voteId,
			MemberID: members[i].MemberID,
			Weight:   types.Uint64(weight),
		})
	}
	if err := ls.db.SetVoterWeights(weights, txn); err != nil {
		return ret, err
	}
	ret.maxVoterId, err = ls.db.CurrentId(database.CounterMember, communityId, txn)
	if err != nil {
		return ret, err
	}
	ret.startHeight = height
	// The window end saturates at the largest storable height
	if policy.VotingWindow > MaxHeight-height {
		ret.endHeight = MaxHeight
	} else {
		ret.endHeight = height + policy.VotingWindow
	}
	return ret, nil
}

// checkBallot validates a ballot against an open vote and returns the
// voter's weight from the snapshot taken when the vote opened
func (ls *LedgerState) checkBallot(
	txn *database.Txn,
	kind models.VoteKind,
	voteId uint64,
	voter *models.Member,
	voting bool,
	endHeight uint64,
	height uint64,
) (uint64, error) {
	if !voting || height > endHeight {
		return 0, newError(
			CodeVotingNotOpen,
			"voting is not open at height %d",
			height,
		)
	}
	snapshot, err := ls.db.GetVoterWeight(kind, voteId, voter.MemberID, txn)
	if err != nil {
		return 0, err
	}
	if snapshot == nil {
		return 0, newError(
			CodeNotAuthorized,
			"member %d was not an active member when voting started",
			voter.MemberID,
		)
	}
	return uint64(snapshot.Weight), nil
}
