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
	"fmt"
	"math/bits"
)

type VotingWeight string

const (
	// VotingWeightContribution weighs each ballot by the voter's contribution
	VotingWeightContribution VotingWeight = "contribution"
	// VotingWeightMember gives every voter one vote
	VotingWeightMember VotingWeight = "member"
)

const (
	DefaultVotingWindow      = 1440
	DefaultQuorumBasisPoints = 2500
	basisPointsScale         = 10000
)

// GovernancePolicy holds the tunables of dispute and expansion voting
type GovernancePolicy struct {
	// VotingWindow is the number of blocks a vote stays open after it starts
	VotingWindow uint64
	// QuorumBasisPoints is the share of the eligible weight, in 1/10000,
	// that must take part for a vote to pass. 0 disables the quorum.
	QuorumBasisPoints uint64
	VotingWeight      VotingWeight
}

func DefaultGovernancePolicy() GovernancePolicy {
	return GovernancePolicy{
		VotingWindow:      DefaultVotingWindow,
		QuorumBasisPoints: DefaultQuorumBasisPoints,
		VotingWeight:      VotingWeightContribution,
	}
}

// withDefaults turns an unset policy into the default one and fills the
// window and weight of a partial one
func (p GovernancePolicy) withDefaults() GovernancePolicy {
	if p == (GovernancePolicy{}) {
		return DefaultGovernancePolicy()
	}
	if p.VotingWindow == 0 {
		p.VotingWindow = DefaultVotingWindow
	}
	if p.VotingWeight == "" {
		p.VotingWeight = VotingWeightContribution
	}
	return p
}

func (p GovernancePolicy) validate() error {
	if p.QuorumBasisPoints > basisPointsScale {
		return fmt.Errorf(
			"quorum of %d basis points exceeds %d",
			p.QuorumBasisPoints,
			basisPointsScale,
		)
	}
	switch p.VotingWeight {
	case VotingWeightContribution, VotingWeightMember:
	default:
		return fmt.Errorf("unknown voting weight %q", p.VotingWeight)
	}
	return nil
}

// QuorumWeight returns the ballot weight needed for quorum out of the
// eligible weight, rounded up
func (p GovernancePolicy) QuorumWeight(eligible uint64) uint64 {
	hi, lo := bits.Mul64(eligible, p.QuorumBasisPoints)
	lo, carry := bits.Add64(lo, basisPointsScale-1, 0)
	hi += carry
	quo, _ := bits.Div64(hi, lo, basisPointsScale)
	return quo
}

// QuorumMet reports whether the cast weight reaches the quorum
func (p GovernancePolicy) QuorumMet(cast uint64, eligible uint64) bool {
	return cast >= p.QuorumWeight(eligible)
}
