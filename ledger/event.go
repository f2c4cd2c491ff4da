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
	"github.com/blinklabs-io/ayllu/event"
)

const (
	CommunityCreatedEventType     event.EventType = "ledger.community.created"
	CommunityDeactivatedEventType event.EventType = "ledger.community.deactivated"
	MemberJoinedEventType         event.EventType = "ledger.member.joined"
	MemberInvitedEventType        event.EventType = "ledger.member.invited"
	MemberLeftEventType           event.EventType = "ledger.member.left"
	MemberContributedEventType    event.EventType = "ledger.member.contributed"
	MemberRoleChangedEventType    event.EventType = "ledger.member.role_changed"
	MemberReputationEventType     event.EventType = "ledger.member.reputation_updated"
	ResourceAddedEventType        event.EventType = "ledger.resource.added"
	ResourceDeactivatedEventType  event.EventType = "ledger.resource.deactivated"
	ResourceExpandedEventType     event.EventType = "ledger.resource.expanded"
	AllocationRequestedEventType  event.EventType = "ledger.allocation.requested"
	AllocationApprovedEventType   event.EventType = "ledger.allocation.approved"
	AllocationRejectedEventType   event.EventType = "ledger.allocation.rejected"
	AllocationCompletedEventType  event.EventType = "ledger.allocation.completed"
	DisputeRaisedEventType        event.EventType = "ledger.dispute.raised"
	DisputeVotingEventType        event.EventType = "ledger.dispute.voting_started"
	DisputeVotedEventType         event.EventType = "ledger.dispute.voted"
	DisputeResolvedEventType      event.EventType = "ledger.dispute.resolved"
	ProposalCreatedEventType      event.EventType = "ledger.proposal.created"
	ProposalVotingEventType       event.EventType = "ledger.proposal.voting_started"
	ProposalVotedEventType        event.EventType = "ledger.proposal.voted"
	ProposalFinalizedEventType    event.EventType = "ledger.proposal.finalized"
	ProposalImplementedEventType  event.EventType = "ledger.proposal.implemented"
)

// LedgerEvent is the payload of every ledger event. EntityID is the id of
// the record the call created or changed.
type LedgerEvent struct {
	Operation   string
	Caller      string
	Height      uint64
	CommunityID uint64
	EntityID    uint64
	// Rejected is set when the call committed a rejection, such as an
	// allocation request refused by policy
	Rejected bool
}
