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

package metadata

import (
	"fmt"

	"github.com/blinklabs-io/ayllu/database/models"
	"github.com/blinklabs-io/ayllu/database/plugin"
	_ "github.com/blinklabs-io/ayllu/database/plugin/metadata/sqlite"
	"github.com/blinklabs-io/ayllu/database/types"
	"gorm.io/gorm"
)

// MetadataStore holds the entity tables of the ledger. Getters return
// nil with no error when the row does not exist.
type MetadataStore interface {
	// Database
	Close() error
	DB() *gorm.DB
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
	Transaction() types.Txn

	// Communities
	GetCommunity(uint64, types.Txn) (*models.Community, error)
	GetCommunities(types.Txn) ([]models.Community, error)
	SetCommunity(*models.Community, types.Txn) error
	GetInvitation(
		uint64, // communityId
		string, // address
		types.Txn,
	) (*models.Invitation, error)
	SetInvitation(*models.Invitation, types.Txn) error

	// Members
	GetMember(
		uint64, // communityId
		uint64, // memberId
		types.Txn,
	) (*models.Member, error)
	GetMemberByAddress(
		uint64, // communityId
		string, // address
		types.Txn,
	) (*models.Member, error)
	GetMembers(
		uint64, // communityId
		bool, // includeInactive
		types.Txn,
	) ([]models.Member, error)
	SetMember(*models.Member, types.Txn) error

	// Resources
	GetResource(uint64, types.Txn) (*models.Resource, error)
	GetResources(uint64, types.Txn) ([]models.Resource, error)
	SetResource(*models.Resource, types.Txn) error

	// Allocations
	GetAllocationRequest(uint64, types.Txn) (*models.AllocationRequest, error)
	GetAllocationRequests(uint64, types.Txn) ([]models.AllocationRequest, error)
	SetAllocationRequest(*models.AllocationRequest, types.Txn) error
	GetAllocation(uint64, types.Txn) (*models.Allocation, error)
	GetAllocations(uint64, types.Txn) ([]models.Allocation, error)
	SetAllocation(*models.Allocation, types.Txn) error
	GetAllocationCooldown(
		uint64, // resourceId
		uint64, // memberId
		types.Txn,
	) (*models.AllocationCooldown, error)
	SetAllocationCooldown(*models.AllocationCooldown, types.Txn) error

	// Disputes
	GetDispute(uint64, types.Txn) (*models.Dispute, error)
	GetDisputes(uint64, types.Txn) ([]models.Dispute, error)
	SetDispute(*models.Dispute, types.Txn) error
	GetDisputeBallot(
		uint64, // disputeId
		uint64, // memberId
		types.Txn,
	) (*models.DisputeBallot, error)
	SetDisputeBallot(*models.DisputeBallot, types.Txn) error

	// Expansion proposals
	GetExpansionProposal(uint64, types.Txn) (*models.ExpansionProposal, error)
	GetExpansionProposals(uint64, types.Txn) ([]models.ExpansionProposal, error)
	SetExpansionProposal(*models.ExpansionProposal, types.Txn) error
	GetExpansionBallot(
		uint64, // proposalId
		uint64, // memberId
		types.Txn,
	) (*models.ExpansionBallot, error)
	SetExpansionBallot(*models.ExpansionBallot, types.Txn) error

	// Voter weight snapshots
	GetVoterWeight(
		models.VoteKind,
		uint64, // voteId
		uint64, // memberId
		types.Txn,
	) (*models.VoterWeight, error)
	SetVoterWeights([]models.VoterWeight, types.Txn) error
}

// New returns the started metadata plugin selected by name
func New(
	pluginName string,
	ctx plugin.PluginContext,
) (MetadataStore, error) {
	p, err := plugin.StartPlugin(plugin.PluginTypeMetadata, pluginName, ctx)
	if err != nil {
		return nil, err
	}
	metadataStore, ok := p.(MetadataStore)
	if !ok {
		_ = p.Stop()
		return nil, fmt.Errorf(
			"plugin '%s' does not implement MetadataStore interface",
			pluginName,
		)
	}
	return metadataStore, nil
}
