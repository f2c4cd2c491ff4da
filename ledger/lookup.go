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
	"errors"

	"github.com/blinklabs-io/ayllu/database"
	"github.com/blinklabs-io/ayllu/database/models"
)

func (ls *LedgerState) loadCommunity(
	txn *database.Txn,
	communityId uint64,
) (*models.Community, error) {
	community, err := ls.db.GetCommunity(communityId, txn)
	if err != nil {
		if errors.Is(err, models.ErrCommunityNotFound) {
			return nil, newError(
				CodeCommunityNotFound,
				"community %d",
				communityId,
			)
		}
		return nil, err
	}
	return community, nil
}

// loadActiveCommunity refuses communities that were deactivated
func (ls *LedgerState) loadActiveCommunity(
	txn *database.Txn,
	communityId uint64,
) (*models.Community, error) {
	community, err := ls.loadCommunity(txn, communityId)
	if err != nil {
		return nil, err
	}
	if !community.Active {
		return nil, newError(
			CodeInvalidState,
			"community %d is deactivated",
			communityId,
		)
	}
	return community, nil
}

func (ls *LedgerState) loadMember(
	txn *database.Txn,
	communityId uint64,
	memberId uint64,
) (*models.Member, error) {
	member, err := ls.db.GetMember(communityId, memberId, txn)
	if err != nil {
		if errors.Is(err, models.ErrMemberNotFound) {
			return nil, newError(
				CodeMemberNotFound,
				"member %d of community %d",
				memberId,
				communityId,
			)
		}
		return nil, err
	}
	return member, nil
}

func (ls *LedgerState) loadMemberByAddress(
	txn *database.Txn,
	communityId uint64,
	address string,
) (*models.Member, error) {
	member, err := ls.db.GetMemberByAddress(communityId, address, txn)
	if err != nil {
		if errors.Is(err, models.ErrMemberNotFound) {
			return nil, newError(
				CodeMemberNotFound,
				"%s in community %d",
				address,
				communityId,
			)
		}
		return nil, err
	}
	return member, nil
}

// loadResource only finds resources owned by the given community
func (ls *LedgerState) loadResource(
	txn *database.Txn,
	communityId uint64,
	resourceId uint64,
) (*models.Resource, error) {
	resource, err := ls.db.GetResource(resourceId, txn)
	if err != nil {
		if errors.Is(err, models.ErrResourceNotFound) {
			return nil, newError(CodeResourceNotFound, "resource %d", resourceId)
		}
		return nil, err
	}
	if resource.CommunityID != communityId {
		return nil, newError(
			CodeResourceNotFound,
			"resource %d in community %d",
			resourceId,
			communityId,
		)
	}
	return resource, nil
}

func (ls *LedgerState) loadRequest(
	txn *database.Txn,
	requestId uint64,
) (*models.AllocationRequest, error) {
	request, err := ls.db.GetAllocationRequest(requestId, txn)
	if err != nil {
		if errors.Is(err, models.ErrAllocationRequestNotFound) {
			return nil, newError(
				CodeRequestNotFound,
				"allocation request %d",
				requestId,
			)
		}
		return nil, err
	}
	return request, nil
}

func (ls *LedgerState) loadAllocation(
	txn *database.Txn,
	allocationId uint64,
) (*models.Allocation, error) {
	allocation, err := ls.db.GetAllocation(allocationId, txn)
	if err != nil {
		if errors.Is(err, models.ErrAllocationNotFound) {
			return nil, newError(
				CodeAllocationNotFound,
				"allocation %d",
				allocationId,
			)
		}
		return nil, err
	}
	return allocation, nil
}

func (ls *LedgerState) loadDispute(
	txn *database.Txn,
	disputeId uint64,
) (*models.Dispute, error) {
	dispute, err := ls.db.GetDispute(disputeId, txn)
	if err != nil {
		if errors.Is(err, models.ErrDisputeNotFound) {
			return nil, newError(CodeDisputeNotFound, "dispute %d", disputeId)
		}
		return nil, err
	}
	return dispute, nil
}

func (ls *LedgerState) loadProposal(
	txn *database.Txn,
	proposalId uint64,
) (*models.ExpansionProposal, error) {
	proposal, err := ls.db.GetExpansionProposal(proposalId, txn)
	if err != nil {
		if errors.Is(err, models.ErrExpansionProposalNotFound) {
			return nil, newError(
				CodeProposalNotFound,
				"expansion proposal %d",
				proposalId,
			)
		}
		return nil, err
	}
	return proposal, nil
}

// checkedAdd returns a+b or an InvalidArgument error on overflow
func checkedAdd(a uint64, b uint64, what string) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, newError(CodeInvalidArgument, "%s overflows", what)
	}
	return sum, nil
}

// wrapNotFound turns a storage not-found sentinel into a ledger error
func wrapNotFound(
	err error,
	sentinel error,
	code Code,
	format string,
	args ...any,
) error {
	if errors.Is(err, sentinel) {
		return newError(code, format, args...)
	}
	return err
}
