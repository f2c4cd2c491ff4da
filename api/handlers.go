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

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/blinklabs-io/ayllu/ledger"
	"github.com/gin-gonic/gin"
)

const defaultJournalLimit = 100

// call builds the ledger call for an authenticated request
func (a *Api) call(c *gin.Context) ledger.Call {
	return ledger.Call{
		Caller: c.GetString(contextIdentityKey),
		Height: a.currentHeight(),
	}
}

// currentHeight falls back to the ledger tip when no clock is configured
func (a *Api) currentHeight() uint64 {
	if a.heights != nil {
		return a.heights.CurrentHeight()
	}
	tip, err := a.ledger.TipHeight()
	if err != nil {
		a.logger.Warn("failed to load tip height", "error", err)
	}
	return tip
}

func uintParam(c *gin.Context, name string) (uint64, error) {
	val, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errBadParams, name)
	}
	return val, nil
}

func bindJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return fmt.Errorf("%w: %w", errBadParams, err)
	}
	return nil
}

// respond writes ret, or the error when there is one
func (a *Api) respond(c *gin.Context, status int, ret any, err error) {
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(status, ret)
}

func (a *Api) handleHealth(c *gin.Context) {
	tip, err := a.ledger.TipHeight()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{IsHealthy: true, TipHeight: tip})
}

func (a *Api) handleTip(c *gin.Context) {
	tip, err := a.ledger.TipHeight()
	a.respond(
		c,
		http.StatusOK,
		TipResponse{TipHeight: tip, CurrentHeight: a.currentHeight()},
		err,
	)
}

func (a *Api) handleJournal(c *gin.Context) {
	var fromHeight uint64
	limit := defaultJournalLimit
	if val := c.Query("from"); val != "" {
		tmp, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			a.writeError(c, fmt.Errorf("%w: from", errBadParams))
			return
		}
		fromHeight = tmp
	}
	if val := c.Query("limit"); val != "" {
		tmp, err := strconv.Atoi(val)
		if err != nil || tmp <= 0 {
			a.writeError(c, fmt.Errorf("%w: limit", errBadParams))
			return
		}
		limit = tmp
	}
	entries, err := a.ledger.GetJournal(c.Request.Context(), fromHeight, limit)
	a.respond(c, http.StatusOK, entries, err)
}

// Communities and members

func (a *Api) handleListCommunities(c *gin.Context) {
	communities, err := a.ledger.GetCommunities(c.Request.Context())
	a.respond(c, http.StatusOK, communities, err)
}

func (a *Api) handleGetCommunity(c *gin.Context) {
	communityId, err := uintParam(c, "community")
	if err != nil {
		a.writeError(c, err)
		return
	}
	community, err := a.ledger.GetCommunity(c.Request.Context(), communityId)
	a.respond(c, http.StatusOK, community, err)
}

func (a *Api) handleCreateCommunity(c *gin.Context) {
	var req CreateCommunityRequest
	if err := bindJSON(c, &req); err != nil {
		a.writeError(c, err)
		return
	}
	id, err := a.ledger.CreateCommunity(
		c.Request.Context(),
		a.call(c),
		ledger.CommunitySpec{
			Name:                  req.Name,
			Description:           req.Description,
			MembershipType:        req.MembershipType,
			ContributionThreshold: req.ContributionThreshold,
		},
	)
	a.respond(c, http.StatusCreated, IdResponse{ID: id}, err)
}

func (a *Api) handleDeactivateCommunity(c *gin.Context) {
	communityId, err := uintParam(c, "community")
	if err != nil {
		a.writeError(c, err)
		return
	}
	err = a.ledger.DeactivateCommunity(c.Request.Context(), a.call(c), communityId)
	a.respond(c, http.StatusOK, IdResponse{ID: communityId}, err)
}

func (a *Api) handleJoin(c *gin.Context) {
	communityId, err := uintParam(c, "community")
	if err != nil {
		a.writeError(c, err)
		return
	}
	var req AmountRequest
	if err := bindJSON(c, &req); err != nil {
		a.writeError(c, err)
		return
	}
	memberId, err := a.ledger.JoinCommunity(
		c.Request.Context(),
		a.call(c),
		communityId,
		req.Amount,
	)
	a.respond(c, http.StatusCreated, IdResponse{ID: memberId}, err)
}

func (a *Api) handleLeave(c *gin.Context) {
	communityId, err := uintParam(c, "community")
	if err != nil {
		a.writeError(c, err)
		return
	}
	err = a.ledger.LeaveCommunity(c.Request.Context(), a.call(c), communityId)
	a.respond(c, http.StatusOK, IdResponse{ID: communityId}, err)
}

func (a *Api) handleContribute(c *gin.Context) {
	communityId, err := uintParam(c, "community")
	if err != nil {
		a.writeError(c, err)
		return
	}
	var req AmountRequest
	if err := bindJSON(c, &req); err != nil {
		a.writeError(c, err)
		return
	}
	err = a.ledger.Contribute(c.Request.Context(), a.call(c), communityId, req.Amount)
	a.respond(c, http.StatusOK, IdResponse{ID: communityId}, err)
}

func (a *Api) handleInvite(c *gin.Context) {
	communityId, err := uintParam(c, "community")
	if err != nil {
		a.writeError(c, err)
		return
	}
	var req AddressRequest
	if err := bindJSON(c, &req); err != nil {
		a.writeError(c, err)
		return
	}
	err = a.ledger.InviteMember(c.Request.Context(), a.call(c), communityId, req.Address)
	a.respond(c, http.StatusCreated, IdResponse{ID: communityId}, err)
}

func (a *Api) handleMakeAdmin(c *gin.Context) {
	communityId, err := uintParam(c, "community")
	if err != nil {
		a.writeError(c, err)
		return
	}
	var req AddressRequest
	if err := bindJSON(c, &req); err != nil {
		a.writeError(c, err)
		return
	}
	err = a.ledger.MakeAdmin(c.Request.Context(), a.call(c), communityId, req.Address)
	a.respond(c, http.StatusOK, IdResponse{ID: communityId}, err)
}

func (a *Api) handleRevokeAdmin(c *gin.Context) {
	communityId, err := uintParam(c, "community")
	if err != nil {
		a.writeError(c, err)
		return
	}
	err = a.ledger.RevokeAdmin(
		c.Request.Context(),
		a.call(c),
		communityId,
		c.Param("address"),
	)
	a.respond(c, http.StatusOK, IdResponse{ID: communityId}, err)
}

func (a *Api) handleUpdateReputation(c *gin.Context) {
	communityId, err := uintParam(c, "community")
	if err != nil {
		a.writeError(c, err)
		return
	}
	memberId, err := uintParam(c, "member")
	if err != nil {
		a.writeError(c, err)
		return
	}
	var req ReputationRequest
	if err := bindJSON(c, &req); err != nil {
		a.writeError(c, err)
		return
	}
	score, err := a.ledger.UpdateReputation(
		c.Request.Context(),
		a.call(c),
		communityId,
		memberId,
		req.Delta,
	)
	a.respond(c, http.StatusOK, ScoreResponse{Score: score}, err)
}

func (a *Api) handleListMembers(c *gin.Context) {
	communityId, err := uintParam(c, "community")
	if err != nil {
		a.writeError(c, err)
		return
	}
	includeInactive := c.Query("include_inactive") == "true"
	members, err := a.ledger.GetMembers(c.Request.Context(), communityId, includeInactive)
	a.respond(c, http.StatusOK, members, err)
}

func (a *Api) handleGetMember(c *gin.Context) {
	communityId, err := uintParam(c, "community")
	if err != nil {
		a.writeError(c, err)
		return
	}
	memberId, err := uintParam(c, "member")
	if err != nil {
		a.writeError(c, err)
		return
	}
	member, err := a.ledger.GetMember(c.Request.Context(), communityId, memberId)
	a.respond(c, http.StatusOK, member, err)
}

func (a *Api) handleGetMemberByAddress(c *gin.Context) {
	communityId, err := uintParam(c, "community")
	if err != nil {
		a.writeError(c, err)
		return
	}
	member, err := a.ledger.GetMemberByAddress(
		c.Request.Context(),
		communityId,
		c.Param("address"),
	)
	a.respond(c, http.StatusOK, member, err)
}

// Resources

func (a *Api) handleAddResource(c *gin.Context) {
	communityId, err := uintParam(c, "community")
	if err != nil {
		a.writeError(c, err)
		return
	}
	var req AddResourceRequest
	if err := bindJSON(c, &req); err != nil {
		a.writeError(c, err)
		return
	}
	id, err := a.ledger.AddResource(
		c.Request.Context(),
		a.call(c),
		communityId,
		ledger.ResourceSpec{
			Name:                req.Name,
			Description:         req.Description,
			ResourceType:        req.ResourceType,
			TotalSupply:         req.TotalSupply,
			MinimumContribution: req.MinimumContribution,
			MaxPerAllocation:    req.MaxPerAllocation,
			CooldownPeriod:      req.CooldownPeriod,
		},
	)
	a.respond(c, http.StatusCreated, IdResponse{ID: id}, err)
}

func (a *Api) handleDeactivateResource(c *gin.Context) {
	communityId, err := uintParam(c, "community")
	if err != nil {
		a.writeError(c, err)
		return
	}
	resourceId, err := uintParam(c, "resource")
	if err != nil {
		a.writeError(c, err)
		return
	}
	err = a.ledger.DeactivateResource(
		c.Request.Context(),
		a.call(c),
		communityId,
		resourceId,
	)
	a.respond(c, http.StatusOK, IdResponse{ID: resourceId}, err)
}

func (a *Api) handleGetResource(c *gin.Context) {
	resourceId, err := uintParam(c, "resource")
	if err != nil {
		a.writeError(c, err)
		return
	}
	resource, err := a.ledger.GetResource(c.Request.Context(), resourceId)
	a.respond(c, http.StatusOK, resource, err)
}

func (a *Api) handleListResources(c *gin.Context) {
	communityId, err := uintParam(c, "community")
	if err != nil {
		a.writeError(c, err)
		return
	}
	resources, err := a.ledger.GetResources(c.Request.Context(), communityId)
	a.respond(c, http.StatusOK, resources, err)
}

func (a *Api) handleEntitlement(c *gin.Context) {
	communityId, err := uintParam(c, "community")
	if err != nil {
		a.writeError(c, err)
		return
	}
	resourceId, err := uintParam(c, "resource")
	if err != nil {
		a.writeError(c, err)
		return
	}
	memberId, err := uintParam(c, "member")
	if err != nil {
		a.writeError(c, err)
		return
	}
	entitlement, err := a.ledger.CalculateAllocationEntitlement(
		c.Request.Context(),
		communityId,
		resourceId,
		memberId,
	)
	a.respond(c, http.StatusOK, EntitlementResponse{Entitlement: entitlement}, err)
}

// Allocations

func (a *Api) handleRequestAllocation(c *gin.Context) {
	var req AllocationRequestRequest
	if err := bindJSON(c, &req); err != nil {
		a.writeError(c, err)
		return
	}
	id, err := a.ledger.RequestAllocation(
		c.Request.Context(),
		a.call(c),
		ledger.AllocationRequestSpec{
			CommunityID:       req.CommunityID,
			ResourceID:        req.ResourceID,
			MemberID:          req.MemberID,
			Amount:            req.Amount,
			RequestedStart:    req.RequestedStart,
			RequestedDuration: req.RequestedDuration,
			Justification:     req.Justification,
		},
	)
	a.respond(c, http.StatusCreated, IdResponse{ID: id}, err)
}

func (a *Api) handleProcessRequest(c *gin.Context) {
	requestId, err := uintParam(c, "request")
	if err != nil {
		a.writeError(c, err)
		return
	}
	allocationId, err := a.ledger.ProcessAllocationRequest(
		c.Request.Context(),
		a.call(c),
		requestId,
	)
	a.respond(c, http.StatusCreated, IdResponse{ID: allocationId}, err)
}

func (a *Api) handleCompleteAllocation(c *gin.Context) {
	allocationId, err := uintParam(c, "allocation")
	if err != nil {
		a.writeError(c, err)
		return
	}
	err = a.ledger.CompleteAllocation(c.Request.Context(), a.call(c), allocationId)
	a.respond(c, http.StatusOK, IdResponse{ID: allocationId}, err)
}

func (a *Api) handleGetRequest(c *gin.Context) {
	requestId, err := uintParam(c, "request")
	if err != nil {
		a.writeError(c, err)
		return
	}
	request, err := a.ledger.GetAllocationRequest(c.Request.Context(), requestId)
	a.respond(c, http.StatusOK, request, err)
}

func (a *Api) handleListRequests(c *gin.Context) {
	communityId, err := uintParam(c, "community")
	if err != nil {
		a.writeError(c, err)
		return
	}
	requests, err := a.ledger.GetAllocationRequests(c.Request.Context(), communityId)
	a.respond(c, http.StatusOK, requests, err)
}

func (a *Api) handleGetAllocation(c *gin.Context) {
	allocationId, err := uintParam(c, "allocation")
	if err != nil {
		a.writeError(c, err)
		return
	}
	allocation, err := a.ledger.GetAllocation(c.Request.Context(), allocationId)
	a.respond(c, http.StatusOK, allocation, err)
}

func (a *Api) handleListAllocations(c *gin.Context) {
	communityId, err := uintParam(c, "community")
	if err != nil {
		a.writeError(c, err)
		return
	}
	allocations, err := a.ledger.GetAllocations(c.Request.Context(), communityId)
	a.respond(c, http.StatusOK, allocations, err)
}

// Disputes

func (a *Api) handleRaiseDispute(c *gin.Context) {
	var req RaiseDisputeRequest
	if err := bindJSON(c, &req); err != nil {
		a.writeError(c, err)
		return
	}
	id, err := a.ledger.RaiseDispute(
		c.Request.Context(),
		a.call(c),
		ledger.DisputeSpec{
			CommunityID:     req.CommunityID,
			ResourceID:      req.ResourceID,
			AllocationID:    req.AllocationID,
			AgainstMemberID: req.AgainstMemberID,
			DisputeType:     req.DisputeType,
			Description:     req.Description,
		},
	)
	a.respond(c, http.StatusCreated, IdResponse{ID: id}, err)
}

func (a *Api) handleResolveDispute(c *gin.Context) {
	disputeId, err := uintParam(c, "dispute")
	if err != nil {
		a.writeError(c, err)
		return
	}
	var req ResolveDisputeRequest
	if err := bindJSON(c, &req); err != nil {
		a.writeError(c, err)
		return
	}
	err = a.ledger.ResolveDispute(c.Request.Context(), a.call(c), disputeId, req.Resolution)
	a.respond(c, http.StatusOK, ResolutionResponse{Resolution: req.Resolution}, err)
}

func (a *Api) handleStartDisputeVoting(c *gin.Context) {
	disputeId, err := uintParam(c, "dispute")
	if err != nil {
		a.writeError(c, err)
		return
	}
	err = a.ledger.StartDisputeVoting(c.Request.Context(), a.call(c), disputeId)
	a.respond(c, http.StatusOK, IdResponse{ID: disputeId}, err)
}

func (a *Api) handleVoteOnDispute(c *gin.Context) {
	disputeId, err := uintParam(c, "dispute")
	if err != nil {
		a.writeError(c, err)
		return
	}
	var req DisputeVoteRequest
	if err := bindJSON(c, &req); err != nil {
		a.writeError(c, err)
		return
	}
	err = a.ledger.VoteOnDispute(c.Request.Context(), a.call(c), disputeId, req.Uphold)
	a.respond(c, http.StatusCreated, IdResponse{ID: disputeId}, err)
}

func (a *Api) handleFinalizeDispute(c *gin.Context) {
	disputeId, err := uintParam(c, "dispute")
	if err != nil {
		a.writeError(c, err)
		return
	}
	resolution, err := a.ledger.FinalizeDisputeVoting(c.Request.Context(), a.call(c), disputeId)
	a.respond(c, http.StatusOK, ResolutionResponse{Resolution: resolution}, err)
}

func (a *Api) handleGetDispute(c *gin.Context) {
	disputeId, err := uintParam(c, "dispute")
	if err != nil {
		a.writeError(c, err)
		return
	}
	dispute, err := a.ledger.GetDispute(c.Request.Context(), disputeId)
	a.respond(c, http.StatusOK, dispute, err)
}

func (a *Api) handleListDisputes(c *gin.Context) {
	communityId, err := uintParam(c, "community")
	if err != nil {
		a.writeError(c, err)
		return
	}
	disputes, err := a.ledger.GetDisputes(c.Request.Context(), communityId)
	a.respond(c, http.StatusOK, disputes, err)
}

// Expansion proposals

func (a *Api) handleProposeExpansion(c *gin.Context) {
	var req ProposeExpansionRequest
	if err := bindJSON(c, &req); err != nil {
		a.writeError(c, err)
		return
	}
	id, err := a.ledger.ProposeExpansion(
		c.Request.Context(),
		a.call(c),
		ledger.ExpansionSpec{
			CommunityID:   req.CommunityID,
			ResourceID:    req.ResourceID,
			Name:          req.Name,
			Description:   req.Description,
			ResourceType:  req.ResourceType,
			SupplyDelta:   req.SupplyDelta,
			EstimatedCost: req.EstimatedCost,
			FundingSource: req.FundingSource,
		},
	)
	a.respond(c, http.StatusCreated, IdResponse{ID: id}, err)
}

func (a *Api) handleStartExpansionVoting(c *gin.Context) {
	proposalId, err := uintParam(c, "proposal")
	if err != nil {
		a.writeError(c, err)
		return
	}
	err = a.ledger.StartExpansionVoting(c.Request.Context(), a.call(c), proposalId)
	a.respond(c, http.StatusOK, IdResponse{ID: proposalId}, err)
}

func (a *Api) handleVoteOnExpansion(c *gin.Context) {
	proposalId, err := uintParam(c, "proposal")
	if err != nil {
		a.writeError(c, err)
		return
	}
	var req ExpansionVoteRequest
	if err := bindJSON(c, &req); err != nil {
		a.writeError(c, err)
		return
	}
	err = a.ledger.VoteOnExpansion(c.Request.Context(), a.call(c), proposalId, req.InFavor)
	a.respond(c, http.StatusCreated, IdResponse{ID: proposalId}, err)
}

func (a *Api) handleFinalizeExpansion(c *gin.Context) {
	proposalId, err := uintParam(c, "proposal")
	if err != nil {
		a.writeError(c, err)
		return
	}
	status, err := a.ledger.FinalizeExpansionVoting(c.Request.Context(), a.call(c), proposalId)
	a.respond(c, http.StatusOK, StatusResponse{Status: status.String()}, err)
}

func (a *Api) handleImplementExpansion(c *gin.Context) {
	proposalId, err := uintParam(c, "proposal")
	if err != nil {
		a.writeError(c, err)
		return
	}
	resourceId, err := a.ledger.ImplementExpansion(c.Request.Context(), a.call(c), proposalId)
	a.respond(c, http.StatusOK, IdResponse{ID: resourceId}, err)
}

func (a *Api) handleGetProposal(c *gin.Context) {
	proposalId, err := uintParam(c, "proposal")
	if err != nil {
		a.writeError(c, err)
		return
	}
	proposal, err := a.ledger.GetExpansionProposal(c.Request.Context(), proposalId)
	a.respond(c, http.StatusOK, proposal, err)
}

func (a *Api) handleListProposals(c *gin.Context) {
	communityId, err := uintParam(c, "community")
	if err != nil {
		a.writeError(c, err)
		return
	}
	proposals, err := a.ledger.GetExpansionProposals(c.Request.Context(), communityId)
	a.respond(c, http.StatusOK, proposals, err)
}
