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

type HealthResponse struct {
	IsHealthy bool   `json:"is_healthy"`
	TipHeight uint64 `json:"tip_height"`
}

type TipResponse struct {
	TipHeight     uint64 `json:"tipHeight"`
	CurrentHeight uint64 `json:"currentHeight"`
}

type IdResponse struct {
	ID uint64 `json:"id"`
}

type ScoreResponse struct {
	Score uint64 `json:"score"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ResolutionResponse struct {
	Resolution string `json:"resolution"`
}

type EntitlementResponse struct {
	Entitlement uint64 `json:"entitlement"`
}

type CreateCommunityRequest struct {
	Name                  string `json:"name"`
	Description           string `json:"description"`
	MembershipType        string `json:"membershipType"`
	ContributionThreshold uint64 `json:"contributionThreshold"`
}

type AmountRequest struct {
	Amount uint64 `json:"amount"`
}

type AddressRequest struct {
	Address string `json:"address"`
}

type ReputationRequest struct {
	Delta int64 `json:"delta"`
}

type AddResourceRequest struct {
	Name                string `json:"name"`
	Description         string `json:"description"`
	ResourceType        string `json:"resourceType"`
	TotalSupply         uint64 `json:"totalSupply"`
	MinimumContribution uint64 `json:"minimumContribution"`
	MaxPerAllocation    uint64 `json:"maxPerAllocation"`
	CooldownPeriod      uint64 `json:"cooldownPeriod"`
}

type AllocationRequestRequest struct {
	CommunityID       uint64  `json:"communityId"`
	ResourceID        uint64  `json:"resourceId"`
	MemberID          uint64  `json:"memberId"`
	Amount            uint64  `json:"amount"`
	RequestedStart    uint64  `json:"requestedStart"`
	RequestedDuration *uint64 `json:"requestedDuration"`
	Justification     string  `json:"justification"`
}

type RaiseDisputeRequest struct {
	CommunityID     uint64  `json:"communityId"`
	ResourceID      *uint64 `json:"resourceId"`
	AllocationID    *uint64 `json:"allocationId"`
	AgainstMemberID *uint64 `json:"againstMemberId"`
	DisputeType     string  `json:"disputeType"`
	Description     string  `json:"description"`
}

type ResolveDisputeRequest struct {
	Resolution string `json:"resolution"`
}

type DisputeVoteRequest struct {
	Uphold bool `json:"uphold"`
}

type ProposeExpansionRequest struct {
	CommunityID   uint64  `json:"communityId"`
	ResourceID    *uint64 `json:"resourceId"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	ResourceType  string  `json:"resourceType"`
	SupplyDelta   uint64  `json:"supplyDelta"`
	EstimatedCost uint64  `json:"estimatedCost"`
	FundingSource string  `json:"fundingSource"`
}

type ExpansionVoteRequest struct {
	InFavor bool `json:"inFavor"`
}
