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
	"math/bits"

	"github.com/blinklabs-io/ayllu/database"
	"github.com/blinklabs-io/ayllu/database/models"
)

// ShareScale is the fixed-point scale of ShareOf, parts per million
const ShareScale = 1_000_000

// ShareOf returns contribution as a share of total in parts per million,
// rounded down
func ShareOf(contribution uint64, total uint64) uint64 {
	if total == 0 {
		return 0
	}
	if contribution >= total {
		return ShareScale
	}
	return mulDiv(contribution, ShareScale, total)
}

// Entitlement returns the largest amount of resource the member may be
// allocated: its contribution share of the remaining supply, rounded down
// and capped at the per-allocation maximum. The 128-bit intermediate
// product keeps the result exact for any supply.
func Entitlement(
	community *models.Community,
	resource *models.Resource,
	member *models.Member,
) uint64 {
	total := uint64(community.TotalContribution)
	if total == 0 {
		return 0
	}
	remaining := uint64(resource.RemainingSupply)
	contribution := uint64(member.Contribution)
	var amount uint64
	if contribution >= total {
		amount = remaining
	} else {
		amount = mulDiv(remaining, contribution, total)
	}
	return min(amount, uint64(resource.MaxPerAllocation))
}

// mulDiv returns floor(a*b/c). The caller guarantees the quotient fits,
// which holds whenever a < c or b < c.
func mulDiv(a uint64, b uint64, c uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	quo, _ := bits.Div64(hi, lo, c)
	return quo
}

// CalculateAllocationEntitlement returns what the member could be
// allocated of the resource right now. It reserves nothing.
func (ls *LedgerState) CalculateAllocationEntitlement(
	ctx context.Context,
	communityId uint64,
	resourceId uint64,
	memberId uint64,
) (uint64, error) {
	var ret uint64
	err := ls.view(ctx, "calculate-allocation-entitlement", func(txn *database.Txn) error {
		community, err := ls.loadCommunity(txn, communityId)
		if err != nil {
			return err
		}
		resource, err := ls.loadResource(txn, communityId, resourceId)
		if err != nil {
			return err
		}
		member, err := ls.loadMember(txn, communityId, memberId)
		if err != nil {
			return err
		}
		ret = Entitlement(community, resource, member)
		return nil
	})
	return ret, err
}
