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

// Role is the standing of a member within a community. Higher roles
// include every permission of the lower ones.
type Role uint8

const (
	// RoleAny admits any active member, like RoleMember
	RoleAny     Role = 0
	RoleMember  Role = 1
	RoleAdmin   Role = 2
	RoleFounder Role = 3
)

func (r Role) String() string {
	switch r {
	case RoleAny:
		return "any"
	case RoleMember:
		return "member"
	case RoleAdmin:
		return "admin"
	case RoleFounder:
		return "founder"
	default:
		return "unknown"
	}
}

// Permits reports whether a member holding r may act where required is needed
func (r Role) Permits(required Role) bool {
	if required == RoleAny {
		required = RoleMember
	}
	return r >= required
}

// Authorize is the authorization guard. It permits the call only when the
// caller has an active member record in the community whose role is at
// least the required one. Anything else, including an unknown caller,
// is denied.
func Authorize(community *models.Community, caller *models.Member, required Role) bool {
	if community == nil || caller == nil {
		return false
	}
	if caller.CommunityID != community.ID || !caller.Active {
		return false
	}
	role := Role(caller.Role)
	// The founder is an admin whatever the stored role says
	if caller.Address == community.Founder && caller.MemberID == founderMemberId {
		role = RoleFounder
	}
	return role.Permits(required)
}

// authorize loads the caller's record and applies Authorize. It returns
// the caller's member record on success.
func (ls *LedgerState) authorize(
	txn *database.Txn,
	community *models.Community,
	caller string,
	required Role,
) (*models.Member, error) {
	member, err := ls.db.GetMemberByAddress(community.ID, caller, txn)
	if err != nil {
		if errors.Is(err, models.ErrMemberNotFound) {
			return nil, newError(
				CodeNotAuthorized,
				"%s is not a member of community %d",
				caller,
				community.ID,
			)
		}
		return nil, err
	}
	if !Authorize(community, member, required) {
		return nil, newError(
			CodeNotAuthorized,
			"%s requires role %s in community %d",
			caller,
			required,
			community.ID,
		)
	}
	return member, nil
}
