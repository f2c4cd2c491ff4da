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

package database

import (
	"fmt"

	"github.com/blinklabs-io/ayllu/database/models"
)

func (d *Database) GetMember(
	communityId uint64,
	memberId uint64,
	txn *Txn,
) (*models.Member, error) {
	ret, err := d.metadata.GetMember(communityId, memberId, metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf(
			"get member %d of community %d: %w",
			memberId,
			communityId,
			err,
		)
	}
	if ret == nil {
		return nil, models.ErrMemberNotFound
	}
	return ret, nil
}

// GetMemberByAddress prefers the active record of an address over older
// inactive ones
func (d *Database) GetMemberByAddress(
	communityId uint64,
	address string,
	txn *Txn,
) (*models.Member, error) {
	ret, err := d.metadata.GetMemberByAddress(
		communityId,
		address,
		metadataTxn(txn),
	)
	if err != nil {
		return nil, fmt.Errorf(
			"get member %q of community %d: %w",
			address,
			communityId,
			err,
		)
	}
	if ret == nil {
		return nil, models.ErrMemberNotFound
	}
	return ret, nil
}

func (d *Database) GetMembers(
	communityId uint64,
	includeInactive bool,
	txn *Txn,
) ([]models.Member, error) {
	return d.metadata.GetMembers(communityId, includeInactive, metadataTxn(txn))
}

func (d *Database) SetMember(member *models.Member, txn *Txn) error {
	return d.withTxn(txn, true, func(txn *Txn) error {
		return d.metadata.SetMember(member, txn.Metadata())
	})
}
