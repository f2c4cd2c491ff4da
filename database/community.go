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

// GetCommunity returns models.ErrCommunityNotFound for an unknown id
func (d *Database) GetCommunity(
	communityId uint64,
	txn *Txn,
) (*models.Community, error) {
	ret, err := d.metadata.GetCommunity(communityId, metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf("get community %d: %w", communityId, err)
	}
	if ret == nil {
		return nil, models.ErrCommunityNotFound
	}
	return ret, nil
}

func (d *Database) GetCommunities(txn *Txn) ([]models.Community, error) {
	return d.metadata.GetCommunities(metadataTxn(txn))
}

func (d *Database) SetCommunity(community *models.Community, txn *Txn) error {
	return d.withTxn(txn, true, func(txn *Txn) error {
		return d.metadata.SetCommunity(community, txn.Metadata())
	})
}

// GetInvitation returns nil when the address was never invited
func (d *Database) GetInvitation(
	communityId uint64,
	address string,
	txn *Txn,
) (*models.Invitation, error) {
	return d.metadata.GetInvitation(communityId, address, metadataTxn(txn))
}

func (d *Database) SetInvitation(invitation *models.Invitation, txn *Txn) error {
	return d.withTxn(txn, true, func(txn *Txn) error {
		return d.metadata.SetInvitation(invitation, txn.Metadata())
	})
}
