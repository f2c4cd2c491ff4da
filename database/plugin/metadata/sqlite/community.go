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

package sqlite

import (
	"errors"

	"github.com/blinklabs-io/ayllu/database/models"
	"github.com/blinklabs-io/ayllu/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetCommunity returns the community with the given id, or nil if there is none
func (d *MetadataStoreSqlite) GetCommunity(
	communityId uint64,
	txn types.Txn,
) (*models.Community, error) {
	var ret models.Community
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.First(&ret, "id = ?", communityId); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ret, nil
}

// GetCommunities returns all communities ordered by id
func (d *MetadataStoreSqlite) GetCommunities(
	txn types.Txn,
) ([]models.Community, error) {
	var ret []models.Community
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Order("id ASC").Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// SetCommunity creates or replaces a community record
func (d *MetadataStoreSqlite) SetCommunity(
	community *models.Community,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(community); result.Error != nil {
		return result.Error
	}
	return nil
}

// GetInvitation returns the invitation of an address to a community, or nil
func (d *MetadataStoreSqlite) GetInvitation(
	communityId uint64,
	address string,
	txn types.Txn,
) (*models.Invitation, error) {
	var ret models.Invitation
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"community_id = ? AND address = ?",
		communityId,
		address,
	).First(&ret); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ret, nil
}

func (d *MetadataStoreSqlite) SetInvitation(
	invitation *models.Invitation,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(invitation); result.Error != nil {
		return result.Error
	}
	return nil
}
