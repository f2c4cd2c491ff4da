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

func (d *MetadataStoreSqlite) GetMember(
	communityId uint64,
	memberId uint64,
	txn types.Txn,
) (*models.Member, error) {
	var ret models.Member
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"community_id = ? AND member_id = ?",
		communityId,
		memberId,
	).First(&ret); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ret, nil
}

// GetMemberByAddress returns the record for an address in a community.
// An address that left and re-joined has several records, so the active
// one wins, then the most recent.
func (d *MetadataStoreSqlite) GetMemberByAddress(
	communityId uint64,
	address string,
	txn types.Txn,
) (*models.Member, error) {
	var ret models.Member
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"community_id = ? AND address = ?",
		communityId,
		address,
	).Order("active DESC, member_id DESC").First(&ret); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ret, nil
}

// GetMembers returns the members of a community ordered by member id
func (d *MetadataStoreSqlite) GetMembers(
	communityId uint64,
	includeInactive bool,
	txn types.Txn,
) ([]models.Member, error) {
	var ret []models.Member
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	query := db.Where("community_id = ?", communityId)
	if !includeInactive {
		query = query.Where("active = ?", true)
	}
	if result := query.Order("member_id ASC").Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (d *MetadataStoreSqlite) SetMember(
	member *models.Member,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(member); result.Error != nil {
		return result.Error
	}
	return nil
}
