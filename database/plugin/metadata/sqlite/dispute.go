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

func (d *MetadataStoreSqlite) GetDispute(
	disputeId uint64,
	txn types.Txn,
) (*models.Dispute, error) {
	var ret models.Dispute
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.First(&ret, "id = ?", disputeId); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ret, nil
}

func (d *MetadataStoreSqlite) GetDisputes(
	communityId uint64,
	txn types.Txn,
) ([]models.Dispute, error) {
	var ret []models.Dispute
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("community_id = ?", communityId).
		Order("id ASC").
		Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (d *MetadataStoreSqlite) SetDispute(
	dispute *models.Dispute,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(dispute); result.Error != nil {
		return result.Error
	}
	return nil
}

func (d *MetadataStoreSqlite) GetDisputeBallot(
	disputeId uint64,
	memberId uint64,
	txn types.Txn,
) (*models.DisputeBallot, error) {
	var ret models.DisputeBallot
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"dispute_id = ? AND member_id = ?",
		disputeId,
		memberId,
	).First(&ret); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ret, nil
}

// SetDisputeBallot records a ballot. A second ballot from the same member
// violates the primary key.
func (d *MetadataStoreSqlite) SetDisputeBallot(
	ballot *models.DisputeBallot,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Create(ballot); result.Error != nil {
		return result.Error
	}
	return nil
}
