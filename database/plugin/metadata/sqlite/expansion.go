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

func (d *MetadataStoreSqlite) GetExpansionProposal(
	proposalId uint64,
	txn types.Txn,
) (*models.ExpansionProposal, error) {
	var ret models.ExpansionProposal
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.First(&ret, "id = ?", proposalId); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ret, nil
}

func (d *MetadataStoreSqlite) GetExpansionProposals(
	communityId uint64,
	txn types.Txn,
) ([]models.ExpansionProposal, error) {
	var ret []models.ExpansionProposal
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

func (d *MetadataStoreSqlite) SetExpansionProposal(
	proposal *models.ExpansionProposal,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(proposal); result.Error != nil {
		return result.Error
	}
	return nil
}

func (d *MetadataStoreSqlite) GetExpansionBallot(
	proposalId uint64,
	memberId uint64,
	txn types.Txn,
) (*models.ExpansionBallot, error) {
	var ret models.ExpansionBallot
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"proposal_id = ? AND member_id = ?",
		proposalId,
		memberId,
	).First(&ret); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ret, nil
}

// SetExpansionBallot records a ballot. A second ballot from the same
// member violates the primary key.
func (d *MetadataStoreSqlite) SetExpansionBallot(
	ballot *models.ExpansionBallot,
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
