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

func (d *MetadataStoreSqlite) GetVoterWeight(
	kind models.VoteKind,
	voteId uint64,
	memberId uint64,
	txn types.Txn,
) (*models.VoterWeight, error) {
	var ret models.VoterWeight
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	result := db.Where(
		"kind = ? AND vote_id = ? AND member_id = ?",
		kind,
		voteId,
		memberId,
	).Take(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ret, nil
}

// SetVoterWeights stores a vote's weight snapshot, replacing any earlier
// row for the same member
func (d *MetadataStoreSqlite) SetVoterWeights(
	weights []models.VoterWeight,
	txn types.Txn,
) error {
	if len(weights) == 0 {
		return nil
	}
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(weights, 500).
		Error
}
