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
	"fmt"

	"github.com/blinklabs-io/ayllu/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// commitMarkerId is the only row in the commit_marker table
const commitMarkerId = 1

// CommitMarker holds the timestamp of the last commit applied to the
// ledger tables. The blob store keeps the same value so a crash between
// the two commits is detected on the next open.
type CommitMarker struct {
	ID        uint  `gorm:"primarykey"`
	Timestamp int64 `gorm:"not null"`
}

func (CommitMarker) TableName() string {
	return "commit_marker"
}

// GetCommitTimestamp returns 0 for a store that has never committed
func (d *MetadataStoreSqlite) GetCommitTimestamp() (int64, error) {
	var marker CommitMarker
	err := d.DB().Where("id = ?", commitMarkerId).Take(&marker).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("read commit marker: %w", err)
	}
	return marker.Timestamp, nil
}

func (d *MetadataStoreSqlite) SetCommitTimestamp(
	timestamp int64,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	marker := CommitMarker{ID: commitMarkerId, Timestamp: timestamp}
	if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&marker).Error; err != nil {
		return fmt.Errorf("write commit marker: %w", err)
	}
	return nil
}
