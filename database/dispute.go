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

func (d *Database) GetDispute(
	disputeId uint64,
	txn *Txn,
) (*models.Dispute, error) {
	ret, err := d.metadata.GetDispute(disputeId, metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf("get dispute %d: %w", disputeId, err)
	}
	if ret == nil {
		return nil, models.ErrDisputeNotFound
	}
	return ret, nil
}

func (d *Database) GetDisputes(
	communityId uint64,
	txn *Txn,
) ([]models.Dispute, error) {
	return d.metadata.GetDisputes(communityId, metadataTxn(txn))
}

func (d *Database) SetDispute(dispute *models.Dispute, txn *Txn) error {
	return d.withTxn(txn, true, func(txn *Txn) error {
		return d.metadata.SetDispute(dispute, txn.Metadata())
	})
}

// GetDisputeBallot returns nil when the member has not voted
func (d *Database) GetDisputeBallot(
	disputeId uint64,
	memberId uint64,
	txn *Txn,
) (*models.DisputeBallot, error) {
	return d.metadata.GetDisputeBallot(disputeId, memberId, metadataTxn(txn))
}

func (d *Database) SetDisputeBallot(
	ballot *models.DisputeBallot,
	txn *Txn,
) error {
	return d.withTxn(txn, true, func(txn *Txn) error {
		return d.metadata.SetDisputeBallot(ballot, txn.Metadata())
	})
}
