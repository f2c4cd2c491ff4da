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

import "github.com/blinklabs-io/ayllu/database/models"

// GetVoterWeight returns nil when the member is not part of the vote's
// snapshot
func (d *Database) GetVoterWeight(
	kind models.VoteKind,
	voteId uint64,
	memberId uint64,
	txn *Txn,
) (*models.VoterWeight, error) {
	return d.metadata.GetVoterWeight(kind, voteId, memberId, metadataTxn(txn))
}

func (d *Database) SetVoterWeights(
	weights []models.VoterWeight,
	txn *Txn,
) error {
	return d.withTxn(txn, true, func(txn *Txn) error {
		return d.metadata.SetVoterWeights(weights, txn.Metadata())
	})
}
