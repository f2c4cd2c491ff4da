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

func (d *Database) GetExpansionProposal(
	proposalId uint64,
	txn *Txn,
) (*models.ExpansionProposal, error) {
	ret, err := d.metadata.GetExpansionProposal(proposalId, metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf("get expansion proposal %d: %w", proposalId, err)
	}
	if ret == nil {
		return nil, models.ErrExpansionProposalNotFound
	}
	return ret, nil
}

func (d *Database) GetExpansionProposals(
	communityId uint64,
	txn *Txn,
) ([]models.ExpansionProposal, error) {
	return d.metadata.GetExpansionProposals(communityId, metadataTxn(txn))
}

func (d *Database) SetExpansionProposal(
	proposal *models.ExpansionProposal,
	txn *Txn,
) error {
	return d.withTxn(txn, true, func(txn *Txn) error {
		return d.metadata.SetExpansionProposal(proposal, txn.Metadata())
	})
}

// GetExpansionBallot returns nil when the member has not voted
func (d *Database) GetExpansionBallot(
	proposalId uint64,
	memberId uint64,
	txn *Txn,
) (*models.ExpansionBallot, error) {
	return d.metadata.GetExpansionBallot(proposalId, memberId, metadataTxn(txn))
}

func (d *Database) SetExpansionBallot(
	ballot *models.ExpansionBallot,
	txn *Txn,
) error {
	return d.withTxn(txn, true, func(txn *Txn) error {
		return d.metadata.SetExpansionBallot(ballot, txn.Metadata())
	})
}
