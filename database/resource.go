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

func (d *Database) GetResource(
	resourceId uint64,
	txn *Txn,
) (*models.Resource, error) {
	ret, err := d.metadata.GetResource(resourceId, metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf("get resource %d: %w", resourceId, err)
	}
	if ret == nil {
		return nil, models.ErrResourceNotFound
	}
	return ret, nil
}

func (d *Database) GetResources(
	communityId uint64,
	txn *Txn,
) ([]models.Resource, error) {
	return d.metadata.GetResources(communityId, metadataTxn(txn))
}

func (d *Database) SetResource(resource *models.Resource, txn *Txn) error {
	return d.withTxn(txn, true, func(txn *Txn) error {
		return d.metadata.SetResource(resource, txn.Metadata())
	})
}
