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

package blob

import (
	"fmt"

	"github.com/blinklabs-io/ayllu/database/plugin"
	_ "github.com/blinklabs-io/ayllu/database/plugin/blob/badger"
	"github.com/blinklabs-io/ayllu/database/types"
)

// BlobStore is the key/value half of the ledger database. It holds the
// id counters, the tip height and the CBOR call journal.
type BlobStore interface {
	Close() error
	NewTransaction(readWrite bool) types.Txn
	// Get returns types.ErrBlobKeyNotFound for a missing key
	Get(txn types.Txn, key []byte) ([]byte, error)
	Set(txn types.Txn, key []byte, val []byte) error
	Delete(txn types.Txn, key []byte) error
	// NewIterator walks keys under a prefix, used for journal range reads
	NewIterator(txn types.Txn, opts types.BlobIteratorOptions) types.BlobIterator

	// The commit timestamp must match the metadata store after every commit
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(timestamp int64, txn types.Txn) error
}

// New returns the started blob plugin selected by name
func New(pluginName string, ctx plugin.PluginContext) (BlobStore, error) {
	p, err := plugin.StartPlugin(plugin.PluginTypeBlob, pluginName, ctx)
	if err != nil {
		return nil, err
	}
	blobStore, ok := p.(BlobStore)
	if !ok {
		_ = p.Stop()
		return nil, fmt.Errorf(
			"plugin '%s' does not implement BlobStore interface",
			pluginName,
		)
	}
	return blobStore, nil
}
