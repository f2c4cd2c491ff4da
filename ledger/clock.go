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

package ledger

import (
	"errors"
	"time"
)

// BlockClock derives the current block height from wall time. Height 0
// starts at the genesis time and a new block begins every interval.
type BlockClock struct {
	genesisTime   time.Time
	blockInterval time.Duration

	// For testing: allow injection of custom time source
	nowFunc func() time.Time
}

func NewBlockClock(genesisTime time.Time, blockInterval time.Duration) (*BlockClock, error) {
	if blockInterval <= 0 {
		return nil, errors.New("block interval must be positive")
	}
	return &BlockClock{
		genesisTime:   genesisTime,
		blockInterval: blockInterval,
		nowFunc:       time.Now,
	}, nil
}

// CurrentHeight returns the height of the block in progress. Times before
// genesis map to height 0.
func (c *BlockClock) CurrentHeight() uint64 {
	return c.TimeToHeight(c.nowFunc())
}

func (c *BlockClock) TimeToHeight(t time.Time) uint64 {
	if !t.After(c.genesisTime) {
		return 0
	}
	return uint64(t.Sub(c.genesisTime) / c.blockInterval) //nolint:gosec
}

// HeightToTime returns the start time of the block at height
func (c *BlockClock) HeightToTime(height uint64) time.Time {
	return c.genesisTime.Add(time.Duration(height) * c.blockInterval) //nolint:gosec
}

func (c *BlockClock) GenesisTime() time.Time {
	return c.genesisTime
}

func (c *BlockClock) BlockInterval() time.Duration {
	return c.blockInterval
}
