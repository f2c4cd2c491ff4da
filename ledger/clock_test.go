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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockClock(t *testing.T) {
	genesis := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	clock, err := NewBlockClock(genesis, 20*time.Second)
	require.NoError(t, err)
	now := genesis
	clock.nowFunc = func() time.Time { return now }
	assert.Equal(t, uint64(0), clock.CurrentHeight())
	now = genesis.Add(-time.Hour)
	assert.Equal(t, uint64(0), clock.CurrentHeight())
	now = genesis.Add(19 * time.Second)
	assert.Equal(t, uint64(0), clock.CurrentHeight())
	now = genesis.Add(20 * time.Second)
	assert.Equal(t, uint64(1), clock.CurrentHeight())
	now = genesis.Add(24 * time.Hour)
	assert.Equal(t, uint64(4320), clock.CurrentHeight())
	assert.Equal(t, genesis.Add(24*time.Hour), clock.HeightToTime(4320))
	assert.Equal(t, genesis, clock.GenesisTime())
	assert.Equal(t, 20*time.Second, clock.BlockInterval())
}

func TestBlockClockInvalidInterval(t *testing.T) {
	_, err := NewBlockClock(time.Now(), 0)
	require.Error(t, err)
}
