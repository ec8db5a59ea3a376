// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transcranial/tcs/lvldb"
	"github.com/transcranial/tcs/state"
	"github.com/transcranial/tcs/tcs"
)

func newParams(t *testing.T) *Params {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(tcs.ParamsAddress, state.NewStater(db, 0).NewState())
}

func TestParamsGetSet(t *testing.T) {
	p := newParams(t)
	setv := big.NewInt(10)
	key := tcs.BytesToBytes32([]byte("key"))
	assert.NoError(t, p.Set(key, setv))

	getv, err := p.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, setv, getv)
}

func TestParamsConfigVariables(t *testing.T) {
	p := newParams(t)

	v, err := p.Value(RewardDecimals)
	assert.NoError(t, err)
	assert.Equal(t, uint64(tcs.DefaultRewardDecimals), v)

	assert.NoError(t, p.Set(tcs.KeyRewardDecimals, big.NewInt(6)))
	v, err = p.Value(RewardDecimals)
	assert.NoError(t, err)
	assert.Equal(t, uint64(6), v)

	assert.Error(t, p.Set(tcs.KeyRewardDecimals, big.NewInt(tcs.MaxRewardDecimals+1)))

	assert.Equal(t, tcs.KeyIScorePerUnit, IScorePerUnit.Slot())
	assert.Equal(t, tcs.KeyMinIScoreClaim, MinIScoreClaim.Slot())
	assert.Equal(t, tcs.KeyUnstakeLockPeriod, UnstakeLockPeriod.Slot())
	assert.NoError(t, p.Set(tcs.KeyUnstakeLockPeriod, big.NewInt(20)))
	v, err = p.Value(UnstakeLockPeriod)
	assert.NoError(t, err)
	assert.Equal(t, uint64(20), v)
}
