// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/transcranial/tcs/tcs"
)

func TestConfigVariable(t *testing.T) {
	config := NewConfigVariable("name", 10)
	assert.Equal(t, "name", config.Name())
	assert.Equal(t, uint64(10), config.Default())
	assert.Equal(t, tcs.BytesToBytes32([]byte("name")), config.Slot())

	ctx := newContext(t)
	value, err := config.Get(ctx)
	assert.NoError(t, err)
	assert.Equal(t, uint64(10), value)

	ctx.State().SetStorage(ctx.Address(), config.Slot(), tcs.BytesToBytes32(big.NewInt(6).Bytes()))
	value, err = config.Get(ctx)
	assert.NoError(t, err)
	assert.Equal(t, uint64(6), value)

	// out of uint64 range falls back
	ctx.State().SetStorage(ctx.Address(), config.Slot(), tcs.BytesToBytes32(new(big.Int).Lsh(big.NewInt(1), 70).Bytes()))
	value, err = config.Get(ctx)
	assert.NoError(t, err)
	assert.Equal(t, uint64(10), value)
}
