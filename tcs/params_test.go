// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tcs

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRScoreConversion(t *testing.T) {
	scale := RScoreScale(DefaultRewardDecimals)
	assert.Equal(t, "1000000000000000000", scale.String())

	rscore := UnitsToRScore(big.NewInt(50), DefaultRewardDecimals)
	assert.Equal(t, "50000000000000000000", rscore.String())

	// rounding down keeps the fractional part out
	rscore.Add(rscore, big.NewInt(999))
	assert.Equal(t, big.NewInt(50), RScoreToUnits(rscore, DefaultRewardDecimals))

	assert.Equal(t, big.NewInt(7), RScoreToUnits(big.NewInt(7), 0))
}

func TestUint64ToBytes32(t *testing.T) {
	b := Uint64ToBytes32(0x0102)
	assert.Equal(t, byte(0x01), b[30])
	assert.Equal(t, byte(0x02), b[31])
	assert.True(t, Uint64ToBytes32(0).IsZero())

	h1 := Blake2b([]byte("a"), []byte("b"))
	h2 := Blake2b([]byte("ab"))
	assert.Equal(t, h1, h2)
}
