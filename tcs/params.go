// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tcs

import "math/big"

// Built-in contract addresses.
var (
	StakingAddress = BytesToAddress([]byte("Staking"))
	RolesAddress   = BytesToAddress([]byte("Roles"))
	ParamsAddress  = BytesToAddress([]byte("Params"))
	SystemAddress  = BytesToAddress([]byte("System"))
)

// Keys of governance params.
var (
	KeyRewardDecimals    = BytesToBytes32([]byte("reward-decimals"))
	KeyIScorePerUnit     = BytesToBytes32([]byte("iscore-per-unit"))
	KeyMinIScoreClaim    = BytesToBytes32([]byte("min-iscore-claim"))
	KeyUnstakeLockPeriod = BytesToBytes32([]byte("unstake-lock-period"))
)

// Default values of governance params.
const (
	// DefaultRewardDecimals is D in the rscore scale factor 10^D.
	DefaultRewardDecimals = 18
	// MaxRewardDecimals bounds D so that scaled amounts stay far below 2^256.
	MaxRewardDecimals = 36
	// DefaultIScorePerUnit is the number of I-Score per base unit of income.
	DefaultIScorePerUnit = 1000
	// DefaultMinIScoreClaim is the smallest I-Score amount worth claiming.
	DefaultMinIScoreClaim = 1000
)

// UnitsToRScore converts base units into rscore units.
func UnitsToRScore(units *big.Int, decimals uint64) *big.Int {
	return new(big.Int).Mul(units, RScoreScale(decimals))
}

// RScoreToUnits converts rscore units into base units, rounding down.
func RScoreToUnits(rscore *big.Int, decimals uint64) *big.Int {
	return new(big.Int).Quo(rscore, RScoreScale(decimals))
}

// RScoreScale returns 10^decimals.
func RScoreScale(decimals uint64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), new(big.Int).SetUint64(decimals), nil)
}
