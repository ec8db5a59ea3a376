// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/transcranial/tcs/builtin/solidity"
	"github.com/transcranial/tcs/state"
	"github.com/transcranial/tcs/tcs"
)

// Config variables stored by the params contract.
var (
	RewardDecimals    = solidity.NewConfigVariable("reward-decimals", tcs.DefaultRewardDecimals)
	IScorePerUnit     = solidity.NewConfigVariable("iscore-per-unit", tcs.DefaultIScorePerUnit)
	MinIScoreClaim    = solidity.NewConfigVariable("min-iscore-claim", tcs.DefaultMinIScoreClaim)
	UnstakeLockPeriod = solidity.NewConfigVariable("unstake-lock-period", 0)
)

// Params binder of the `Params` contract, holding governance values.
type Params struct {
	sctx *solidity.Context
}

func New(addr tcs.Address, state *state.State) *Params {
	return &Params{solidity.NewContext(addr, state)}
}

// Get native way to get param.
func (p *Params) Get(key tcs.Bytes32) (*big.Int, error) {
	return solidity.NewUint256(p.sctx, key).Get()
}

// Set native way to set param.
func (p *Params) Set(key tcs.Bytes32, value *big.Int) error {
	if key == tcs.KeyRewardDecimals && value.Cmp(big.NewInt(tcs.MaxRewardDecimals)) > 0 {
		return errors.Errorf("reward decimals %v exceeds %d", value, tcs.MaxRewardDecimals)
	}
	return solidity.NewUint256(p.sctx, key).Set(value)
}

// Value reads a config variable, falling back to its default.
func (p *Params) Value(v *solidity.ConfigVariable) (uint64, error) {
	return v.Get(p.sctx)
}
