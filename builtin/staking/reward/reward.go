// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reward accrues income to stakers in proportion to their balance
// using a cumulative reward-per-share rate. Amounts inside the accumulator are
// rscore units, i.e. base units scaled by 10^decimals.
package reward

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/transcranial/tcs/builtin/solidity"
	"github.com/transcranial/tcs/builtin/staking/reverts"
	"github.com/transcranial/tcs/tcs"
)

var (
	slotRate     = tcs.BytesToBytes32([]byte("reward-rate"))
	slotAccounts = tcs.BytesToBytes32([]byte("reward-accounts"))
)

// Account is the per-account reward state.
type Account struct {
	Checkpoint *big.Int // rate at the last update
	Pending    *big.Int // accrued rscore not yet claimed
}

func (a *Account) normalize() {
	if a.Checkpoint == nil {
		a.Checkpoint = new(big.Int)
	}
	if a.Pending == nil {
		a.Pending = new(big.Int)
	}
}

// Accumulator tracks the global rate and every account's position against it.
type Accumulator struct {
	rate     *solidity.Uint256
	accounts *solidity.Mapping[tcs.Address, *Account]
	scale    *big.Int
}

func New(sctx *solidity.Context, decimals uint64) *Accumulator {
	return &Accumulator{
		rate:     solidity.NewUint256(sctx, slotRate),
		accounts: solidity.NewMapping[tcs.Address, *Account](sctx, slotAccounts),
		scale:    tcs.RScoreScale(decimals),
	}
}

// Scale returns 10^decimals.
func (a *Accumulator) Scale() *big.Int {
	return new(big.Int).Set(a.scale)
}

// Rate returns the cumulative reward per staked unit, in rscore.
func (a *Accumulator) Rate() (*big.Int, error) {
	return a.rate.Get()
}

func (a *Accumulator) account(addr tcs.Address) (*Account, error) {
	acc, err := a.accounts.Get(addr)
	if err != nil {
		return nil, err
	}
	acc.normalize()
	return acc, nil
}

// Checkpoint returns the rate recorded at the last update of addr.
func (a *Accumulator) Checkpoint(addr tcs.Address) (*big.Int, error) {
	acc, err := a.account(addr)
	if err != nil {
		return nil, err
	}
	return acc.Checkpoint, nil
}

// Pending returns the rscore accrued to addr up to its last update.
func (a *Accumulator) Pending(addr tcs.Address) (*big.Int, error) {
	acc, err := a.account(addr)
	if err != nil {
		return nil, err
	}
	return acc.Pending, nil
}

// Distribute spreads amount over supply staked units and returns the rate increment.
// The floor remainder of the division is never assigned to anyone.
func (a *Accumulator) Distribute(amount, supply *big.Int) (*big.Int, error) {
	if amount.Sign() < 0 {
		return nil, reverts.ErrInvalidAmount
	}
	if supply.Sign() <= 0 {
		return nil, reverts.ErrZeroSupply
	}
	increment := new(big.Int).Mul(amount, a.scale)
	increment.Quo(increment, supply)
	if err := a.rate.Add(increment); err != nil {
		return nil, errors.Wrap(err, "reward rate")
	}
	return increment, nil
}

// accrued is balance * (rate - checkpoint) + pending.
func accrued(acc *Account, rate, balance *big.Int) *big.Int {
	delta := new(big.Int).Sub(rate, acc.Checkpoint)
	delta.Mul(delta, balance)
	return delta.Add(delta, acc.Pending)
}

// Update settles rewards earned by balance since the last checkpoint.
// It must be called before the balance of addr changes.
func (a *Accumulator) Update(addr tcs.Address, balance *big.Int) error {
	acc, err := a.account(addr)
	if err != nil {
		return err
	}
	rate, err := a.rate.Get()
	if err != nil {
		return err
	}
	if rate.Cmp(acc.Checkpoint) == 0 {
		return nil
	}
	acc.Pending = accrued(acc, rate, balance)
	acc.Checkpoint = rate
	return a.accounts.Set(addr, acc)
}

// Query returns claimable rewards of addr in base units without mutating state.
func (a *Accumulator) Query(addr tcs.Address, balance *big.Int) (*big.Int, error) {
	acc, err := a.account(addr)
	if err != nil {
		return nil, err
	}
	rate, err := a.rate.Get()
	if err != nil {
		return nil, err
	}
	total := accrued(acc, rate, balance)
	return total.Quo(total, a.scale), nil
}

// Claim settles and returns the whole base units accrued to addr.
// The fractional remainder stays pending. No funds are moved.
func (a *Accumulator) Claim(addr tcs.Address, balance *big.Int) (*big.Int, error) {
	if err := a.Update(addr, balance); err != nil {
		return nil, err
	}
	acc, err := a.account(addr)
	if err != nil {
		return nil, err
	}
	claimed := new(big.Int).Quo(acc.Pending, a.scale)
	if claimed.Sign() == 0 {
		return nil, reverts.ErrNothingToClaim
	}
	acc.Pending.Sub(acc.Pending, new(big.Int).Mul(claimed, a.scale))
	if err := a.accounts.Set(addr, acc); err != nil {
		return nil, err
	}
	return claimed, nil
}
