// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package funds models where staked principal lives. The System source keeps
// the ledger's native balance, stakes it with the network, and locks
// unstaked amounts for a number of blocks before they become liquid.
package funds

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/transcranial/tcs/builtin/solidity"
	"github.com/transcranial/tcs/builtin/staking/reverts"
	"github.com/transcranial/tcs/log"
	"github.com/transcranial/tcs/tcs"
)

var logger = log.WithContext("pkg", "funds")

// Source is the funds source consumed by the staking ledger.
type Source interface {
	// IncreasePrincipal stakes amount more of the held balance.
	IncreasePrincipal(amount *big.Int) error
	// DecreasePrincipal unstakes amount; it becomes liquid once unlocked.
	DecreasePrincipal(amount *big.Int) error
	// TotalPrincipal returns the staked amount.
	TotalPrincipal() (*big.Int, error)
	// AvailableLiquidity returns the balance neither staked nor locked.
	AvailableLiquidity() (*big.Int, error)
	// Transfer sends amount of liquid balance to recipient.
	Transfer(recipient tcs.Address, amount *big.Int) error
	// QueryIncome returns the claimable income in I-Score.
	QueryIncome() (*big.Int, error)
	// ClaimIncome claims the whole base units of income into the balance.
	// It returns the I-Score consumed and the base units credited.
	ClaimIncome() (iscore *big.Int, units *big.Int, err error)
}

// BalanceStore reads and writes native balances.
type BalanceStore interface {
	GetBalance(addr tcs.Address) (*big.Int, error)
	SetBalance(addr tcs.Address, balance *big.Int) error
}

// Config holds the network parameters of the System source.
type Config struct {
	IScorePerUnit     uint64
	UnstakeLockPeriod uint64
}

// Unstake is principal waiting for its unlock height.
type Unstake struct {
	Amount       *big.Int
	UnlockHeight uint64
}

var (
	slotStake    = tcs.BytesToBytes32([]byte("system-stake"))
	slotHeight   = tcs.BytesToBytes32([]byte("system-height"))
	slotIScore   = tcs.BytesToBytes32([]byte("system-iscore"))
	slotUnstakes = tcs.BytesToBytes32([]byte("system-unstakes"))
)

// System is a Source simulating network staking of one holder account.
type System struct {
	holder   tcs.Address
	balances BalanceStore
	config   Config

	stake    *solidity.Uint256
	height   *solidity.Uint256
	iscore   *solidity.Uint256
	unstakes *solidity.Mapping[tcs.Address, []*Unstake]
}

var _ Source = (*System)(nil)

// NewSystem creates the source for funds held by holder. Its own records live in sctx.
func NewSystem(sctx *solidity.Context, holder tcs.Address, balances BalanceStore, config Config) *System {
	if config.IScorePerUnit == 0 {
		config.IScorePerUnit = tcs.DefaultIScorePerUnit
	}
	return &System{
		holder:   holder,
		balances: balances,
		config:   config,
		stake:    solidity.NewUint256(sctx, slotStake),
		height:   solidity.NewUint256(sctx, slotHeight),
		iscore:   solidity.NewUint256(sctx, slotIScore),
		unstakes: solidity.NewMapping[tcs.Address, []*Unstake](sctx, slotUnstakes),
	}
}

// Height returns the current block height of the source clock.
func (s *System) Height() (uint64, error) {
	h, err := s.height.Get()
	if err != nil {
		return 0, err
	}
	return h.Uint64(), nil
}

// Advance moves the clock forward by n blocks and releases matured unstakes.
func (s *System) Advance(n uint64) (uint64, error) {
	h, err := s.Height()
	if err != nil {
		return 0, err
	}
	h += n
	if err := s.height.Set(new(big.Int).SetUint64(h)); err != nil {
		return 0, err
	}

	list, err := s.unstakes.Get(s.holder)
	if err != nil {
		return 0, err
	}
	pending := list[:0]
	for _, u := range list {
		if u.UnlockHeight > h {
			pending = append(pending, u)
		}
	}
	if len(pending) != len(list) {
		logger.Debug("unstakes released", "count", len(list)-len(pending), "height", h)
		if err := s.unstakes.Set(s.holder, pending); err != nil {
			return 0, err
		}
	}
	return h, nil
}

// Unstakes returns principal still locked.
func (s *System) Unstakes() ([]*Unstake, error) {
	h, err := s.Height()
	if err != nil {
		return nil, err
	}
	list, err := s.unstakes.Get(s.holder)
	if err != nil {
		return nil, err
	}
	var locked []*Unstake
	for _, u := range list {
		if u.UnlockHeight > h {
			locked = append(locked, u)
		}
	}
	return locked, nil
}

func (s *System) locked() (*big.Int, error) {
	list, err := s.Unstakes()
	if err != nil {
		return nil, err
	}
	sum := new(big.Int)
	for _, u := range list {
		sum.Add(sum, u.Amount)
	}
	return sum, nil
}

func (s *System) TotalPrincipal() (*big.Int, error) {
	return s.stake.Get()
}

func (s *System) AvailableLiquidity() (*big.Int, error) {
	balance, err := s.balances.GetBalance(s.holder)
	if err != nil {
		return nil, err
	}
	stake, err := s.stake.Get()
	if err != nil {
		return nil, err
	}
	locked, err := s.locked()
	if err != nil {
		return nil, err
	}
	available := new(big.Int).Sub(balance, stake)
	available.Sub(available, locked)
	if available.Sign() < 0 {
		return new(big.Int), nil
	}
	return available, nil
}

func (s *System) IncreasePrincipal(amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.ErrInvalidAmount
	}
	available, err := s.AvailableLiquidity()
	if err != nil {
		return err
	}
	if amount.Cmp(available) > 0 {
		return errors.WithMessagef(reverts.ErrInsufficientBalance, "stake %v, liquid %v", amount, available)
	}
	return s.stake.Add(amount)
}

func (s *System) DecreasePrincipal(amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.ErrInvalidAmount
	}
	stake, err := s.stake.Get()
	if err != nil {
		return err
	}
	if amount.Cmp(stake) > 0 {
		return errors.WithMessagef(reverts.ErrInsufficientBalance, "unstake %v, staked %v", amount, stake)
	}
	if err := s.stake.Sub(amount); err != nil {
		return err
	}
	if s.config.UnstakeLockPeriod == 0 || amount.Sign() == 0 {
		return nil
	}

	h, err := s.Height()
	if err != nil {
		return err
	}
	list, err := s.unstakes.Get(s.holder)
	if err != nil {
		return err
	}
	list = append(list, &Unstake{
		Amount:       new(big.Int).Set(amount),
		UnlockHeight: h + s.config.UnstakeLockPeriod,
	})
	return s.unstakes.Set(s.holder, list)
}

func (s *System) Transfer(recipient tcs.Address, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return reverts.ErrInvalidAmount
	}
	available, err := s.AvailableLiquidity()
	if err != nil {
		return err
	}
	if amount.Cmp(available) > 0 {
		return errors.WithMessagef(reverts.ErrTransfer, "send %v to %v, liquid %v", amount, recipient, available)
	}
	return Move(s.balances, s.holder, recipient, amount)
}

// AccrueIScore adds income earned by the staked principal.
func (s *System) AccrueIScore(iscore *big.Int) error {
	if iscore.Sign() < 0 {
		return reverts.ErrInvalidAmount
	}
	return s.iscore.Add(iscore)
}

func (s *System) QueryIncome() (*big.Int, error) {
	return s.iscore.Get()
}

func (s *System) ClaimIncome() (*big.Int, *big.Int, error) {
	iscore, err := s.iscore.Get()
	if err != nil {
		return nil, nil, err
	}
	perUnit := new(big.Int).SetUint64(s.config.IScorePerUnit)
	units, remainder := new(big.Int).QuoRem(iscore, perUnit, new(big.Int))
	claimed := new(big.Int).Sub(iscore, remainder)

	if err := s.iscore.Set(remainder); err != nil {
		return nil, nil, err
	}
	balance, err := s.balances.GetBalance(s.holder)
	if err != nil {
		return nil, nil, err
	}
	if err := s.balances.SetBalance(s.holder, new(big.Int).Add(balance, units)); err != nil {
		return nil, nil, err
	}
	return claimed, units, nil
}

// Move transfers amount of native balance between accounts.
func Move(balances BalanceStore, from, to tcs.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.ErrInvalidAmount
	}
	fromBalance, err := balances.GetBalance(from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return errors.WithMessagef(reverts.ErrInsufficientBalance, "%v holds %v, needs %v", from, fromBalance, amount)
	}
	if err := balances.SetBalance(from, new(big.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}
	toBalance, err := balances.GetBalance(to)
	if err != nil {
		return err
	}
	return balances.SetBalance(to, new(big.Int).Add(toBalance, amount))
}
