// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/transcranial/tcs/builtin/funds"
	"github.com/transcranial/tcs/builtin/params"
	"github.com/transcranial/tcs/builtin/roles"
	"github.com/transcranial/tcs/builtin/solidity"
	"github.com/transcranial/tcs/builtin/staking/globalstats"
	"github.com/transcranial/tcs/builtin/staking/indexedset"
	"github.com/transcranial/tcs/builtin/staking/payoutqueue"
	"github.com/transcranial/tcs/builtin/staking/reverts"
	"github.com/transcranial/tcs/builtin/staking/reward"
	"github.com/transcranial/tcs/log"
	"github.com/transcranial/tcs/state"
	"github.com/transcranial/tcs/tcs"
)

var (
	logger = log.WithContext("pkg", "staking")

	slotBalances = tcs.BytesToBytes32([]byte("staked-balances"))
	slotStakers  = tcs.BytesToBytes32([]byte("stakers"))
)

func SetLogger(l log.Logger) {
	logger = l
}

// Authorizer checks whether an address holds a role.
type Authorizer interface {
	Require(addr tcs.Address, role roles.Role) error
}

// Distribution describes one income distribution.
type Distribution struct {
	Amount    *big.Int // base units distributed
	Supply    *big.Int // total staked at distribution
	Increment *big.Int // rate increment, rscore per staked unit
	Rate      *big.Int // resulting rate
	IScore    *big.Int // I-Score consumed, nil unless claimed from the source
}

// Staking implements the staking ledger.
type Staking struct {
	state  *state.State
	params *params.Params
	auth   Authorizer
	source funds.Source

	balances *solidity.Mapping[tcs.Address, *big.Int]
	stakers  *indexedset.Set[tcs.Address]
	stats    *globalstats.Service
	rewards  *reward.Accumulator
	queue    *payoutqueue.Queue
}

// New create a new instance.
func New(addr tcs.Address, state *state.State, p *params.Params, auth Authorizer, source funds.Source) (*Staking, error) {
	decimals, err := p.Value(params.RewardDecimals)
	if err != nil {
		return nil, err
	}
	sctx := solidity.NewContext(addr, state)
	return &Staking{
		state:  state,
		params: p,
		auth:   auth,
		source: source,

		balances: solidity.NewMapping[tcs.Address, *big.Int](sctx, slotBalances),
		stakers:  indexedset.New[tcs.Address](sctx, slotStakers),
		stats:    globalstats.New(sctx),
		rewards:  reward.New(sctx, decimals),
		queue:    payoutqueue.New(sctx),
	}, nil
}

// atomic runs fn inside a state checkpoint, reverting every change when fn fails.
func (s *Staking) atomic(fn func() error) error {
	rev := s.state.NewCheckpoint()
	if err := fn(); err != nil {
		s.state.RevertTo(rev)
		return err
	}
	return nil
}

//
// Getters - no state change
//

// StakedBalance returns the staked balance of account.
func (s *Staking) StakedBalance(account tcs.Address) (*big.Int, error) {
	return s.balances.Get(account)
}

func (s *Staking) setBalance(account tcs.Address, balance *big.Int) error {
	if balance.Sign() == 0 {
		s.balances.Delete(account)
		return s.stakers.Remove(account)
	}
	if _, err := s.stakers.Add(account); err != nil {
		return err
	}
	return s.balances.Set(account, balance)
}

// QueryTotalStaked returns the sum of all staked balances.
func (s *Staking) QueryTotalStaked() (*big.Int, error) {
	return s.stats.TotalStaked()
}

// QueryPendingRewards returns the whole base units account could claim now.
func (s *Staking) QueryPendingRewards(account tcs.Address) (*big.Int, error) {
	balance, err := s.StakedBalance(account)
	if err != nil {
		return nil, err
	}
	return s.rewards.Query(account, balance)
}

// ListPayoutQueue returns queued payouts in FIFO order.
func (s *Staking) ListPayoutQueue() ([]*payoutqueue.Entry, error) {
	return s.queue.List()
}

// Stakers lists accounts with a non-zero staked balance.
func (s *Staking) Stakers() ([]tcs.Address, error) {
	return s.stakers.Members()
}

// RewardRate returns the cumulative reward rate and its scale.
func (s *Staking) RewardRate() (rate *big.Int, scale *big.Int, err error) {
	rate, err = s.rewards.Rate()
	if err != nil {
		return nil, nil, err
	}
	return rate, s.rewards.Scale(), nil
}

// Stats returns contract-wide totals.
func (s *Staking) Stats() (*globalstats.Stats, error) {
	return s.stats.Stats()
}

//
// Setters - state change
//

// Deposit stakes amount for account. The caller must be a depositor.
func (s *Staking) Deposit(caller, account tcs.Address, amount *big.Int) error {
	logger.Debug("depositing", "caller", caller, "account", account, "amount", amount)

	err := s.atomic(func() error {
		if err := s.auth.Require(caller, roles.RoleDepositor); err != nil {
			return err
		}
		if amount.Sign() <= 0 {
			return errors.WithMessagef(reverts.ErrInvalidAmount, "deposit %v", amount)
		}
		balance, err := s.StakedBalance(account)
		if err != nil {
			return err
		}
		if err := s.rewards.Update(account, balance); err != nil {
			return err
		}
		if err := s.setBalance(account, new(big.Int).Add(balance, amount)); err != nil {
			return err
		}
		if err := s.stats.AddStake(amount); err != nil {
			return err
		}
		return s.source.IncreasePrincipal(amount)
	})
	if err != nil {
		logger.Info("deposit failed", "account", account, "error", err)
		return err
	}

	logger.Info("deposited", "account", account, "amount", amount)
	return nil
}

// Withdraw unstakes amount of account and queues it, together with every
// claimable reward, for payout. It returns the queued entry.
func (s *Staking) Withdraw(caller, account tcs.Address, amount *big.Int) (*payoutqueue.Entry, error) {
	logger.Debug("withdrawing", "caller", caller, "account", account, "amount", amount)

	var entry *payoutqueue.Entry
	err := s.atomic(func() error {
		if err := s.auth.Require(caller, roles.RoleDepositor); err != nil {
			return err
		}
		balance, err := s.StakedBalance(account)
		if err != nil {
			return err
		}
		if amount.Sign() <= 0 || amount.Cmp(balance) > 0 {
			return errors.WithMessagef(reverts.ErrInsufficientBalance, "withdraw %v of %v", amount, balance)
		}
		if err := s.rewards.Update(account, balance); err != nil {
			return err
		}
		if err := s.setBalance(account, new(big.Int).Sub(balance, amount)); err != nil {
			return err
		}
		if err := s.stats.RemoveStake(amount); err != nil {
			return err
		}

		claimed, err := s.rewards.Claim(account, balance)
		switch {
		case errors.Is(err, reverts.ErrNothingToClaim):
			claimed = new(big.Int)
		case err != nil:
			return err
		}
		if err := s.stats.AddClaimed(claimed); err != nil {
			return err
		}

		payout := new(big.Int).Add(amount, claimed)
		entry, err = s.enqueue(account, payout)
		return err
	})
	if err != nil {
		logger.Info("withdraw failed", "account", account, "error", err)
		return nil, err
	}

	logger.Info("withdrew", "account", account, "amount", amount, "payout", entry.Amount, "id", entry.ID)
	return entry, nil
}

// ClaimRewards moves the claimable rewards of account into the payout queue
// and returns the claimed amount. The caller must be the account or a depositor.
func (s *Staking) ClaimRewards(caller, account tcs.Address) (*big.Int, error) {
	logger.Debug("claiming rewards", "caller", caller, "account", account)

	var claimed *big.Int
	err := s.atomic(func() error {
		if caller != account {
			if err := s.auth.Require(caller, roles.RoleDepositor); err != nil {
				return err
			}
		}
		balance, err := s.StakedBalance(account)
		if err != nil {
			return err
		}
		if claimed, err = s.rewards.Claim(account, balance); err != nil {
			return err
		}
		if err := s.stats.AddClaimed(claimed); err != nil {
			return err
		}
		_, err = s.enqueue(account, claimed)
		return err
	})
	if err != nil {
		logger.Info("claim failed", "account", account, "error", err)
		return nil, err
	}

	logger.Info("claimed rewards", "account", account, "amount", claimed)
	return claimed, nil
}

// enqueue takes payout out of the staked principal and queues it for transfer.
func (s *Staking) enqueue(account tcs.Address, payout *big.Int) (*payoutqueue.Entry, error) {
	if err := s.source.DecreasePrincipal(payout); err != nil {
		return nil, err
	}
	id, err := s.queue.Append(account, payout)
	if err != nil {
		return nil, err
	}
	return s.queue.Get(id)
}

// ClaimIncome restakes amount of realized income and distributes it to stakers.
func (s *Staking) ClaimIncome(amount *big.Int) (*Distribution, error) {
	logger.Debug("claiming income", "amount", amount)

	var dist *Distribution
	err := s.atomic(func() (err error) {
		dist, err = s.distribute(amount)
		return
	})
	if err != nil {
		logger.Info("claim income failed", "amount", amount, "error", err)
		return nil, err
	}

	logger.Info("distributed income", "amount", amount, "supply", dist.Supply, "rate", dist.Rate)
	return dist, nil
}

func (s *Staking) distribute(amount *big.Int) (*Distribution, error) {
	if amount.Sign() < 0 {
		return nil, errors.WithMessagef(reverts.ErrInvalidAmount, "income %v", amount)
	}
	supply, err := s.stats.TotalStaked()
	if err != nil {
		return nil, err
	}
	if supply.Sign() == 0 {
		return nil, reverts.ErrZeroSupply
	}
	if err := s.source.IncreasePrincipal(amount); err != nil {
		return nil, err
	}
	increment, err := s.rewards.Distribute(amount, supply)
	if err != nil {
		return nil, err
	}
	if err := s.stats.AddDistributed(amount); err != nil {
		return nil, err
	}
	rate, err := s.rewards.Rate()
	if err != nil {
		return nil, err
	}
	return &Distribution{
		Amount:    new(big.Int).Set(amount),
		Supply:    supply,
		Increment: increment,
		Rate:      rate,
	}, nil
}

// ClaimIScore claims the I-Score earned by the funds source, converts it to
// base units and distributes them as income.
func (s *Staking) ClaimIScore() (*Distribution, error) {
	logger.Debug("claiming iscore")

	var dist *Distribution
	err := s.atomic(func() error {
		supply, err := s.stats.TotalStaked()
		if err != nil {
			return err
		}
		if supply.Sign() == 0 {
			return reverts.ErrZeroSupply
		}

		iscore, err := s.source.QueryIncome()
		if err != nil {
			return err
		}
		minimum, err := s.params.Value(params.MinIScoreClaim)
		if err != nil {
			return err
		}
		if iscore.Cmp(new(big.Int).SetUint64(minimum)) < 0 {
			return errors.WithMessagef(reverts.ErrNothingToClaim, "iscore %v below %d", iscore, minimum)
		}

		claimed, units, err := s.source.ClaimIncome()
		if err != nil {
			return err
		}
		if units.Sign() == 0 {
			return errors.WithMessagef(reverts.ErrNothingToClaim, "iscore %v", iscore)
		}
		if dist, err = s.distribute(units); err != nil {
			return err
		}
		dist.IScore = claimed
		return nil
	})
	if err != nil {
		logger.Info("claim iscore failed", "error", err)
		return nil, err
	}

	logger.Info("claimed iscore", "iscore", dist.IScore, "amount", dist.Amount, "rate", dist.Rate)
	return dist, nil
}

// PayoutFunds transfers queued payouts in FIFO order while liquidity lasts,
// stopping at the first entry that does not fit. It returns the paid entries.
// A transfer failure reverts the whole call.
func (s *Staking) PayoutFunds() ([]*payoutqueue.Entry, error) {
	logger.Debug("paying out funds")

	var paid []*payoutqueue.Entry
	err := s.atomic(func() error {
		available, err := s.source.AvailableLiquidity()
		if err != nil {
			return err
		}
		entries, err := s.queue.Drain(available)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := s.source.Transfer(e.Recipient, e.Amount); err != nil {
				return err
			}
			if err := s.queue.Remove(e.ID); err != nil {
				return err
			}
			if err := s.stats.AddPaidOut(e.Amount); err != nil {
				return err
			}
		}
		paid = entries
		return nil
	})
	if err != nil {
		logger.Info("payout failed", "error", err)
		return nil, err
	}

	if len(paid) > 0 {
		logger.Info("paid out funds", "count", len(paid))
	}
	return paid, nil
}
