// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package engine serializes operations on the staking ledger and commits
// each successful one to the key-value store in a single batch.
package engine

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/transcranial/tcs/builtin/funds"
	"github.com/transcranial/tcs/builtin/params"
	"github.com/transcranial/tcs/builtin/roles"
	"github.com/transcranial/tcs/builtin/solidity"
	"github.com/transcranial/tcs/builtin/staking"
	"github.com/transcranial/tcs/builtin/staking/payoutqueue"
	"github.com/transcranial/tcs/builtin/staking/reverts"
	"github.com/transcranial/tcs/log"
	"github.com/transcranial/tcs/logdb"
	"github.com/transcranial/tcs/state"
	"github.com/transcranial/tcs/tcs"
)

var logger = log.WithContext("pkg", "engine")

// ErrNoHistory is returned by history queries when no log db is attached.
var ErrNoHistory = errors.New("history is disabled")

// Engine is the single writer of the ledger state.
type Engine struct {
	lock   sync.RWMutex
	stater *state.Stater
	logDB  *logdb.LogDB
	now    func() time.Time

	changedLock sync.Mutex
	changed     chan struct{}
}

// New creates an engine over stater. logDB may be nil.
func New(stater *state.Stater, logDB *logdb.LogDB) *Engine {
	return &Engine{
		stater:  stater,
		logDB:   logDB,
		now:     time.Now,
		changed: make(chan struct{}),
	}
}

// Changed returns a channel which is closed once the next operation commits.
func (e *Engine) Changed() <-chan struct{} {
	e.changedLock.Lock()
	defer e.changedLock.Unlock()
	return e.changed
}

func (e *Engine) broadcast() {
	e.changedLock.Lock()
	defer e.changedLock.Unlock()
	close(e.changed)
	e.changed = make(chan struct{})
}

// services are the builtin contracts bound to one state.
type services struct {
	state   *state.State
	params  *params.Params
	roles   *roles.Service
	system  *funds.System
	staking *staking.Staking
}

func load(st *state.State) (*services, error) {
	p := params.New(tcs.ParamsAddress, st)
	perUnit, err := p.Value(params.IScorePerUnit)
	if err != nil {
		return nil, err
	}
	lockPeriod, err := p.Value(params.UnstakeLockPeriod)
	if err != nil {
		return nil, err
	}

	rs := roles.New(solidity.NewContext(tcs.RolesAddress, st))
	system := funds.NewSystem(
		solidity.NewContext(tcs.SystemAddress, st),
		tcs.StakingAddress,
		st,
		funds.Config{IScorePerUnit: perUnit, UnstakeLockPeriod: lockPeriod},
	)
	sk, err := staking.New(tcs.StakingAddress, st, p, rs, system)
	if err != nil {
		return nil, err
	}
	return &services{st, p, rs, system, sk}, nil
}

// records collects history rows of one operation.
type records struct {
	payouts       []*logdb.Payout
	distributions []*logdb.Distribution
}

func (r *records) distribution(d *staking.Distribution, now uint64) {
	r.distributions = append(r.distributions, &logdb.Distribution{
		Amount:    d.Amount,
		Supply:    d.Supply,
		Increment: d.Increment,
		Rate:      d.Rate,
		IScore:    d.IScore,
		Time:      now,
	})
}

// mutate runs fn on a fresh state and commits it when fn succeeds.
func (e *Engine) mutate(op string, fn func(svc *services, rec *records) error) (err error) {
	e.lock.Lock()
	defer e.lock.Unlock()
	defer func() { metricsHandleOp(op, err) }()

	svc, err := load(e.stater.NewState())
	if err != nil {
		return err
	}
	rec := &records{}
	if err := fn(svc, rec); err != nil {
		return err
	}

	stage := svc.state.Stage()
	if err := stage.Commit(); err != nil {
		return errors.Wrap(err, "commit state")
	}
	logger.Debug("state committed", "op", op, "changes", stage.Len())

	e.writeHistory(rec)
	e.updateGauges(svc)
	e.broadcast()
	return nil
}

// writeHistory persists rows after the state commit. History is best effort.
func (e *Engine) writeHistory(rec *records) {
	if e.logDB == nil || (len(rec.payouts) == 0 && len(rec.distributions) == 0) {
		return
	}
	w := e.logDB.NewWriter()
	write := func() error {
		for _, p := range rec.payouts {
			if err := w.WritePayout(p); err != nil {
				return err
			}
		}
		for _, d := range rec.distributions {
			if err := w.WriteDistribution(d); err != nil {
				return err
			}
		}
		return w.Commit()
	}
	if err := write(); err != nil {
		_ = w.Rollback()
		logger.Warn("failed to write history", "err", err)
	}
}

func (e *Engine) updateGauges(svc *services) {
	if total, err := svc.staking.QueryTotalStaked(); err == nil && total.IsInt64() {
		metricTotalStaked().Set(total.Int64())
	}
	if entries, err := svc.staking.ListPayoutQueue(); err == nil {
		metricQueueLength().Set(int64(len(entries)))
	}
}

// view runs fn on a read-only state.
func (e *Engine) view(fn func(svc *services) error) error {
	e.lock.RLock()
	defer e.lock.RUnlock()

	svc, err := load(e.stater.NewState())
	if err != nil {
		return err
	}
	return fn(svc)
}

func (e *Engine) unixNow() uint64 {
	return uint64(e.now().Unix())
}

// Deposit moves amount of native balance from caller into the ledger and stakes it for account.
func (e *Engine) Deposit(caller, account tcs.Address, amount *big.Int) error {
	return e.mutate("deposit", func(svc *services, _ *records) error {
		if amount.Sign() <= 0 {
			return errors.WithMessagef(reverts.ErrInvalidAmount, "deposit %v", amount)
		}
		if err := funds.Move(svc.state, caller, tcs.StakingAddress, amount); err != nil {
			return err
		}
		return svc.staking.Deposit(caller, account, amount)
	})
}

// Withdraw unstakes amount for account and queues the payout.
func (e *Engine) Withdraw(caller, account tcs.Address, amount *big.Int) (entry *payoutqueue.Entry, err error) {
	err = e.mutate("withdraw", func(svc *services, _ *records) (err error) {
		entry, err = svc.staking.Withdraw(caller, account, amount)
		return
	})
	return
}

// ClaimRewards queues the claimable rewards of account.
func (e *Engine) ClaimRewards(caller, account tcs.Address) (claimed *big.Int, err error) {
	err = e.mutate("claim_rewards", func(svc *services, _ *records) (err error) {
		claimed, err = svc.staking.ClaimRewards(caller, account)
		return
	})
	return
}

// ClaimIncome moves amount of income from caller into the ledger and distributes it.
func (e *Engine) ClaimIncome(caller tcs.Address, amount *big.Int) (dist *staking.Distribution, err error) {
	err = e.mutate("claim_income", func(svc *services, rec *records) (err error) {
		if amount.Sign() <= 0 {
			return errors.WithMessagef(reverts.ErrInvalidAmount, "income %v", amount)
		}
		if err := funds.Move(svc.state, caller, tcs.StakingAddress, amount); err != nil {
			return err
		}
		if dist, err = svc.staking.ClaimIncome(amount); err != nil {
			return err
		}
		rec.distribution(dist, e.unixNow())
		return nil
	})
	return
}

// ClaimIScore claims the I-Score earned by the staked principal and distributes it.
func (e *Engine) ClaimIScore() (dist *staking.Distribution, err error) {
	err = e.mutate("claim_iscore", func(svc *services, rec *records) (err error) {
		if dist, err = svc.staking.ClaimIScore(); err != nil {
			return err
		}
		rec.distribution(dist, e.unixNow())
		return nil
	})
	return
}

// PayoutFunds pays queued entries while liquidity lasts.
func (e *Engine) PayoutFunds() (paid []*payoutqueue.Entry, err error) {
	defer func() {
		status := "ok"
		if err != nil {
			status = "failed"
		}
		metricPayoutBatch().ObserveWithLabels(int64(len(paid)), map[string]string{"status": status})
	}()

	err = e.mutate("payout", func(svc *services, rec *records) (err error) {
		if paid, err = svc.staking.PayoutFunds(); err != nil {
			return err
		}
		now := e.unixNow()
		for _, entry := range paid {
			rec.payouts = append(rec.payouts, &logdb.Payout{
				QueueID:   uint64(entry.ID),
				Recipient: entry.Recipient,
				Amount:    entry.Amount,
				Time:      now,
			})
		}
		return nil
	})
	if err != nil {
		paid = nil
	}
	return
}

// GrantRole gives role to addr. Only the admin may call it.
func (e *Engine) GrantRole(caller tcs.Address, role roles.Role, addr tcs.Address) error {
	return e.mutate("grant_role", func(svc *services, _ *records) error {
		return svc.roles.Grant(caller, role, addr)
	})
}

// RevokeRole takes role from addr. Only the admin may call it.
func (e *Engine) RevokeRole(caller tcs.Address, role roles.Role, addr tcs.Address) error {
	return e.mutate("revoke_role", func(svc *services, _ *records) error {
		return svc.roles.Revoke(caller, role, addr)
	})
}

// SetAdmin hands the admin role over.
func (e *Engine) SetAdmin(caller, admin tcs.Address) error {
	return e.mutate("set_admin", func(svc *services, _ *records) error {
		return svc.roles.SetAdmin(caller, admin)
	})
}

// SetParam changes a governance param. Reward decimals are fixed at genesis.
func (e *Engine) SetParam(caller tcs.Address, key tcs.Bytes32, value *big.Int) error {
	return e.mutate("set_param", func(svc *services, _ *records) error {
		if err := svc.roles.Require(caller, roles.RoleOperator); err != nil {
			return err
		}
		if key == tcs.KeyRewardDecimals {
			return errors.WithMessage(reverts.ErrPermission, "reward decimals are fixed")
		}
		return svc.params.Set(key, value)
	})
}

// AccrueIScore credits I-Score to the funds source, standing in for network rewards.
func (e *Engine) AccrueIScore(caller tcs.Address, iscore *big.Int) error {
	return e.mutate("accrue_iscore", func(svc *services, _ *records) error {
		if err := svc.roles.Require(caller, roles.RoleOperator); err != nil {
			return err
		}
		return svc.system.AccrueIScore(iscore)
	})
}

// Advance moves the funds source clock by n blocks and returns the new height.
func (e *Engine) Advance(caller tcs.Address, n uint64) (height uint64, err error) {
	err = e.mutate("advance", func(svc *services, _ *records) (err error) {
		if err := svc.roles.Require(caller, roles.RoleOperator); err != nil {
			return err
		}
		height, err = svc.system.Advance(n)
		return
	})
	return
}

// Status is a snapshot of ledger-wide values.
type Status struct {
	TotalStaked        *big.Int
	TotalPrincipal     *big.Int
	AvailableLiquidity *big.Int
	Balance            *big.Int
	RewardRate         *big.Int
	RewardScale        *big.Int
	PendingIScore      *big.Int
	Locked             []*funds.Unstake
	Height             uint64
	QueueLength        int
	Stakers            int
	TotalDistributed   *big.Int
	TotalClaimed       *big.Int
	TotalPaidOut       *big.Int
	Params             map[string]uint64
}

func (e *Engine) Status() (*Status, error) {
	var s Status
	err := e.view(func(svc *services) (err error) {
		if s.TotalStaked, err = svc.staking.QueryTotalStaked(); err != nil {
			return err
		}
		if s.TotalPrincipal, err = svc.system.TotalPrincipal(); err != nil {
			return err
		}
		if s.AvailableLiquidity, err = svc.system.AvailableLiquidity(); err != nil {
			return err
		}
		if s.Balance, err = svc.state.GetBalance(tcs.StakingAddress); err != nil {
			return err
		}
		if s.RewardRate, s.RewardScale, err = svc.staking.RewardRate(); err != nil {
			return err
		}
		if s.PendingIScore, err = svc.system.QueryIncome(); err != nil {
			return err
		}
		if s.Locked, err = svc.system.Unstakes(); err != nil {
			return err
		}
		if s.Height, err = svc.system.Height(); err != nil {
			return err
		}
		queue, err := svc.staking.ListPayoutQueue()
		if err != nil {
			return err
		}
		s.QueueLength = len(queue)
		stakers, err := svc.staking.Stakers()
		if err != nil {
			return err
		}
		s.Stakers = len(stakers)

		stats, err := svc.staking.Stats()
		if err != nil {
			return err
		}
		s.TotalDistributed, s.TotalClaimed, s.TotalPaidOut = stats.Distributed, stats.Claimed, stats.PaidOut

		s.Params = make(map[string]uint64)
		for _, v := range []*solidity.ConfigVariable{params.RewardDecimals, params.IScorePerUnit, params.MinIScoreClaim, params.UnstakeLockPeriod} {
			value, err := svc.params.Value(v)
			if err != nil {
				return err
			}
			s.Params[v.Name()] = value
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Account is the ledger view of one address.
type Account struct {
	Address        tcs.Address
	Staked         *big.Int
	PendingRewards *big.Int
	Balance        *big.Int
	Roles          []roles.Role
}

func (e *Engine) Account(addr tcs.Address) (*Account, error) {
	acc := Account{Address: addr}
	err := e.view(func(svc *services) (err error) {
		if acc.Staked, err = svc.staking.StakedBalance(addr); err != nil {
			return err
		}
		if acc.PendingRewards, err = svc.staking.QueryPendingRewards(addr); err != nil {
			return err
		}
		if acc.Balance, err = svc.state.GetBalance(addr); err != nil {
			return err
		}
		for _, r := range roles.All {
			ok, err := svc.roles.Has(addr, r)
			if err != nil {
				return err
			}
			if ok {
				acc.Roles = append(acc.Roles, r)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// PayoutQueue lists queued payouts in FIFO order.
func (e *Engine) PayoutQueue() (entries []*payoutqueue.Entry, err error) {
	err = e.view(func(svc *services) (err error) {
		entries, err = svc.staking.ListPayoutQueue()
		return
	})
	return
}

// RoleMembers lists the holders of role.
func (e *Engine) RoleMembers(role roles.Role) (members []tcs.Address, err error) {
	err = e.view(func(svc *services) (err error) {
		members, err = svc.roles.Members(role)
		return
	})
	return
}

// Admin returns the roles admin.
func (e *Engine) Admin() (admin tcs.Address, err error) {
	err = e.view(func(svc *services) (err error) {
		admin, err = svc.roles.Admin()
		return
	})
	return
}

// HasHistory reports whether payouts and distributions are recorded.
func (e *Engine) HasHistory() bool {
	return e.logDB != nil
}

// PayoutHistory filters recorded payouts.
func (e *Engine) PayoutHistory(ctx context.Context, filter *logdb.PayoutFilter) ([]*logdb.Payout, error) {
	if e.logDB == nil {
		return nil, ErrNoHistory
	}
	return e.logDB.FilterPayouts(ctx, filter)
}

// Distributions filters recorded distributions.
func (e *Engine) Distributions(ctx context.Context, filter *logdb.DistributionFilter) ([]*logdb.Distribution, error) {
	if e.logDB == nil {
		return nil, ErrNoHistory
	}
	return e.logDB.FilterDistributions(ctx, filter)
}
