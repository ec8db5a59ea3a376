// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/samber/lo"

	"github.com/transcranial/tcs/builtin/funds"
	"github.com/transcranial/tcs/builtin/roles"
	"github.com/transcranial/tcs/builtin/staking"
	"github.com/transcranial/tcs/builtin/staking/payoutqueue"
	"github.com/transcranial/tcs/engine"
	"github.com/transcranial/tcs/logdb"
	"github.com/transcranial/tcs/tcs"
)

func amount(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		return nil
	}
	return (*math.HexOrDecimal256)(new(big.Int).Set(v))
}

// AmountRequest moves an amount for an account.
type AmountRequest struct {
	Caller  tcs.Address           `json:"caller"`
	Account tcs.Address           `json:"account"`
	Amount  *math.HexOrDecimal256 `json:"amount"`
}

type ClaimRequest struct {
	Caller  tcs.Address `json:"caller"`
	Account tcs.Address `json:"account"`
}

type IncomeRequest struct {
	Caller tcs.Address           `json:"caller"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type AdvanceRequest struct {
	Caller tcs.Address `json:"caller"`
	Blocks uint64      `json:"blocks"`
}

type Entry struct {
	ID        uint64                `json:"id"`
	Recipient tcs.Address           `json:"recipient"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
}

func ConvertEntries(entries []*payoutqueue.Entry) []*Entry {
	return lo.Map(entries, func(e *payoutqueue.Entry, _ int) *Entry {
		return &Entry{
			ID:        uint64(e.ID),
			Recipient: e.Recipient,
			Amount:    amount(e.Amount),
		}
	})
}

type Claimed struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type Distribution struct {
	Seq       uint64                `json:"seq,omitempty"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
	Supply    *math.HexOrDecimal256 `json:"supply"`
	Increment *math.HexOrDecimal256 `json:"increment"`
	Rate      *math.HexOrDecimal256 `json:"rate"`
	IScore    *math.HexOrDecimal256 `json:"iscore,omitempty"`
	Time      uint64                `json:"time,omitempty"`
}

func ConvertDistribution(d *staking.Distribution) *Distribution {
	return &Distribution{
		Amount:    amount(d.Amount),
		Supply:    amount(d.Supply),
		Increment: amount(d.Increment),
		Rate:      amount(d.Rate),
		IScore:    amount(d.IScore),
	}
}

func ConvertDistributions(dists []*logdb.Distribution) []*Distribution {
	return lo.Map(dists, func(d *logdb.Distribution, _ int) *Distribution {
		return &Distribution{
			Seq:       d.Seq,
			Amount:    amount(d.Amount),
			Supply:    amount(d.Supply),
			Increment: amount(d.Increment),
			Rate:      amount(d.Rate),
			IScore:    amount(d.IScore),
			Time:      d.Time,
		}
	})
}

type Payout struct {
	Seq       uint64                `json:"seq"`
	QueueID   uint64                `json:"queueId"`
	Recipient tcs.Address           `json:"recipient"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
	Time      uint64                `json:"time"`
}

func ConvertPayouts(payouts []*logdb.Payout) []*Payout {
	return lo.Map(payouts, func(p *logdb.Payout, _ int) *Payout {
		return &Payout{
			Seq:       p.Seq,
			QueueID:   p.QueueID,
			Recipient: p.Recipient,
			Amount:    amount(p.Amount),
			Time:      p.Time,
		}
	})
}

type Unstake struct {
	Amount       *math.HexOrDecimal256 `json:"amount"`
	UnlockHeight uint64                `json:"unlockHeight"`
}

type Status struct {
	TotalStaked      *math.HexOrDecimal256 `json:"totalStaked"`
	TotalDelegated   *math.HexOrDecimal256 `json:"totalDelegated"`
	UnlockedFunds    *math.HexOrDecimal256 `json:"unlockedFunds"`
	Balance          *math.HexOrDecimal256 `json:"balance"`
	RewardRate       *math.HexOrDecimal256 `json:"rewardRate"`
	RewardScale      *math.HexOrDecimal256 `json:"rewardScale"`
	PendingIScore    *math.HexOrDecimal256 `json:"pendingIScore"`
	Unstaking        []*Unstake            `json:"unstaking"`
	Height           uint64                `json:"height"`
	QueueLength      int                   `json:"queueLength"`
	Stakers          int                   `json:"stakers"`
	TotalDistributed *math.HexOrDecimal256 `json:"totalDistributed"`
	TotalClaimed     *math.HexOrDecimal256 `json:"totalClaimed"`
	TotalPaidOut     *math.HexOrDecimal256 `json:"totalPaidOut"`
	Params           map[string]uint64     `json:"params"`
}

func ConvertStatus(s *engine.Status) *Status {
	return &Status{
		TotalStaked:    amount(s.TotalStaked),
		TotalDelegated: amount(s.TotalPrincipal),
		UnlockedFunds:  amount(s.AvailableLiquidity),
		Balance:        amount(s.Balance),
		RewardRate:     amount(s.RewardRate),
		RewardScale:    amount(s.RewardScale),
		PendingIScore:  amount(s.PendingIScore),
		Unstaking: lo.Map(s.Locked, func(u *funds.Unstake, _ int) *Unstake {
			return &Unstake{Amount: amount(u.Amount), UnlockHeight: u.UnlockHeight}
		}),
		Height:           s.Height,
		QueueLength:      s.QueueLength,
		Stakers:          s.Stakers,
		TotalDistributed: amount(s.TotalDistributed),
		TotalClaimed:     amount(s.TotalClaimed),
		TotalPaidOut:     amount(s.TotalPaidOut),
		Params:           s.Params,
	}
}

type Account struct {
	Address        tcs.Address           `json:"address"`
	Staked         *math.HexOrDecimal256 `json:"staked"`
	PendingRewards *math.HexOrDecimal256 `json:"pendingRewards"`
	Balance        *math.HexOrDecimal256 `json:"balance"`
	Roles          []roles.Role          `json:"roles"`
}

func ConvertAccount(a *engine.Account) *Account {
	return &Account{
		Address:        a.Address,
		Staked:         amount(a.Staked),
		PendingRewards: amount(a.PendingRewards),
		Balance:        amount(a.Balance),
		Roles:          lo.Ternary(a.Roles == nil, []roles.Role{}, a.Roles),
	}
}
