// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package globalstats

import (
	"math/big"

	"github.com/transcranial/tcs/builtin/solidity"
	"github.com/transcranial/tcs/tcs"
)

var (
	slotTotalStaked = tcs.BytesToBytes32([]byte("total-staked"))
	slotDistributed = tcs.BytesToBytes32([]byte("total-distributed"))
	slotClaimed     = tcs.BytesToBytes32([]byte("total-claimed"))
	slotPaidOut     = tcs.BytesToBytes32([]byte("total-paid-out"))
)

// Service manages contract-wide staking totals.
type Service struct {
	totalStaked *solidity.Uint256
	distributed *solidity.Uint256
	claimed     *solidity.Uint256
	paidOut     *solidity.Uint256
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		totalStaked: solidity.NewUint256(sctx, slotTotalStaked),
		distributed: solidity.NewUint256(sctx, slotDistributed),
		claimed:     solidity.NewUint256(sctx, slotClaimed),
		paidOut:     solidity.NewUint256(sctx, slotPaidOut),
	}
}

// Stats is a snapshot of the totals.
type Stats struct {
	TotalStaked *big.Int
	Distributed *big.Int
	Claimed     *big.Int
	PaidOut     *big.Int
}

// TotalStaked returns the sum of all staked balances.
func (s *Service) TotalStaked() (*big.Int, error) {
	return s.totalStaked.Get()
}

func (s *Service) AddStake(amount *big.Int) error {
	return s.totalStaked.Add(amount)
}

func (s *Service) RemoveStake(amount *big.Int) error {
	return s.totalStaked.Sub(amount)
}

// AddDistributed records income handed to the reward accumulator.
func (s *Service) AddDistributed(amount *big.Int) error {
	return s.distributed.Add(amount)
}

// AddClaimed records rewards moved into the payout queue.
func (s *Service) AddClaimed(amount *big.Int) error {
	return s.claimed.Add(amount)
}

// AddPaidOut records funds transferred out of the queue.
func (s *Service) AddPaidOut(amount *big.Int) error {
	return s.paidOut.Add(amount)
}

func (s *Service) Stats() (*Stats, error) {
	var (
		stats Stats
		err   error
	)
	if stats.TotalStaked, err = s.totalStaked.Get(); err != nil {
		return nil, err
	}
	if stats.Distributed, err = s.distributed.Get(); err != nil {
		return nil, err
	}
	if stats.Claimed, err = s.claimed.Get(); err != nil {
		return nil, err
	}
	if stats.PaidOut, err = s.paidOut.Get(); err != nil {
		return nil, err
	}
	return &stats, nil
}
