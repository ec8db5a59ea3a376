// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math/big"

	"github.com/transcranial/tcs/tcs"
)

// Payout is a transfer made from the payout queue.
type Payout struct {
	Seq       uint64
	QueueID   uint64
	Recipient tcs.Address
	Amount    *big.Int
	Time      uint64
}

// Distribution is one increase of the reward rate.
type Distribution struct {
	Seq       uint64
	Amount    *big.Int
	Supply    *big.Int
	Increment *big.Int
	Rate      *big.Int
	IScore    *big.Int // nil when income was not claimed as I-Score
	Time      uint64
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range selects rows by unix time, both ends included. To < From means no upper bound.
type Range struct {
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

type PayoutFilter struct {
	After     uint64 // only rows with a greater seq
	Recipient *tcs.Address
	Range     *Range
	Options   *Options
	Order     Order //default asc
}

type DistributionFilter struct {
	After   uint64 // only rows with a greater seq
	Range   *Range
	Options *Options
	Order   Order //default asc
}
