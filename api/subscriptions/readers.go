// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"

	"github.com/samber/lo"

	"github.com/transcranial/tcs/api/staking"
	"github.com/transcranial/tcs/engine"
	"github.com/transcranial/tcs/logdb"
	"github.com/transcranial/tcs/tcs"
)

// rows fetched per read
const readLimit = 100

type msgReader interface {
	// Read returns messages after the current position and whether more are pending.
	Read(ctx context.Context) ([]any, bool, error)
}

type payoutReader struct {
	engine    *engine.Engine
	pos       uint64
	recipient *tcs.Address
}

func newPayoutReader(eng *engine.Engine, pos uint64, recipient *tcs.Address) *payoutReader {
	return &payoutReader{eng, pos, recipient}
}

func (r *payoutReader) Read(ctx context.Context) ([]any, bool, error) {
	payouts, err := r.engine.PayoutHistory(ctx, &logdb.PayoutFilter{
		After:     r.pos,
		Recipient: r.recipient,
		Options:   &logdb.Options{Limit: readLimit},
	})
	if err != nil {
		return nil, false, err
	}
	if len(payouts) > 0 {
		r.pos = payouts[len(payouts)-1].Seq
	}
	msgs := lo.Map(staking.ConvertPayouts(payouts), func(p *staking.Payout, _ int) any { return p })
	return msgs, len(payouts) == readLimit, nil
}

type distributionReader struct {
	engine *engine.Engine
	pos    uint64
}

func newDistributionReader(eng *engine.Engine, pos uint64) *distributionReader {
	return &distributionReader{eng, pos}
}

func (r *distributionReader) Read(ctx context.Context) ([]any, bool, error) {
	dists, err := r.engine.Distributions(ctx, &logdb.DistributionFilter{
		After:   r.pos,
		Options: &logdb.Options{Limit: readLimit},
	})
	if err != nil {
		return nil, false, err
	}
	if len(dists) > 0 {
		r.pos = dists[len(dists)-1].Seq
	}
	msgs := lo.Map(staking.ConvertDistributions(dists), func(d *staking.Distribution, _ int) any { return d })
	return msgs, len(dists) == readLimit, nil
}
