// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import (
	"github.com/transcranial/tcs/metrics"
)

var (
	metricOps         = metrics.LazyLoadCounterVec("engine_ops_count", []string{"op", "status"})
	metricQueueLength = metrics.LazyLoadGauge("engine_payout_queue_length")
	metricTotalStaked = metrics.LazyLoadGauge("engine_total_staked")
	metricPayoutBatch = metrics.LazyLoadHistogramVec("engine_payout_batch", []string{"status"}, metrics.BucketBatch)
)

func metricsHandleOp(op string, err error) {
	status := "ok"
	if err != nil {
		status = "failed"
	}
	metricOps().AddWithLabel(1, map[string]string{"op": op, "status": status})
}
