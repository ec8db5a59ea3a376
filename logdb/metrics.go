// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"github.com/transcranial/tcs/metrics"
)

var (
	metricQueryOrderCounter = metrics.LazyLoadCounterVec("logdb_query_order", []string{"order", "type"})
	metricOffsetBucket      = metrics.LazyLoadHistogramVec("logdb_query_offset_bucket", []string{"type"}, []int64{
		0, 100, 1_000, 10_000, 100_000, 1_000_000,
	})
	metricLimitBucket = metrics.LazyLoadHistogramVec("logdb_query_limit_bucket", []string{"type"}, []int64{
		0, 5, 10, 25, 50, 100, 250, 500, 1000,
	})
	metricRowsWritten = metrics.LazyLoadCounterVec("logdb_rows_written", []string{"type"})
)

func metricsHandleQuery(options *Options, order Order, queryType string) {
	if metrics.NoOp() {
		return
	}

	if order == DESC {
		metricQueryOrderCounter().AddWithLabel(1, map[string]string{"order": "desc", "type": queryType})
	} else {
		metricQueryOrderCounter().AddWithLabel(1, map[string]string{"order": "asc", "type": queryType})
	}
	if options == nil {
		return
	}

	offset := min(options.Offset, 1_000_001)
	metricOffsetBucket().ObserveWithLabels(int64(offset), map[string]string{"type": queryType})

	limit := min(options.Limit, 1001)
	metricLimitBucket().ObserveWithLabels(int64(limit), map[string]string{"type": queryType})
}
