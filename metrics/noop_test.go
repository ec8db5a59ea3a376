// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopMetrics(t *testing.T) {
	assert.True(t, NoOp())
	assert.Nil(t, HTTPHandler())

	Counter("noop_count").Add(1)
	CounterVec("noop_count_vec", []string{"op"}).AddWithLabel(1, map[string]string{"op": "a"})
	Gauge("noop_gauge").Set(3)
	GaugeVec("noop_gauge_vec", []string{"op"}).SetWithLabel(1, map[string]string{"op": "a"})
	HistogramVec("noop_hist", []string{"op"}, BucketBatch).ObserveWithLabels(2, map[string]string{"op": "a"})

	lazy := LazyLoadCounter("noop_lazy")
	assert.Equal(t, lazy(), lazy())
}
