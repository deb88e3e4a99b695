package eth1

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	validDepositsCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eth1_valid_deposits_received_total",
		Help: "The number of valid deposit logs inserted into the deposit trie",
	})
	missedDepositLogsCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eth1_missed_deposit_logs_total",
		Help: "The number of times a deposit log arrived with an unexpected merkle index",
	})
	eth1DataCacheHit = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eth1_data_cache_hit_total",
		Help: "The number of eth1 data requests served from the block cache",
	})
	eth1DataCacheMiss = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eth1_data_cache_miss_total",
		Help: "The number of eth1 data requests that required a remote fetch",
	})
	updateCacheFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eth1_data_cache_update_failures_total",
		Help: "The number of batch cache updates discarded because a per-height fetch failed",
	})
	updateCacheLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "eth1_data_cache_update_milliseconds",
		Help:    "Captures the latency of a whole batch cache update in milliseconds",
		Buckets: []float64{10, 20, 50, 100, 200, 500, 1000, 2000, 5000, 10000},
	})
)
