// Package metrics exposes the node's Prometheus instrumentation.
// client_golang ships in the dependency graph already (pulled in
// transitively by the consensus stack); this package promotes it to a
// direct import and centralizes every metric this node records.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	BlocksProposed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "agentledger",
		Name:      "blocks_proposed_total",
		Help:      "Blocks this validator has proposed.",
	})

	BlocksCommitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "agentledger",
		Name:      "blocks_committed_total",
		Help:      "Blocks committed to the chain.",
	})

	TransactionsExecuted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "agentledger",
		Name:      "transactions_executed_total",
		Help:      "Transactions successfully applied to chain state.",
	})

	TransactionsDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agentledger",
		Name:      "transactions_dropped_total",
		Help:      "Mempool transactions dropped while building a block, by reason.",
	}, []string{"reason"})

	MempoolSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "agentledger",
		Name:      "mempool_size",
		Help:      "Current number of pending transactions in the mempool.",
	})

	ChainHeight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "agentledger",
		Name:      "chain_height",
		Help:      "Height of the last committed block.",
	})

	BlockBuildDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "agentledger",
		Name:      "block_build_duration_seconds",
		Help:      "Time spent building a candidate block.",
		Buckets:   prometheus.DefBuckets,
	})
)

// MustRegister registers every metric above with reg. Call once at
// startup; a second call (e.g. in tests) will panic, matching
// client_golang's own MustRegister semantics.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		BlocksProposed,
		BlocksCommitted,
		TransactionsExecuted,
		TransactionsDropped,
		MempoolSize,
		ChainHeight,
		BlockBuildDuration,
	)
}
