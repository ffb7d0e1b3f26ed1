package metrics

import (
	"github.com/ardanlabs/minichain/foundation/blockchain/database"
	"github.com/prometheus/client_golang/prometheus"
)

// Ledger is the behavior the collector needs to read the chain.
type Ledger interface {
	RetrieveLatestBlock() database.Block
	RetrieveDifficulty() uint
	QueryMempoolLength() int
}

// LedgerCollector reports the state of the chain on every scrape.
type LedgerCollector struct {
	ledger     Ledger
	height     *prometheus.Desc
	mempool    *prometheus.Desc
	difficulty *prometheus.Desc
}

// NewLedgerCollector constructs a collector for the ledger.
func NewLedgerCollector(ledger Ledger) *LedgerCollector {
	return &LedgerCollector{
		ledger: ledger,
		height: prometheus.NewDesc(
			prometheus.BuildFQName("minichain", "chain", "height"),
			"Number of the latest block",
			nil, nil,
		),
		mempool: prometheus.NewDesc(
			prometheus.BuildFQName("minichain", "mempool", "length"),
			"Number of uncommitted transactions",
			nil, nil,
		),
		difficulty: prometheus.NewDesc(
			prometheus.BuildFQName("minichain", "chain", "difficulty"),
			"Leading hex zeros required to solve a block",
			nil, nil,
		),
	}
}

// Describe implements the prometheus.Collector interface.
func (c *LedgerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.height
	ch <- c.mempool
	ch <- c.difficulty
}

// Collect implements the prometheus.Collector interface.
func (c *LedgerCollector) Collect(ch chan<- prometheus.Metric) {
	latest := c.ledger.RetrieveLatestBlock()

	ch <- prometheus.MustNewConstMetric(c.height, prometheus.GaugeValue, float64(latest.Header.Number))
	ch <- prometheus.MustNewConstMetric(c.mempool, prometheus.GaugeValue, float64(c.ledger.QueryMempoolLength()))
	ch <- prometheus.MustNewConstMetric(c.difficulty, prometheus.GaugeValue, float64(c.ledger.RetrieveDifficulty()))
}
