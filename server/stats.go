package server

import (
	"github.com/miekg/dns"

	"hintdns/stats"
	"hintdns/util"
)

const topQueriesMax = 20

type statsEntry struct {
	domain string
	qType  uint16
	rcode  int
}

type statRecorder struct {
	aggregator *stats.Aggregator
	fn         func(*statsEntry) string
}

func createStatRecorders() []*statRecorder {
	return []*statRecorder{
		{
			aggregator: stats.NewAggregatorWithMax("Top 20 queried domains", topQueriesMax),
			fn: func(e *statsEntry) string {
				return e.domain
			},
		},
		{
			aggregator: stats.NewAggregator("Query type"),
			fn: func(e *statsEntry) string {
				return dns.TypeToString[e.qType]
			},
		},
		{
			aggregator: stats.NewAggregator("Response code"),
			fn: func(e *statsEntry) string {
				return dns.RcodeToString[e.rcode]
			},
		},
	}
}

func (s *Server) collectStats() {
	for entry := range s.statsChan {
		for _, rec := range s.statRecorders {
			rec.aggregator.Put(rec.fn(entry))
		}
	}
}

// printStats logs the aggregated statistics of the last 24 hours.
func (s *Server) printStats() {
	logger().Info("******* STATS 24h *******")

	for _, rec := range s.statRecorders {
		logger().Infof("%s:", rec.aggregator.Name)

		util.IterateValueSorted(rec.aggregator.AggregateResult(), func(k string, v int) {
			logger().Infof("  %6d %s", v, k)
		})
	}
}
