package metrics

import (
	"hintdns/evt"
	"hintdns/util"

	"github.com/prometheus/client_golang/prometheus"
)

// RegisterEventListeners registers all metric handlers by the event bus
func RegisterEventListeners() {
	registerApplicationEventListeners()
	registerCachingEventListeners()
	registerServerEventListeners()
}

func registerApplicationEventListeners() {
	v := versionNumberGauge()
	RegisterMetric(v)

	subscribe(evt.ApplicationStarted, func(version, buildTime string) {
		v.WithLabelValues(version, buildTime).Set(1)
	})
}

func versionNumberGauge() *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hintdns_build_info",
			Help: "Version number and build info",
		}, []string{"version", "build_time"},
	)
}

func registerCachingEventListeners() {
	entryCount := cacheEntryCount()
	cacheHitCount := cacheHitCount()
	cacheMissCount := cacheMissCount()

	RegisterMetric(entryCount)
	RegisterMetric(cacheHitCount)
	RegisterMetric(cacheMissCount)

	subscribe(evt.CachingResultCacheChanged, func(cnt int) {
		entryCount.Set(float64(cnt))
	})

	subscribe(evt.CachingResultCacheHit, func(_ string) {
		cacheHitCount.Inc()
	})

	subscribe(evt.CachingResultCacheMiss, func(_ string) {
		cacheMissCount.Inc()
	})
}

func cacheEntryCount() prometheus.Gauge {
	return prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hintdns_cache_entry_count",
			Help: "Number of entries in the record cache",
		},
	)
}

func cacheHitCount() prometheus.Counter {
	return prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hintdns_cache_hit_count",
			Help: "Number of resolutions answered from the record cache",
		},
	)
}

func cacheMissCount() prometheus.Counter {
	return prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hintdns_cache_miss_count",
			Help: "Number of resolutions not answered from the record cache",
		},
	)
}

func registerServerEventListeners() {
	queryCount := queryCount()
	RegisterMetric(queryCount)

	subscribe(evt.ServerQueryServed, func(rcode string) {
		queryCount.WithLabelValues(rcode).Inc()
	})
}

func queryCount() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hintdns_query_total",
			Help: "Number of served queries grouped by response code",
		}, []string{"rcode"},
	)
}

func subscribe(topic string, fn interface{}) {
	util.LogOnError("can't subscribe topic: ", evt.Bus().Subscribe(topic, fn))
}
