package promadapters

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/legilibre/legi-snapshot-go/legisnapshot/resultcache"
)

// StatsSource is implemented by *resultcache.Cache.
type StatsSource interface {
	Stats() resultcache.Stats
}

var _ StatsSource = (*resultcache.Cache)(nil)

// CacheCollector is a prometheus.Collector reading the counters of a result cache at scrape time.
type CacheCollector struct {
	source    StatsSource
	hits      *prometheus.Desc
	misses    *prometheus.Desc
	shared    *prometheus.Desc
	evictions *prometheus.Desc
	entries   *prometheus.Desc
}

var _ prometheus.Collector = (*CacheCollector)(nil)

// NewCacheCollector describes the cache metrics under the legisnapshot_cache_ prefix.
func NewCacheCollector(source StatsSource) *CacheCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("legisnapshot", "cache", name), help, nil, nil)
	}

	return &CacheCollector{
		source:    source,
		hits:      desc("hits_total", "Snapshot requests served from the cache."),
		misses:    desc("misses_total", "Snapshot requests not found in the cache."),
		shared:    desc("shared_total", "Callers served by a computation started for an identical concurrent request."),
		evictions: desc("evictions_total", "Entries dropped for size, expiry or purge."),
		entries:   desc("entries", "Entries currently cached."),
	}
}

func (c *CacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.shared
	ch <- c.evictions
	ch <- c.entries
}

func (c *CacheCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.source.Stats()

	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(stats.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(stats.Misses))
	ch <- prometheus.MustNewConstMetric(c.shared, prometheus.CounterValue, float64(stats.Shared))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(stats.Evictions))
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(stats.Entries))
}
