package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LinksCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shorturls_links_created_total",
		Help: "Number of new short links issued.",
	})

	RedirectsServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shorturls_redirects_total",
		Help: "Number of redirects served.",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shorturls_cache_hits_total",
		Help: "Cache hits by lookup key kind.",
	}, []string{"kind"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shorturls_cache_misses_total",
		Help: "Cache misses by lookup key kind.",
	}, []string{"kind"})
)
