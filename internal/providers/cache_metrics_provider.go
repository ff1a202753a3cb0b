package providers

import "surveycore/internal/structures"

// instrumentedReportCache counts report cache hits and misses.
type instrumentedReportCache struct {
	inner   CacheProviderInterface
	metrics MetricsProviderInterface
}

func (c *instrumentedReportCache) Get(key ReportKey) ([]byte, bool) {
	body, hit := c.inner.Get(key)
	if hit {
		c.metrics.IncCacheHits()
		return body, true
	}
	c.metrics.IncCacheMisses()
	return nil, false
}

func (c *instrumentedReportCache) Set(key ReportKey, body []byte) {
	c.inner.Set(key, body)
}

// NewInstrumentedCacheProvider returns the report cache wrapped with hit/miss
// counters. A disabled cache is returned unwrapped so it does not count
// phantom misses.
func NewInstrumentedCacheProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) CacheProviderInterface {
	inner := NewCacheProvider(conf, logger)
	if _, disabled := inner.(*noopCache); disabled {
		return inner
	}
	return &instrumentedReportCache{inner: inner, metrics: metrics}
}
