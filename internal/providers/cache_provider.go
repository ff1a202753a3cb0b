package providers

import (
	"strings"
	"surveycore/internal/structures"

	"github.com/coocood/freecache"
)

// ReportKey names one rendered report as seen by one tenant. Two tenants
// asking for the same campaign id never share an entry.
type ReportKey struct {
	Kind       string
	TenantID   string
	CampaignID string
	Department string
	Assessment string
}

// String joins the parts with a unit separator, which cannot occur in ids.
func (k ReportKey) String() string {
	return strings.Join([]string{k.Kind, k.TenantID, k.CampaignID, k.Department, k.Assessment}, "\x1f")
}

// CacheProviderInterface caches rendered report bodies. Entries are short
// lived; a report may lag new submissions by at most the configured TTL.
type CacheProviderInterface interface {
	Get(key ReportKey) ([]byte, bool)
	Set(key ReportKey, body []byte)
}

type ReportCache struct {
	cache *freecache.Cache
	ttl   int
}

func NewCacheProvider(conf *structures.Config, logger Logger) CacheProviderInterface {
	if !conf.Cache.Enabled || conf.Cache.Size <= 0 {
		logger.Infof(TypeApp, "Report cache disabled")
		return &noopCache{}
	}

	ttl := max(int(conf.Cache.TTL.Seconds()), 1)
	logger.Infof(TypeApp, "Report cache initialized: %dMB, TTL=%ds", conf.Cache.Size, ttl)

	return &ReportCache{
		cache: freecache.NewCache(conf.Cache.Size * 1024 * 1024),
		ttl:   ttl,
	}
}

func (c *ReportCache) Get(key ReportKey) ([]byte, bool) {
	body, err := c.cache.Get([]byte(key.String()))
	if err != nil {
		return nil, false
	}
	return body, true
}

// Set drops bodies freecache refuses (larger than 1/1024 of the cache).
func (c *ReportCache) Set(key ReportKey, body []byte) {
	_ = c.cache.Set([]byte(key.String()), body, c.ttl)
}

type noopCache struct{}

func (n *noopCache) Get(_ ReportKey) ([]byte, bool) { return nil, false }
func (n *noopCache) Set(_ ReportKey, _ []byte)      {}
