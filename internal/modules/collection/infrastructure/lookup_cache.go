package infrastructure

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"storeAdminWs/internal/modules/collection/domain"
)

var (
	lookupCacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "saw_lookup_cache_hits_total",
		Help: "Hits on the per-instance id-lookup LRU cache.",
	}, []string{"entity"})
	lookupCacheMissesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "saw_lookup_cache_misses_total",
		Help: "Misses on the per-instance id-lookup LRU cache.",
	}, []string{"entity"})
)

// LookupCache fronts GetUser/GetProduct during the enrichment fan-out.
// Pages that reference the same user or product repeatedly resolve it once
// per TTL instead of once per row. Per-instance, in-memory, expirable.
type LookupCache struct {
	users    *expirable.LRU[int64, domain.User]
	products *expirable.LRU[int64, domain.Product]
}

// NewLookupCache creates the cache with the given maximum entries per entity
// and entry TTL.
func NewLookupCache(maxSize int, ttl time.Duration) *LookupCache {
	return &LookupCache{
		users:    expirable.NewLRU[int64, domain.User](maxSize, nil, ttl),
		products: expirable.NewLRU[int64, domain.Product](maxSize, nil, ttl),
	}
}

func (c *LookupCache) GetUser(id int64) (domain.User, bool) {
	user, ok := c.users.Get(id)
	if ok {
		lookupCacheHitsTotal.WithLabelValues("user").Inc()
		return user, true
	}
	lookupCacheMissesTotal.WithLabelValues("user").Inc()
	return domain.User{}, false
}

func (c *LookupCache) SetUser(id int64, user domain.User) {
	c.users.Add(id, user)
}

func (c *LookupCache) GetProduct(id int64) (domain.Product, bool) {
	product, ok := c.products.Get(id)
	if ok {
		lookupCacheHitsTotal.WithLabelValues("product").Inc()
		return product, true
	}
	lookupCacheMissesTotal.WithLabelValues("product").Inc()
	return domain.Product{}, false
}

func (c *LookupCache) SetProduct(id int64, product domain.Product) {
	c.products.Add(id, product)
}

// InvalidateUsers drops every cached user, typically after a user mutation.
func (c *LookupCache) InvalidateUsers() {
	c.users.Purge()
}

// InvalidateProducts drops every cached product.
func (c *LookupCache) InvalidateProducts() {
	c.products.Purge()
}
