package tvl

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache keeps the last computed snapshot per chain and kind until ttl expires.
type Cache struct {
	data *lru.LRU[string, *Snapshot]
}

func NewCache(size int, ttl time.Duration) *Cache {
	return &Cache{
		data: lru.NewLRU[string, *Snapshot](size, nil, ttl),
	}
}

func (c *Cache) Set(snapshot *Snapshot) {
	c.data.Add(cacheKey(snapshot.Chain, snapshot.Kind), snapshot)
}

func (c *Cache) Get(chain Chain, kind Kind) (*Snapshot, bool) {
	return c.data.Get(cacheKey(chain, kind))
}

func (c *Cache) Remove(chain Chain, kind Kind) {
	c.data.Remove(cacheKey(chain, kind))
}

func cacheKey(chain Chain, kind Kind) string {
	return fmt.Sprintf("%s/%s", chain, kind)
}
