package source

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/erchart/pkg/cache"
	"github.com/matzehuels/erchart/pkg/schema"
)

// CachedProvider serves records from a cache and falls back to the wrapped
// provider on a miss. Records are stored as msgpack snapshots.
type CachedProvider struct {
	Provider
	Cache   cache.Cache
	Keyer   cache.Keyer
	TTL     time.Duration
	Refresh bool // skip the lookup but still store the fresh result
	Logger  *log.Logger
}

// Cached wraps p with c. A zero ttl means [cache.SchemaTTL].
func Cached(p Provider, c cache.Cache, keyer cache.Keyer, ttl time.Duration) *CachedProvider {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if ttl == 0 {
		ttl = cache.SchemaTTL
	}
	return &CachedProvider{Provider: p, Cache: c, Keyer: keyer, TTL: ttl}
}

// Fetch implements [Provider]. Cache failures are logged and otherwise
// ignored.
func (c *CachedProvider) Fetch(ctx context.Context) ([]schema.Record, error) {
	key := c.Keyer.SchemaKey(c.Provider.Name())
	if !c.Refresh {
		data, ok, err := c.Cache.Get(ctx, key)
		if err != nil {
			c.warn("schema cache read failed", "source", c.Provider.Name(), "error", err)
		}
		if ok {
			if records, err := schema.DecodeRecords(data); err == nil {
				return records, nil
			}
			_ = c.Cache.Delete(ctx, key)
		}
	}

	records, err := c.Provider.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := schema.EncodeRecords(records); err == nil {
		if err := c.Cache.Set(ctx, key, data, c.TTL); err != nil {
			c.warn("schema cache write failed", "source", c.Provider.Name(), "error", err)
		}
	}
	return records, nil
}

func (c *CachedProvider) warn(msg string, kv ...any) {
	if c.Logger != nil {
		c.Logger.Warn(msg, kv...)
	}
}
