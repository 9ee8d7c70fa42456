package metrics

import (
	"context"
	"strings"
	"time"

	appbilling "github.com/jhoicas/invoice-gateway/internal/application/billing"
)

var _ appbilling.Cache = (*instrumentedCache)(nil)

// InstrumentCache cuenta aciertos y fallos de c por tipo de clave (la parte antes de ":").
func (m *Metrics) InstrumentCache(c appbilling.Cache) appbilling.Cache {
	return &instrumentedCache{next: c, m: m}
}

type instrumentedCache struct {
	next appbilling.Cache
	m    *Metrics
}

func (c *instrumentedCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	ok, err := c.next.Get(ctx, key, dst)
	result := CacheMiss
	switch {
	case err != nil:
		result = CacheError
	case ok:
		result = CacheHit
	}
	c.m.ObserveCache(keyKind(key), result)
	return ok, err
}

func (c *instrumentedCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return c.next.Set(ctx, key, value, ttl)
}

func (c *instrumentedCache) Delete(ctx context.Context, keys ...string) error {
	return c.next.Delete(ctx, keys...)
}

func (c *instrumentedCache) DeletePrefix(ctx context.Context, prefix string) error {
	return c.next.DeletePrefix(ctx, prefix)
}

func keyKind(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "other"
}
