// Package cache implementa los drivers de caché de lecturas: memoria local o Redis.
package cache

import (
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"

	appbilling "github.com/jhoicas/invoice-gateway/internal/application/billing"
	"github.com/jhoicas/invoice-gateway/pkg/config"
)

// Store caché con ciclo de vida.
type Store interface {
	appbilling.Cache
	Close() error
}

// New crea el driver indicado en la configuración (memory | redis).
func New(cfg config.CacheConfig, namespace string) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemory(), nil
	case "redis":
		addr := strings.TrimSpace(cfg.RedisAddr)
		if addr == "" {
			return nil, fmt.Errorf("cache: REDIS_ADDR es obligatorio con CACHE_DRIVER=redis")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: strings.TrimSpace(cfg.RedisPassword),
			DB:       cfg.RedisDB,
		})
		return NewRedis(client, namespace), nil
	default:
		return nil, fmt.Errorf("cache: driver desconocido %q", cfg.Driver)
	}
}
