package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	appbilling "github.com/jhoicas/invoice-gateway/internal/application/billing"
)

var _ appbilling.Cache = (*Redis)(nil)

const scanBatch = 200

// Redis caché compartida entre instancias del gateway.
// Todas las claves llevan el prefijo namespace + ":".
type Redis struct {
	client    redis.UniversalClient
	namespace string
}

// NewRedis crea la caché sobre un cliente ya configurado.
func NewRedis(client redis.UniversalClient, namespace string) *Redis {
	return &Redis{client: client, namespace: strings.TrimSuffix(namespace, ":")}
}

func (r *Redis) key(k string) string {
	if r.namespace == "" {
		return k
	}
	return r.namespace + ":" + k
}

// Get decodifica en dst el valor de key.
func (r *Redis) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache redis: get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("cache redis: decodificar %s: %w", key, err)
	}
	return true, nil
}

// Set guarda value con expiración ttl (0 = sin expiración).
func (r *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache redis: codificar %s: %w", key, err)
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, r.key(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache redis: set %s: %w", key, err)
	}
	return nil
}

// Delete borra las claves indicadas.
func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, r.key(k))
	}
	if err := r.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("cache redis: del: %w", err)
	}
	return nil
}

// DeletePrefix borra con SCAN + DEL por lotes las claves que empiezan por prefix.
func (r *Redis) DeletePrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	pattern := r.key(prefix) + "*"
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return fmt.Errorf("cache redis: scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("cache redis: del: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Ping comprueba la conexión (health check).
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close cierra el cliente.
func (r *Redis) Close() error {
	return r.client.Close()
}
