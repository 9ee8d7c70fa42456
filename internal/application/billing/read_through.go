package billing

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/invoice-gateway/pkg/logger"
)

// readThrough lectura con caché: consulta la caché, y si falla o no está la clave
// carga desde la API una sola vez por clave aunque haya llamadas concurrentes.
// Un fallo de la caché nunca rompe la lectura; solo se registra.
//
// gen avanza en cada invalidación: una carga que empezó antes no escribe su
// resultado en la caché.
type readThrough struct {
	cache Cache
	ttl   time.Duration
	log   *logger.Logger
	group singleflight.Group
	gen   atomic.Uint64

	mu       sync.Mutex
	inflight map[string]int
}

func newReadThrough(cache Cache, ttl time.Duration, log *logger.Logger) *readThrough {
	if log == nil {
		log = logger.Nop()
	}
	return &readThrough{cache: cache, ttl: ttl, log: log, inflight: map[string]int{}}
}

func loadThrough[T any](ctx context.Context, rt *readThrough, key string, load func(context.Context) (T, error)) (T, error) {
	if rt.cache != nil {
		var cached T
		ok, err := rt.cache.Get(ctx, key, &cached)
		switch {
		case err != nil:
			rt.log.Warn().Err(err).Str("key", key).Msg("cache: lectura fallida, se consulta la API")
		case ok:
			return cached, nil
		}
	}

	v, err, shared := rt.group.Do(key, func() (any, error) {
		rt.track(key, 1)
		defer rt.track(key, -1)
		gen := rt.gen.Load()
		res, err := load(ctx)
		if err != nil {
			return nil, err
		}
		rt.store(ctx, key, res, gen)
		return res, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	if shared {
		rt.log.Debug().Str("key", key).Msg("cache: carga compartida")
	}
	return v.(T), nil
}

// store guarda res salvo que haya habido una invalidación desde gen. La
// comprobación y el Set van bajo mu, igual que el avance de gen en invalidate.
func (rt *readThrough) store(ctx context.Context, key string, res any, gen uint64) {
	if rt.cache == nil {
		return
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.gen.Load() != gen {
		rt.log.Debug().Str("key", key).Msg("cache: carga anterior a una invalidación, no se guarda")
		return
	}
	if err := rt.cache.Set(ctx, key, res, rt.ttl); err != nil {
		rt.log.Warn().Err(err).Str("key", key).Msg("cache: escritura fallida")
	}
}

func (rt *readThrough) track(key string, delta int) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.inflight[key] += delta
	if rt.inflight[key] <= 0 {
		delete(rt.inflight, key)
	}
}

// forget avanza gen y desengancha de singleflight las cargas en curso
// afectadas: las lecturas posteriores arrancan una carga nueva.
func (rt *readThrough) forget(prefixes, keys []string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.gen.Add(1)
	for k := range rt.inflight {
		if matchesAny(k, prefixes, keys) {
			rt.group.Forget(k)
		}
	}
}

func matchesAny(key string, prefixes, keys []string) bool {
	for _, k := range keys {
		if key == k {
			return true
		}
	}
	for _, p := range prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

// invalidate borra claves concretas y prefijos; los errores solo se registran.
func (rt *readThrough) invalidate(ctx context.Context, prefixes []string, keys ...string) {
	rt.forget(prefixes, keys)
	if rt.cache == nil {
		return
	}
	if len(keys) > 0 {
		if err := rt.cache.Delete(ctx, keys...); err != nil {
			rt.log.Warn().Err(err).Strs("keys", keys).Msg("cache: invalidación fallida")
		}
	}
	for _, p := range prefixes {
		if err := rt.cache.DeletePrefix(ctx, p); err != nil {
			rt.log.Warn().Err(err).Str("prefix", p).Msg("cache: invalidación fallida")
		}
	}
}
