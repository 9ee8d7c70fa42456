package cache_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/invoice-gateway/internal/domain/entity"
	"github.com/jhoicas/invoice-gateway/internal/infrastructure/cache"
	"github.com/jhoicas/invoice-gateway/pkg/config"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemory_SetGet_DevuelveCopia(t *testing.T) {
	ctx := context.Background()
	m := cache.NewMemory()
	inv := &entity.Invoice{ID: 7, Lines: []entity.InvoiceLine{{ID: 1, Quantity: 2, Price: decimal.RequireFromString("9.99")}}}

	require.NoError(t, m.Set(ctx, "invoice:7", inv, time.Minute))
	inv.Lines[0].Quantity = 99

	var got *entity.Invoice
	ok, err := m.Get(ctx, "invoice:7", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, got.Lines[0].Quantity, "la caché no comparte memoria con el llamador")
	assert.True(t, decimal.RequireFromString("9.99").Equal(got.Lines[0].Price))
}

func TestMemory_Expira(t *testing.T) {
	ctx := context.Background()
	clk := &clock{now: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)}
	m := cache.NewMemoryWithClock(clk.Now)

	require.NoError(t, m.Set(ctx, "k", 1, 5*time.Minute))

	var v int
	clk.Advance(4 * time.Minute)
	ok, _ := m.Get(ctx, "k", &v)
	assert.True(t, ok)

	clk.Advance(time.Minute)
	ok, _ = m.Get(ctx, "k", &v)
	assert.False(t, ok, "a los 5 minutos exactos ya no vale")
	assert.Equal(t, 0, m.Len())
}

func TestMemory_SinTTLNoExpira(t *testing.T) {
	ctx := context.Background()
	clk := &clock{now: time.Now()}
	m := cache.NewMemoryWithClock(clk.Now)

	require.NoError(t, m.Set(ctx, "k", "v", 0))
	clk.Advance(24 * time.Hour)

	var v string
	ok, err := m.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestMemory_DeleteYDeletePrefix(t *testing.T) {
	ctx := context.Background()
	m := cache.NewMemory()
	for _, k := range []string{"invoices:1:100", "invoices:2:100", "invoice:7", "customers:20:"} {
		require.NoError(t, m.Set(ctx, k, k, time.Minute))
	}

	require.NoError(t, m.DeletePrefix(ctx, "invoices:"))
	require.NoError(t, m.Delete(ctx, "invoice:7", "no-existe"))

	var v string
	ok, _ := m.Get(ctx, "invoices:1:100", &v)
	assert.False(t, ok)
	ok, _ = m.Get(ctx, "invoice:7", &v)
	assert.False(t, ok)
	ok, _ = m.Get(ctx, "customers:20:", &v)
	assert.True(t, ok)
}

func TestMemory_ErrorDeDecodificacion(t *testing.T) {
	ctx := context.Background()
	m := cache.NewMemory()
	require.NoError(t, m.Set(ctx, "k", "texto", time.Minute))

	var n int
	_, err := m.Get(ctx, "k", &n)
	assert.Error(t, err)
}

func TestMemory_Concurrente(t *testing.T) {
	ctx := context.Background()
	m := cache.NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("invoice:%d", i%5)
			_ = m.Set(ctx, key, i, time.Minute)
			var v int
			_, _ = m.Get(ctx, key, &v)
			if i%10 == 0 {
				_ = m.DeletePrefix(ctx, "invoice:")
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, m.Len(), 5)
}

func TestNew_Drivers(t *testing.T) {
	mem, err := cache.New(config.CacheConfig{Driver: "memory"}, "gw")
	require.NoError(t, err)
	assert.IsType(t, &cache.Memory{}, mem)

	rd, err := cache.New(config.CacheConfig{Driver: "redis", RedisAddr: "localhost:6379"}, "gw")
	require.NoError(t, err)
	assert.IsType(t, &cache.Redis{}, rd)
	assert.NoError(t, rd.Close())

	_, err = cache.New(config.CacheConfig{Driver: "redis"}, "gw")
	assert.Error(t, err)

	_, err = cache.New(config.CacheConfig{Driver: "memcached"}, "gw")
	assert.Error(t, err)
}
