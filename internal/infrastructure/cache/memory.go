package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	appbilling "github.com/jhoicas/invoice-gateway/internal/application/billing"
)

var _ appbilling.Cache = (*Memory)(nil)

type memoryEntry struct {
	raw     []byte
	expires time.Time // cero = sin expiración
}

// Memory caché en proceso. Guarda el JSON del valor, así quien lee recibe
// siempre una copia y nunca comparte punteros con otro llamador.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory crea una caché vacía.
func NewMemory() *Memory {
	return NewMemoryWithClock(time.Now)
}

// NewMemoryWithClock como NewMemory con un reloj propio (tests).
func NewMemoryWithClock(now func() time.Time) *Memory {
	return &Memory{entries: make(map[string]memoryEntry), now: now}
}

// Get decodifica en dst el valor de key. Las entradas vencidas se borran al leerlas.
func (m *Memory) Get(_ context.Context, key string, dst any) (bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		m.mu.Lock()
		if cur, still := m.entries[key]; still && cur.expires.Equal(e.expires) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return false, nil
	}
	if err := json.Unmarshal(e.raw, dst); err != nil {
		return false, fmt.Errorf("cache: decodificar %s: %w", key, err)
	}
	return true, nil
}

// Set guarda value; ttl <= 0 significa sin expiración.
func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: codificar %s: %w", key, err)
	}
	e := memoryEntry{raw: raw}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

// Delete borra las claves indicadas.
func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

// DeletePrefix borra todas las claves que empiezan por prefix.
func (m *Memory) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
	return nil
}

// Len número de entradas (incluidas las vencidas aún no leídas).
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close no hace nada; existe para compartir interfaz con Redis.
func (m *Memory) Close() error { return nil }
