package cache

import (
	"sync"
	"time"
)

type ttlItem[V any] struct {
	value     V
	expiresAt time.Time
}

// ttlMap is a mutex-guarded map whose entries expire. Expired entries are
// invisible to readers and removed by sweep.
type ttlMap[V any] struct {
	mu    sync.Mutex
	items map[string]ttlItem[V]
	now   func() time.Time
}

func newTTLMap[V any]() *ttlMap[V] {
	return &ttlMap[V]{
		items: make(map[string]ttlItem[V]),
		now:   time.Now,
	}
}

func (m *ttlMap[V]) get(key string) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[key]
	if !ok || !m.now().Before(it.expiresAt) {
		var zero V
		return zero, false
	}
	return it.value, true
}

func (m *ttlMap[V]) set(key string, value V, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = ttlItem[V]{value: value, expiresAt: m.now().Add(ttl)}
}

// setNX stores value only when key is absent or expired
func (m *ttlMap[V]) setNX(key string, value V, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if it, ok := m.items[key]; ok && now.Before(it.expiresAt) {
		return false
	}
	m.items[key] = ttlItem[V]{value: value, expiresAt: now.Add(ttl)}
	return true
}

func (m *ttlMap[V]) delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
}

func (m *ttlMap[V]) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for k, it := range m.items {
		if !now.Before(it.expiresAt) {
			delete(m.items, k)
		}
	}
}

func (m *ttlMap[V]) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// janitor sweeps on an interval until stopped
type janitor struct {
	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func startJanitor(interval time.Duration, sweep func()) *janitor {
	j := &janitor{stop: make(chan struct{})}
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-j.stop:
				return
			case <-ticker.C:
				sweep()
			}
		}
	}()
	return j
}

func (j *janitor) close() {
	j.closeOnce.Do(func() {
		close(j.stop)
		j.wg.Wait()
	})
}
