package storage

import (
	"sync"
)

// shard is one lock stripe of a database. All keys hashed to it share mu
type shard struct {
	data    map[string]*Entity // key - value
	expires map[string]int64   // key - expires time nanoseconds
	mu      sync.RWMutex
}

func newShard() *shard {
	return &shard{
		data:    make(map[string]*Entity),
		expires: make(map[string]int64),
	}
}

// expiredLocked reports whether key carries a deadline that has passed. Caller holds mu
func (m *shard) expiredLocked(key string, now int64) bool {
	exp, hasExp := m.expires[key]
	return hasExp && now >= exp
}

// liveLocked returns the entity for key, dropping it first if it has expired.
// Caller holds the write lock
func (m *shard) liveLocked(key string, now int64) *Entity {
	if m.expiredLocked(key, now) {
		m.removeLocked(key)
		return nil
	}
	return m.data[key]
}

// putLocked stores e and clears any previous deadline. Caller holds the write lock
func (m *shard) putLocked(key string, e *Entity) {
	m.data[key] = e
	delete(m.expires, key)
}

// removeLocked deletes key and its deadline. Caller holds the write lock
func (m *shard) removeLocked(key string) bool {
	if _, ok := m.data[key]; !ok {
		return false
	}
	delete(m.data, key)
	delete(m.expires, key)
	return true
}

// count returns the number of physically stored keys and how many of them have a TTL
func (m *shard) count() (keys, volatile int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data), len(m.expires)
}

// deleteExpired checks up to limit keys that carry a TTL and deletes the expired ones.
// The write lock is held for at most limit checks
func (m *shard) deleteExpired(limit int, now int64) (checked, expired int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// map iteration order is random, so this samples
	for key, expTime := range m.expires {
		if checked >= limit {
			break
		}
		checked++
		if now >= expTime {
			delete(m.data, key)
			delete(m.expires, key)
			expired++
		}
	}

	return checked, expired
}

func (m *shard) flush() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.data)
	m.data = make(map[string]*Entity)
	m.expires = make(map[string]int64)
	return n
}
