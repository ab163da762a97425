package storage

import (
	"math"
	"time"

	"github.com/cespare/xxhash/v2"
)

// DB is a handle to one logical database.
// Keys are spread over shards so that operations on different keys rarely contend
type DB struct {
	index     int
	store     *Store
	shards    []*shard
	shardMask uint64
}

func newDB(s *Store, index int) *DB {
	db := &DB{
		index:     index,
		store:     s,
		shards:    make([]*shard, s.shards),
		shardMask: uint64(s.shards - 1),
	}

	for i := range db.shards {
		db.shards[i] = newShard()
	}

	return db
}

// Index returns the database number
func (d *DB) Index() int {
	return d.index
}

// getShard returns the shard that owns key
func (d *DB) getShard(key string) *shard {
	return d.shards[xxhash.Sum64String(key)&d.shardMask]
}

// read calls fn with the live entity under the shard read lock, nil if the key is absent.
// An expired key is removed lazily before fn sees it as absent
func (d *DB) read(key string, fn func(e *Entity)) {
	d.readAt(key, d.store.now(), fn)
}

// readAt is read with the expiry check pinned to now
func (d *DB) readAt(key string, now int64, fn func(e *Entity)) {
	m := d.getShard(key)

	m.mu.RLock()
	if !m.expiredLocked(key, now) {
		fn(m.data[key])
		m.mu.RUnlock()
		return
	}
	m.mu.RUnlock()

	m.mu.Lock()
	// checking again, can be changed while waiting for the lock
	if m.expiredLocked(key, now) {
		m.removeLocked(key)
	}
	m.mu.Unlock()

	fn(nil)
}

// write calls fn under the shard write lock with the live entity, nil if the key is absent.
// fn reports whether it changed anything so the store can count mutations
func (d *DB) write(key string, fn func(m *shard, e *Entity) (bool, error)) error {
	m := d.getShard(key)

	m.mu.Lock()
	defer m.mu.Unlock()

	changed, err := fn(m, m.liveLocked(key, d.store.now()))
	if changed {
		d.store.touch()
	}
	return err
}

// view calls fn with the value stored at key when it holds kind.
// Reports false without calling fn if the key is absent
func view[T any](d *DB, key string, kind Kind, fn func(v T)) (bool, error) {
	var (
		found bool
		err   error
	)

	d.read(key, func(e *Entity) {
		if e == nil {
			return
		}
		if e.Kind != kind {
			err = &TypeMismatchError{Key: key, Want: kind, Got: e.Kind}
			return
		}
		found = true
		fn(e.Value.(T))
	})

	return found, err
}

// update calls fn with the value stored at key when it holds kind.
// If the key is absent and create is not nil, fn receives a fresh value that is stored only if fn succeeds.
// If the key is absent and create is nil, fn is not called and update reports false.
// A collection left empty by fn is removed
func update[T any](d *DB, key string, kind Kind, create func() T, fn func(v T) (bool, error)) (bool, error) {
	found := false

	err := d.write(key, func(m *shard, e *Entity) (bool, error) {
		if e == nil {
			if create == nil {
				return false, nil
			}

			fresh := &Entity{Kind: kind, Value: create()}
			if _, err := fn(fresh.Value.(T)); err != nil {
				return false, err
			}

			found = true
			if fresh.empty() {
				return false, nil
			}
			m.putLocked(key, fresh)
			return true, nil
		}

		if e.Kind != kind {
			return false, &TypeMismatchError{Key: key, Want: kind, Got: e.Kind}
		}

		found = true
		changed, err := fn(e.Value.(T))
		if err != nil {
			return false, err
		}

		if e.empty() {
			m.removeLocked(key)
			return true, nil
		}
		return changed, nil
	})

	return found, err
}

// Delete deletes the keys. Returns how many existed
func (d *DB) Delete(keys ...string) int {
	deleted := 0
	for _, key := range keys {
		d.write(key, func(m *shard, e *Entity) (bool, error) { //nolint:errcheck
			if e == nil {
				return false, nil
			}
			m.removeLocked(key)
			deleted++
			return true, nil
		})
	}
	return deleted
}

// Exists returns how many of the keys exist. A key named twice is counted twice
func (d *DB) Exists(keys ...string) int {
	n := 0
	for _, key := range keys {
		d.read(key, func(e *Entity) {
			if e != nil {
				n++
			}
		})
	}
	return n
}

// Type returns the kind of value stored at key, KindNone if absent
func (d *DB) Type(key string) Kind {
	kind := KindNone
	d.read(key, func(e *Entity) {
		if e != nil {
			kind = e.Kind
		}
	})
	return kind
}

// Len returns the number of stored keys, including expired ones not yet reclaimed
func (d *DB) Len() int {
	total := 0
	for _, m := range d.shards {
		keys, _ := m.count()
		total += keys
	}
	return total
}

// Flush removes every key of the database
func (d *DB) Flush() {
	removed := 0
	for _, m := range d.shards {
		removed += m.flush()
	}
	if removed > 0 {
		d.store.touch()
	}
}

// ExpireAfter sets a TTL of ttl on key. Returns false if the key does not exist.
// A non-positive ttl deletes the key
func (d *DB) ExpireAfter(key string, ttl time.Duration) bool {
	return d.expire(key, deadlineAfter(d.store.now(), ttl))
}

// ExpireAt sets an absolute deadline on key. Returns false if the key does not exist.
// A deadline in the past deletes the key
func (d *DB) ExpireAt(key string, deadline time.Time) bool {
	return d.expire(key, deadline.UnixNano())
}

// deadlineAfter returns now+ttl, saturated at the largest representable time
func deadlineAfter(now int64, ttl time.Duration) int64 {
	if ttl > 0 && now > math.MaxInt64-int64(ttl) {
		return math.MaxInt64
	}
	return now + int64(ttl)
}

func (d *DB) expire(key string, deadline int64) bool {
	ok := false
	d.write(key, func(m *shard, e *Entity) (bool, error) { //nolint:errcheck
		if e == nil {
			return false, nil
		}
		ok = true
		if deadline <= d.store.now() {
			m.removeLocked(key)
			return true, nil
		}
		m.expires[key] = deadline
		return true, nil
	})
	return ok
}

// TTL returns the remaining lifetime and status as ExpiryStatus
func (d *DB) TTL(key string) (time.Duration, ExpiryStatus) {
	now := d.store.now()
	deadline, status := d.deadline(key, now)
	if status != ExpActive {
		return 0, status
	}
	// a live key has deadline > now, so the result is positive
	return time.Duration(deadline - now), ExpActive
}

// ExpireTime returns the absolute deadline of key and status as ExpiryStatus
func (d *DB) ExpireTime(key string) (time.Time, ExpiryStatus) {
	deadline, status := d.deadline(key, d.store.now())
	if status != ExpActive {
		return time.Time{}, status
	}
	return time.Unix(0, deadline), ExpActive
}

// deadline reports the expiry of key as seen at now
func (d *DB) deadline(key string, now int64) (int64, ExpiryStatus) {
	var (
		deadline int64
		status   = ExpNotFound
	)

	d.readAt(key, now, func(e *Entity) {
		if e == nil {
			return
		}
		exp, hasExp := d.getShard(key).expires[key]
		if !hasExp {
			status = ExpNoTimeout
			return
		}
		deadline, status = exp, ExpActive
	})

	return deadline, status
}

// Persist removes the expiration date of the key, making it eternal.
// Returns false if the key was not found or had no TTL
func (d *DB) Persist(key string) bool {
	ok := false
	d.write(key, func(m *shard, e *Entity) (bool, error) { //nolint:errcheck
		if e == nil {
			return false, nil
		}
		if _, hasExp := m.expires[key]; !hasExp {
			return false, nil
		}
		delete(m.expires, key)
		ok = true
		return true, nil
	})
	return ok
}

func (d *DB) volatile() int {
	total := 0
	for _, m := range d.shards {
		_, v := m.count()
		total += v
	}
	return total
}
