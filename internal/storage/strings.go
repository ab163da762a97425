package storage

import (
	"math"
	"strconv"
)

// Get returns the string stored at key and true if the key is found
func (d *DB) Get(key string) (string, bool, error) {
	var val string
	found, err := view(d, key, KindString, func(v string) {
		val = v
	})
	return val, found, err
}

// Set writes the value based on the options, replacing a value of any kind.
// Returns true if recording has been performed
func (d *DB) Set(key, value string, options SetOptions) bool {
	written := false

	d.write(key, func(m *shard, e *Entity) (bool, error) { //nolint:errcheck
		exists := e != nil

		if options.NX && exists {
			return false, nil
		}

		if options.XX && !exists {
			return false, nil
		}

		exp, hasExp := m.expires[key]
		m.putLocked(key, &Entity{Kind: KindString, Value: value})

		switch {
		case options.KeepTTL:
			// a fresh key has no TTL to keep
			if exists && hasExp {
				m.expires[key] = exp
			}
		case options.TTL > 0:
			m.expires[key] = deadlineAfter(d.store.now(), options.TTL)
		case !options.ExpireAt.IsZero():
			m.expires[key] = options.ExpireAt.UnixNano()
		}

		written = true
		return true, nil
	})

	return written
}

// IncrBy adds delta to the integer stored at key, starting from 0 if the key is absent.
// The TTL of an existing key is preserved
func (d *DB) IncrBy(key string, delta int64) (int64, error) {
	var result int64

	err := d.write(key, func(m *shard, e *Entity) (bool, error) {
		var current int64
		if e != nil {
			s, ok := e.Value.(string)
			if e.Kind != KindString || !ok {
				return false, &TypeMismatchError{Key: key, Want: KindString, Got: e.Kind}
			}

			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return false, ErrNotInteger
			}
			current = n
		}

		if (delta > 0 && current > math.MaxInt64-delta) || (delta < 0 && current < math.MinInt64-delta) {
			return false, ErrNotInteger
		}

		result = current + delta
		value := strconv.FormatInt(result, 10)
		if e != nil {
			e.Value = value
		} else {
			m.putLocked(key, &Entity{Kind: KindString, Value: value})
		}
		return true, nil
	})

	return result, err
}
