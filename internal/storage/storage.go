package storage

import (
	"errors"
	"math/bits"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultDatabases is the number of logical databases, indexes 0..15
	DefaultDatabases = 16
	// DefaultShards is the number of lock stripes per database
	DefaultShards = 32
	// MaxShards is the upper bound for WithShards
	MaxShards = 64
)

type ExpiryStatus int

const (
	// ExpNotFound means that the key does not exist
	ExpNotFound ExpiryStatus = -2
	// ExpNoTimeout means that the key exists, but it does not have a TTL
	ExpNoTimeout ExpiryStatus = -1
	// ExpActive means that the key has an active lifetime
	ExpActive ExpiryStatus = 1
)

type SetOptions struct {
	TTL      time.Duration // key lifetime
	ExpireAt time.Time     // absolute deadline, used when TTL is zero
	KeepTTL  bool          // if true, retain the existing TTL (ignore TTL field)
	NX       bool          // only set if the key does not exist
	XX       bool          // only set if the key already exists
}

// SweepResult counts the work done by one DeleteExpired pass
type SweepResult struct {
	Sampled int
	Expired int
}

// Ratio returns expired/sampled, 0 when nothing was sampled
func (r SweepResult) Ratio() float64 {
	if r.Sampled == 0 {
		return 0
	}
	return float64(r.Expired) / float64(r.Sampled)
}

// Store owns all logical databases. Instances are independent of each other
type Store struct {
	dbs       []*DB
	shards    uint
	databases int
	clock     func() time.Time
	mutations atomic.Uint64
}

// Option configures a Store
type Option func(*Store)

// WithShards sets the number of lock stripes per database. Must be a power of two, at most 64
func WithShards(n uint) Option {
	return func(s *Store) {
		s.shards = n
	}
}

// WithDatabases sets the number of logical databases, between 1 and 16
func WithDatabases(n int) Option {
	return func(s *Store) {
		s.databases = n
	}
}

// WithClock replaces time.Now, used for expiration checks and stream IDs
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

// New creates a store with empty databases
func New(opts ...Option) (*Store, error) {
	s := &Store{
		shards:    DefaultShards,
		databases: DefaultDatabases,
		clock:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if bits.OnesCount(s.shards) != 1 {
		return nil, errors.New("requested shards must be a power of 2")
	}

	if s.shards > MaxShards {
		return nil, errors.New("requested shards must be less or equal than 64")
	}

	if s.databases < 1 || s.databases > DefaultDatabases {
		return nil, errors.New("requested databases must be between 1 and 16")
	}

	s.dbs = make([]*DB, s.databases)
	for i := range s.dbs {
		s.dbs[i] = newDB(s, i)
	}

	return s, nil
}

// Select returns the handle of database index
func (s *Store) Select(index int) (*DB, error) {
	if index < 0 || index >= len(s.dbs) {
		return nil, &RangeError{What: "database", Value: int64(index), Min: 0, Max: int64(len(s.dbs) - 1)}
	}
	return s.dbs[index], nil
}

// Databases returns the number of logical databases
func (s *Store) Databases() int {
	return len(s.dbs)
}

// Mutations returns the number of successful writes since creation
func (s *Store) Mutations() uint64 {
	return s.mutations.Load()
}

// Volatile returns the number of stored keys that carry a TTL, expired or not
func (s *Store) Volatile() int {
	total := 0
	for _, db := range s.dbs {
		total += db.volatile()
	}
	return total
}

// DeleteExpired samples up to limit keys with a TTL in every shard and deletes the expired ones.
// Shards of a database are swept concurrently, each under its own lock
func (s *Store) DeleteExpired(limit int) SweepResult {
	var total SweepResult
	now := s.now()

	for _, db := range s.dbs {
		var wg sync.WaitGroup
		var mu sync.Mutex // protects total

		for _, sh := range db.shards {
			if _, volatile := sh.count(); volatile == 0 {
				continue
			}

			wg.Add(1)
			go func(m *shard) {
				defer wg.Done()
				checked, expired := m.deleteExpired(limit, now)

				mu.Lock()
				total.Sampled += checked
				total.Expired += expired
				mu.Unlock()
			}(sh)
		}

		wg.Wait()
	}

	return total
}

// FlushAll removes every key of every database
func (s *Store) FlushAll() {
	for _, db := range s.dbs {
		db.Flush()
	}
}

func (s *Store) now() int64 {
	return s.clock().UnixNano()
}

func (s *Store) touch() {
	s.mutations.Add(1)
}
