package storage

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock for expiry tests
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// setupDB creates a fresh store with a manual clock and returns database 0
func setupDB(t testing.TB) (*DB, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	s, err := New(WithShards(4), WithClock(clock.Now))
	require.NoError(t, err)
	db, err := s.Select(0)
	require.NoError(t, err)
	return db, clock
}

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		shards      uint
		databases   int
		expectError bool
	}{
		{"Valid 1 shard", 1, 16, false},
		{"Valid 2 shards", 2, 16, false},
		{"Valid 64 shards", 64, 16, false},
		{"Valid single database", 8, 1, false},
		{"Invalid 0 shards", 0, 16, true},
		{"Invalid 3 shards (not power of 2)", 3, 16, true},
		{"Invalid 63 shards (not power of 2)", 63, 16, true},
		{"Invalid 128 shards (too many)", 128, 16, true},
		{"Invalid 0 databases", 8, 0, true},
		{"Invalid 17 databases", 8, 17, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(WithShards(tt.shards), WithDatabases(tt.databases))
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, s)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.databases, s.Databases())
			for _, db := range s.dbs {
				assert.Len(t, db.shards, int(tt.shards))
				assert.Equal(t, uint64(tt.shards-1), db.shardMask)
			}
		})
	}
}

func TestSelect(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	for _, idx := range []int{0, 1, 15} {
		db, err := s.Select(idx)
		require.NoError(t, err)
		assert.Equal(t, idx, db.Index())
	}

	for _, idx := range []int{-1, 16, 100} {
		db, err := s.Select(idx)
		assert.Nil(t, db)
		assert.ErrorIs(t, err, ErrOutOfRange)

		var rangeErr *RangeError
		require.True(t, errors.As(err, &rangeErr))
		assert.Equal(t, "database", rangeErr.What)
		assert.Equal(t, int64(15), rangeErr.Max)
	}
}

func TestDatabasesAreIsolated(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	db0, _ := s.Select(0) //nolint:errcheck
	db1, _ := s.Select(1) //nolint:errcheck

	db0.Set("k", "zero", SetOptions{})
	_, found, err := db1.Get("k")
	require.NoError(t, err)
	assert.False(t, found)

	db1.Set("k", "one", SetOptions{})
	v, _, _ := db0.Get("k") //nolint:errcheck
	assert.Equal(t, "zero", v)
}

func TestStoresAreIndependent(t *testing.T) {
	a, err := New()
	require.NoError(t, err)
	b, err := New()
	require.NoError(t, err)

	dbA, _ := a.Select(0) //nolint:errcheck
	dbB, _ := b.Select(0) //nolint:errcheck

	dbA.Set("shared", "a", SetOptions{})
	assert.Equal(t, 0, dbB.Exists("shared"))
	assert.Equal(t, uint64(1), a.Mutations())
	assert.Equal(t, uint64(0), b.Mutations())
}

func TestShardDistribution(t *testing.T) {
	shardsCount := uint(16)
	s, err := New(WithShards(shardsCount))
	require.NoError(t, err)
	db, _ := s.Select(0) //nolint:errcheck

	keysPopulated := make(map[*shard]int)

	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("key-%d", i)
		db.Set(key, "val", SetOptions{})

		sh := db.getShard(key)
		if _, ok := sh.data[key]; !ok {
			t.Errorf("Key %s hashed to a shard but not found there", key)
		}
		keysPopulated[sh]++
	}

	if len(keysPopulated) < int(shardsCount) {
		t.Logf("Warning: Not all shards were used with 100 keys. Used: %d/%d.", len(keysPopulated), shardsCount)
	}
}

func TestSetOverwritesAnyKind(t *testing.T) {
	db, _ := setupDB(t)

	_, err := db.LPush("k", "a")
	require.NoError(t, err)
	require.Equal(t, KindList, db.Type("k"))

	db.Set("k", "v", SetOptions{})
	assert.Equal(t, KindString, db.Type("k"))

	v, found, err := db.Get("k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", v)
}

func TestSetNXXX(t *testing.T) {
	db, _ := setupDB(t)

	assert.True(t, db.Set("k1", "v1", SetOptions{NX: true}))
	assert.False(t, db.Set("k1", "v2", SetOptions{NX: true}))
	v, _, _ := db.Get("k1") //nolint:errcheck
	assert.Equal(t, "v1", v)

	assert.False(t, db.Set("k2", "v2", SetOptions{XX: true}))
	assert.Equal(t, 0, db.Exists("k2"))

	assert.True(t, db.Set("k1", "updated", SetOptions{XX: true}))
	v, _, _ = db.Get("k1") //nolint:errcheck
	assert.Equal(t, "updated", v)
}

func TestDeleteExistsType(t *testing.T) {
	db, _ := setupDB(t)

	db.Set("a", "1", SetOptions{})
	_, err := db.SAdd("b", "x")
	require.NoError(t, err)

	assert.Equal(t, 3, db.Exists("a", "b", "a"))
	assert.Equal(t, KindSet, db.Type("b"))
	assert.Equal(t, KindNone, db.Type("missing"))
	assert.Equal(t, 2, db.Len())

	assert.Equal(t, 2, db.Delete("a", "b", "missing"))
	assert.Equal(t, 0, db.Exists("a", "b"))
	assert.Equal(t, 0, db.Len())
}

func TestFlush(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	db0, _ := s.Select(0) //nolint:errcheck
	db1, _ := s.Select(1) //nolint:errcheck

	db0.Set("a", "1", SetOptions{TTL: time.Hour})
	db1.Set("b", "1", SetOptions{})

	db0.Flush()
	assert.Equal(t, 0, db0.Len())
	assert.Equal(t, 1, db1.Len())
	assert.Equal(t, 0, s.Volatile())

	s.FlushAll()
	assert.Equal(t, 0, db1.Len())
}

func TestIncrBy(t *testing.T) {
	db, _ := setupDB(t)

	n, err := db.IncrBy("counter", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	n, err = db.IncrBy("counter", -7)
	require.NoError(t, err)
	assert.Equal(t, int64(-2), n)

	db.Set("text", "abc", SetOptions{})
	_, err = db.IncrBy("text", 1)
	assert.ErrorIs(t, err, ErrNotInteger)

	db.Set("max", "9223372036854775807", SetOptions{})
	_, err = db.IncrBy("max", 1)
	assert.ErrorIs(t, err, ErrNotInteger)

	_, err = db.SAdd("set", "a")
	require.NoError(t, err)
	_, err = db.IncrBy("set", 1)
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestConcurrency(t *testing.T) {
	s, err := New(WithShards(16))
	require.NoError(t, err)
	db, _ := s.Select(0) //nolint:errcheck

	const workers = 50
	const opsPerWorker = 5000

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func(workerID int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

			for j := 0; j < opsPerWorker; j++ {
				key := fmt.Sprintf("key-%d", r.Intn(50))
				val := fmt.Sprintf("val-%d", j)

				switch r.Intn(6) {
				case 0:
					db.Set(key, val, SetOptions{TTL: time.Duration(r.Intn(3)) * time.Millisecond})
				case 1:
					db.Get(key) //nolint:errcheck
				case 2:
					db.Delete(key)
				case 3:
					db.LPush(key, val) //nolint:errcheck
				case 4:
					db.HSet(key, map[string]string{"f": val}) //nolint:errcheck
				case 5:
					s.DeleteExpired(10)
				}
			}
		}(i)
	}

	wg.Wait()
}

func TestConcurrentIncrIsAtomic(t *testing.T) {
	db, _ := setupDB(t)

	const workers = 20
	const incrs = 500

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < incrs; j++ {
				db.IncrBy("counter", 1) //nolint:errcheck
			}
		}()
	}
	wg.Wait()

	v, _, err := db.Get("counter")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprint(workers*incrs), v)
}

func FuzzSetGet(f *testing.F) {
	s, _ := New(WithShards(8)) //nolint:errcheck
	db, _ := s.Select(0)       //nolint:errcheck

	f.Add("key1", "val1")
	f.Add("special", "!@#$%^&*()")

	f.Fuzz(func(t *testing.T, key string, val string) {
		db.Set(key, val, SetOptions{})

		v, ok, err := db.Get(key)
		if err != nil || !ok || v != val {
			t.Errorf("Get failed after Set: key=%q, val=%q", key, val)
		}
	})
}
