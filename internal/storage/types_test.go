package storage

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/eternalApril/moondb/internal/datatype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrongTypeEverywhere(t *testing.T) {
	db, _ := setupDB(t)
	db.Set("str", "v", SetOptions{})

	calls := map[string]func() error{
		"LPush":     func() error { _, err := db.LPush("str", "a"); return err },
		"LRange":    func() error { _, err := db.LRange("str", 0, -1); return err },
		"HSet":      func() error { _, err := db.HSet("str", map[string]string{"f": "v"}); return err },
		"HGetAll":   func() error { _, err := db.HGetAll("str"); return err },
		"SAdd":      func() error { _, err := db.SAdd("str", "a"); return err },
		"SCard":     func() error { _, err := db.SCard("str"); return err },
		"ZAdd":      func() error { _, err := db.ZAdd("str", datatype.ScoredMember{Member: "a"}); return err },
		"ZRange":    func() error { _, err := db.ZRange("str", 0, -1); return err },
		"PFAdd":     func() error { _, err := db.PFAdd("str", "a"); return err },
		"PFCount":   func() error { _, err := db.PFCount("str", "other"); return err },
		"GeoAdd":    func() error { _, err := db.GeoAdd("str", GeoMember{Member: "a"}); return err },
		"GeoPos":    func() error { _, err := db.GeoPos("str", "a"); return err },
		"XAdd":      func() error { _, err := db.XAdd("str", "*", streamFields("f", "v")); return err },
		"XRange":    func() error { _, err := db.XRange("str", datatype.MinStreamID, datatype.MaxStreamID, 0); return err },
		"LPop":      func() error { _, err := db.LPop("str", 1); return err },
		"SIsMember": func() error { _, err := db.SIsMember("str", "a"); return err },
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			err := call()
			assert.ErrorIs(t, err, ErrWrongType)

			var mismatch *TypeMismatchError
			require.True(t, errors.As(err, &mismatch))
			assert.Equal(t, "str", mismatch.Key)
			assert.Equal(t, KindString, mismatch.Got)
		})
	}

	v, _, _ := db.Get("str") //nolint:errcheck
	assert.Equal(t, "v", v, "failed calls must not modify the value")

	_, err := db.RPush("list", "a")
	require.NoError(t, err)
	_, _, err = db.Get("list")
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestReadsDoNotCreateKeys(t *testing.T) {
	db, _ := setupDB(t)

	out, err := db.LRange("l", 0, -1)
	require.NoError(t, err)
	assert.Empty(t, out)

	n, err := db.SCard("s")
	require.NoError(t, err)
	assert.Zero(t, n)

	count, err := db.PFCount("h")
	require.NoError(t, err)
	assert.Zero(t, count)

	removed, err := db.HDel("h2", "f")
	require.NoError(t, err)
	assert.Zero(t, removed)

	popped, err := db.RPop("l", 3)
	require.NoError(t, err)
	assert.Empty(t, popped)

	assert.Equal(t, 0, db.Len())
}

func TestLists(t *testing.T) {
	db, _ := setupDB(t)

	n, err := db.LPush("l", "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = db.RPush("l", "d")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	out, err := db.LRange("l", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a", "d"}, out)

	v, ok, err := db.LIndex("l", -1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "d", v)

	require.NoError(t, db.LSet("l", 1, "B"))
	v, _, _ = db.LIndex("l", 1) //nolint:errcheck
	assert.Equal(t, "B", v)

	popped, err := db.LPop("l", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "B"}, popped)

	popped, err = db.RPop("l", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, popped)

	_, err = db.LPop("l", -1)
	assert.ErrorIs(t, err, ErrOutOfRange)

	length, err := db.LLen("l")
	require.NoError(t, err)
	assert.Equal(t, 1, length)
}

func TestLSetErrors(t *testing.T) {
	db, _ := setupDB(t)

	assert.ErrorIs(t, db.LSet("missing", 0, "x"), ErrNotFound)

	_, err := db.RPush("l", "a", "b")
	require.NoError(t, err)

	err = db.LSet("l", 5, "x")
	assert.ErrorIs(t, err, ErrOutOfRange)

	var rangeErr *RangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, "index", rangeErr.What)
	assert.Equal(t, int64(5), rangeErr.Value)

	out, _ := db.LRange("l", 0, -1) //nolint:errcheck
	assert.Equal(t, []string{"a", "b"}, out, "list is unchanged after a failed LSet")
}

func TestPoppingLastElementRemovesKey(t *testing.T) {
	db, _ := setupDB(t)

	_, err := db.RPush("l", "a")
	require.NoError(t, err)
	require.True(t, db.ExpireAfter("l", time.Minute))

	_, err = db.LPop("l", 5)
	require.NoError(t, err)
	assert.Equal(t, KindNone, db.Type("l"))
	assert.Equal(t, 0, db.store.Volatile())

	_, err = db.HSet("h", map[string]string{"f": "v"})
	require.NoError(t, err)
	_, err = db.HDel("h", "f")
	require.NoError(t, err)
	assert.Equal(t, 0, db.Exists("h"))

	_, err = db.SAdd("s", "a")
	require.NoError(t, err)
	_, err = db.SRem("s", "a")
	require.NoError(t, err)
	assert.Equal(t, 0, db.Exists("s"))

	_, err = db.ZAdd("z", datatype.ScoredMember{Member: "a", Score: 1})
	require.NoError(t, err)
	_, err = db.ZRem("z", "a")
	require.NoError(t, err)
	assert.Equal(t, 0, db.Exists("z"))
}

func TestHashes(t *testing.T) {
	db, _ := setupDB(t)

	added, err := db.HSet("h", map[string]string{"a": "1", "b": "2"})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	added, err = db.HSet("h", map[string]string{"a": "10", "c": "3"})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	v, ok, err := db.HGet("h", "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "10", v)

	all, err := db.HGetAll("h")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "10", "b": "2", "c": "3"}, all)

	all["a"] = "changed"
	v, _, _ = db.HGet("h", "a") //nolint:errcheck
	assert.Equal(t, "10", v, "HGetAll returns a copy")

	keys, err := db.HKeys("h")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, keys)

	vals, err := db.HVals("h")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"10", "2", "3"}, vals)

	exists, err := db.HExists("h", "b")
	require.NoError(t, err)
	assert.True(t, exists)

	removed, err := db.HDel("h", "b", "nope")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	n, err := db.HLen("h")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = db.HSet("h", nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSets(t *testing.T) {
	db, _ := setupDB(t)

	added, err := db.SAdd("s", "a", "b", "a")
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	ok, err := db.SIsMember("s", "a")
	require.NoError(t, err)
	assert.True(t, ok)

	members, err := db.SMembers("s")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, members)

	removed, err := db.SRem("s", "a", "zzz")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	n, err := db.SCard("s")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSortedSets(t *testing.T) {
	db, _ := setupDB(t)

	added, err := db.ZAdd("z",
		datatype.ScoredMember{Member: "b", Score: 2},
		datatype.ScoredMember{Member: "a", Score: 1},
		datatype.ScoredMember{Member: "c", Score: 2},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	out, err := db.ZRange("z", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []datatype.ScoredMember{{Member: "a", Score: 1}, {Member: "b", Score: 2}, {Member: "c", Score: 2}}, out)

	score, err := db.ZIncrBy("z", "a", 5)
	require.NoError(t, err)
	assert.Equal(t, 6.0, score)

	rank, ok, err := db.ZRank("z", "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, rank)

	_, ok, err = db.ZScore("z", "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = db.ZAdd("z", datatype.ScoredMember{Member: "x", Score: math.NaN()})
	assert.ErrorIs(t, err, ErrNotFloat)
	n, _ := db.ZCard("z") //nolint:errcheck
	assert.Equal(t, 3, n)

	_, err = db.ZAdd("inf", datatype.ScoredMember{Member: "x", Score: math.Inf(1)})
	require.NoError(t, err)
	_, err = db.ZIncrBy("inf", "x", math.Inf(-1))
	assert.ErrorIs(t, err, ErrNotFloat)
}

func TestHyperLogLog(t *testing.T) {
	db, _ := setupDB(t)

	changed, err := db.PFAdd("h1", "a", "b", "c")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = db.PFAdd("h1", "a")
	require.NoError(t, err)
	assert.False(t, changed)

	// creating an empty sketch counts as a change
	changed, err = db.PFAdd("empty")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, KindHyperLogLog, db.Type("empty"))

	count, err := db.PFCount("h1")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	_, err = db.PFAdd("h2", "c", "d")
	require.NoError(t, err)

	count, err = db.PFCount("h1", "h2", "missing")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)

	require.NoError(t, db.PFMerge("dest", "h1", "h2"))
	count, err = db.PFCount("dest")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)

	count, _ = db.PFCount("h1") //nolint:errcheck
	assert.Equal(t, uint64(3), count, "sources are not modified by a merge")
}

func TestHyperLogLogAccuracy(t *testing.T) {
	db, _ := setupDB(t)

	const n = 10000
	for i := 0; i < n; i += 100 {
		items := make([]string, 0, 100)
		for j := i; j < i+100; j++ {
			items = append(items, fmt.Sprintf("item-%d", j))
		}
		_, err := db.PFAdd("big", items...)
		require.NoError(t, err)
	}

	count, err := db.PFCount("big")
	require.NoError(t, err)
	assert.InEpsilon(t, n, float64(count), 5*datatype.HyperLogLogStdError)
}

func TestGeo(t *testing.T) {
	db, _ := setupDB(t)

	added, err := db.GeoAdd("sicily",
		GeoMember{Member: "Palermo", Point: datatype.Point{Lon: 13.361389, Lat: 38.115556}},
		GeoMember{Member: "Catania", Point: datatype.Point{Lon: 15.087269, Lat: 37.502669}},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	dist, ok, err := db.GeoDist("sicily", "Palermo", "Catania", datatype.Kilometers)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 166.274, dist, 0.01)

	_, ok, err = db.GeoDist("sicily", "Palermo", "Rome", datatype.Meters)
	require.NoError(t, err)
	assert.False(t, ok)

	pos, err := db.GeoPos("sicily", "Palermo", "Rome")
	require.NoError(t, err)
	require.Len(t, pos, 2)
	require.NotNil(t, pos[0])
	assert.InDelta(t, 13.361389, pos[0].Lon, 1e-9)
	assert.Nil(t, pos[1])

	hashes, err := db.GeoHash("sicily", "Palermo", "Rome")
	require.NoError(t, err)
	assert.Equal(t, "sqc8b49rn", hashes[0][:9])
	assert.Equal(t, "", hashes[1])

	matches, err := db.GeoRadius("sicily", datatype.Point{Lon: 15, Lat: 37}, 200, datatype.Kilometers)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "Catania", matches[0].Member)
	assert.Equal(t, "Palermo", matches[1].Member)

	matches, err = db.GeoRadiusByMember("sicily", "Palermo", 100, datatype.Kilometers)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Palermo", matches[0].Member)

	_, err = db.GeoRadiusByMember("sicily", "Rome", 100, datatype.Kilometers)
	assert.ErrorIs(t, err, ErrNotFound)

	matches, err = db.GeoRadiusByMember("nokey", "Rome", 100, datatype.Kilometers)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestGeoAddRejectsInvalidPositions(t *testing.T) {
	db, _ := setupDB(t)

	_, err := db.GeoAdd("g",
		GeoMember{Member: "ok", Point: datatype.Point{Lon: 10, Lat: 10}},
		GeoMember{Member: "pole", Point: datatype.Point{Lon: 10, Lat: 89}},
	)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, 0, db.Exists("g"), "nothing is written when one position is invalid")

	_, err = db.GeoRadius("g", datatype.Point{Lon: 200, Lat: 0}, 1, datatype.Meters)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = db.GeoRadius("g", datatype.Point{Lon: 0, Lat: 0}, -1, datatype.Meters)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestStreams(t *testing.T) {
	db, clock := setupDB(t)
	ms := uint64(clock.Now().UnixMilli())

	id1, err := db.XAdd("s", "*", streamFields("f", "1"))
	require.NoError(t, err)
	assert.Equal(t, datatype.StreamID{Ms: ms, Seq: 0}, id1)

	id2, err := db.XAdd("s", "*", streamFields("f", "2"))
	require.NoError(t, err)
	assert.Equal(t, datatype.StreamID{Ms: ms, Seq: 1}, id2, "same millisecond bumps the sequence")

	clock.Advance(time.Millisecond)
	id3, err := db.XAdd("s", "", streamFields("f", "3"))
	require.NoError(t, err)
	assert.Equal(t, datatype.StreamID{Ms: ms + 1, Seq: 0}, id3)

	_, err = db.XAdd("s", id3.String(), streamFields("f", "dup"))
	assert.ErrorIs(t, err, ErrStreamID)

	id4, err := db.XAdd("s", fmt.Sprintf("%d-*", ms+1), streamFields("f", "4"))
	require.NoError(t, err)
	assert.Equal(t, datatype.StreamID{Ms: ms + 1, Seq: 1}, id4)

	id5, err := db.XAdd("s", fmt.Sprintf("%d-7", ms+5), streamFields("f", "5"))
	require.NoError(t, err)
	assert.Equal(t, datatype.StreamID{Ms: ms + 5, Seq: 7}, id5)

	n, err := db.XLen("s")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	entries, err := db.XRange("s", id2, id4, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, id2, entries[0].ID)
	assert.Equal(t, "4", entries[2].Fields[0].Value)

	entries, err = db.XRevRange("s", datatype.MinStreamID, datatype.MaxStreamID, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, id5, entries[0].ID)
	assert.Equal(t, id4, entries[1].ID)

	entries[0].Fields[0].Value = "mutated"
	again, _ := db.XRevRange("s", id5, id5, 1) //nolint:errcheck
	assert.Equal(t, "5", again[0].Fields[0].Value, "returned entries are copies")
}

func TestStreamAddErrors(t *testing.T) {
	db, _ := setupDB(t)

	_, err := db.XAdd("s", "0-0", streamFields("f", "v"))
	assert.ErrorIs(t, err, ErrStreamID)
	assert.Equal(t, 0, db.Exists("s"), "a rejected first entry leaves no key behind")

	_, err = db.XAdd("s", "abc", streamFields("f", "v"))
	assert.ErrorIs(t, err, datatype.ErrInvalidStreamID)

	_, err = db.XAdd("s", "+", streamFields("f", "v"))
	assert.ErrorIs(t, err, datatype.ErrInvalidStreamID)

	_, err = db.XAdd("s", "*", nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	id, err := db.XAdd("s", "0-*", streamFields("f", "v"))
	require.NoError(t, err)
	assert.Equal(t, datatype.StreamID{Ms: 0, Seq: 1}, id)
}

// streamFields builds an entry body from name, value pairs
func streamFields(kv ...string) []datatype.StreamField {
	out := make([]datatype.StreamField, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, datatype.StreamField{Name: kv[i], Value: kv[i+1]})
	}
	return out
}

func TestStreamKeepsFieldOrder(t *testing.T) {
	db, _ := setupDB(t)

	_, err := db.XAdd("s", "1-1", streamFields("temp", "21", "hum", "40", "at", "noon"))
	require.NoError(t, err)

	entries, err := db.XRange("s", datatype.MinStreamID, datatype.MaxStreamID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, streamFields("temp", "21", "hum", "40", "at", "noon"), entries[0].Fields)
}
