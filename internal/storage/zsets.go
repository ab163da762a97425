package storage

import (
	"math"

	"github.com/eternalApril/moondb/internal/datatype"
)

// ZAdd inserts members or overwrites their scores. Returns the number of new members.
// Nothing is written if any score is NaN
func (d *DB) ZAdd(key string, pairs ...datatype.ScoredMember) (int, error) {
	for _, p := range pairs {
		if math.IsNaN(p.Score) {
			return 0, ErrNotFloat
		}
	}

	var added int
	_, err := update(d, key, KindZSet, datatype.NewSortedSet, func(z *datatype.SortedSet) (bool, error) {
		added = z.Add(pairs...)
		return true, nil
	})
	return added, err
}

// ZIncrBy adds delta to the score of member and returns the new score
func (d *DB) ZIncrBy(key, member string, delta float64) (float64, error) {
	var score float64
	_, err := update(d, key, KindZSet, datatype.NewSortedSet, func(z *datatype.SortedSet) (bool, error) {
		current, _ := z.Score(member)
		if math.IsNaN(current + delta) {
			return false, ErrNotFloat
		}
		score = z.IncrBy(member, delta)
		return true, nil
	})
	return score, err
}

// ZScore returns the score of member
func (d *DB) ZScore(key, member string) (float64, bool, error) {
	var (
		score float64
		ok    bool
	)
	_, err := view(d, key, KindZSet, func(z *datatype.SortedSet) {
		score, ok = z.Score(member)
	})
	return score, ok, err
}

// ZRem removes members. Returns how many existed
func (d *DB) ZRem(key string, members ...string) (int, error) {
	var removed int
	_, err := update(d, key, KindZSet, nil, func(z *datatype.SortedSet) (bool, error) {
		removed = z.Remove(members...)
		return removed > 0, nil
	})
	return removed, err
}

// ZCard returns the number of members
func (d *DB) ZCard(key string) (int, error) {
	n := 0
	_, err := view(d, key, KindZSet, func(z *datatype.SortedSet) {
		n = z.Len()
	})
	return n, err
}

// ZRank returns the 0-based rank of member by ascending score
func (d *DB) ZRank(key, member string) (int, bool, error) {
	var (
		rank int
		ok   bool
	)
	_, err := view(d, key, KindZSet, func(z *datatype.SortedSet) {
		rank, ok = z.Rank(member)
	})
	return rank, ok, err
}

// ZRange returns members between start and stop ranks inclusive, ordered by ascending score
func (d *DB) ZRange(key string, start, stop int) ([]datatype.ScoredMember, error) {
	out := []datatype.ScoredMember{}
	_, err := view(d, key, KindZSet, func(z *datatype.SortedSet) {
		out = z.Range(start, stop)
	})
	return out, err
}
