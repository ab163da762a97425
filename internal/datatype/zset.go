package datatype

import "sort"

// ScoredMember is a sorted set member with its score
type ScoredMember struct {
	Member string
	Score  float64
}

// less orders by score, then lexicographically by member
func (a ScoredMember) less(b ScoredMember) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Member < b.Member
}

// SortedSet keeps unique members ordered by score.
// scores is the lookup index, ordered holds the same members sorted
type SortedSet struct {
	scores  map[string]float64
	ordered []ScoredMember
}

// NewSortedSet creates an empty sorted set
func NewSortedSet() *SortedSet {
	return &SortedSet{scores: make(map[string]float64)}
}

// Len returns the number of members
func (z *SortedSet) Len() int {
	return len(z.ordered)
}

// Add inserts members or overwrites their scores. Returns the number of new members
func (z *SortedSet) Add(pairs ...ScoredMember) int {
	added := 0
	for _, p := range pairs {
		if z.put(p) {
			added++
		}
	}
	return added
}

// IncrBy adds delta to the member score, creating it with score delta if absent
func (z *SortedSet) IncrBy(member string, delta float64) float64 {
	score := z.scores[member] + delta
	z.put(ScoredMember{Member: member, Score: score})
	return score
}

// Score returns the score of member
func (z *SortedSet) Score(member string) (float64, bool) {
	s, ok := z.scores[member]
	return s, ok
}

// Remove deletes members and returns how many were present
func (z *SortedSet) Remove(members ...string) int {
	removed := 0
	for _, m := range members {
		score, ok := z.scores[m]
		if !ok {
			continue
		}
		z.unlink(ScoredMember{Member: m, Score: score})
		delete(z.scores, m)
		removed++
	}
	return removed
}

// Rank returns the 0-based position of member in ascending order
func (z *SortedSet) Rank(member string) (int, bool) {
	score, ok := z.scores[member]
	if !ok {
		return 0, false
	}
	return z.search(ScoredMember{Member: member, Score: score}), true
}

// Range returns members between start and stop positions inclusive, ascending.
// Negative positions count from the end
func (z *SortedSet) Range(start, stop int) []ScoredMember {
	from, to, ok := clampRange(start, stop, len(z.ordered))
	if !ok {
		return []ScoredMember{}
	}

	out := make([]ScoredMember, to-from+1)
	copy(out, z.ordered[from:to+1])
	return out
}

// put inserts or moves p. Returns true if the member was new
func (z *SortedSet) put(p ScoredMember) bool {
	old, exists := z.scores[p.Member]
	if exists {
		if old == p.Score {
			return false
		}
		z.unlink(ScoredMember{Member: p.Member, Score: old})
	}

	z.scores[p.Member] = p.Score

	i := z.search(p)
	z.ordered = append(z.ordered, ScoredMember{})
	copy(z.ordered[i+1:], z.ordered[i:])
	z.ordered[i] = p

	return !exists
}

func (z *SortedSet) unlink(p ScoredMember) {
	i := z.search(p)
	if i < len(z.ordered) && z.ordered[i].Member == p.Member {
		z.ordered = append(z.ordered[:i], z.ordered[i+1:]...)
	}
}

// search returns the index of the first element not less than p
func (z *SortedSet) search(p ScoredMember) int {
	return sort.Search(len(z.ordered), func(i int) bool {
		return !z.ordered[i].less(p)
	})
}
