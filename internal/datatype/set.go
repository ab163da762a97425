package datatype

// Set is an unordered collection of unique strings
type Set struct {
	members map[string]struct{}
}

// NewSet creates an empty set
func NewSet() *Set {
	return &Set{members: make(map[string]struct{})}
}

// Len returns the cardinality
func (s *Set) Len() int {
	return len(s.members)
}

// Add inserts members and returns how many were not present before
func (s *Set) Add(members ...string) int {
	added := 0
	for _, m := range members {
		if _, ok := s.members[m]; !ok {
			s.members[m] = struct{}{}
			added++
		}
	}
	return added
}

// Remove deletes members and returns how many were present
func (s *Set) Remove(members ...string) int {
	removed := 0
	for _, m := range members {
		if _, ok := s.members[m]; ok {
			delete(s.members, m)
			removed++
		}
	}
	return removed
}

// IsMember reports whether m belongs to the set
func (s *Set) IsMember(m string) bool {
	_, ok := s.members[m]
	return ok
}

// Members returns all members in no particular order
func (s *Set) Members() []string {
	out := make([]string, 0, len(s.members))
	for m := range s.members {
		out = append(out, m)
	}
	return out
}
