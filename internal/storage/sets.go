package storage

import "github.com/eternalApril/moondb/internal/datatype"

// SAdd adds members to the set. Returns how many were new
func (d *DB) SAdd(key string, members ...string) (int, error) {
	var added int
	_, err := update(d, key, KindSet, datatype.NewSet, func(s *datatype.Set) (bool, error) {
		added = s.Add(members...)
		return added > 0, nil
	})
	return added, err
}

// SRem removes members from the set, absent members are ignored. Returns how many were removed
func (d *DB) SRem(key string, members ...string) (int, error) {
	var removed int
	_, err := update(d, key, KindSet, nil, func(s *datatype.Set) (bool, error) {
		removed = s.Remove(members...)
		return removed > 0, nil
	})
	return removed, err
}

// SMembers returns all members in no particular order
func (d *DB) SMembers(key string) ([]string, error) {
	out := []string{}
	_, err := view(d, key, KindSet, func(s *datatype.Set) {
		out = s.Members()
	})
	return out, err
}

// SIsMember reports whether member belongs to the set
func (d *DB) SIsMember(key, member string) (bool, error) {
	ok := false
	_, err := view(d, key, KindSet, func(s *datatype.Set) {
		ok = s.IsMember(member)
	})
	return ok, err
}

// SCard returns the cardinality of the set
func (d *DB) SCard(key string) (int, error) {
	n := 0
	_, err := view(d, key, KindSet, func(s *datatype.Set) {
		n = s.Len()
	})
	return n, err
}
