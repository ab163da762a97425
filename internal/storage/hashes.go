package storage

import "github.com/eternalApril/moondb/internal/datatype"

// HSet sets the specified fields to their respective values in the hash stored at key.
// All fields are applied under one lock. Returns the number of fields that were added
func (d *DB) HSet(key string, fields map[string]string) (int, error) {
	if len(fields) == 0 {
		return 0, ErrInvalidArgument
	}

	var added int
	_, err := update(d, key, KindHash, datatype.NewHash, func(h *datatype.Hash) (bool, error) {
		added = h.Set(fields)
		return true, nil
	})
	return added, err
}

// HGet returns the value associated with field in the hash stored at key
func (d *DB) HGet(key, field string) (string, bool, error) {
	var (
		val string
		ok  bool
	)
	_, err := view(d, key, KindHash, func(h *datatype.Hash) {
		val, ok = h.Get(field)
	})
	return val, ok, err
}

// HGetAll returns all fields and values of the hash stored at key
func (d *DB) HGetAll(key string) (map[string]string, error) {
	out := map[string]string{}
	_, err := view(d, key, KindHash, func(h *datatype.Hash) {
		out = h.GetAll()
	})
	return out, err
}

// HDel removes fields from the hash. Returns how many existed
func (d *DB) HDel(key string, fields ...string) (int, error) {
	var removed int
	_, err := update(d, key, KindHash, nil, func(h *datatype.Hash) (bool, error) {
		removed = h.Delete(fields...)
		return removed > 0, nil
	})
	return removed, err
}

// HLen returns the number of fields contained in the hash stored at key
func (d *DB) HLen(key string) (int, error) {
	n := 0
	_, err := view(d, key, KindHash, func(h *datatype.Hash) {
		n = h.Len()
	})
	return n, err
}

// HExists returns if field is an existing field in the hash stored at key
func (d *DB) HExists(key, field string) (bool, error) {
	ok := false
	_, err := view(d, key, KindHash, func(h *datatype.Hash) {
		ok = h.Exists(field)
	})
	return ok, err
}

// HKeys returns all field names in the hash stored at key
func (d *DB) HKeys(key string) ([]string, error) {
	out := []string{}
	_, err := view(d, key, KindHash, func(h *datatype.Hash) {
		out = h.Keys()
	})
	return out, err
}

// HVals returns all values in the hash stored at key
func (d *DB) HVals(key string) ([]string, error) {
	out := []string{}
	_, err := view(d, key, KindHash, func(h *datatype.Hash) {
		out = h.Values()
	})
	return out, err
}
