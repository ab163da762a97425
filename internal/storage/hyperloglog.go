package storage

import "github.com/eternalApril/moondb/internal/datatype"

// PFAdd merges items into the sketch stored at key.
// Returns true if the key was created or the estimate may have changed
func (d *DB) PFAdd(key string, items ...string) (bool, error) {
	created := false
	create := func() *datatype.HyperLogLog {
		created = true
		return datatype.NewHyperLogLog()
	}

	changed := false
	_, err := update(d, key, KindHyperLogLog, create, func(h *datatype.HyperLogLog) (bool, error) {
		changed = h.Add(items...)
		return changed, nil
	})
	return changed || created, err
}

// PFCount returns the estimated cardinality of the union of the sketches at keys.
// Absent keys count as empty sketches
func (d *DB) PFCount(keys ...string) (uint64, error) {
	if len(keys) == 1 {
		var n uint64
		_, err := view(d, keys[0], KindHyperLogLog, func(h *datatype.HyperLogLog) {
			n = h.Count()
		})
		return n, err
	}

	union, err := d.unionHLL(keys)
	if err != nil {
		return 0, err
	}
	return union.Count(), nil
}

// PFMerge stores the union of dest and sources in dest
func (d *DB) PFMerge(dest string, sources ...string) error {
	union, err := d.unionHLL(sources)
	if err != nil {
		return err
	}

	_, err = update(d, dest, KindHyperLogLog, datatype.NewHyperLogLog, func(h *datatype.HyperLogLog) (bool, error) {
		h.Merge(union)
		return true, nil
	})
	return err
}

// unionHLL reads each key under its own shard lock and merges copies of the sketches
func (d *DB) unionHLL(keys []string) (*datatype.HyperLogLog, error) {
	union := datatype.NewHyperLogLog()
	for _, key := range keys {
		_, err := view(d, key, KindHyperLogLog, func(h *datatype.HyperLogLog) {
			union.Merge(h)
		})
		if err != nil {
			return nil, err
		}
	}
	return union, nil
}
