package storage

import "github.com/eternalApril/moondb/internal/datatype"

// LPush prepends items so the last one ends up at the head. Returns the new length
func (d *DB) LPush(key string, items ...string) (int, error) {
	var n int
	_, err := update(d, key, KindList, datatype.NewList, func(l *datatype.List) (bool, error) {
		n = l.PushLeft(items...)
		return true, nil
	})
	return n, err
}

// RPush appends items to the tail. Returns the new length
func (d *DB) RPush(key string, items ...string) (int, error) {
	var n int
	_, err := update(d, key, KindList, datatype.NewList, func(l *datatype.List) (bool, error) {
		n = l.PushRight(items...)
		return true, nil
	})
	return n, err
}

// LSet replaces the element at index. The list is left untouched on error
func (d *DB) LSet(key string, index int, value string) error {
	found, err := update(d, key, KindList, nil, func(l *datatype.List) (bool, error) {
		if !l.Set(index, value) {
			return false, &RangeError{What: "index", Value: int64(index), Min: int64(-l.Len()), Max: int64(l.Len() - 1)}
		}
		return true, nil
	})
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

// LRange returns elements between start and stop inclusive. Negative indexes count from the end
func (d *DB) LRange(key string, start, stop int) ([]string, error) {
	out := []string{}
	_, err := view(d, key, KindList, func(l *datatype.List) {
		out = l.Range(start, stop)
	})
	return out, err
}

// LIndex returns the element at index
func (d *DB) LIndex(key string, index int) (string, bool, error) {
	var (
		val string
		ok  bool
	)
	_, err := view(d, key, KindList, func(l *datatype.List) {
		val, ok = l.Index(index)
	})
	return val, ok, err
}

// LLen returns the length of the list, 0 if the key is absent
func (d *DB) LLen(key string) (int, error) {
	n := 0
	_, err := view(d, key, KindList, func(l *datatype.List) {
		n = l.Len()
	})
	return n, err
}

// LPop removes and returns up to count elements from the head
func (d *DB) LPop(key string, count int) ([]string, error) {
	return d.pop(key, count, (*datatype.List).PopLeft)
}

// RPop removes and returns up to count elements from the tail
func (d *DB) RPop(key string, count int) ([]string, error) {
	return d.pop(key, count, (*datatype.List).PopRight)
}

func (d *DB) pop(key string, count int, popFn func(*datatype.List, int) []string) ([]string, error) {
	if count < 0 {
		return nil, &RangeError{What: "count", Value: int64(count), Min: 0, Max: int64(^uint(0) >> 1)}
	}

	out := []string{}
	_, err := update(d, key, KindList, nil, func(l *datatype.List) (bool, error) {
		out = popFn(l, count)
		return len(out) > 0, nil
	})
	return out, err
}
