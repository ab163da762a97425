package datatype

// List is an ordered sequence of strings
type List struct {
	items []string
}

// NewList creates an empty list
func NewList() *List {
	return &List{}
}

// Len returns the number of elements
func (l *List) Len() int {
	return len(l.items)
}

// PushLeft inserts items at the head one by one, so the last item ends up at index 0.
// Returns the new length
func (l *List) PushLeft(items ...string) int {
	merged := make([]string, 0, len(items)+len(l.items))
	for i := len(items) - 1; i >= 0; i-- {
		merged = append(merged, items[i])
	}
	l.items = append(merged, l.items...)
	return len(l.items)
}

// PushRight appends items to the tail. Returns the new length
func (l *List) PushRight(items ...string) int {
	l.items = append(l.items, items...)
	return len(l.items)
}

// Set replaces the element at index. Negative indexes count from the end.
// Returns false if the index is out of range
func (l *List) Set(index int, value string) bool {
	i, ok := l.resolve(index)
	if !ok {
		return false
	}
	l.items[i] = value
	return true
}

// Index returns the element at index. Negative indexes count from the end
func (l *List) Index(index int) (string, bool) {
	i, ok := l.resolve(index)
	if !ok {
		return "", false
	}
	return l.items[i], true
}

// Range returns elements between start and stop inclusive, clamped to bounds
func (l *List) Range(start, stop int) []string {
	from, to, ok := clampRange(start, stop, len(l.items))
	if !ok {
		return []string{}
	}

	out := make([]string, to-from+1)
	copy(out, l.items[from:to+1])
	return out
}

// PopLeft removes and returns up to count elements from the head
func (l *List) PopLeft(count int) []string {
	if count > len(l.items) {
		count = len(l.items)
	}
	out := make([]string, count)
	copy(out, l.items[:count])
	l.items = l.items[count:]
	return out
}

// PopRight removes and returns up to count elements from the tail, last element first
func (l *List) PopRight(count int) []string {
	if count > len(l.items) {
		count = len(l.items)
	}
	out := make([]string, 0, count)
	for i := len(l.items) - 1; i >= len(l.items)-count; i-- {
		out = append(out, l.items[i])
	}
	l.items = l.items[:len(l.items)-count]
	return out
}

func (l *List) resolve(index int) (int, bool) {
	if index < 0 {
		index += len(l.items)
	}
	if index < 0 || index >= len(l.items) {
		return 0, false
	}
	return index, true
}

// clampRange converts an inclusive start/stop pair with negative indexes
// into bounds within [0, n). Reports false when the range is empty
func clampRange(start, stop, n int) (int, int, bool) {
	if n == 0 {
		return 0, 0, false
	}

	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}

	if start > stop || start >= n {
		return 0, 0, false
	}
	return start, stop, true
}
