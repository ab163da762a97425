package datatype

import (
	"errors"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidStreamID is returned when an ID cannot be parsed
var ErrInvalidStreamID = errors.New("invalid stream ID specified as stream command argument")

// StreamID identifies a stream entry: a millisecond timestamp and a sequence within it
type StreamID struct {
	Ms  uint64
	Seq uint64
}

var (
	MinStreamID = StreamID{}
	MaxStreamID = StreamID{Ms: math.MaxUint64, Seq: math.MaxUint64}
)

// String formats the ID as "ms-seq"
func (id StreamID) String() string {
	return strconv.FormatUint(id.Ms, 10) + "-" + strconv.FormatUint(id.Seq, 10)
}

// Less reports whether id sorts before other
func (id StreamID) Less(other StreamID) bool {
	if id.Ms != other.Ms {
		return id.Ms < other.Ms
	}
	return id.Seq < other.Seq
}

// IsZero reports whether id is 0-0
func (id StreamID) IsZero() bool {
	return id == StreamID{}
}

// ParseStreamID parses a range bound: "-", "+", "ms" or "ms-seq".
// A bare "ms" means ms-0 for a start bound and ms-max for an end bound
func ParseStreamID(s string, end bool) (StreamID, error) {
	switch s {
	case "-":
		return MinStreamID, nil
	case "+":
		return MaxStreamID, nil
	}

	msPart, seqPart, hasSeq := strings.Cut(s, "-")
	ms, err := strconv.ParseUint(msPart, 10, 64)
	if err != nil {
		return StreamID{}, ErrInvalidStreamID
	}

	if !hasSeq {
		if end {
			return StreamID{Ms: ms, Seq: math.MaxUint64}, nil
		}
		return StreamID{Ms: ms}, nil
	}

	seq, err := strconv.ParseUint(seqPart, 10, 64)
	if err != nil {
		return StreamID{}, ErrInvalidStreamID
	}
	return StreamID{Ms: ms, Seq: seq}, nil
}

// StreamField is one field-value pair of an entry
type StreamField struct {
	Name  string
	Value string
}

// StreamEntry is a single stream record. Fields keep the order they were added in
type StreamEntry struct {
	ID     StreamID
	Fields []StreamField
}

// Get returns the value of the first field called name
func (e StreamEntry) Get(name string) (string, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Stream is an append-only log of entries ordered by ID
type Stream struct {
	entries []StreamEntry
	last    StreamID
}

// NewStream creates an empty stream
func NewStream() *Stream {
	return &Stream{}
}

// Len returns the number of entries
func (s *Stream) Len() int {
	return len(s.entries)
}

// LastID returns the greatest ID ever generated or accepted
func (s *Stream) LastID() StreamID {
	return s.last
}

// NextID returns the ID Append would assign at time now.
// IDs keep increasing even if the clock does not move forward
func (s *Stream) NextID(now time.Time) StreamID {
	ms := uint64(now.UnixMilli())
	if ms <= s.last.Ms {
		if s.last.Seq == math.MaxUint64 {
			return StreamID{Ms: s.last.Ms + 1}
		}
		return StreamID{Ms: s.last.Ms, Seq: s.last.Seq + 1}
	}
	return StreamID{Ms: ms}
}

// NextSeq returns the smallest valid ID with the given millisecond part.
// Reports false if no such ID is greater than the last one
func (s *Stream) NextSeq(ms uint64) (StreamID, bool) {
	switch {
	case ms > s.last.Ms:
		if ms == 0 {
			return StreamID{Seq: 1}, true
		}
		return StreamID{Ms: ms}, true
	case ms == s.last.Ms && s.last.Seq < math.MaxUint64:
		return StreamID{Ms: ms, Seq: s.last.Seq + 1}, true
	}
	return StreamID{}, false
}

// Append adds an entry with a generated ID and returns it
func (s *Stream) Append(fields []StreamField, now time.Time) StreamID {
	id := s.NextID(now)
	s.push(id, fields)
	return id
}

// AppendWithID adds an entry with an explicit ID.
// Returns false if id is not greater than the last ID
func (s *Stream) AppendWithID(id StreamID, fields []StreamField) bool {
	if id.IsZero() || !s.last.Less(id) {
		return false
	}
	s.push(id, fields)
	return true
}

// Range returns entries with from <= ID <= to in ascending order.
// count <= 0 means no limit
func (s *Stream) Range(from, to StreamID, count int) []StreamEntry {
	out := make([]StreamEntry, 0)
	if to.Less(from) {
		return out
	}

	i := sort.Search(len(s.entries), func(i int) bool {
		return !s.entries[i].ID.Less(from)
	})
	for ; i < len(s.entries); i++ {
		if to.Less(s.entries[i].ID) || (count > 0 && len(out) >= count) {
			break
		}
		out = append(out, s.entries[i].clone())
	}
	return out
}

// RevRange returns entries with from <= ID <= to, most recent first.
// count <= 0 means no limit
func (s *Stream) RevRange(from, to StreamID, count int) []StreamEntry {
	out := make([]StreamEntry, 0)
	if to.Less(from) {
		return out
	}

	// first index whose ID is greater than to
	i := sort.Search(len(s.entries), func(i int) bool {
		return to.Less(s.entries[i].ID)
	}) - 1
	for ; i >= 0; i-- {
		if s.entries[i].ID.Less(from) || (count > 0 && len(out) >= count) {
			break
		}
		out = append(out, s.entries[i].clone())
	}
	return out
}

func (s *Stream) push(id StreamID, fields []StreamField) {
	s.entries = append(s.entries, StreamEntry{ID: id, Fields: slices.Clone(fields)})
	s.last = id
}

func (e StreamEntry) clone() StreamEntry {
	return StreamEntry{ID: e.ID, Fields: slices.Clone(e.Fields)}
}
