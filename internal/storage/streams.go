package storage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/eternalApril/moondb/internal/datatype"
)

// XAdd appends an entry to the stream at key and returns its ID.
// id is "*" (or empty) for a generated ID, "ms-*" for a generated sequence, or an explicit "ms-seq"
func (d *DB) XAdd(key, id string, fields []datatype.StreamField) (datatype.StreamID, error) {
	if len(fields) == 0 {
		return datatype.StreamID{}, fmt.Errorf("%w: stream entries need at least one field", ErrInvalidArgument)
	}

	auto := id == "" || id == "*"
	var (
		explicit datatype.StreamID
		autoSeq  bool
		err      error
	)
	if !auto {
		explicit, autoSeq, err = parseAddID(id)
		if err != nil {
			return datatype.StreamID{}, err
		}
	}

	var result datatype.StreamID
	_, err = update(d, key, KindStream, datatype.NewStream, func(s *datatype.Stream) (bool, error) {
		switch {
		case auto:
			result = s.Append(fields, d.store.clock())
			return true, nil
		case autoSeq:
			next, ok := s.NextSeq(explicit.Ms)
			if !ok {
				return false, ErrStreamID
			}
			explicit = next
		}

		if !s.AppendWithID(explicit, fields) {
			return false, ErrStreamID
		}
		result = explicit
		return true, nil
	})

	return result, err
}

// XLen returns the number of entries
func (d *DB) XLen(key string) (int, error) {
	n := 0
	_, err := view(d, key, KindStream, func(s *datatype.Stream) {
		n = s.Len()
	})
	return n, err
}

// XRange returns entries with from <= ID <= to in ascending order, at most count if count > 0
func (d *DB) XRange(key string, from, to datatype.StreamID, count int) ([]datatype.StreamEntry, error) {
	out := []datatype.StreamEntry{}
	_, err := view(d, key, KindStream, func(s *datatype.Stream) {
		out = s.Range(from, to, count)
	})
	return out, err
}

// XRevRange returns entries with from <= ID <= to, most recent first, at most count if count > 0
func (d *DB) XRevRange(key string, from, to datatype.StreamID, count int) ([]datatype.StreamEntry, error) {
	out := []datatype.StreamEntry{}
	_, err := view(d, key, KindStream, func(s *datatype.Stream) {
		out = s.RevRange(from, to, count)
	})
	return out, err
}

// parseAddID parses "ms-seq" or "ms-*"
func parseAddID(id string) (datatype.StreamID, bool, error) {
	msPart, seqPart, hasSeq := strings.Cut(id, "-")
	if hasSeq && seqPart == "*" {
		ms, err := strconv.ParseUint(msPart, 10, 64)
		if err != nil {
			return datatype.StreamID{}, false, datatype.ErrInvalidStreamID
		}
		return datatype.StreamID{Ms: ms}, true, nil
	}

	parsed, err := datatype.ParseStreamID(id, false)
	if err != nil || id == "-" || id == "+" {
		return datatype.StreamID{}, false, datatype.ErrInvalidStreamID
	}
	return parsed, false, nil
}
