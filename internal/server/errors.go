package server

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/eternalApril/moondb/internal/datatype"
	"github.com/eternalApril/moondb/internal/reply"
	"github.com/eternalApril/moondb/internal/storage"
)

const (
	msgSyntax        = "ERR syntax error"
	msgNotInteger    = "ERR value is not an integer or out of range"
	msgNotFloat      = "ERR value is not a valid float"
	msgNotPositive   = "ERR value is out of range, must be positive"
	msgWrongType     = "WRONGTYPE Operation against a key holding the wrong kind of value"
	msgDBOutOfRange  = "ERR DB index is out of range"
	msgIndexOutRange = "ERR index out of range"
	msgNoSuchKey     = "ERR no such key"
)

// errorReply maps store errors to error replies
func errorReply(err error) reply.Value {
	var rangeErr *storage.RangeError

	switch {
	case errors.Is(err, storage.ErrWrongType):
		return reply.MakeError(msgWrongType)
	case errors.As(err, &rangeErr):
		switch rangeErr.What {
		case "database":
			return reply.MakeError(msgDBOutOfRange)
		case "index":
			return reply.MakeError(msgIndexOutRange)
		default:
			return reply.MakeError(msgNotPositive)
		}
	case errors.Is(err, storage.ErrNotFound):
		return reply.MakeError(msgNoSuchKey)
	case errors.Is(err, storage.ErrNotInteger):
		return reply.MakeError(msgNotInteger)
	case errors.Is(err, storage.ErrNotFloat):
		return reply.MakeError(msgNotFloat)
	case errors.Is(err, storage.ErrStreamID):
		return reply.MakeError("ERR The ID specified in XADD is equal or smaller than the target stream top item")
	case errors.Is(err, datatype.ErrInvalidStreamID):
		return reply.MakeError("ERR Invalid stream ID specified as stream command argument")
	case errors.Is(err, storage.ErrInvalidArgument):
		return reply.MakeError("ERR " + strings.TrimPrefix(err.Error(), storage.ErrInvalidArgument.Error()+": "))
	default:
		return reply.MakeError("ERR " + err.Error())
	}
}

func parseInt(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

// parseIndex parses a list or rank index, clamped to the int range
func parseIndex(s string) (int, bool) {
	n, ok := parseInt(s)
	if !ok {
		return 0, false
	}
	if n > math.MaxInt {
		return math.MaxInt, true
	}
	if n < math.MinInt {
		return math.MinInt, true
	}
	return int(n), true
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// formatFloat renders a score the way replies show it
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
