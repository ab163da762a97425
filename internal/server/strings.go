package server

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/eternalApril/moondb/internal/reply"
	"github.com/eternalApril/moondb/internal/storage"
)

func get(ctx *cmdContext) reply.Value {
	val, ok, err := ctx.db.Get(ctx.args[0])
	if err != nil {
		return errorReply(err)
	}
	if !ok {
		return reply.MakeNilBulkString()
	}
	return reply.MakeBulkString(val)
}

// set implements SET key value [NX | XX] [EX seconds | PX milliseconds | EXAT unix-time-seconds | PXAT unix-time-milliseconds | KEEPTTL]
func set(ctx *cmdContext) reply.Value {
	key, value := ctx.args[0], ctx.args[1]

	var opts storage.SetOptions
	ttlSet := false

	for i := 2; i < len(ctx.args); i++ {
		arg := strings.ToUpper(ctx.args[i])

		switch arg {
		case "NX":
			if opts.XX {
				return reply.MakeError("ERR NX cannot use with XX")
			}
			opts.NX = true
		case "XX":
			if opts.NX {
				return reply.MakeError("ERR XX cannot use with NX")
			}
			opts.XX = true
		case "KEEPTTL":
			if ttlSet {
				return reply.MakeError("ERR TTL already specified")
			}
			opts.KeepTTL = true
			ttlSet = true
		case "EX", "PX", "EXAT", "PXAT":
			if ttlSet {
				return reply.MakeError("ERR TTL already specified")
			}
			if i+1 >= len(ctx.args) {
				return reply.MakeError(msgSyntax)
			}
			i++

			n, err := strconv.ParseInt(ctx.args[i], 10, 64)
			if err != nil {
				return reply.MakeError("ERR value TTL is not integer")
			}
			if n <= 0 {
				return reply.MakeError("ERR invalid expire time in 'set' command")
			}

			switch arg {
			case "EX":
				if n > math.MaxInt64/int64(time.Second) {
					return reply.MakeError("ERR invalid expire time in 'set' command")
				}
				opts.TTL = time.Duration(n) * time.Second
			case "PX":
				if n > math.MaxInt64/int64(time.Millisecond) {
					return reply.MakeError("ERR invalid expire time in 'set' command")
				}
				opts.TTL = time.Duration(n) * time.Millisecond
			case "EXAT":
				if n > math.MaxInt64/int64(time.Second) {
					return reply.MakeError("ERR invalid expire time in 'set' command")
				}
				opts.ExpireAt = time.Unix(n, 0)
			case "PXAT":
				if n > math.MaxInt64/int64(time.Millisecond) {
					return reply.MakeError("ERR invalid expire time in 'set' command")
				}
				opts.ExpireAt = time.UnixMilli(n)
			}
			ttlSet = true
		default:
			return reply.MakeErrorf("ERR syntax error with command argument '%s'", ctx.args[i])
		}
	}

	if !ctx.db.Set(key, value, opts) {
		return reply.MakeNilBulkString()
	}
	return reply.MakeOK()
}

func incr(ctx *cmdContext) reply.Value {
	return incrByDelta(ctx, 1)
}

func decr(ctx *cmdContext) reply.Value {
	return incrByDelta(ctx, -1)
}

func incrby(ctx *cmdContext) reply.Value {
	delta, ok := parseInt(ctx.args[1])
	if !ok {
		return reply.MakeError(msgNotInteger)
	}
	return incrByDelta(ctx, delta)
}

func decrby(ctx *cmdContext) reply.Value {
	delta, ok := parseInt(ctx.args[1])
	if !ok {
		return reply.MakeError(msgNotInteger)
	}
	if delta == math.MinInt64 {
		return reply.MakeError("ERR decrement would overflow")
	}
	return incrByDelta(ctx, -delta)
}

func incrByDelta(ctx *cmdContext, delta int64) reply.Value {
	n, err := ctx.db.IncrBy(ctx.args[0], delta)
	if err != nil {
		return errorReply(err)
	}
	return reply.MakeInteger(n)
}
