package server

import (
	"sort"

	"github.com/eternalApril/moondb/internal/reply"
)

func hset(ctx *cmdContext) reply.Value {
	pairs := ctx.args[1:]
	if len(pairs)%2 != 0 {
		return reply.MakeErrorWrongNumberOfArguments("hset")
	}

	fields := make(map[string]string, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		fields[pairs[i]] = pairs[i+1]
	}

	added, err := ctx.db.HSet(ctx.args[0], fields)
	if err != nil {
		return errorReply(err)
	}
	return reply.MakeInteger(int64(added))
}

func hget(ctx *cmdContext) reply.Value {
	val, ok, err := ctx.db.HGet(ctx.args[0], ctx.args[1])
	if err != nil {
		return errorReply(err)
	}
	if !ok {
		return reply.MakeNilBulkString()
	}
	return reply.MakeBulkString(val)
}

// hgetall replies with field, value pairs ordered by field
func hgetall(ctx *cmdContext) reply.Value {
	all, err := ctx.db.HGetAll(ctx.args[0])
	if err != nil {
		return errorReply(err)
	}

	out := make([]string, 0, len(all)*2)
	for _, f := range sortedFields(all) {
		out = append(out, f, all[f])
	}
	return reply.MakeStringArray(out)
}

func hdel(ctx *cmdContext) reply.Value {
	n, err := ctx.db.HDel(ctx.args[0], ctx.args[1:]...)
	if err != nil {
		return errorReply(err)
	}
	return reply.MakeInteger(int64(n))
}

func hlen(ctx *cmdContext) reply.Value {
	n, err := ctx.db.HLen(ctx.args[0])
	if err != nil {
		return errorReply(err)
	}
	return reply.MakeInteger(int64(n))
}

func hexists(ctx *cmdContext) reply.Value {
	ok, err := ctx.db.HExists(ctx.args[0], ctx.args[1])
	if err != nil {
		return errorReply(err)
	}
	return reply.MakeBool(ok)
}

func hkeys(ctx *cmdContext) reply.Value {
	keys, err := ctx.db.HKeys(ctx.args[0])
	if err != nil {
		return errorReply(err)
	}
	sort.Strings(keys)
	return reply.MakeStringArray(keys)
}

// hvals replies with values ordered by their field, matching HKEYS
func hvals(ctx *cmdContext) reply.Value {
	all, err := ctx.db.HGetAll(ctx.args[0])
	if err != nil {
		return errorReply(err)
	}

	fields := sortedFields(all)
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = all[f]
	}
	return reply.MakeStringArray(out)
}

func sortedFields(m map[string]string) []string {
	fields := make([]string, 0, len(m))
	for f := range m {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}
