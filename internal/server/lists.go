package server

import "github.com/eternalApril/moondb/internal/reply"

func lpush(ctx *cmdContext) reply.Value {
	n, err := ctx.db.LPush(ctx.args[0], ctx.args[1:]...)
	if err != nil {
		return errorReply(err)
	}
	return reply.MakeInteger(int64(n))
}

func rpush(ctx *cmdContext) reply.Value {
	n, err := ctx.db.RPush(ctx.args[0], ctx.args[1:]...)
	if err != nil {
		return errorReply(err)
	}
	return reply.MakeInteger(int64(n))
}

func lset(ctx *cmdContext) reply.Value {
	index, ok := parseIndex(ctx.args[1])
	if !ok {
		return reply.MakeError(msgNotInteger)
	}
	if err := ctx.db.LSet(ctx.args[0], index, ctx.args[2]); err != nil {
		return errorReply(err)
	}
	return reply.MakeOK()
}

func lrange(ctx *cmdContext) reply.Value {
	start, ok1 := parseIndex(ctx.args[1])
	stop, ok2 := parseIndex(ctx.args[2])
	if !ok1 || !ok2 {
		return reply.MakeError(msgNotInteger)
	}

	items, err := ctx.db.LRange(ctx.args[0], start, stop)
	if err != nil {
		return errorReply(err)
	}
	return reply.MakeStringArray(items)
}

func lindex(ctx *cmdContext) reply.Value {
	index, ok := parseIndex(ctx.args[1])
	if !ok {
		return reply.MakeError(msgNotInteger)
	}

	val, found, err := ctx.db.LIndex(ctx.args[0], index)
	if err != nil {
		return errorReply(err)
	}
	if !found {
		return reply.MakeNilBulkString()
	}
	return reply.MakeBulkString(val)
}

func llen(ctx *cmdContext) reply.Value {
	n, err := ctx.db.LLen(ctx.args[0])
	if err != nil {
		return errorReply(err)
	}
	return reply.MakeInteger(int64(n))
}

func lpop(ctx *cmdContext) reply.Value {
	return pop(ctx, ctx.db.LPop)
}

func rpop(ctx *cmdContext) reply.Value {
	return pop(ctx, ctx.db.RPop)
}

// pop implements LPOP/RPOP key [count]. Without count the reply is a single element
func pop(ctx *cmdContext, popFn func(key string, count int) ([]string, error)) reply.Value {
	if len(ctx.args) > 2 {
		return reply.MakeError(msgSyntax)
	}

	count := 1
	withCount := len(ctx.args) == 2
	if withCount {
		n, ok := parseIndex(ctx.args[1])
		if !ok || n < 0 {
			return reply.MakeError(msgNotPositive)
		}
		count = n
	}

	items, err := popFn(ctx.args[0], count)
	if err != nil {
		return errorReply(err)
	}

	if !withCount {
		if len(items) == 0 {
			return reply.MakeNilBulkString()
		}
		return reply.MakeBulkString(items[0])
	}

	if len(items) == 0 && count > 0 {
		return reply.MakeNilArray()
	}
	return reply.MakeStringArray(items)
}
