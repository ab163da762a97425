package server

import (
	"sort"

	"github.com/eternalApril/moondb/internal/reply"
)

func sadd(ctx *cmdContext) reply.Value {
	n, err := ctx.db.SAdd(ctx.args[0], ctx.args[1:]...)
	if err != nil {
		return errorReply(err)
	}
	return reply.MakeInteger(int64(n))
}

func srem(ctx *cmdContext) reply.Value {
	n, err := ctx.db.SRem(ctx.args[0], ctx.args[1:]...)
	if err != nil {
		return errorReply(err)
	}
	return reply.MakeInteger(int64(n))
}

func smembers(ctx *cmdContext) reply.Value {
	members, err := ctx.db.SMembers(ctx.args[0])
	if err != nil {
		return errorReply(err)
	}
	sort.Strings(members)
	return reply.MakeStringArray(members)
}

func sismember(ctx *cmdContext) reply.Value {
	ok, err := ctx.db.SIsMember(ctx.args[0], ctx.args[1])
	if err != nil {
		return errorReply(err)
	}
	return reply.MakeBool(ok)
}

func scard(ctx *cmdContext) reply.Value {
	n, err := ctx.db.SCard(ctx.args[0])
	if err != nil {
		return errorReply(err)
	}
	return reply.MakeInteger(int64(n))
}
