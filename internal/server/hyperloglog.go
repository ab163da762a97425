package server

import "github.com/eternalApril/moondb/internal/reply"

func pfadd(ctx *cmdContext) reply.Value {
	changed, err := ctx.db.PFAdd(ctx.args[0], ctx.args[1:]...)
	if err != nil {
		return errorReply(err)
	}
	return reply.MakeBool(changed)
}

func pfcount(ctx *cmdContext) reply.Value {
	n, err := ctx.db.PFCount(ctx.args...)
	if err != nil {
		return errorReply(err)
	}
	return reply.MakeInteger(int64(n))
}

func pfmerge(ctx *cmdContext) reply.Value {
	if err := ctx.db.PFMerge(ctx.args[0], ctx.args[1:]...); err != nil {
		return errorReply(err)
	}
	return reply.MakeOK()
}
