package server

import (
	"strings"

	"github.com/eternalApril/moondb/internal/datatype"
	"github.com/eternalApril/moondb/internal/reply"
)

// zadd implements ZADD key score member [score member ...]
func zadd(ctx *cmdContext) reply.Value {
	rest := ctx.args[1:]
	if len(rest)%2 != 0 {
		return reply.MakeError(msgSyntax)
	}

	pairs := make([]datatype.ScoredMember, 0, len(rest)/2)
	for i := 0; i < len(rest); i += 2 {
		score, ok := parseFloat(rest[i])
		if !ok {
			return reply.MakeError(msgNotFloat)
		}
		pairs = append(pairs, datatype.ScoredMember{Member: rest[i+1], Score: score})
	}

	added, err := ctx.db.ZAdd(ctx.args[0], pairs...)
	if err != nil {
		return errorReply(err)
	}
	return reply.MakeInteger(int64(added))
}

func zincrby(ctx *cmdContext) reply.Value {
	delta, ok := parseFloat(ctx.args[1])
	if !ok {
		return reply.MakeError(msgNotFloat)
	}

	score, err := ctx.db.ZIncrBy(ctx.args[0], ctx.args[2], delta)
	if err != nil {
		return errorReply(err)
	}
	return reply.MakeBulkString(formatFloat(score))
}

func zscore(ctx *cmdContext) reply.Value {
	score, ok, err := ctx.db.ZScore(ctx.args[0], ctx.args[1])
	if err != nil {
		return errorReply(err)
	}
	if !ok {
		return reply.MakeNilBulkString()
	}
	return reply.MakeBulkString(formatFloat(score))
}

func zrem(ctx *cmdContext) reply.Value {
	n, err := ctx.db.ZRem(ctx.args[0], ctx.args[1:]...)
	if err != nil {
		return errorReply(err)
	}
	return reply.MakeInteger(int64(n))
}

func zcard(ctx *cmdContext) reply.Value {
	n, err := ctx.db.ZCard(ctx.args[0])
	if err != nil {
		return errorReply(err)
	}
	return reply.MakeInteger(int64(n))
}

func zrank(ctx *cmdContext) reply.Value {
	rank, ok, err := ctx.db.ZRank(ctx.args[0], ctx.args[1])
	if err != nil {
		return errorReply(err)
	}
	if !ok {
		return reply.MakeNilBulkString()
	}
	return reply.MakeInteger(int64(rank))
}

// zrange implements ZRANGE key start stop [WITHSCORES]
func zrange(ctx *cmdContext) reply.Value {
	start, ok1 := parseIndex(ctx.args[1])
	stop, ok2 := parseIndex(ctx.args[2])
	if !ok1 || !ok2 {
		return reply.MakeError(msgNotInteger)
	}

	withScores := false
	switch {
	case len(ctx.args) == 3:
	case len(ctx.args) == 4 && strings.EqualFold(ctx.args[3], "WITHSCORES"):
		withScores = true
	default:
		return reply.MakeError(msgSyntax)
	}

	members, err := ctx.db.ZRange(ctx.args[0], start, stop)
	if err != nil {
		return errorReply(err)
	}

	out := make([]string, 0, len(members)*2)
	for _, m := range members {
		out = append(out, m.Member)
		if withScores {
			out = append(out, formatFloat(m.Score))
		}
	}
	return reply.MakeStringArray(out)
}
