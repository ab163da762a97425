package server

import (
	"strings"

	"github.com/eternalApril/moondb/internal/datatype"
	"github.com/eternalApril/moondb/internal/reply"
)

// xadd implements XADD key <* | id> field value [field value ...]
func xadd(ctx *cmdContext) reply.Value {
	pairs := ctx.args[2:]
	if len(pairs)%2 != 0 {
		return reply.MakeErrorWrongNumberOfArguments("xadd")
	}

	fields := make([]datatype.StreamField, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		fields = append(fields, datatype.StreamField{Name: pairs[i], Value: pairs[i+1]})
	}

	id, err := ctx.db.XAdd(ctx.args[0], ctx.args[1], fields)
	if err != nil {
		return errorReply(err)
	}
	return reply.MakeBulkString(id.String())
}

func xlen(ctx *cmdContext) reply.Value {
	n, err := ctx.db.XLen(ctx.args[0])
	if err != nil {
		return errorReply(err)
	}
	return reply.MakeInteger(int64(n))
}

// xrange implements XRANGE key start end [COUNT count]
func xrange(ctx *cmdContext) reply.Value {
	return streamRange(ctx, ctx.args[1], ctx.args[2], false)
}

// xrevrange implements XREVRANGE key end start [COUNT count]
func xrevrange(ctx *cmdContext) reply.Value {
	return streamRange(ctx, ctx.args[2], ctx.args[1], true)
}

func streamRange(ctx *cmdContext, fromArg, toArg string, reverse bool) reply.Value {
	from, err := datatype.ParseStreamID(fromArg, false)
	if err != nil {
		return errorReply(err)
	}
	to, err := datatype.ParseStreamID(toArg, true)
	if err != nil {
		return errorReply(err)
	}

	count := 0
	switch {
	case len(ctx.args) == 3:
	case len(ctx.args) == 5 && strings.EqualFold(ctx.args[3], "COUNT"):
		n, ok := parseIndex(ctx.args[4])
		if !ok {
			return reply.MakeError(msgNotInteger)
		}
		if n <= 0 {
			return reply.MakeArray([]reply.Value{})
		}
		count = n
	default:
		return reply.MakeError(msgSyntax)
	}

	var entries []datatype.StreamEntry
	if reverse {
		entries, err = ctx.db.XRevRange(ctx.args[0], from, to, count)
	} else {
		entries, err = ctx.db.XRange(ctx.args[0], from, to, count)
	}
	if err != nil {
		return errorReply(err)
	}

	out := make([]reply.Value, len(entries))
	for i, e := range entries {
		out[i] = makeStreamEntry(e)
	}
	return reply.MakeArray(out)
}

// makeStreamEntry renders [id, [field, value, ...]] with fields in insertion order
func makeStreamEntry(e datatype.StreamEntry) reply.Value {
	flat := make([]string, 0, len(e.Fields)*2)
	for _, f := range e.Fields {
		flat = append(flat, f.Name, f.Value)
	}

	return reply.MakeArray([]reply.Value{
		reply.MakeBulkString(e.ID.String()),
		reply.MakeStringArray(flat),
	})
}
