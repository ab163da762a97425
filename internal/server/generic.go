package server

import (
	"math"
	"strings"
	"time"

	"github.com/eternalApril/moondb/internal/reply"
	"github.com/eternalApril/moondb/internal/storage"
)

func ping(ctx *cmdContext) reply.Value {
	switch len(ctx.args) {
	case 0:
		return reply.MakeSimpleString("PONG")
	case 1:
		return reply.MakeBulkString(ctx.args[0])
	default:
		return reply.MakeErrorWrongNumberOfArguments("ping")
	}
}

func echo(ctx *cmdContext) reply.Value {
	return reply.MakeBulkString(ctx.args[0])
}

func selectDB(ctx *cmdContext) reply.Value {
	index, ok := parseInt(ctx.args[0])
	if !ok {
		return reply.MakeError(msgNotInteger)
	}
	if index < 0 || index >= int64(ctx.engine.store.Databases()) {
		return reply.MakeError(msgDBOutOfRange)
	}

	ctx.session.db = int(index)
	return reply.MakeOK()
}

func dbsize(ctx *cmdContext) reply.Value {
	return reply.MakeInteger(int64(ctx.db.Len()))
}

func flushdb(ctx *cmdContext) reply.Value {
	ctx.db.Flush()
	return reply.MakeOK()
}

// cmd implements COMMAND, COMMAND COUNT, COMMAND INFO and COMMAND DOCS
func cmd(ctx *cmdContext) reply.Value {
	if len(ctx.args) == 0 {
		return ctx.engine.getAllCommands()
	}

	switch strings.ToUpper(ctx.args[0]) {
	case "COUNT":
		return reply.MakeInteger(int64(len(ctx.engine.commands)))
	case "INFO":
		return ctx.engine.getCommandsInfo(ctx.args[1:])
	case "DOCS":
		return ctx.engine.getCommandsDocs(ctx.args[1:])
	default:
		return reply.MakeErrorf("ERR unknown subcommand '%s'", ctx.args[0])
	}
}

func typeCmd(ctx *cmdContext) reply.Value {
	return reply.MakeSimpleString(ctx.db.Type(ctx.args[0]).String())
}

func exists(ctx *cmdContext) reply.Value {
	return reply.MakeInteger(int64(ctx.db.Exists(ctx.args...)))
}

func del(ctx *cmdContext) reply.Value {
	return reply.MakeInteger(int64(ctx.db.Delete(ctx.args...)))
}

func expire(ctx *cmdContext) reply.Value {
	return expireAfter(ctx, time.Second, "expire")
}

func pexpire(ctx *cmdContext) reply.Value {
	return expireAfter(ctx, time.Millisecond, "pexpire")
}

func expireAfter(ctx *cmdContext, unit time.Duration, name string) reply.Value {
	n, ok := parseInt(ctx.args[1])
	if !ok {
		return reply.MakeError(msgNotInteger)
	}
	if n > math.MaxInt64/int64(unit) || n < math.MinInt64/int64(unit) {
		return reply.MakeErrorf("ERR invalid expire time in '%s' command", name)
	}

	return reply.MakeBool(ctx.db.ExpireAfter(ctx.args[0], time.Duration(n)*unit))
}

func expireat(ctx *cmdContext) reply.Value {
	sec, ok := parseInt(ctx.args[1])
	if !ok {
		return reply.MakeError(msgNotInteger)
	}
	if sec > math.MaxInt64/int64(time.Second) || sec < math.MinInt64/int64(time.Second) {
		return reply.MakeError("ERR invalid expire time in 'expireat' command")
	}
	return reply.MakeBool(ctx.db.ExpireAt(ctx.args[0], time.Unix(sec, 0)))
}

func pexpireat(ctx *cmdContext) reply.Value {
	ms, ok := parseInt(ctx.args[1])
	if !ok {
		return reply.MakeError(msgNotInteger)
	}
	if ms > math.MaxInt64/int64(time.Millisecond) || ms < math.MinInt64/int64(time.Millisecond) {
		return reply.MakeError("ERR invalid expire time in 'pexpireat' command")
	}
	return reply.MakeBool(ctx.db.ExpireAt(ctx.args[0], time.UnixMilli(ms)))
}

func ttl(ctx *cmdContext) reply.Value {
	remaining, status := ctx.db.TTL(ctx.args[0])
	if status != storage.ExpActive {
		return reply.MakeInteger(int64(status))
	}
	// rounded to the nearest second
	return reply.MakeInteger((remaining.Milliseconds() + 500) / 1000)
}

func pttl(ctx *cmdContext) reply.Value {
	remaining, status := ctx.db.TTL(ctx.args[0])
	if status != storage.ExpActive {
		return reply.MakeInteger(int64(status))
	}
	return reply.MakeInteger(remaining.Milliseconds())
}

func expiretime(ctx *cmdContext) reply.Value {
	at, status := ctx.db.ExpireTime(ctx.args[0])
	if status != storage.ExpActive {
		return reply.MakeInteger(int64(status))
	}
	return reply.MakeInteger(at.Unix())
}

func pexpiretime(ctx *cmdContext) reply.Value {
	at, status := ctx.db.ExpireTime(ctx.args[0])
	if status != storage.ExpActive {
		return reply.MakeInteger(int64(status))
	}
	return reply.MakeInteger(at.UnixMilli())
}

func persist(ctx *cmdContext) reply.Value {
	return reply.MakeBool(ctx.db.Persist(ctx.args[0]))
}
