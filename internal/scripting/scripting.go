// Package scripting runs Lua scripts against the command engine.
//
// Scripts see the KEYS and ARGV tables and a redis table with call, pcall,
// status_reply and error_reply. Commands issued by a script go through the
// same engine as any other caller, on a copy of the caller's session, so a
// SELECT inside a script does not leak out of it.
package scripting

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/eternalApril/moondb/internal/reply"
	"github.com/eternalApril/moondb/internal/server"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

const chunkName = "user_script"

// DefaultTimeLimit bounds a script when no WithTimeLimit option is given
const DefaultTimeLimit = 5 * time.Second

// Engine executes Lua scripts and keeps the script cache used by EVALSHA
type Engine struct {
	engine    *server.Engine
	logger    *zap.Logger
	timeLimit time.Duration
	scripts   sync.Map // SHA1 hex -> script source
}

// Option configures an Engine
type Option func(*Engine)

// WithTimeLimit aborts scripts running longer than d. Non-positive values keep the default
func WithTimeLimit(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeLimit = d
		}
	}
}

// New creates a scripting engine on top of the command engine
func New(engine *server.Engine, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		engine:    engine,
		logger:    logger.Named("scripting"),
		timeLimit: DefaultTimeLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Install registers EVAL, EVAL_RO, EVALSHA, EVALSHA_RO and SCRIPT with the command engine
func (e *Engine) Install() {
	e.engine.Register("EVAL",
		server.Metadata{Arity: -3, Flags: []string{"noscript", "stale", "skip_monitor", "may_replicate"}},
		server.Doc{Summary: "Executes a server-side Lua script.", Complexity: "Depends on the script that is executed.", Group: "scripting", Since: "1.0.0"},
		func(s *server.Session, args []string) reply.Value {
			return e.evalCommand(s, args, false, false)
		})
	e.engine.Register("EVAL_RO",
		server.Metadata{Arity: -3, Flags: []string{"noscript", "stale", "skip_monitor", "readonly"}},
		server.Doc{Summary: "Executes a read-only server-side Lua script.", Complexity: "Depends on the script that is executed.", Group: "scripting", Since: "1.0.0"},
		func(s *server.Session, args []string) reply.Value {
			return e.evalCommand(s, args, false, true)
		})
	e.engine.Register("EVALSHA",
		server.Metadata{Arity: -3, Flags: []string{"noscript", "stale", "skip_monitor", "may_replicate"}},
		server.Doc{Summary: "Executes a server-side Lua script by SHA1 digest.", Complexity: "Depends on the script that is executed.", Group: "scripting", Since: "1.0.0"},
		func(s *server.Session, args []string) reply.Value {
			return e.evalCommand(s, args, true, false)
		})
	e.engine.Register("EVALSHA_RO",
		server.Metadata{Arity: -3, Flags: []string{"noscript", "stale", "skip_monitor", "readonly"}},
		server.Doc{Summary: "Executes a read-only server-side Lua script by SHA1 digest.", Complexity: "Depends on the script that is executed.", Group: "scripting", Since: "1.0.0"},
		func(s *server.Session, args []string) reply.Value {
			return e.evalCommand(s, args, true, true)
		})
	e.engine.Register("SCRIPT",
		server.Metadata{Arity: -2, Flags: []string{"noscript"}},
		server.Doc{Summary: "Manages the server-side Lua script cache.", Complexity: "Depends on subcommand.", Group: "scripting", Since: "1.0.0"},
		func(_ *server.Session, args []string) reply.Value {
			return e.scriptCommand(args)
		})
}

// Load caches a script and returns its SHA1 digest
func (e *Engine) Load(script string) string {
	sum := sha1.Sum([]byte(script))
	sha := hex.EncodeToString(sum[:])
	e.scripts.Store(sha, script)
	return sha
}

// Exists reports for each digest whether the script is cached
func (e *Engine) Exists(hashes ...string) []bool {
	out := make([]bool, len(hashes))
	for i, h := range hashes {
		_, out[i] = e.scripts.Load(strings.ToLower(h))
	}
	return out
}

// Flush empties the script cache
func (e *Engine) Flush() {
	e.scripts.Clear()
}

// Eval runs a script with the given keys and arguments on behalf of session.
// Read-only evaluation rejects commands flagged as writes
func (e *Engine) Eval(session *server.Session, script string, keys, args []string, readOnly bool) reply.Value {
	e.Load(script)
	return e.run(session, script, keys, args, readOnly)
}

// EvalSHA runs a cached script
func (e *Engine) EvalSHA(session *server.Session, sha string, keys, args []string, readOnly bool) reply.Value {
	script, ok := e.scripts.Load(strings.ToLower(sha))
	if !ok {
		return reply.MakeError("NOSCRIPT No matching script. Please use EVAL.")
	}
	return e.run(session, script.(string), keys, args, readOnly)
}

// evalCommand implements EVAL script numkeys [key ...] [arg ...] and its variants
func (e *Engine) evalCommand(session *server.Session, args []string, bySHA, readOnly bool) reply.Value {
	numKeys, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return reply.MakeError("ERR value is not an integer or out of range")
	}
	if numKeys < 0 {
		return reply.MakeError("ERR Number of keys can't be negative")
	}
	if numKeys > int64(len(args)-2) {
		return reply.MakeError("ERR Number of keys can't be greater than number of args")
	}

	keys := args[2 : 2+numKeys]
	argv := args[2+numKeys:]

	if bySHA {
		return e.EvalSHA(session, args[0], keys, argv, readOnly)
	}
	return e.Eval(session, args[0], keys, argv, readOnly)
}

// scriptCommand implements SCRIPT LOAD, SCRIPT EXISTS and SCRIPT FLUSH
func (e *Engine) scriptCommand(args []string) reply.Value {
	sub := strings.ToUpper(args[0])
	switch {
	case sub == "LOAD" && len(args) == 2:
		return reply.MakeBulkString(e.Load(args[1]))
	case sub == "EXISTS" && len(args) >= 2:
		found := e.Exists(args[1:]...)
		out := make([]reply.Value, len(found))
		for i, ok := range found {
			out[i] = reply.MakeBool(ok)
		}
		return reply.MakeArray(out)
	case sub == "FLUSH" && len(args) <= 2:
		if len(args) == 2 {
			mode := strings.ToUpper(args[1])
			if mode != "SYNC" && mode != "ASYNC" {
				return reply.MakeError("ERR SCRIPT FLUSH only support SYNC|ASYNC option")
			}
		}
		e.Flush()
		return reply.MakeOK()
	case sub == "LOAD" || sub == "EXISTS" || sub == "FLUSH":
		return reply.MakeErrorf("ERR wrong number of arguments for 'script|%s' command", strings.ToLower(sub))
	default:
		return reply.MakeErrorf("ERR unknown subcommand '%s'. Try SCRIPT HELP.", args[0])
	}
}

func (e *Engine) run(session *server.Session, script string, keys, args []string, readOnly bool) reply.Value {
	L := newState()
	defer L.Close()

	ctx, cancel := context.WithTimeout(context.Background(), e.timeLimit)
	defer cancel()
	L.SetContext(ctx)

	// scripts get their own copy of the session
	scriptSession := *session
	call := &caller{engine: e.engine, session: &scriptSession, readOnly: readOnly}

	L.SetGlobal("KEYS", stringTable(L, keys))
	L.SetGlobal("ARGV", stringTable(L, args))

	redisTable := L.NewTable()
	L.SetFuncs(redisTable, map[string]lua.LGFunction{
		"call":         call.call,
		"pcall":        call.pcall,
		"status_reply": statusReply,
		"error_reply":  errorReply,
	})
	L.SetGlobal("redis", redisTable)

	fn, err := L.Load(strings.NewReader(script), chunkName)
	if err != nil {
		return reply.MakeErrorf("ERR Error compiling script: %s", err.Error())
	}

	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		if ctx.Err() != nil {
			e.logger.Warn("script aborted", zap.Duration("time_limit", e.timeLimit))
			return reply.MakeErrorf("ERR Script timeout: execution exceeded %s", e.timeLimit)
		}
		if e.logger.Core().Enabled(zap.DebugLevel) {
			e.logger.Debug("script failed", zap.Error(err))
		}
		return runtimeError(err)
	}

	ret := L.Get(-1)
	L.Pop(1)
	return toReply(ret)
}

// newState opens a Lua state with only the base, table, string and math libraries
func newState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	// loading code at runtime is not part of the sandbox
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// runtimeError turns a failed script into an error reply. Errors raised by
// redis.call carry their error reply unchanged
func runtimeError(err error) reply.Value {
	apiErr, ok := err.(*lua.ApiError)
	if !ok || apiErr.Object == nil {
		return reply.MakeErrorf("ERR Error running script: %s", err.Error())
	}

	if tbl, ok := apiErr.Object.(*lua.LTable); ok {
		if msg, ok := tbl.RawGetString("err").(lua.LString); ok {
			return reply.MakeError(string(msg))
		}
	}
	return reply.MakeErrorf("ERR Error running script: %s", apiErr.Object.String())
}

func stringTable(L *lua.LState, items []string) *lua.LTable {
	tbl := L.CreateTable(len(items), 0)
	for i, item := range items {
		tbl.RawSetInt(i+1, lua.LString(item))
	}
	return tbl
}

// caller carries the session and mode of the running script
type caller struct {
	engine   *server.Engine
	session  *server.Session
	readOnly bool
}

func (c *caller) call(L *lua.LState) int {
	res := c.execute(L)
	if res.IsError() {
		L.Error(errorTable(L, res.Str), 1)
		return 0
	}
	L.Push(toLua(L, res))
	return 1
}

func (c *caller) pcall(L *lua.LState) int {
	L.Push(toLua(L, c.execute(L)))
	return 1
}

// execute runs the command described by the Lua arguments
func (c *caller) execute(L *lua.LState) reply.Value {
	argc := L.GetTop()
	if argc == 0 {
		return reply.MakeError("ERR Please specify at least one argument for this redis lib call")
	}

	parts := make([]string, argc)
	for i := 1; i <= argc; i++ {
		switch v := L.Get(i).(type) {
		case lua.LString:
			parts[i-1] = string(v)
		case lua.LNumber:
			parts[i-1] = v.String()
		default:
			return reply.MakeError("ERR Lua redis lib command arguments must be strings or integers")
		}
	}

	name := parts[0]
	if meta, ok := c.engine.Lookup(name); ok {
		if hasFlag(meta, "noscript") {
			return reply.MakeError("ERR This Redis command is not allowed from script")
		}
		if c.readOnly && hasFlag(meta, "write") {
			return reply.MakeError("ERR Write commands are not allowed from read-only scripts.")
		}
	}

	return c.engine.Execute(c.session, name, parts[1:])
}

func hasFlag(meta server.Metadata, flag string) bool {
	for _, f := range meta.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

func statusReply(L *lua.LState) int {
	tbl := L.NewTable()
	tbl.RawSetString("ok", lua.LString(L.CheckString(1)))
	L.Push(tbl)
	return 1
}

func errorReply(L *lua.LState) int {
	L.Push(errorTable(L, L.CheckString(1)))
	return 1
}

func errorTable(L *lua.LState, msg string) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("err", lua.LString(msg))
	return tbl
}
