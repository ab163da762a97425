package server

import (
	"strings"

	"github.com/eternalApril/moondb/internal/reply"
	"github.com/eternalApril/moondb/internal/storage"
	"go.uber.org/zap"
)

// Session is the per-client state: the selected database.
// A Session must not be used by more than one goroutine at a time
type Session struct {
	db int
}

// DB returns the selected database index
func (s *Session) DB() int {
	return s.db
}

// Engine coordinates the execution of commands against the store
type Engine struct {
	commands map[string]command  // Registry of available commands (the key is the command name in uppercase)
	meta     map[string]Metadata // arity, flags and key positions per command
	docs     map[string]Doc      // COMMAND DOCS entries
	store    *storage.Store
	logger   *zap.Logger
}

// NewEngine initializes the engine and registers the built-in commands
func NewEngine(store *storage.Store, logger *zap.Logger) *Engine {
	engine := &Engine{
		commands: make(map[string]command),
		meta:     make(map[string]Metadata),
		docs:     make(map[string]Doc),
		store:    store,
		logger:   logger,
	}
	engine.registerBasicCommand()

	return engine
}

// NewSession returns a session with database 0 selected
func (e *Engine) NewSession() *Session {
	return &Session{}
}

// Store returns the underlying store
func (e *Engine) Store() *storage.Store {
	return e.store
}

// Register adds a command implemented by another package, such as scripting.
// Must be called before the engine is shared between goroutines
func (e *Engine) Register(name string, meta Metadata, doc Doc, handler HandlerFunc) {
	e.register(name, commandFunc(func(ctx *cmdContext) reply.Value {
		return handler(ctx.session, ctx.args)
	}))
	e.meta[strings.ToUpper(name)] = meta
	e.docs[strings.ToUpper(name)] = doc
}

// IsWrite reports whether the command may modify data
func (e *Engine) IsWrite(name string) bool {
	return e.hasFlag(name, "write")
}

// Lookup returns the metadata of a command
func (e *Engine) Lookup(name string) (Metadata, bool) {
	m, ok := e.meta[strings.ToUpper(name)]
	return m, ok
}

func (e *Engine) hasFlag(name, flag string) bool {
	m, ok := e.meta[strings.ToUpper(name)]
	if !ok {
		return false
	}
	for _, f := range m.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// register adds a new command to the engine. The command name is uppercase
func (e *Engine) register(name string, cmd command) {
	e.commands[strings.ToUpper(name)] = cmd
}

// registerBasicCommand fills the registry with standard commands
func (e *Engine) registerBasicCommand() {
	for name, m := range commandRegistry {
		e.meta[name] = m
	}
	for name, d := range commandDocsRegistry {
		e.docs[name] = d
	}

	// connection and server
	e.register("PING", commandFunc(ping))
	e.register("ECHO", commandFunc(echo))
	e.register("SELECT", commandFunc(selectDB))
	e.register("DBSIZE", commandFunc(dbsize))
	e.register("FLUSHDB", commandFunc(flushdb))
	e.register("COMMAND", commandFunc(cmd))

	// generic
	e.register("TYPE", commandFunc(typeCmd))
	e.register("EXISTS", commandFunc(exists))
	e.register("DEL", commandFunc(del))
	e.register("EXPIRE", commandFunc(expire))
	e.register("PEXPIRE", commandFunc(pexpire))
	e.register("EXPIREAT", commandFunc(expireat))
	e.register("PEXPIREAT", commandFunc(pexpireat))
	e.register("TTL", commandFunc(ttl))
	e.register("PTTL", commandFunc(pttl))
	e.register("EXPIRETIME", commandFunc(expiretime))
	e.register("PEXPIRETIME", commandFunc(pexpiretime))
	e.register("PERSIST", commandFunc(persist))

	// strings
	e.register("GET", commandFunc(get))
	e.register("SET", commandFunc(set))
	e.register("INCR", commandFunc(incr))
	e.register("INCRBY", commandFunc(incrby))
	e.register("DECR", commandFunc(decr))
	e.register("DECRBY", commandFunc(decrby))

	// lists
	e.register("LPUSH", commandFunc(lpush))
	e.register("RPUSH", commandFunc(rpush))
	e.register("LSET", commandFunc(lset))
	e.register("LRANGE", commandFunc(lrange))
	e.register("LINDEX", commandFunc(lindex))
	e.register("LLEN", commandFunc(llen))
	e.register("LPOP", commandFunc(lpop))
	e.register("RPOP", commandFunc(rpop))

	// hashes
	e.register("HSET", commandFunc(hset))
	e.register("HGET", commandFunc(hget))
	e.register("HGETALL", commandFunc(hgetall))
	e.register("HDEL", commandFunc(hdel))
	e.register("HLEN", commandFunc(hlen))
	e.register("HEXISTS", commandFunc(hexists))
	e.register("HKEYS", commandFunc(hkeys))
	e.register("HVALS", commandFunc(hvals))

	// sets
	e.register("SADD", commandFunc(sadd))
	e.register("SREM", commandFunc(srem))
	e.register("SMEMBERS", commandFunc(smembers))
	e.register("SISMEMBER", commandFunc(sismember))
	e.register("SCARD", commandFunc(scard))

	// sorted sets
	e.register("ZADD", commandFunc(zadd))
	e.register("ZINCRBY", commandFunc(zincrby))
	e.register("ZSCORE", commandFunc(zscore))
	e.register("ZREM", commandFunc(zrem))
	e.register("ZCARD", commandFunc(zcard))
	e.register("ZRANK", commandFunc(zrank))
	e.register("ZRANGE", commandFunc(zrange))

	// hyperloglog
	e.register("PFADD", commandFunc(pfadd))
	e.register("PFCOUNT", commandFunc(pfcount))
	e.register("PFMERGE", commandFunc(pfmerge))

	// geo
	e.register("GEOADD", commandFunc(geoadd))
	e.register("GEODIST", commandFunc(geodist))
	e.register("GEOPOS", commandFunc(geopos))
	e.register("GEOHASH", commandFunc(geohash))
	e.register("GEORADIUS", commandFunc(georadius))
	e.register("GEORADIUSBYMEMBER", commandFunc(georadiusbymember))

	// streams
	e.register("XADD", commandFunc(xadd))
	e.register("XLEN", commandFunc(xlen))
	e.register("XRANGE", commandFunc(xrange))
	e.register("XREVRANGE", commandFunc(xrevrange))
}

// Execute finds the command by name and executes it with the passed arguments on the session's database.
// If the command is not found or the arity does not match, returns an error reply
func (e *Engine) Execute(session *Session, name string, args []string) reply.Value {
	name = strings.ToUpper(name)

	if e.logger.Core().Enabled(zap.DebugLevel) {
		// Log the command name and number of args
		e.logger.Debug("executing command",
			zap.String("cmd", name),
			zap.Int("db", session.db),
			zap.Int("args_count", len(args)),
		)
	}

	cmd, ok := e.commands[name]
	if !ok {
		return reply.MakeErrorf("ERR unknown command '%s'", strings.ToLower(name))
	}

	if m, ok := e.meta[name]; ok && !m.acceptsArgs(len(args)) {
		return reply.MakeErrorWrongNumberOfArguments(strings.ToLower(name))
	}

	db, err := e.store.Select(session.db)
	if err != nil {
		return errorReply(err)
	}

	ctx := &cmdContext{
		engine:  e,
		session: session,
		db:      db,
		args:    args,
	}

	return cmd.execute(ctx)
}
