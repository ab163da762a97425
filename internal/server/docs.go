package server

import (
	"sort"
	"strings"

	"github.com/eternalApril/moondb/internal/reply"
)

// Metadata describes a command for arity checks and COMMAND
type Metadata struct {
	Arity    int      // Arity includes the command name itself, negative means "at least"
	Flags    []string // readonly, write, fast, denyoom, noscript, etc
	FirstKey int      // 1-based index of the first key
	LastKey  int      // 1-based index of the last key
	Step     int      // Step count for finding keys
}

// acceptsArgs checks the arity against n arguments after the name
func (m Metadata) acceptsArgs(n int) bool {
	total := n + 1
	if m.Arity >= 0 {
		return total == m.Arity
	}
	return total >= -m.Arity
}

var (
	commandRegistry = map[string]Metadata{
		"PING":    {-1, []string{"fast", "stale"}, 0, 0, 0},
		"ECHO":    {2, []string{"fast"}, 0, 0, 0},
		"SELECT":  {2, []string{"loading", "stale", "fast"}, 0, 0, 0},
		"DBSIZE":  {1, []string{"readonly", "fast"}, 0, 0, 0},
		"FLUSHDB": {1, []string{"write"}, 0, 0, 0},
		"COMMAND": {-1, []string{"random", "loading", "stale"}, 0, 0, 0},

		"TYPE":        {2, []string{"readonly", "fast"}, 1, 1, 1},
		"EXISTS":      {-2, []string{"readonly", "fast"}, 1, -1, 1},
		"DEL":         {-2, []string{"write"}, 1, -1, 1},
		"EXPIRE":      {3, []string{"write", "fast"}, 1, 1, 1},
		"PEXPIRE":     {3, []string{"write", "fast"}, 1, 1, 1},
		"EXPIREAT":    {3, []string{"write", "fast"}, 1, 1, 1},
		"PEXPIREAT":   {3, []string{"write", "fast"}, 1, 1, 1},
		"TTL":         {2, []string{"readonly", "fast"}, 1, 1, 1},
		"PTTL":        {2, []string{"readonly", "fast"}, 1, 1, 1},
		"EXPIRETIME":  {2, []string{"readonly", "fast"}, 1, 1, 1},
		"PEXPIRETIME": {2, []string{"readonly", "fast"}, 1, 1, 1},
		"PERSIST":     {2, []string{"write", "fast"}, 1, 1, 1},

		"GET":    {2, []string{"readonly", "fast"}, 1, 1, 1},
		"SET":    {-3, []string{"write", "denyoom"}, 1, 1, 1},
		"INCR":   {2, []string{"write", "denyoom", "fast"}, 1, 1, 1},
		"INCRBY": {3, []string{"write", "denyoom", "fast"}, 1, 1, 1},
		"DECR":   {2, []string{"write", "denyoom", "fast"}, 1, 1, 1},
		"DECRBY": {3, []string{"write", "denyoom", "fast"}, 1, 1, 1},

		"LPUSH":  {-3, []string{"write", "denyoom", "fast"}, 1, 1, 1},
		"RPUSH":  {-3, []string{"write", "denyoom", "fast"}, 1, 1, 1},
		"LSET":   {4, []string{"write", "denyoom"}, 1, 1, 1},
		"LRANGE": {4, []string{"readonly"}, 1, 1, 1},
		"LINDEX": {3, []string{"readonly"}, 1, 1, 1},
		"LLEN":   {2, []string{"readonly", "fast"}, 1, 1, 1},
		"LPOP":   {-2, []string{"write", "fast"}, 1, 1, 1},
		"RPOP":   {-2, []string{"write", "fast"}, 1, 1, 1},

		"HSET":    {-4, []string{"write", "denyoom", "fast"}, 1, 1, 1},
		"HGET":    {3, []string{"readonly", "fast"}, 1, 1, 1},
		"HGETALL": {2, []string{"readonly"}, 1, 1, 1},
		"HDEL":    {-3, []string{"write", "fast"}, 1, 1, 1},
		"HLEN":    {2, []string{"readonly", "fast"}, 1, 1, 1},
		"HEXISTS": {3, []string{"readonly", "fast"}, 1, 1, 1},
		"HKEYS":   {2, []string{"readonly"}, 1, 1, 1},
		"HVALS":   {2, []string{"readonly"}, 1, 1, 1},

		"SADD":      {-3, []string{"write", "denyoom", "fast"}, 1, 1, 1},
		"SREM":      {-3, []string{"write", "fast"}, 1, 1, 1},
		"SMEMBERS":  {2, []string{"readonly"}, 1, 1, 1},
		"SISMEMBER": {3, []string{"readonly", "fast"}, 1, 1, 1},
		"SCARD":     {2, []string{"readonly", "fast"}, 1, 1, 1},

		"ZADD":    {-4, []string{"write", "denyoom", "fast"}, 1, 1, 1},
		"ZINCRBY": {4, []string{"write", "denyoom", "fast"}, 1, 1, 1},
		"ZSCORE":  {3, []string{"readonly", "fast"}, 1, 1, 1},
		"ZREM":    {-3, []string{"write", "fast"}, 1, 1, 1},
		"ZCARD":   {2, []string{"readonly", "fast"}, 1, 1, 1},
		"ZRANK":   {3, []string{"readonly", "fast"}, 1, 1, 1},
		"ZRANGE":  {-4, []string{"readonly"}, 1, 1, 1},

		"PFADD":   {-2, []string{"write", "denyoom", "fast"}, 1, 1, 1},
		"PFCOUNT": {-2, []string{"readonly"}, 1, -1, 1},
		"PFMERGE": {-2, []string{"write", "denyoom"}, 1, -1, 1},

		"GEOADD":            {-5, []string{"write", "denyoom"}, 1, 1, 1},
		"GEODIST":           {-4, []string{"readonly"}, 1, 1, 1},
		"GEOPOS":            {-2, []string{"readonly"}, 1, 1, 1},
		"GEOHASH":           {-2, []string{"readonly"}, 1, 1, 1},
		"GEORADIUS":         {-6, []string{"readonly"}, 1, 1, 1},
		"GEORADIUSBYMEMBER": {-5, []string{"readonly"}, 1, 1, 1},

		"XADD":      {-5, []string{"write", "denyoom", "fast"}, 1, 1, 1},
		"XLEN":      {2, []string{"readonly", "fast"}, 1, 1, 1},
		"XRANGE":    {-4, []string{"readonly"}, 1, 1, 1},
		"XREVRANGE": {-4, []string{"readonly"}, 1, 1, 1},
	}
)

// Doc stores a description for the command
type Doc struct {
	Summary    string
	Complexity string
	Group      string
	Since      string
}

// commandDocsRegistry documentation registry
var commandDocsRegistry = map[string]Doc{
	"PING":    {"Ping the server.", "O(1)", "connection", "1.0.0"},
	"ECHO":    {"Returns the given string.", "O(1)", "connection", "1.0.0"},
	"SELECT":  {"Change the selected database for the current session.", "O(1)", "connection", "1.0.0"},
	"DBSIZE":  {"Returns the number of keys in the database.", "O(1)", "server", "1.0.0"},
	"FLUSHDB": {"Remove all keys from the current database.", "O(N) where N is the number of keys in the selected database", "server", "1.0.0"},
	"COMMAND": {"Get array of command details.", "O(N) where N is the number of commands to look up.", "server", "1.0.0"},

	"TYPE":        {"Determines the type of value stored at a key.", "O(1)", "generic", "1.0.0"},
	"EXISTS":      {"Determines whether one or more keys exist.", "O(N) where N is the number of keys to check.", "generic", "1.0.0"},
	"DEL":         {"Delete a key.", "O(N) where N is the number of keys that will be removed.", "generic", "1.0.0"},
	"EXPIRE":      {"Set a key's time to live in seconds.", "O(1)", "generic", "1.0.0"},
	"PEXPIRE":     {"Set a key's time to live in milliseconds.", "O(1)", "generic", "1.0.0"},
	"EXPIREAT":    {"Set the expiration for a key as a UNIX timestamp.", "O(1)", "generic", "1.0.0"},
	"PEXPIREAT":   {"Set the expiration for a key as a UNIX timestamp specified in milliseconds.", "O(1)", "generic", "1.0.0"},
	"TTL":         {"Get the time to live for a key in seconds.", "O(1)", "generic", "1.0.0"},
	"PTTL":        {"Get the time to live for a key in milliseconds.", "O(1)", "generic", "1.0.0"},
	"EXPIRETIME":  {"Returns the expiration time of a key as a Unix timestamp.", "O(1)", "generic", "1.0.0"},
	"PEXPIRETIME": {"Returns the expiration time of a key as a Unix milliseconds timestamp.", "O(1)", "generic", "1.0.0"},
	"PERSIST":     {"Remove the expiration from a key.", "O(1)", "generic", "1.0.0"},

	"GET":    {"Get the value of a key.", "O(1)", "string", "1.0.0"},
	"SET":    {"Set the string value of a key.", "O(1)", "string", "1.0.0"},
	"INCR":   {"Increments the integer value of a key by one.", "O(1)", "string", "1.0.0"},
	"INCRBY": {"Increments the integer value of a key by a number.", "O(1)", "string", "1.0.0"},
	"DECR":   {"Decrements the integer value of a key by one.", "O(1)", "string", "1.0.0"},
	"DECRBY": {"Decrements a number from the integer value of a key.", "O(1)", "string", "1.0.0"},

	"LPUSH":  {"Prepends one or more elements to a list.", "O(N) where N is the number of elements pushed.", "list", "1.0.0"},
	"RPUSH":  {"Appends one or more elements to a list.", "O(N) where N is the number of elements pushed.", "list", "1.0.0"},
	"LSET":   {"Sets the value of an element in a list by its index.", "O(N) where N is the length of the list.", "list", "1.0.0"},
	"LRANGE": {"Returns a range of elements from a list.", "O(S+N) where S is the start offset and N the number of elements.", "list", "1.0.0"},
	"LINDEX": {"Returns an element from a list by its index.", "O(N) where N is the number of elements to traverse.", "list", "1.0.0"},
	"LLEN":   {"Returns the length of a list.", "O(1)", "list", "1.0.0"},
	"LPOP":   {"Returns the first elements in a list after removing it.", "O(N) where N is the number of elements returned", "list", "1.0.0"},
	"RPOP":   {"Returns and removes the last elements of a list.", "O(N) where N is the number of elements returned", "list", "1.0.0"},

	"HSET":    {"Creates or modifies the value of a field in a hash.", "O(N) where N is the number of field/value pairs.", "hash", "1.0.0"},
	"HGET":    {"Returns the value of a field in a hash.", "O(1)", "hash", "1.0.0"},
	"HGETALL": {"Returns all fields and values in a hash.", "O(N) where N is the size of the hash.", "hash", "1.0.0"},
	"HDEL":    {"Deletes one or more fields and their values from a hash.", "O(N) where N is the number of fields to be removed.", "hash", "1.0.0"},
	"HLEN":    {"Returns the number of fields in a hash.", "O(1)", "hash", "1.0.0"},
	"HEXISTS": {"Determines whether a field exists in a hash.", "O(1)", "hash", "1.0.0"},
	"HKEYS":   {"Returns all fields in a hash.", "O(N) where N is the size of the hash.", "hash", "1.0.0"},
	"HVALS":   {"Returns all values in a hash.", "O(N) where N is the size of the hash.", "hash", "1.0.0"},

	"SADD":      {"Adds one or more members to a set.", "O(N) where N is the number of members to be added.", "set", "1.0.0"},
	"SREM":      {"Removes one or more members from a set.", "O(N) where N is the number of members to be removed.", "set", "1.0.0"},
	"SMEMBERS":  {"Returns all members of a set.", "O(N) where N is the set cardinality.", "set", "1.0.0"},
	"SISMEMBER": {"Determines whether a member belongs to a set.", "O(1)", "set", "1.0.0"},
	"SCARD":     {"Returns the number of members in a set.", "O(1)", "set", "1.0.0"},

	"ZADD":    {"Adds one or more members to a sorted set, or updates their scores.", "O(log(N)) for each item added.", "sorted-set", "1.0.0"},
	"ZINCRBY": {"Increments the score of a member in a sorted set.", "O(log(N))", "sorted-set", "1.0.0"},
	"ZSCORE":  {"Returns the score of a member in a sorted set.", "O(1)", "sorted-set", "1.0.0"},
	"ZREM":    {"Removes one or more members from a sorted set.", "O(M*log(N)) with N the set size and M the number of members removed.", "sorted-set", "1.0.0"},
	"ZCARD":   {"Returns the number of members in a sorted set.", "O(1)", "sorted-set", "1.0.0"},
	"ZRANK":   {"Returns the index of a member in a sorted set ordered by ascending scores.", "O(log(N))", "sorted-set", "1.0.0"},
	"ZRANGE":  {"Returns members in a sorted set within a range of indexes.", "O(log(N)+M) with M the number of elements returned.", "sorted-set", "1.0.0"},

	"PFADD":   {"Adds elements to a HyperLogLog key. Creates the key if it doesn't exist.", "O(1) for each element added.", "hyperloglog", "1.0.0"},
	"PFCOUNT": {"Returns the approximated cardinality of the set(s) observed by the HyperLogLog key(s).", "O(1) with a single key, O(N) with N keys.", "hyperloglog", "1.0.0"},
	"PFMERGE": {"Merges one or more HyperLogLog values into a single key.", "O(N) to merge N HyperLogLogs.", "hyperloglog", "1.0.0"},

	"GEOADD":            {"Adds one or more members to a geospatial index.", "O(log(N)) for each item added.", "geo", "1.0.0"},
	"GEODIST":           {"Returns the distance between two members of a geospatial index.", "O(1)", "geo", "1.0.0"},
	"GEOPOS":            {"Returns the longitude and latitude of members from a geospatial index.", "O(1) for each member requested.", "geo", "1.0.0"},
	"GEOHASH":           {"Returns members from a geospatial index as geohash strings.", "O(1) for each member requested.", "geo", "1.0.0"},
	"GEORADIUS":         {"Queries a geospatial index for members within a distance from a coordinate.", "O(N) where N is the number of members in the index.", "geo", "1.0.0"},
	"GEORADIUSBYMEMBER": {"Queries a geospatial index for members within a distance from a member.", "O(N) where N is the number of members in the index.", "geo", "1.0.0"},

	"XADD":      {"Appends a new message to a stream. Creates the key if it doesn't exist.", "O(1)", "stream", "1.0.0"},
	"XLEN":      {"Return the number of messages in a stream.", "O(1)", "stream", "1.0.0"},
	"XRANGE":    {"Returns the messages from a stream within a range of IDs.", "O(log(N)+M) with M the number of elements returned.", "stream", "1.0.0"},
	"XREVRANGE": {"Returns the messages from a stream within a range of IDs in reverse order.", "O(log(N)+M) with M the number of elements returned.", "stream", "1.0.0"},
}

func makeFlagsArray(flags []string) reply.Value {
	vals := make([]reply.Value, len(flags))
	for i, f := range flags {
		vals[i] = reply.MakeSimpleString(f)
	}
	return reply.MakeArray(vals)
}

func (e *Engine) makeInfoCmdArray(name string) []reply.Value {
	m := e.meta[name]
	return []reply.Value{
		reply.MakeBulkString(strings.ToLower(name)),
		reply.MakeInteger(int64(m.Arity)),
		makeFlagsArray(m.Flags),
		reply.MakeInteger(int64(m.FirstKey)),
		reply.MakeInteger(int64(m.LastKey)),
		reply.MakeInteger(int64(m.Step)),
	}
}

// commandNames returns the registered command names in sorted order
func (e *Engine) commandNames() []string {
	names := make([]string, 0, len(e.commands))
	for name := range e.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *Engine) getAllCommands() reply.Value {
	names := e.commandNames()
	cmdArray := make([]reply.Value, 0, len(names))
	for _, name := range names {
		cmdArray = append(cmdArray, reply.MakeArray(e.makeInfoCmdArray(name)))
	}
	return reply.MakeArray(cmdArray)
}

// getCommandsInfo returns details for the named commands, nil for unknown ones
func (e *Engine) getCommandsInfo(args []string) reply.Value {
	out := make([]reply.Value, len(args))
	for i, arg := range args {
		name := strings.ToUpper(arg)
		if _, ok := e.commands[name]; !ok {
			out[i] = reply.MakeNilArray()
			continue
		}
		out[i] = reply.MakeArray(e.makeInfoCmdArray(name))
	}
	return reply.MakeArray(out)
}

// getCommandsDocs returns documentation for specified commands or all commands
// Format: [Name, [Summary, val, Since, val...], Name, [...]]
func (e *Engine) getCommandsDocs(args []string) reply.Value {
	var targets []string

	if len(args) == 0 {
		targets = make([]string, 0, len(e.docs))
		for name := range e.docs {
			targets = append(targets, name)
		}
		sort.Strings(targets)
	} else {
		targets = make([]string, 0, len(args))
		for _, arg := range args {
			targets = append(targets, strings.ToUpper(arg))
		}
	}

	result := make([]reply.Value, 0, len(targets)*2)

	for _, name := range targets {
		doc, ok := e.docs[name]
		if !ok {
			continue
		}

		result = append(result, reply.MakeBulkString(strings.ToLower(name)))

		props := []reply.Value{
			reply.MakeBulkString("summary"),
			reply.MakeBulkString(doc.Summary),
			reply.MakeBulkString("since"),
			reply.MakeBulkString(doc.Since),
			reply.MakeBulkString("group"),
			reply.MakeBulkString(doc.Group),
			reply.MakeBulkString("complexity"),
			reply.MakeBulkString(doc.Complexity),
		}

		result = append(result, reply.MakeArray(props))
	}

	return reply.MakeArray(result)
}
