package scripting

import (
	"math"
	"strconv"

	"github.com/eternalApril/moondb/internal/reply"
	lua "github.com/yuin/gopher-lua"
)

// toLua converts a command reply into the Lua value a script sees
func toLua(L *lua.LState, v reply.Value) lua.LValue {
	switch v.Type {
	case reply.TypeInteger:
		return lua.LNumber(v.Integer)
	case reply.TypeBulkString:
		if v.IsNull {
			return lua.LFalse
		}
		return lua.LString(v.Str)
	case reply.TypeDouble:
		return lua.LString(strconv.FormatFloat(v.Double, 'f', -1, 64))
	case reply.TypeSimpleString:
		tbl := L.NewTable()
		tbl.RawSetString("ok", lua.LString(v.Str))
		return tbl
	case reply.TypeError:
		return errorTable(L, v.Str)
	case reply.TypeArray:
		if v.IsNull {
			return lua.LFalse
		}
		tbl := L.CreateTable(len(v.Array), 0)
		for i, item := range v.Array {
			tbl.RawSetInt(i+1, toLua(L, item))
		}
		return tbl
	default:
		return lua.LFalse
	}
}

// toReply converts a script's return value into a reply.
// Numbers are truncated to integers and arrays stop at the first nil
func toReply(lv lua.LValue) reply.Value {
	switch v := lv.(type) {
	case lua.LString:
		return reply.MakeBulkString(string(v))
	case lua.LNumber:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return reply.MakeNilBulkString()
		}
		return reply.MakeInteger(int64(f))
	case lua.LBool:
		if v {
			return reply.MakeInteger(1)
		}
		return reply.MakeNilBulkString()
	case *lua.LTable:
		if msg, ok := v.RawGetString("err").(lua.LString); ok {
			return reply.MakeError(string(msg))
		}
		if status, ok := v.RawGetString("ok").(lua.LString); ok {
			return reply.MakeSimpleString(string(status))
		}

		items := make([]reply.Value, 0, v.Len())
		for i := 1; ; i++ {
			item := v.RawGetInt(i)
			if item == lua.LNil {
				break
			}
			items = append(items, toReply(item))
		}
		return reply.MakeArray(items)
	default:
		return reply.MakeNilBulkString()
	}
}
