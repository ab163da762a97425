package reply

import "fmt"

// MakeSimpleString construct SimpleString Value from string
func MakeSimpleString(s string) Value {
	return Value{
		Type: TypeSimpleString,
		Str:  s,
	}
}

// MakeOK construct the "OK" status
func MakeOK() Value {
	return MakeSimpleString("OK")
}

// MakeError construct Error Value from string
func MakeError(s string) Value {
	return Value{
		Type: TypeError,
		Str:  s,
	}
}

// MakeErrorf construct Error Value from a format string
func MakeErrorf(format string, args ...interface{}) Value {
	return MakeError(fmt.Sprintf(format, args...))
}

// MakeErrorWrongNumberOfArguments construct Error Value that command had wrong number of arguments for command
func MakeErrorWrongNumberOfArguments(cmd string) Value {
	return MakeError(fmt.Sprintf("ERR wrong number of arguments for '%s' command", cmd))
}

// MakeBulkString construct BulkString Value from string
func MakeBulkString(s string) Value {
	return Value{
		Type: TypeBulkString,
		Str:  s,
	}
}

// MakeNilBulkString construct nil BulkSting Value
func MakeNilBulkString() Value {
	return Value{
		Type:   TypeBulkString,
		IsNull: true,
	}
}

// MakeInteger construct Integer Value from int64
func MakeInteger(n int64) Value {
	return Value{
		Type:    TypeInteger,
		Integer: n,
	}
}

// MakeBool construct Integer Value 1 or 0
func MakeBool(b bool) Value {
	if b {
		return MakeInteger(1)
	}
	return MakeInteger(0)
}

// MakeDouble construct Double Value from float64
func MakeDouble(f float64) Value {
	return Value{
		Type:   TypeDouble,
		Double: f,
	}
}

// MakeArray creates an array containing the provided elements
func MakeArray(values []Value) Value {
	return Value{
		Type:  TypeArray,
		Array: values,
	}
}

// MakeNilArray construct nil Array Value
func MakeNilArray() Value {
	return Value{
		Type:   TypeArray,
		IsNull: true,
	}
}

// MakeStringArray creates an array of bulk strings
func MakeStringArray(items []string) Value {
	vals := make([]Value, len(items))
	for i, s := range items {
		vals[i] = MakeBulkString(s)
	}
	return MakeArray(vals)
}
