package reply

import (
	"strconv"
	"strings"
)

// Reply kinds, tagged with the RESP type byte
const (
	TypeSimpleString byte = '+'
	TypeError        byte = '-'
	TypeInteger      byte = ':'
	TypeBulkString   byte = '$'
	TypeArray        byte = '*'
	TypeDouble       byte = ','
)

// Value is the typed result of a command
type Value struct {
	Str     string // SimpleString, Error, BulkString
	Array   []Value
	Integer int64 // Integer
	Double  float64
	Type    byte
	IsNull  bool // For nil BulkString and nil Array
}

// IsError reports whether v is an error reply
func (v Value) IsError() bool {
	return v.Type == TypeError
}

// String renders v for logs and CLI output, close to redis-cli formatting
func (v Value) String() string {
	var b strings.Builder
	v.render(&b, "")
	return b.String()
}

func (v Value) render(b *strings.Builder, indent string) {
	switch v.Type {
	case TypeSimpleString:
		b.WriteString(v.Str)
	case TypeError:
		b.WriteString("(error) ")
		b.WriteString(v.Str)
	case TypeInteger:
		b.WriteString("(integer) ")
		b.WriteString(strconv.FormatInt(v.Integer, 10))
	case TypeDouble:
		b.WriteString("(double) ")
		b.WriteString(strconv.FormatFloat(v.Double, 'g', -1, 64))
	case TypeBulkString:
		if v.IsNull {
			b.WriteString("(nil)")
			return
		}
		b.WriteString(strconv.Quote(v.Str))
	case TypeArray:
		if v.IsNull {
			b.WriteString("(nil)")
			return
		}
		if len(v.Array) == 0 {
			b.WriteString("(empty array)")
			return
		}
		for i, item := range v.Array {
			if i > 0 {
				b.WriteByte('\n')
				b.WriteString(indent)
			}
			prefix := strconv.Itoa(i+1) + ") "
			b.WriteString(prefix)
			item.render(b, indent+strings.Repeat(" ", len(prefix)))
		}
	}
}
