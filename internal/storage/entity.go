package storage

// Kind is the tag of a stored value
type Kind byte

const (
	KindNone Kind = iota
	KindString
	KindList
	KindHash
	KindSet
	KindZSet
	KindHyperLogLog
	KindGeo
	KindStream
)

// String returns the type name reported by TYPE
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindHash:
		return "hash"
	case KindSet:
		return "set"
	case KindZSet:
		return "zset"
	case KindHyperLogLog:
		return "hyperloglog"
	case KindGeo:
		return "geo"
	case KindStream:
		return "stream"
	default:
		return "none"
	}
}

// Entity generic container for value.
// Value holds a string for KindString and a *datatype.X pointer for the other kinds
type Entity struct {
	Kind  Kind
	Value interface{}
}

// sized is implemented by collection values; empty collections are not kept
type sized interface {
	Len() int
}

func (e *Entity) empty() bool {
	s, ok := e.Value.(sized)
	return ok && s.Len() == 0
}
