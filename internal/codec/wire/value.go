// Package wire implements the ledger's self-describing value encoding.
// Every contract call parameter and every return value is a tagged Value;
// callers encode native Go values into this representation and decode
// results back out of it.
package wire

// Kind is the tag identifying the shape of a Value.
type Kind uint8

const (
	// KindVoid is the absence of a value (an empty Option on the wire).
	KindVoid Kind = iota + 1
	KindBool
	KindU32
	KindU64
	KindI128
	KindSymbol
	KindString
	KindAddress
	KindVec
	KindMap
)

// String returns the tag name used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindU32:
		return "u32"
	case KindU64:
		return "u64"
	case KindI128:
		return "i128"
	case KindSymbol:
		return "symbol"
	case KindString:
		return "string"
	case KindAddress:
		return "address"
	case KindVec:
		return "vec"
	case KindMap:
		return "map"
	}
	return "unknown"
}

// Value is a single wire value. The zero Value is void.
type Value struct {
	kind Kind
	b    bool
	u64  uint64
	i128 Int128
	str  string
	vec  []Value
	ents []MapEntry
}

// MapEntry is one key/value pair of a map value. Entry order is
// preserved exactly as received; the codec never re-sorts.
type MapEntry struct {
	Key Value
	Val Value
}

// Void returns the void value.
func Void() Value { return Value{kind: KindVoid} }

// BoolVal wraps b as a wire bool.
func BoolVal(b bool) Value { return Value{kind: KindBool, b: b} }

// U32Val wraps v as a wire u32.
func U32Val(v uint32) Value { return Value{kind: KindU32, u64: uint64(v)} }

// U64Val wraps v as a wire u64.
func U64Val(v uint64) Value { return Value{kind: KindU64, u64: v} }

// I128Val wraps v as a wire i128.
func I128Val(v Int128) Value { return Value{kind: KindI128, i128: v} }

// I128ValFromInt64 wraps v, sign-extended to 128 bits.
func I128ValFromInt64(v int64) Value { return I128Val(Int128FromInt64(v)) }

// SymbolVal wraps s as a wire symbol.
func SymbolVal(s string) Value { return Value{kind: KindSymbol, str: s} }

// StringVal wraps s as a wire string.
func StringVal(s string) Value { return Value{kind: KindString, str: s} }

// AddressVal wraps a strkey-encoded account or contract address.
func AddressVal(addr string) Value { return Value{kind: KindAddress, str: addr} }

// VecVal wraps elems as an ordered sequence.
func VecVal(elems ...Value) Value { return Value{kind: KindVec, vec: elems} }

// MapVal wraps entries as a map value, preserving entry order.
func MapVal(entries ...MapEntry) Value { return Value{kind: KindMap, ents: entries} }

// Kind returns the value's tag. The zero Value reports KindVoid.
func (v Value) Kind() Kind {
	if v.kind == 0 {
		return KindVoid
	}
	return v.kind
}

// IsVoid reports whether v carries no data.
func (v Value) IsVoid() bool { return v.Kind() == KindVoid }

// AsBool returns the bool payload, reporting whether v is a bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsU32 returns the u32 payload, reporting whether v is a u32.
func (v Value) AsU32() (uint32, bool) { return uint32(v.u64), v.kind == KindU32 }

// AsU64 returns the u64 payload, reporting whether v is a u64.
func (v Value) AsU64() (uint64, bool) { return v.u64, v.kind == KindU64 }

// AsI128 returns the i128 payload, reporting whether v is an i128.
func (v Value) AsI128() (Int128, bool) { return v.i128, v.kind == KindI128 }

// AsSymbol returns the symbol payload, reporting whether v is a symbol.
func (v Value) AsSymbol() (string, bool) { return v.str, v.kind == KindSymbol }

// AsString returns the string payload, reporting whether v is a string.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsAddress returns the strkey address payload, reporting whether v is
// an address.
func (v Value) AsAddress() (string, bool) { return v.str, v.kind == KindAddress }

// AsVec returns the sequence payload, reporting whether v is a vec.
// The returned slice is shared; callers must not mutate it.
func (v Value) AsVec() ([]Value, bool) { return v.vec, v.kind == KindVec }

// AsMap returns the map entries, reporting whether v is a map.
// The returned slice is shared; callers must not mutate it.
func (v Value) AsMap() ([]MapEntry, bool) { return v.ents, v.kind == KindMap }

// MapGet looks up the entry whose key is the symbol name. Returns the
// void value and false when v is not a map or the key is absent.
func (v Value) MapGet(name string) (Value, bool) {
	if v.kind != KindMap {
		return Void(), false
	}
	for _, e := range v.ents {
		if s, ok := e.Key.AsSymbol(); ok && s == name {
			return e.Val, true
		}
	}
	return Void(), false
}
