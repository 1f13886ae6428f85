package wire

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/codec/strkey"
)

// Binary layout: one tag byte per value, then a fixed- or length-prefixed
// payload. Multi-byte integers are big-endian. Addresses travel as their
// strkey version byte plus the 32 raw payload bytes, not as text.

const (
	tagVoid    = 0x00
	tagBool    = 0x01
	tagU32     = 0x02
	tagU64     = 0x03
	tagI128    = 0x04
	tagSymbol  = 0x05
	tagString  = 0x06
	tagAddress = 0x07
	tagVec     = 0x08
	tagMap     = 0x09
)

// Marshal serializes v into the binary wire form.
func Marshal(v Value) ([]byte, error) {
	var buf []byte
	return appendValue(buf, v)
}

// MarshalBase64 serializes v and base64-encodes the result, the form
// values travel in over the RPC boundary.
func MarshalBase64(v Value) (string, error) {
	raw, err := Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func appendValue(buf []byte, v Value) ([]byte, error) {
	switch v.Kind() {
	case KindVoid:
		return append(buf, tagVoid), nil
	case KindBool:
		b := byte(0)
		if v.b {
			b = 1
		}
		return append(buf, tagBool, b), nil
	case KindU32:
		buf = append(buf, tagU32)
		return binary.BigEndian.AppendUint32(buf, uint32(v.u64)), nil
	case KindU64:
		buf = append(buf, tagU64)
		return binary.BigEndian.AppendUint64(buf, v.u64), nil
	case KindI128:
		buf = append(buf, tagI128)
		buf = binary.BigEndian.AppendUint64(buf, uint64(v.i128.Hi))
		return binary.BigEndian.AppendUint64(buf, v.i128.Lo), nil
	case KindSymbol:
		return appendText(buf, tagSymbol, v.str)
	case KindString:
		return appendText(buf, tagString, v.str)
	case KindAddress:
		version, payload, err := strkey.DecodeAny(v.str)
		if err != nil {
			return nil, fmt.Errorf("encode address %q: %w", v.str, err)
		}
		buf = append(buf, tagAddress, byte(version))
		return append(buf, payload...), nil
	case KindVec:
		buf = append(buf, tagVec)
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(v.vec)))
		var err error
		for _, el := range v.vec {
			if buf, err = appendValue(buf, el); err != nil {
				return nil, err
			}
		}
		return buf, nil
	case KindMap:
		buf = append(buf, tagMap)
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(v.ents)))
		var err error
		for _, e := range v.ents {
			if buf, err = appendValue(buf, e.Key); err != nil {
				return nil, err
			}
			if buf, err = appendValue(buf, e.Val); err != nil {
				return nil, err
			}
		}
		return buf, nil
	}
	return nil, fmt.Errorf("encode: unsupported kind %s", v.Kind())
}

func appendText(buf []byte, tag byte, s string) ([]byte, error) {
	if len(s) > math.MaxUint32 {
		return nil, fmt.Errorf("encode: text of %d bytes exceeds length prefix", len(s))
	}
	buf = append(buf, tag)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...), nil
}

// Unmarshal parses one value from data, rejecting trailing bytes.
func Unmarshal(data []byte) (Value, error) {
	p := &parser{data: data}
	v, err := p.value()
	if err != nil {
		return Void(), err
	}
	if p.pos != len(p.data) {
		return Void(), fmt.Errorf("wire value followed by %d trailing bytes", len(p.data)-p.pos)
	}
	return v, nil
}

// UnmarshalBase64 base64-decodes data and parses the wire value inside.
func UnmarshalBase64(data string) (Value, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return Void(), fmt.Errorf("decode wire base64: %w", err)
	}
	return Unmarshal(raw)
}

type parser struct {
	data []byte
	pos  int
}

func (p *parser) take(n int) ([]byte, error) {
	if len(p.data)-p.pos < n {
		return nil, ErrTruncated
	}
	b := p.data[p.pos : p.pos+n]
	p.pos += n
	return b, nil
}

// sizeHint caps a claimed element count by the bytes actually left in
// the input. Every element occupies at least one byte, so a count
// larger than the remainder is corrupt; the clamp keeps a hostile
// length prefix from forcing a huge allocation before the element
// parse fails with ErrTruncated.
func (p *parser) sizeHint(n uint32) int {
	remaining := len(p.data) - p.pos
	if int64(n) > int64(remaining) {
		return remaining
	}
	return int(n)
}

func (p *parser) u32() (uint32, error) {
	b, err := p.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (p *parser) value() (Value, error) {
	tb, err := p.take(1)
	if err != nil {
		return Void(), err
	}
	switch tb[0] {
	case tagVoid:
		return Void(), nil
	case tagBool:
		b, err := p.take(1)
		if err != nil {
			return Void(), err
		}
		return BoolVal(b[0] != 0), nil
	case tagU32:
		v, err := p.u32()
		if err != nil {
			return Void(), err
		}
		return U32Val(v), nil
	case tagU64:
		b, err := p.take(8)
		if err != nil {
			return Void(), err
		}
		return U64Val(binary.BigEndian.Uint64(b)), nil
	case tagI128:
		b, err := p.take(16)
		if err != nil {
			return Void(), err
		}
		return I128Val(Int128{
			Hi: int64(binary.BigEndian.Uint64(b[:8])),
			Lo: binary.BigEndian.Uint64(b[8:]),
		}), nil
	case tagSymbol:
		s, err := p.text()
		if err != nil {
			return Void(), err
		}
		return SymbolVal(s), nil
	case tagString:
		s, err := p.text()
		if err != nil {
			return Void(), err
		}
		return StringVal(s), nil
	case tagAddress:
		b, err := p.take(1 + strkey.PayloadLen)
		if err != nil {
			return Void(), err
		}
		addr, err := strkey.Encode(strkey.Version(b[0]), b[1:])
		if err != nil {
			return Void(), fmt.Errorf("decode address: %w", err)
		}
		return AddressVal(addr), nil
	case tagVec:
		n, err := p.u32()
		if err != nil {
			return Void(), err
		}
		elems := make([]Value, 0, p.sizeHint(n))
		for i := uint32(0); i < n; i++ {
			el, err := p.value()
			if err != nil {
				return Void(), err
			}
			elems = append(elems, el)
		}
		return VecVal(elems...), nil
	case tagMap:
		n, err := p.u32()
		if err != nil {
			return Void(), err
		}
		ents := make([]MapEntry, 0, p.sizeHint(n))
		for i := uint32(0); i < n; i++ {
			k, err := p.value()
			if err != nil {
				return Void(), err
			}
			v, err := p.value()
			if err != nil {
				return Void(), err
			}
			ents = append(ents, MapEntry{Key: k, Val: v})
		}
		return MapVal(ents...), nil
	}
	return Void(), &UnrecognizedWireShapeError{Tag: tb[0]}
}

func (p *parser) text() (string, error) {
	n, err := p.u32()
	if err != nil {
		return "", err
	}
	b, err := p.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
