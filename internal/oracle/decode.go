package oracle

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/codec/wire"
)

// Quote is a decoded price before it is attributed to an asset and
// oracle.
type Quote struct {
	Price        decimal.Decimal
	Timestamp    uint64
	HasTimestamp bool
}

// Oracle services have shipped several incompatible representations of
// the same logical price across revisions: a map with a "price" key, a
// bare 128-bit integer, either of those wrapped in a one-element vector,
// and a numeric literal. DecodePrice tries each shape in priority order
// and returns the first plausible decode. An unrecognized or empty shape
// is absence of data, not an error; callers treat false as "oracle holds
// no data for this asset".
func DecodePrice(v wire.Value) (Quote, bool) {
	if q, ok := decodeMapShape(v); ok {
		return q, true
	}
	if q, ok := decodeBareInt(v); ok {
		return q, true
	}
	if q, ok := decodeWrapped(v); ok {
		return q, true
	}
	return decodeLiteral(v)
}

// saneBound rejects clearly-corrupt decodes, e.g. a misread 128-bit
// value: a plausible price is strictly positive and below 10^9.
var saneUpper = decimal.New(1, 9)

func sane(p decimal.Decimal) bool {
	return p.IsPositive() && p.LessThan(saneUpper)
}

func scaled(raw wire.Int128) (decimal.Decimal, bool) {
	p := raw.Decimal(PriceScale)
	if !sane(p) {
		return decimal.Decimal{}, false
	}
	return p, true
}

// Strategy 1: map carrying a "price" entry, optionally a "timestamp".
func decodeMapShape(v wire.Value) (Quote, bool) {
	entry, ok := v.MapGet("price")
	if !ok {
		return Quote{}, false
	}
	raw, ok := entry.AsI128()
	if !ok {
		return Quote{}, false
	}
	p, ok := scaled(raw)
	if !ok {
		return Quote{}, false
	}
	q := Quote{Price: p}
	if tsVal, ok := v.MapGet("timestamp"); ok {
		if ts, ok := tsVal.AsU64(); ok {
			q.Timestamp = ts
			q.HasTimestamp = true
		}
	}
	return q, true
}

// Strategy 2: the value is the raw 128-bit price itself.
func decodeBareInt(v wire.Value) (Quote, bool) {
	raw, ok := v.AsI128()
	if !ok {
		return Quote{}, false
	}
	p, ok := scaled(raw)
	if !ok {
		return Quote{}, false
	}
	return Quote{Price: p}, true
}

// Strategy 3: some contract revisions box the return value in a
// one-element vector; retry strategies 1-2 on the first element.
func decodeWrapped(v wire.Value) (Quote, bool) {
	elems, ok := v.AsVec()
	if !ok || len(elems) == 0 {
		return Quote{}, false
	}
	if q, ok := decodeMapShape(elems[0]); ok {
		return q, true
	}
	return decodeBareInt(elems[0])
}

// Strategy 4: a numeric literal at oracle scale, as a string of digits
// or an unsigned integer.
func decodeLiteral(v wire.Value) (Quote, bool) {
	if s, ok := v.AsString(); ok {
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return Quote{}, false
		}
		raw, err := wire.Int128FromBig(n)
		if err != nil {
			return Quote{}, false
		}
		p, ok := scaled(raw)
		if !ok {
			return Quote{}, false
		}
		return Quote{Price: p}, true
	}
	var raw wire.Int128
	if u, ok := v.AsU64(); ok {
		raw = wire.Int128{Lo: u}
	} else if u32, ok := v.AsU32(); ok {
		raw = wire.Int128{Lo: uint64(u32)}
	} else {
		return Quote{}, false
	}
	p, ok := scaled(raw)
	if !ok {
		return Quote{}, false
	}
	return Quote{Price: p}, true
}

// DecodeScalar interprets an oracle return that is a plain i128 at
// oracle scale (twap, x_twap, volatility) without the sanity bound's
// shape fallbacks. False means no data.
func DecodeScalar(v wire.Value) (decimal.Decimal, bool) {
	if v.IsVoid() {
		return decimal.Decimal{}, false
	}
	if raw, ok := v.AsI128(); ok {
		return raw.Decimal(PriceScale), true
	}
	if elems, ok := v.AsVec(); ok && len(elems) == 1 {
		if raw, ok := elems[0].AsI128(); ok {
			return raw.Decimal(PriceScale), true
		}
	}
	return decimal.Decimal{}, false
}
