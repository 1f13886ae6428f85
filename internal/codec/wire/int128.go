package wire

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
)

// Int128 is an exact signed 128-bit integer, stored as the signed high
// word and unsigned low word the wire format uses. The represented value
// is Hi*2^64 + Lo. Arithmetic that could require rounding goes through
// math/big; no float ever touches the payload.
type Int128 struct {
	Hi int64
	Lo uint64
}

// ErrInt128Range is returned when a big integer does not fit in 128
// signed bits.
var ErrInt128Range = errors.New("value out of signed 128-bit range")

var (
	int128Shift = new(big.Int).Lsh(big.NewInt(1), 64)
	int128Mod   = new(big.Int).Lsh(big.NewInt(1), 128)
	int128Max   = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	int128Min   = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	loMask      = new(big.Int).Sub(int128Shift, big.NewInt(1))
)

// Int128FromInt64 sign-extends v to 128 bits.
func Int128FromInt64(v int64) Int128 {
	hi := int64(0)
	if v < 0 {
		hi = -1
	}
	return Int128{Hi: hi, Lo: uint64(v)}
}

// Int128FromBig converts b, failing when it does not fit.
func Int128FromBig(b *big.Int) (Int128, error) {
	if b.Cmp(int128Max) > 0 || b.Cmp(int128Min) < 0 {
		return Int128{}, ErrInt128Range
	}
	// Two's-complement view: reduce modulo 2^128, then split words.
	m := new(big.Int).Mod(b, int128Mod)
	lo := new(big.Int).And(m, loMask).Uint64()
	hi := new(big.Int).Rsh(m, 64).Uint64()
	return Int128{Hi: int64(hi), Lo: lo}, nil
}

// BigInt returns the exact value as a big integer.
func (x Int128) BigInt() *big.Int {
	v := big.NewInt(x.Hi)
	v.Mul(v, int128Shift)
	return v.Add(v, new(big.Int).SetUint64(x.Lo))
}

// Int64 returns the value as an int64 when it fits.
func (x Int128) Int64() (int64, bool) {
	switch x.Hi {
	case 0:
		if x.Lo <= 1<<63-1 {
			return int64(x.Lo), true
		}
	case -1:
		if x.Lo >= 1<<63 {
			return int64(x.Lo), true
		}
	}
	return 0, false
}

// IsNegative reports whether the value is below zero.
func (x Int128) IsNegative() bool { return x.Hi < 0 }

// IsZero reports whether the value is exactly zero.
func (x Int128) IsZero() bool { return x.Hi == 0 && x.Lo == 0 }

// Cmp compares x and y, returning -1, 0 or 1.
func (x Int128) Cmp(y Int128) int {
	if x.Hi != y.Hi {
		if x.Hi < y.Hi {
			return -1
		}
		return 1
	}
	if x.Lo != y.Lo {
		if x.Lo < y.Lo {
			return -1
		}
		return 1
	}
	return 0
}

// String returns the decimal representation.
func (x Int128) String() string { return x.BigInt().String() }

// Decimal interprets the raw integer at the given fixed-point scale,
// e.g. scale 7 turns 4_500_000 into 0.45.
func (x Int128) Decimal(scale int32) decimal.Decimal {
	return decimal.NewFromBigInt(x.BigInt(), -scale)
}

// Int128FromDecimal converts d at the given fixed-point scale to a raw
// integer, truncating sub-scale digits. Scale 7 turns 100.0 into
// 1_000_000_000.
func Int128FromDecimal(d decimal.Decimal, scale int32) (Int128, error) {
	raw := d.Shift(scale).Truncate(0)
	return Int128FromBig(raw.BigInt())
}
