package wire

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInt128FromInt64(t *testing.T) {
	tests := []struct {
		name string
		in   int64
		hi   int64
		lo   uint64
	}{
		{"zero", 0, 0, 0},
		{"one", 1, 0, 1},
		{"minus one", -1, -1, 0xFFFFFFFFFFFFFFFF},
		{"max int64", 1<<63 - 1, 0, 1<<63 - 1},
		{"min int64", -1 << 63, -1, 1 << 63},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := Int128FromInt64(tt.in)
			assert.Equal(t, tt.hi, x.Hi)
			assert.Equal(t, tt.lo, x.Lo)

			back, ok := x.Int64()
			require.True(t, ok)
			assert.Equal(t, tt.in, back)
		})
	}
}

func TestInt128BigRoundTrip(t *testing.T) {
	cases := []string{
		"0",
		"1",
		"-1",
		"9223372036854775807",
		"-9223372036854775808",
		"18446744073709551616", // 2^64
		"98543210000000000000", // above 64 bits
		"-98543210000000000000",
		"170141183460469231731687303715884105727",  // 2^127-1
		"-170141183460469231731687303715884105728", // -2^127
	}
	for _, s := range cases {
		t.Run(s, func(t *testing.T) {
			b, ok := new(big.Int).SetString(s, 10)
			require.True(t, ok)

			x, err := Int128FromBig(b)
			require.NoError(t, err)
			assert.Equal(t, s, x.BigInt().String())
			assert.Equal(t, s, x.String())
		})
	}
}

func TestInt128FromBigOutOfRange(t *testing.T) {
	over, _ := new(big.Int).SetString("170141183460469231731687303715884105728", 10) // 2^127
	_, err := Int128FromBig(over)
	require.ErrorIs(t, err, ErrInt128Range)

	under := new(big.Int).Neg(new(big.Int).Add(over, big.NewInt(1)))
	_, err = Int128FromBig(under)
	require.ErrorIs(t, err, ErrInt128Range)
}

func TestInt128Cmp(t *testing.T) {
	a := Int128FromInt64(-5)
	b := Int128FromInt64(7)
	assert.Equal(t, -1, a.Cmp(b))
	assert.Equal(t, 1, b.Cmp(a))
	assert.Equal(t, 0, a.Cmp(Int128FromInt64(-5)))
	assert.True(t, a.IsNegative())
	assert.False(t, b.IsNegative())
}

func TestInt128Decimal(t *testing.T) {
	raw, err := Int128FromBig(big.NewInt(4_500_000))
	require.NoError(t, err)
	assert.True(t, raw.Decimal(7).Equal(decimal.RequireFromString("0.45")))

	d := decimal.RequireFromString("100.0")
	back, err := Int128FromDecimal(d, 7)
	require.NoError(t, err)
	assert.Equal(t, "1000000000", back.String())
}
