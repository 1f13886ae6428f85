package oracle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/codec/strkey"
	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/codec/wire"
)

var testTable = Table{
	External:    "CEXTERNAL",
	NativeChain: "CNATIVE",
	Forex:       "CFOREX",
}

func TestStaticRouterResolve(t *testing.T) {
	r := NewRouter(testTable)

	tests := []struct {
		name     string
		class    AssetClass
		wantKind Kind
		wantAddr string
	}{
		{"crypto", ClassCrypto, External, "CEXTERNAL"},
		{"stablecoin", ClassStablecoin, External, "CEXTERNAL"},
		{"native", ClassNativeChainAsset, NativeChain, "CNATIVE"},
		{"forex", ClassForex, Forex, "CFOREX"},
		{"unknown class", AssetClass(99), External, "CEXTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, addr := r.Resolve(context.Background(), Ticker("BTC"), tt.class)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantAddr, addr)
		})
	}
}

type stubSimCaller struct {
	ret    wire.Value
	err    error
	calls  int
	method string
	args   []wire.Value
}

func (s *stubSimCaller) SimulateCall(_ context.Context, _, method string, args []wire.Value) (wire.Value, error) {
	s.calls++
	s.method = method
	s.args = args
	return s.ret, s.err
}

func TestLiveRouterResolve(t *testing.T) {
	static := NewRouter(testTable)

	t.Run("contract answer wins", func(t *testing.T) {
		addr, err := contractAddr()
		require.NoError(t, err)
		call := &stubSimCaller{ret: wire.AddressVal(addr)}
		lr := NewLiveRouter(static, "CROUTER", call, zap.NewNop())

		kind, got := lr.Resolve(context.Background(), Ticker("BTC"), ClassCrypto)
		assert.Equal(t, External, kind)
		assert.Equal(t, addr, got)
		assert.Equal(t, "get_oracle_for_asset", call.method)
		require.Len(t, call.args, 1)
	})

	t.Run("call failure falls back", func(t *testing.T) {
		call := &stubSimCaller{err: errors.New("rpc down")}
		lr := NewLiveRouter(static, "CROUTER", call, zap.NewNop())

		kind, got := lr.Resolve(context.Background(), Ticker("EUR"), ClassForex)
		assert.Equal(t, Forex, kind)
		assert.Equal(t, "CFOREX", got)
	})

	t.Run("non-address answer falls back", func(t *testing.T) {
		call := &stubSimCaller{ret: wire.Void()}
		lr := NewLiveRouter(static, "CROUTER", call, zap.NewNop())

		_, got := lr.Resolve(context.Background(), Ticker("BTC"), ClassCrypto)
		assert.Equal(t, "CEXTERNAL", got)
	})
}

func contractAddr() (string, error) {
	return strkey.Encode(strkey.VersionContract, make([]byte, strkey.PayloadLen))
}

func TestAssetWireArg(t *testing.T) {
	v := Ticker("BTC").WireArg()
	elems, ok := v.AsVec()
	require.True(t, ok)
	require.Len(t, elems, 2)
	tag, _ := elems[0].AsSymbol()
	assert.Equal(t, "Other", tag)
	sym, _ := elems[1].AsSymbol()
	assert.Equal(t, "BTC", sym)

	addr, err := contractAddr()
	require.NoError(t, err)
	v = ContractAsset(addr).WireArg()
	elems, ok = v.AsVec()
	require.True(t, ok)
	require.Len(t, elems, 2)
	tag, _ = elems[0].AsSymbol()
	assert.Equal(t, "Stellar", tag)
	got, ok := elems[1].AsAddress()
	require.True(t, ok)
	assert.Equal(t, addr, got)
}

func TestCache(t *testing.T) {
	c := NewCache(8, time.Minute)
	asset := Ticker("XLM")

	_, ok := c.Get(asset, External)
	assert.False(t, ok)

	sample := PriceSample{
		Asset:        asset,
		Price:        decimal.RequireFromString("0.45"),
		ObservedAt:   1700000000,
		HasObserved:  true,
		SourceOracle: External,
	}
	c.Put(sample)

	got, ok := c.Get(asset, External)
	require.True(t, ok)
	assert.True(t, got.Price.Equal(sample.Price))

	when, ok := got.ObservedTime()
	require.True(t, ok)
	assert.Equal(t, int64(1700000000), when.Unix())

	// Same asset under a different oracle is a distinct entry.
	_, ok = c.Get(asset, NativeChain)
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(8, 10*time.Millisecond)
	asset := Ticker("BTC")
	c.Put(PriceSample{Asset: asset, Price: decimal.New(1, 0), SourceOracle: External})

	_, ok := c.Get(asset, External)
	require.True(t, ok)

	time.Sleep(30 * time.Millisecond)
	_, ok = c.Get(asset, External)
	assert.False(t, ok)
}
