package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/codec/wire"
	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/oracle"
)

func priceReturn(raw int64) wire.Value {
	return wire.MapVal(
		wire.MapEntry{Key: wire.SymbolVal("price"), Val: wire.I128ValFromInt64(raw)},
		wire.MapEntry{Key: wire.SymbolVal("timestamp"), Val: wire.U64Val(1700000000)},
	)
}

func TestSpotPrice(t *testing.T) {
	env := testEnv()

	t.Run("decoded and cached", func(t *testing.T) {
		tx := &fakeInvoker{simReturns: map[string]wire.Value{
			env.Oracles.External + "/lastprice": priceReturn(45_000_000_000_000),
		}}
		svc := newTestService(tx, oracle.NewCache(8, 0))
		asset := oracle.Ticker("XLM")

		sample, ok, err := svc.SpotPrice(context.Background(), asset, oracle.ClassCrypto)
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, sample.Price.Equal(decimal.RequireFromString("0.45")))
		assert.Equal(t, oracle.External, sample.SourceOracle)
		require.True(t, sample.HasObserved)
		assert.Equal(t, 1, tx.simCalls)

		// Second read within the TTL is served from the cache.
		_, ok, err = svc.SpotPrice(context.Background(), asset, oracle.ClassCrypto)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 1, tx.simCalls)
	})

	t.Run("stablecoin reads the external oracle", func(t *testing.T) {
		tx := &fakeInvoker{simReturns: map[string]wire.Value{
			env.Oracles.External + "/lastprice": priceReturn(100_000_000_000_000),
		}}
		svc := newTestService(tx, nil)

		sample, ok, err := svc.SpotPrice(context.Background(), oracle.Ticker("USDC"), oracle.ClassStablecoin)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, oracle.External, sample.SourceOracle)
	})

	t.Run("no oracle data", func(t *testing.T) {
		tx := &fakeInvoker{}
		svc := newTestService(tx, nil)

		_, ok, err := svc.SpotPrice(context.Background(), oracle.Ticker("NOPE"), oracle.ClassCrypto)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unrecognized wire shape is no data", func(t *testing.T) {
		tx := &fakeInvoker{simErr: &wire.UnrecognizedWireShapeError{Tag: 0x7F}}
		svc := newTestService(tx, nil)

		_, ok, err := svc.SpotPrice(context.Background(), oracle.Ticker("XLM"), oracle.ClassCrypto)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("transport error surfaces", func(t *testing.T) {
		tx := &fakeInvoker{simErr: errors.New("connection refused")}
		svc := newTestService(tx, nil)

		_, _, err := svc.SpotPrice(context.Background(), oracle.Ticker("XLM"), oracle.ClassCrypto)
		require.Error(t, err)
	})
}

func TestTWAP(t *testing.T) {
	env := testEnv()
	tx := &fakeInvoker{simReturns: map[string]wire.Value{
		env.Oracles.External + "/twap": wire.I128ValFromInt64(46_000_000_000_000),
	}}
	svc := newTestService(tx, nil)

	p, ok, err := svc.TWAP(context.Background(), oracle.Ticker("XLM"), oracle.ClassCrypto, 5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, p.Equal(decimal.RequireFromString("0.46")))
}

func TestCrossPrices(t *testing.T) {
	env := testEnv()
	tx := &fakeInvoker{simReturns: map[string]wire.Value{
		env.Oracles.External + "/x_last_price": priceReturn(2_500_000_000_000_000),
		env.Oracles.External + "/x_twap":       wire.I128ValFromInt64(2_600_000_000_000_000),
	}}
	svc := newTestService(tx, nil)

	sample, ok, err := svc.CrossPrice(context.Background(), oracle.Ticker("BTC"), oracle.Ticker("ETH"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, sample.Price.Equal(decimal.RequireFromString("25")))

	p, ok, err := svc.CrossTWAP(context.Background(), oracle.Ticker("BTC"), oracle.Ticker("ETH"), 5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, p.Equal(decimal.RequireFromString("26")))
}

func TestVolatility(t *testing.T) {
	tx := &fakeInvoker{simReturns: map[string]wire.Value{
		"CORDERCONTRACT/get_price_volatility": wire.I128ValFromInt64(5_000_000_000_000),
	}}
	svc := newTestService(tx, nil)

	v, err := svc.Volatility(context.Background(), "XLM", 10)
	require.NoError(t, err)
	assert.True(t, v.Equal(decimal.RequireFromString("0.05")))
}

func TestBatchSpotPrices(t *testing.T) {
	env := testEnv()
	tx := &fakeInvoker{simReturns: map[string]wire.Value{
		env.Oracles.External + "/lastprice": priceReturn(45_000_000_000_000),
	}}
	svc := newTestService(tx, nil)

	out, err := svc.BatchSpotPrices(context.Background(), []PriceRequest{
		{Asset: oracle.Ticker("XLM"), Class: oracle.ClassCrypto},
		{Asset: oracle.Ticker("BTC"), Class: oracle.ClassCrypto},
		// The native oracle has no data; the asset is simply absent.
		{Asset: oracle.Ticker("XLM"), Class: oracle.ClassNativeChainAsset},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Contains(t, out, "XLM")
	assert.Contains(t, out, "BTC")
}

func TestArbitrageGapBps(t *testing.T) {
	env := testEnv()

	t.Run("gap computed against the external price", func(t *testing.T) {
		// External 0.50, native 0.45: a 1000 bps gap.
		tx := &fakeInvoker{simReturns: map[string]wire.Value{
			env.Oracles.External + "/lastprice":    wire.I128ValFromInt64(50_000_000_000_000),
			env.Oracles.NativeChain + "/lastprice": wire.I128ValFromInt64(45_000_000_000_000),
		}}
		svc := newTestService(tx, nil)

		gap, ok, err := svc.ArbitrageGapBps(context.Background(), "XLM")
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, gap.Equal(decimal.RequireFromString("1000")), "got %s", gap)
	})

	t.Run("missing leg", func(t *testing.T) {
		tx := &fakeInvoker{simReturns: map[string]wire.Value{
			env.Oracles.External + "/lastprice": wire.I128ValFromInt64(50_000_000_000_000),
		}}
		svc := newTestService(tx, nil)

		_, ok, err := svc.ArbitrageGapBps(context.Background(), "XLM")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestPegDeviationBps(t *testing.T) {
	env := testEnv()
	// USD at 1.00 on forex, USDC at 0.998 on the external oracle:
	// a -20 bps deviation.
	tx := &fakeInvoker{simReturns: map[string]wire.Value{
		env.Oracles.Forex + "/lastprice":    wire.I128ValFromInt64(100_000_000_000_000),
		env.Oracles.External + "/lastprice": wire.I128ValFromInt64(99_800_000_000_000),
	}}
	svc := newTestService(tx, nil)

	dev, ok, err := svc.PegDeviationBps(context.Background(), "USDC")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, dev.Equal(decimal.RequireFromString("-20")), "got %s", dev)
}
