package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/codec/wire"
	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/oracle"
)

// SpotPrice reads the latest oracle observation for an asset. ok false
// means the oracle holds no data for the asset, which is a normal
// outcome, not an error; only transport and simulation problems error.
func (s *Service) SpotPrice(ctx context.Context, asset oracle.AssetID, class oracle.AssetClass) (oracle.PriceSample, bool, error) {
	kind, addr := s.router.Resolve(ctx, asset, class)
	if s.cache != nil {
		if sample, hit := s.cache.Get(asset, kind); hit {
			return sample, true, nil
		}
	}
	ret, err := s.tx.SimulateCall(ctx, addr, "lastprice", []wire.Value{asset.WireArg()})
	if err != nil {
		if wire.IsUnrecognizedShape(err) {
			// An unrecognized wire shape from an oracle is absence of
			// data, not a protocol violation.
			return oracle.PriceSample{}, false, nil
		}
		return oracle.PriceSample{}, false, err
	}
	quote, ok := oracle.DecodePrice(ret)
	if !ok {
		return oracle.PriceSample{}, false, nil
	}
	sample := oracle.PriceSample{
		Asset:        asset,
		Price:        quote.Price,
		ObservedAt:   quote.Timestamp,
		HasObserved:  quote.HasTimestamp,
		SourceOracle: kind,
	}
	if s.cache != nil {
		s.cache.Put(sample)
	}
	return sample, true, nil
}

// TWAP reads the time-weighted average price over the given number of
// observation periods.
func (s *Service) TWAP(ctx context.Context, asset oracle.AssetID, class oracle.AssetClass, periods uint32) (decimal.Decimal, bool, error) {
	_, addr := s.router.Resolve(ctx, asset, class)
	ret, err := s.tx.SimulateCall(ctx, addr, "twap",
		[]wire.Value{asset.WireArg(), wire.U32Val(periods)})
	if err != nil {
		if wire.IsUnrecognizedShape(err) {
			return decimal.Decimal{}, false, nil
		}
		return decimal.Decimal{}, false, err
	}
	p, ok := oracle.DecodeScalar(ret)
	return p, ok, nil
}

// CrossPrice reads the base/quote price ratio from the external oracle.
func (s *Service) CrossPrice(ctx context.Context, base, quote oracle.AssetID) (oracle.PriceSample, bool, error) {
	addr := s.oracleAddress(ctx, base, quote)
	ret, err := s.tx.SimulateCall(ctx, addr, "x_last_price",
		[]wire.Value{base.WireArg(), quote.WireArg()})
	if err != nil {
		if wire.IsUnrecognizedShape(err) {
			return oracle.PriceSample{}, false, nil
		}
		return oracle.PriceSample{}, false, err
	}
	q, ok := oracle.DecodePrice(ret)
	if !ok {
		return oracle.PriceSample{}, false, nil
	}
	return oracle.PriceSample{
		Asset:        base,
		Price:        q.Price,
		ObservedAt:   q.Timestamp,
		HasObserved:  q.HasTimestamp,
		SourceOracle: oracle.External,
	}, true, nil
}

// CrossTWAP reads the time-weighted base/quote ratio.
func (s *Service) CrossTWAP(ctx context.Context, base, quote oracle.AssetID, periods uint32) (decimal.Decimal, bool, error) {
	addr := s.oracleAddress(ctx, base, quote)
	ret, err := s.tx.SimulateCall(ctx, addr, "x_twap",
		[]wire.Value{base.WireArg(), quote.WireArg(), wire.U32Val(periods)})
	if err != nil {
		if wire.IsUnrecognizedShape(err) {
			return decimal.Decimal{}, false, nil
		}
		return decimal.Decimal{}, false, err
	}
	p, ok := oracle.DecodeScalar(ret)
	return p, ok, nil
}

// oracleAddress picks the oracle for a pair: the native-chain oracle
// when both legs are contract-addressed, the external oracle otherwise.
func (s *Service) oracleAddress(ctx context.Context, base, quote oracle.AssetID) string {
	if base.IsContract() && quote.IsContract() {
		_, addr := s.router.Resolve(ctx, base, oracle.ClassNativeChainAsset)
		return addr
	}
	_, addr := s.router.Resolve(ctx, base, oracle.ClassCrypto)
	return addr
}

// Volatility reads the contract-computed price variance over the given
// periods, at the oracle scale.
func (s *Service) Volatility(ctx context.Context, asset string, periods uint32) (decimal.Decimal, error) {
	ret, err := s.tx.SimulateCall(ctx, s.env.OrderContract, "get_price_volatility",
		[]wire.Value{wire.SymbolVal(asset), wire.U32Val(periods)})
	if err != nil {
		return decimal.Decimal{}, err
	}
	if raw, ok := ret.AsI128(); ok {
		return raw.Decimal(oracle.PriceScale), nil
	}
	return decimal.Decimal{}, nil
}

// PriceRequest names one asset for a batch read.
type PriceRequest struct {
	Asset oracle.AssetID
	Class oracle.AssetClass
}

// BatchSpotPrices reads several assets concurrently. Each read is an
// independent lifecycle; assets with no oracle data are simply absent
// from the result.
func (s *Service) BatchSpotPrices(ctx context.Context, reqs []PriceRequest) (map[string]oracle.PriceSample, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	results := make([]oracle.PriceSample, len(reqs))
	found := make([]bool, len(reqs))
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			sample, ok, err := s.SpotPrice(gctx, req.Asset, req.Class)
			if err != nil {
				return fmt.Errorf("price of %s: %w", req.Asset, err)
			}
			results[i], found[i] = sample, ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[string]oracle.PriceSample, len(reqs))
	for i := range reqs {
		if found[i] {
			out[reqs[i].Asset.String()] = results[i]
		}
	}
	return out, nil
}

// ArbitrageGapBps compares the external and native-chain oracles for
// the same ticker and returns the gap in basis points relative to the
// external price. ok false when either oracle lacks data.
func (s *Service) ArbitrageGapBps(ctx context.Context, ticker string) (decimal.Decimal, bool, error) {
	asset := oracle.Ticker(ticker)
	ext, okExt, err := s.SpotPrice(ctx, asset, oracle.ClassCrypto)
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	nat, okNat, err := s.SpotPrice(ctx, asset, oracle.ClassNativeChainAsset)
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	if !okExt || !okNat || ext.Price.IsZero() {
		return decimal.Decimal{}, false, nil
	}
	gap := ext.Price.Sub(nat.Price).Mul(decimal.New(10000, 0)).Div(ext.Price)
	return gap, true, nil
}

// PegDeviationBps measures a stablecoin's deviation from the USD peg in
// basis points, using the forex oracle for USD and the external oracle
// for the stablecoin.
func (s *Service) PegDeviationBps(ctx context.Context, stablecoin string) (decimal.Decimal, bool, error) {
	usd, okUSD, err := s.SpotPrice(ctx, oracle.Ticker("USD"), oracle.ClassForex)
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	coin, okCoin, err := s.SpotPrice(ctx, oracle.Ticker(stablecoin), oracle.ClassStablecoin)
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	if !okUSD || !okCoin || usd.Price.IsZero() {
		return decimal.Decimal{}, false, nil
	}
	dev := coin.Price.Sub(usd.Price).Mul(decimal.New(10000, 0)).Div(usd.Price)
	return dev, true, nil
}
