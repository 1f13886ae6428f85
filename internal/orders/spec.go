package orders

import (
	"errors"
	"fmt"

	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/codec/wire"
)

// Spec is a request to create one protective order. Each variant maps to
// exactly one contract method with a fixed, ordered parameter list.
type Spec interface {
	// Validate applies the contract's client-checkable bounds so an
	// obviously-rejectable order never reaches the network.
	Validate() error

	method() string
	params() []wire.Value
}

var (
	ErrAmountTooSmall  = errors.New("order amount below contract minimum")
	ErrTrailingPercent = errors.New("trailing percent must be within 1..50")
	ErrTWAPPeriods     = errors.New("twap periods must be within 3..20")
)

func validateAmount(amount wire.Int128) error {
	if amount.Cmp(wire.Int128FromInt64(MinAmountRaw)) < 0 {
		return fmt.Errorf("%w: %s < %d", ErrAmountTooSmall, amount, int64(MinAmountRaw))
	}
	return nil
}

// StopLoss sells when the asset price falls to the stop level.
type StopLoss struct {
	Owner     string
	Asset     string
	Amount    wire.Int128
	StopPrice wire.Int128
}

func (s StopLoss) Validate() error { return validateAmount(s.Amount) }
func (s StopLoss) method() string  { return "create_stop_loss" }
func (s StopLoss) params() []wire.Value {
	return []wire.Value{
		wire.AddressVal(s.Owner),
		wire.SymbolVal(s.Asset),
		wire.I128Val(s.Amount),
		wire.I128Val(s.StopPrice),
	}
}

// TrailingStop follows the high-water price down by a fixed percentage.
type TrailingStop struct {
	Owner        string
	Asset        string
	Amount       wire.Int128
	TrailPercent uint32
}

func (s TrailingStop) Validate() error {
	if err := validateAmount(s.Amount); err != nil {
		return err
	}
	if s.TrailPercent == 0 || s.TrailPercent > 50 {
		return fmt.Errorf("%w: got %d", ErrTrailingPercent, s.TrailPercent)
	}
	return nil
}
func (s TrailingStop) method() string { return "create_trailing_stop" }
func (s TrailingStop) params() []wire.Value {
	return []wire.Value{
		wire.AddressVal(s.Owner),
		wire.SymbolVal(s.Asset),
		wire.I128Val(s.Amount),
		wire.U32Val(s.TrailPercent),
	}
}

// OCO pairs a stop with a take-profit; triggering either cancels the
// other.
type OCO struct {
	Owner           string
	Asset           string
	Amount          wire.Int128
	StopPrice       wire.Int128
	TakeProfitPrice wire.Int128
}

func (s OCO) Validate() error { return validateAmount(s.Amount) }
func (s OCO) method() string  { return "create_oco_order" }
func (s OCO) params() []wire.Value {
	return []wire.Value{
		wire.AddressVal(s.Owner),
		wire.SymbolVal(s.Asset),
		wire.I128Val(s.Amount),
		wire.I128Val(s.StopPrice),
		wire.I128Val(s.TakeProfitPrice),
	}
}

// TWAPStop anchors the stop to a time-weighted average price instead of
// the spot price: the contract derives the stop level from the TWAP over
// the given number of periods, offset down by StopPercent.
type TWAPStop struct {
	Owner       string
	Asset       string
	Amount      wire.Int128
	Periods     uint32
	StopPercent uint32
}

func (s TWAPStop) Validate() error {
	if err := validateAmount(s.Amount); err != nil {
		return err
	}
	if s.Periods < 3 || s.Periods > 20 {
		return fmt.Errorf("%w: got %d", ErrTWAPPeriods, s.Periods)
	}
	return nil
}
func (s TWAPStop) method() string { return "create_twap_stop" }
func (s TWAPStop) params() []wire.Value {
	return []wire.Value{
		wire.AddressVal(s.Owner),
		wire.SymbolVal(s.Asset),
		wire.I128Val(s.Amount),
		wire.U32Val(s.Periods),
		wire.U32Val(s.StopPercent),
	}
}

// CrossAssetStop protects a position in one asset against a price move
// in another: the position asset is sold when the trigger asset reaches
// the trigger price.
type CrossAssetStop struct {
	Owner        string
	BaseAsset    string // the position being protected
	QuoteAsset   string // the asset whose price triggers
	Amount       wire.Int128
	TriggerPrice wire.Int128
}

func (s CrossAssetStop) Validate() error { return validateAmount(s.Amount) }
func (s CrossAssetStop) method() string  { return "create_cross_asset_stop" }
func (s CrossAssetStop) params() []wire.Value {
	return []wire.Value{
		wire.AddressVal(s.Owner),
		wire.SymbolVal(s.BaseAsset),
		wire.SymbolVal(s.QuoteAsset),
		wire.I128Val(s.Amount),
		wire.I128Val(s.TriggerPrice),
	}
}
