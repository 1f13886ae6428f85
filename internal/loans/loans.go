// Package loans holds the collateralized-loan domain model and the
// codec mapping it onto the liquidation-protection contract's method
// surface. Amounts and thresholds share the client fixed-point scale
// with orders; thresholds and health factors are basis points.
package loans

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/codec/wire"
)

// Scale is the client-side fixed-point convention for loan amounts,
// shared with the order contract.
const Scale = 7

// MinThresholdBps is the lowest liquidation threshold the contract
// accepts; anything at or below 100% is rejected on-chain.
const MinThresholdBps = 10_000

// ErrThresholdTooLow rejects a liquidation threshold of 100% or less
// before it reaches the network.
var ErrThresholdTooLow = errors.New("liquidation threshold must exceed 10000 basis points")

// Asset identifies one leg of a loan the way the liquidation contract
// tags it: a symbolic ticker or a natively-issued contract address.
type Asset struct {
	ticker   string
	contract string
}

// CryptoAsset builds an Asset for a symbolic ticker such as "BTC".
func CryptoAsset(symbol string) Asset { return Asset{ticker: symbol} }

// StellarAsset builds an Asset for a natively-issued token addressed by
// its contract.
func StellarAsset(address string) Asset { return Asset{contract: address} }

// IsContract reports whether the asset is addressed by contract.
func (a Asset) IsContract() bool { return a.contract != "" }

// String returns the ticker or the contract address.
func (a Asset) String() string {
	if a.IsContract() {
		return a.contract
	}
	return a.ticker
}

// WireArg encodes the asset as the contract's AssetType enum: a
// two-element vector, ["Crypto", Symbol] for tickers and
// ["Stellar", Address] for contract-addressed tokens.
func (a Asset) WireArg() wire.Value {
	if a.IsContract() {
		return wire.VecVal(wire.SymbolVal("Stellar"), wire.AddressVal(a.contract))
	}
	return wire.VecVal(wire.SymbolVal("Crypto"), wire.SymbolVal(a.ticker))
}

// Spec is a request to open one collateralized loan position.
type Spec struct {
	Owner            string
	CollateralAsset  Asset
	CollateralAmount wire.Int128
	BorrowedAsset    Asset
	BorrowedAmount   wire.Int128
	// ThresholdBps is the collateralization ratio below which the
	// position becomes liquidatable, in basis points (15000 = 150%).
	ThresholdBps int64
}

// Validate applies the contract's client-checkable bounds.
func (s Spec) Validate() error {
	if s.ThresholdBps <= MinThresholdBps {
		return fmt.Errorf("%w: got %d", ErrThresholdTooLow, s.ThresholdBps)
	}
	return nil
}

// EncodeCreate validates spec and produces the create_loan call.
func EncodeCreate(s Spec) (string, []wire.Value, error) {
	if err := s.Validate(); err != nil {
		return "", nil, err
	}
	return "create_loan", []wire.Value{
		wire.AddressVal(s.Owner),
		s.CollateralAsset.WireArg(),
		wire.I128Val(s.CollateralAmount),
		s.BorrowedAsset.WireArg(),
		wire.I128Val(s.BorrowedAmount),
		wire.I128ValFromInt64(s.ThresholdBps),
	}, nil
}

// DecodeLoanID parses the u64 loan id a create_loan call returns,
// accepting the boxed one-element form some revisions emit.
func DecodeLoanID(v wire.Value) (uint64, error) {
	if id, ok := v.AsU64(); ok {
		return id, nil
	}
	if elems, ok := v.AsVec(); ok && len(elems) == 1 {
		if id, ok := elems[0].AsU64(); ok {
			return id, nil
		}
	}
	return 0, fmt.Errorf("decode loan id: expected u64, got %s", v.Kind())
}

// ToRaw converts a human-scale decimal amount to the client raw
// integer, truncating digits below the scale.
func ToRaw(d decimal.Decimal) (wire.Int128, error) {
	return wire.Int128FromDecimal(d, Scale)
}

// FromRaw converts a raw client-scale integer back to a decimal.
func FromRaw(x wire.Int128) decimal.Decimal { return x.Decimal(Scale) }
