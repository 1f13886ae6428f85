// Package oracle resolves assets to on-chain price oracles and decodes
// the values those oracles return.
package oracle

import (
	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/codec/wire"
)

// AssetClass determines which oracle contract services an asset.
type AssetClass int

const (
	ClassCrypto AssetClass = iota
	ClassStablecoin
	ClassNativeChainAsset
	ClassForex
)

func (c AssetClass) String() string {
	switch c {
	case ClassCrypto:
		return "crypto"
	case ClassStablecoin:
		return "stablecoin"
	case ClassNativeChainAsset:
		return "native"
	case ClassForex:
		return "forex"
	}
	return "unknown"
}

// AssetID identifies a priceable asset: a symbolic ticker for
// off-chain-sourced assets, or a contract address for natively-issued
// ones. Compared by value.
type AssetID struct {
	ticker   string
	contract string
}

// Ticker builds an AssetID for a symbolic ticker such as "BTC".
func Ticker(symbol string) AssetID { return AssetID{ticker: symbol} }

// ContractAsset builds an AssetID for a natively-issued asset addressed
// by its contract.
func ContractAsset(address string) AssetID { return AssetID{contract: address} }

// IsContract reports whether the asset is addressed by contract.
func (a AssetID) IsContract() bool { return a.contract != "" }

// String returns the ticker or the contract address.
func (a AssetID) String() string {
	if a.IsContract() {
		return a.contract
	}
	return a.ticker
}

// WireArg encodes the asset the way oracle contracts expect it: a
// two-element vector tagging the flavor, ["Other", Symbol] for tickers
// and ["Stellar", Address] for contract-addressed assets.
func (a AssetID) WireArg() wire.Value {
	if a.IsContract() {
		return wire.VecVal(wire.SymbolVal("Stellar"), wire.AddressVal(a.contract))
	}
	return wire.VecVal(wire.SymbolVal("Other"), wire.SymbolVal(a.ticker))
}
