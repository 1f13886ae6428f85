// Package orders holds the protective-order domain model and the codec
// mapping it onto the order contract's method surface.
package orders

import (
	"github.com/shopspring/decimal"

	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/codec/wire"
)

// Scale is the client-side fixed-point convention: order amounts and
// price levels carry 7 implied decimal places. Distinct from the
// oracle's 14-digit scale; the two must never be conflated.
const Scale = 7

// MinAmountRaw is the smallest order the contract accepts, 0.1 token at
// the client scale.
const MinAmountRaw = 1_000_000

// Status is the contract-side lifecycle state of an order. The contract
// is the sole source of truth; the client never transitions a status
// locally, it only re-reads it.
type Status int

const (
	StatusActive Status = iota
	StatusExecuted
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusExecuted:
		return "executed"
	case StatusCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Type classifies an order record read back from the contract.
type Type int

const (
	TypeStopLoss Type = iota
	TypeTrailingStop
	TypeOCO
)

func (t Type) String() string {
	switch t {
	case TypeStopLoss:
		return "stop-loss"
	case TypeTrailingStop:
		return "trailing-stop"
	case TypeOCO:
		return "oco"
	}
	return "unknown"
}

// Order is a read-only snapshot of one contract-side order record. It
// may be stale the moment it is returned.
type Order struct {
	ID              uint64
	Owner           string
	Asset           string
	Amount          wire.Int128
	StopPrice       wire.Int128
	TrailingPercent uint32
	HasTrailing     bool
	HighestPrice    wire.Int128
	TakeProfitPrice wire.Int128
	HasTakeProfit   bool
	CreatedAt       uint64
	Status          Status
}

// Type infers the order flavor from which optional fields are present.
// The contract stores every flavor in one record shape without an
// explicit tag, so presence mirrors its storage layout: a trailing
// percent only ever exists on trailing stops, a take-profit level only
// on OCO pairs.
func (o Order) Type() Type {
	if o.HasTrailing {
		return TypeTrailingStop
	}
	if o.HasTakeProfit {
		return TypeOCO
	}
	return TypeStopLoss
}

// AmountDecimal returns the order size at the client scale.
func (o Order) AmountDecimal() decimal.Decimal { return o.Amount.Decimal(Scale) }

// StopPriceDecimal returns the stop level at the client scale.
func (o Order) StopPriceDecimal() decimal.Decimal { return o.StopPrice.Decimal(Scale) }

// ToRaw converts a human-scale decimal to the client fixed-point raw
// integer, truncating digits below the scale.
func ToRaw(d decimal.Decimal) (wire.Int128, error) {
	return wire.Int128FromDecimal(d, Scale)
}

// FromRaw converts a raw client-scale integer back to a decimal.
func FromRaw(x wire.Int128) decimal.Decimal { return x.Decimal(Scale) }
