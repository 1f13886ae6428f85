package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/codec/wire"
	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/loans"
	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/txflow"
)

// ErrNoLoanContract is returned when a loan operation runs against an
// environment that has no liquidation contract configured.
var ErrNoLoanContract = errors.New("no loan contract configured for this environment")

func (s *Service) loanContract() (string, error) {
	if s.env.LoanContract == "" {
		return "", ErrNoLoanContract
	}
	return s.env.LoanContract, nil
}

// CreateLoan opens a collateralized loan position and waits for its
// fate within the polling budget. The result follows the same
// confirmed/unconfirmed contract as order creation.
func (s *Service) CreateLoan(ctx context.Context, spec loans.Spec) (CreateResult, error) {
	contract, err := s.loanContract()
	if err != nil {
		return CreateResult{}, err
	}
	method, params, err := loans.EncodeCreate(spec)
	if err != nil {
		return CreateResult{}, err
	}
	call := txflow.ContractCall{Contract: contract, Method: method, Args: params}
	res, err := s.tx.Invoke(ctx, call, txflow.WithFallbackOrderID())
	if err != nil {
		return CreateResult{}, err
	}
	if res.Outcome != txflow.OutcomeConfirmed {
		return CreateResult{Hash: res.Hash}, nil
	}
	out := CreateResult{Confirmed: true, Hash: res.Hash}
	if res.HasReturn {
		if id, derr := loans.DecodeLoanID(res.Return); derr == nil {
			out.OrderID = id
			return out, nil
		}
	}
	out.OrderID = res.FallbackID
	out.FallbackID = true
	return out, nil
}

// CheckLiquidation asks the contract whether a position has fallen
// below its liquidation threshold. Simulate-only; no fee is spent.
func (s *Service) CheckLiquidation(ctx context.Context, loanID uint64) (bool, error) {
	contract, err := s.loanContract()
	if err != nil {
		return false, err
	}
	ret, err := s.tx.SimulateCall(ctx, contract, "check_liquidation",
		[]wire.Value{wire.U64Val(loanID)})
	if err != nil {
		return false, err
	}
	b, _ := ret.AsBool()
	return b, nil
}

// HealthFactorTWAP reads the position's health factor computed over a
// TWAP window. The value is basis-point scaled: 10000 means exactly at
// the liquidation threshold, below it the position is liquidatable.
// ok false means the contract returned no usable factor (inactive loan
// or missing oracle data).
func (s *Service) HealthFactorTWAP(ctx context.Context, loanID uint64, periods uint32) (decimal.Decimal, bool, error) {
	contract, err := s.loanContract()
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	ret, err := s.tx.SimulateCall(ctx, contract, "get_health_factor_twap",
		[]wire.Value{wire.U64Val(loanID), wire.U32Val(periods)})
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	raw, ok := ret.AsI128()
	if !ok || raw.IsZero() {
		return decimal.Decimal{}, false, nil
	}
	return raw.Decimal(4), true, nil
}

// LiquidatePosition liquidates an undercollateralized position on
// behalf of the signing account and returns the collateral reward.
func (s *Service) LiquidatePosition(ctx context.Context, liquidator string, loanID uint64) (decimal.Decimal, error) {
	contract, err := s.loanContract()
	if err != nil {
		return decimal.Decimal{}, err
	}
	call := txflow.ContractCall{
		Contract: contract,
		Method:   "liquidate_position",
		Args:     []wire.Value{wire.AddressVal(liquidator), wire.U64Val(loanID)},
	}
	res, err := s.tx.Invoke(ctx, call)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if res.Outcome != txflow.OutcomeConfirmed {
		return decimal.Decimal{}, fmt.Errorf("liquidation of loan %d is %s (tx %s); reconcile before retrying", loanID, res.Outcome, res.Hash)
	}
	if raw, ok := res.Return.AsI128(); ok {
		return loans.FromRaw(raw), nil
	}
	return decimal.Decimal{}, nil
}

// AddCollateral tops up a position's collateral to improve its health.
func (s *Service) AddCollateral(ctx context.Context, owner string, loanID uint64, amount wire.Int128) error {
	contract, err := s.loanContract()
	if err != nil {
		return err
	}
	call := txflow.ContractCall{
		Contract: contract,
		Method:   "add_collateral",
		Args:     []wire.Value{wire.AddressVal(owner), wire.U64Val(loanID), wire.I128Val(amount)},
	}
	return s.confirmWrite(ctx, call, loanID)
}

// RepayLoan repays part or all of a position's borrowed amount; a full
// repayment closes it on-chain.
func (s *Service) RepayLoan(ctx context.Context, owner string, loanID uint64, amount wire.Int128) error {
	contract, err := s.loanContract()
	if err != nil {
		return err
	}
	call := txflow.ContractCall{
		Contract: contract,
		Method:   "repay_loan",
		Args:     []wire.Value{wire.AddressVal(owner), wire.U64Val(loanID), wire.I128Val(amount)},
	}
	return s.confirmWrite(ctx, call, loanID)
}

func (s *Service) confirmWrite(ctx context.Context, call txflow.ContractCall, loanID uint64) error {
	res, err := s.tx.Invoke(ctx, call)
	if err != nil {
		return err
	}
	if res.Outcome != txflow.OutcomeConfirmed {
		return fmt.Errorf("%s on loan %d is %s (tx %s); reconcile before retrying", call.Method, loanID, res.Outcome, res.Hash)
	}
	return nil
}
