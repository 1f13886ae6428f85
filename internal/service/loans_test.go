package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/codec/wire"
	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/loans"
	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/txflow"
)

func loanEnvService(tx *fakeInvoker) *Service {
	env := testEnv()
	env.LoanContract = "CLOANCONTRACT"
	return New(env, tx, nil, nil, zap.NewNop())
}

func validLoanSpec(t *testing.T) loans.Spec {
	t.Helper()
	return loans.Spec{
		Owner:            serviceOwner(t),
		CollateralAsset:  loans.CryptoAsset("XLM"),
		CollateralAmount: wire.Int128FromInt64(10_000_000_000),
		BorrowedAsset:    loans.CryptoAsset("USDC"),
		BorrowedAmount:   wire.Int128FromInt64(4_000_000_000),
		ThresholdBps:     15_000,
	}
}

func TestCreateLoan(t *testing.T) {
	t.Run("confirmed with decoded id", func(t *testing.T) {
		tx := &fakeInvoker{invokeResult: &txflow.Result{
			Outcome:   txflow.OutcomeConfirmed,
			Hash:      "abc123",
			Return:    wire.U64Val(7),
			HasReturn: true,
		}}
		svc := loanEnvService(tx)

		res, err := svc.CreateLoan(context.Background(), validLoanSpec(t))
		require.NoError(t, err)
		assert.True(t, res.Confirmed)
		assert.Equal(t, uint64(7), res.OrderID)

		require.Len(t, tx.invoked, 1)
		assert.Equal(t, "CLOANCONTRACT", tx.invoked[0].Contract)
		assert.Equal(t, "create_loan", tx.invoked[0].Method)
	})

	t.Run("unconfigured environment", func(t *testing.T) {
		tx := &fakeInvoker{}
		svc := newTestService(tx, nil)

		_, err := svc.CreateLoan(context.Background(), validLoanSpec(t))
		require.ErrorIs(t, err, ErrNoLoanContract)
		assert.Empty(t, tx.invoked)
	})

	t.Run("invalid threshold never reaches the network", func(t *testing.T) {
		tx := &fakeInvoker{}
		svc := loanEnvService(tx)

		spec := validLoanSpec(t)
		spec.ThresholdBps = 9_000
		_, err := svc.CreateLoan(context.Background(), spec)
		require.ErrorIs(t, err, loans.ErrThresholdTooLow)
		assert.Empty(t, tx.invoked)
	})

	t.Run("unconfirmed returns only the hash", func(t *testing.T) {
		tx := &fakeInvoker{invokeResult: &txflow.Result{
			Outcome: txflow.OutcomeUnconfirmed,
			Hash:    "abc123",
		}}
		svc := loanEnvService(tx)

		res, err := svc.CreateLoan(context.Background(), validLoanSpec(t))
		require.NoError(t, err)
		assert.False(t, res.Confirmed)
		assert.Equal(t, "abc123", res.Hash)
	})
}

func TestCheckLiquidation(t *testing.T) {
	tx := &fakeInvoker{simReturns: map[string]wire.Value{
		"CLOANCONTRACT/check_liquidation": wire.BoolVal(true),
	}}
	svc := loanEnvService(tx)

	due, err := svc.CheckLiquidation(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, due)
}

func TestHealthFactorTWAP(t *testing.T) {
	t.Run("healthy position", func(t *testing.T) {
		tx := &fakeInvoker{simReturns: map[string]wire.Value{
			"CLOANCONTRACT/get_health_factor_twap": wire.I128ValFromInt64(12_500),
		}}
		svc := loanEnvService(tx)

		hf, ok, err := svc.HealthFactorTWAP(context.Background(), 7, 5)
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, hf.Equal(decimal.RequireFromString("1.25")), "got %s", hf)
	})

	t.Run("zero means no data", func(t *testing.T) {
		tx := &fakeInvoker{simReturns: map[string]wire.Value{
			"CLOANCONTRACT/get_health_factor_twap": wire.I128ValFromInt64(0),
		}}
		svc := loanEnvService(tx)

		_, ok, err := svc.HealthFactorTWAP(context.Background(), 7, 5)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestLiquidatePosition(t *testing.T) {
	t.Run("confirmed returns the reward", func(t *testing.T) {
		tx := &fakeInvoker{invokeResult: &txflow.Result{
			Outcome:   txflow.OutcomeConfirmed,
			Return:    wire.I128ValFromInt64(500_000_000),
			HasReturn: true,
		}}
		svc := loanEnvService(tx)

		reward, err := svc.LiquidatePosition(context.Background(), serviceOwner(t), 7)
		require.NoError(t, err)
		assert.True(t, reward.Equal(decimal.RequireFromString("50")), "got %s", reward)
		assert.Equal(t, "liquidate_position", tx.invoked[0].Method)
	})

	t.Run("unconfirmed is an error", func(t *testing.T) {
		tx := &fakeInvoker{invokeResult: &txflow.Result{
			Outcome: txflow.OutcomeUnconfirmed,
			Hash:    "abc123",
		}}
		svc := loanEnvService(tx)

		_, err := svc.LiquidatePosition(context.Background(), serviceOwner(t), 7)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reconcile")
	})
}

func TestLoanMaintenance(t *testing.T) {
	owner := serviceOwner(t)
	amount := wire.Int128FromInt64(1_000_000_000)

	t.Run("add collateral", func(t *testing.T) {
		tx := &fakeInvoker{invokeResult: &txflow.Result{Outcome: txflow.OutcomeConfirmed}}
		svc := loanEnvService(tx)

		require.NoError(t, svc.AddCollateral(context.Background(), owner, 7, amount))
		assert.Equal(t, "add_collateral", tx.invoked[0].Method)
		require.Len(t, tx.invoked[0].Args, 3)
	})

	t.Run("repay", func(t *testing.T) {
		tx := &fakeInvoker{invokeResult: &txflow.Result{Outcome: txflow.OutcomeConfirmed}}
		svc := loanEnvService(tx)

		require.NoError(t, svc.RepayLoan(context.Background(), owner, 7, amount))
		assert.Equal(t, "repay_loan", tx.invoked[0].Method)
	})

	t.Run("unconfirmed repay is an error", func(t *testing.T) {
		tx := &fakeInvoker{invokeResult: &txflow.Result{
			Outcome: txflow.OutcomeAbandoned,
			Hash:    "abc123",
		}}
		svc := loanEnvService(tx)

		err := svc.RepayLoan(context.Background(), owner, 7, amount)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reconcile")
	})
}
