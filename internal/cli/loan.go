package cli

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/codec/wire"
	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/loans"
)

var (
	loanCollateral       string
	loanCollateralAmount string
	loanBorrowed         string
	loanBorrowedAmount   string
	loanThreshold        int64
	loanPeriods          uint32
	loanAmount           string
)

var loanCmd = &cobra.Command{
	Use:   "loan",
	Short: "Manage collateralized loan positions",
}

func init() {
	rootCmd.AddCommand(loanCmd)

	create := &cobra.Command{
		Use:   "create",
		Short: "Open a collateralized loan position",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()

			collateral, err := parseLoanRaw(loanCollateralAmount, "collateral-amount")
			if err != nil {
				return err
			}
			borrowed, err := parseLoanRaw(loanBorrowedAmount, "borrowed-amount")
			if err != nil {
				return err
			}
			res, err := a.svc.CreateLoan(cmdContext(), loans.Spec{
				Owner:            a.signer.Address(),
				CollateralAsset:  loans.CryptoAsset(loanCollateral),
				CollateralAmount: collateral,
				BorrowedAsset:    loans.CryptoAsset(loanBorrowed),
				BorrowedAmount:   borrowed,
				ThresholdBps:     loanThreshold,
			})
			if err != nil {
				return err
			}
			switch {
			case res.Confirmed && res.FallbackID:
				fmt.Printf("Loan confirmed (tx %s); placeholder id %d until the next read\n", res.Hash, res.OrderID)
			case res.Confirmed:
				fmt.Printf("Loan %d confirmed (tx %s)\n", res.OrderID, res.Hash)
			default:
				fmt.Printf("Outcome unknown for tx %s: run 'stellarguard reconcile' later; do not resubmit\n", res.Hash)
			}
			return nil
		},
	}
	create.Flags().StringVar(&loanCollateral, "collateral", "", "collateral asset ticker")
	create.Flags().StringVar(&loanCollateralAmount, "collateral-amount", "", "collateral size in tokens")
	create.Flags().StringVar(&loanBorrowed, "borrowed", "", "borrowed asset ticker")
	create.Flags().StringVar(&loanBorrowedAmount, "borrowed-amount", "", "borrowed size in tokens")
	create.Flags().Int64Var(&loanThreshold, "threshold", 15000, "liquidation threshold in basis points (> 10000)")

	check := &cobra.Command{
		Use:   "check <loan-id>",
		Short: "Check whether a position is liquidatable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseLoanID(args[0])
			if err != nil {
				return err
			}
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()

			due, err := a.svc.CheckLiquidation(cmdContext(), id)
			if err != nil {
				return err
			}
			if due {
				fmt.Printf("loan %d is below its liquidation threshold\n", id)
			} else {
				fmt.Printf("loan %d is healthy\n", id)
			}
			return nil
		},
	}

	health := &cobra.Command{
		Use:   "health <loan-id>",
		Short: "Read a position's TWAP health factor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseLoanID(args[0])
			if err != nil {
				return err
			}
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()

			hf, ok, err := a.svc.HealthFactorTWAP(cmdContext(), id, loanPeriods)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Printf("no health factor for loan %d (inactive or no oracle data)\n", id)
				return nil
			}
			fmt.Printf("loan %d health factor: %s (1 = at threshold)\n", id, hf)
			return nil
		},
	}
	health.Flags().Uint32Var(&loanPeriods, "periods", 5, "TWAP observation periods")

	liquidate := &cobra.Command{
		Use:   "liquidate <loan-id>",
		Short: "Liquidate an undercollateralized position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseLoanID(args[0])
			if err != nil {
				return err
			}
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()

			reward, err := a.svc.LiquidatePosition(cmdContext(), a.signer.Address(), id)
			if err != nil {
				return err
			}
			fmt.Printf("loan %d liquidated; collateral reward %s\n", id, reward)
			return nil
		},
	}

	addCollateral := &cobra.Command{
		Use:   "add-collateral <loan-id>",
		Short: "Top up a position's collateral",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseLoanID(args[0])
			if err != nil {
				return err
			}
			amount, err := parseLoanRaw(loanAmount, "amount")
			if err != nil {
				return err
			}
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.svc.AddCollateral(cmdContext(), a.signer.Address(), id, amount); err != nil {
				return err
			}
			fmt.Printf("added %s collateral to loan %d\n", loanAmount, id)
			return nil
		},
	}
	addCollateral.Flags().StringVar(&loanAmount, "amount", "", "amount in tokens")

	repay := &cobra.Command{
		Use:   "repay <loan-id>",
		Short: "Repay part or all of a position's borrowed amount",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseLoanID(args[0])
			if err != nil {
				return err
			}
			amount, err := parseLoanRaw(loanAmount, "amount")
			if err != nil {
				return err
			}
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.svc.RepayLoan(cmdContext(), a.signer.Address(), id, amount); err != nil {
				return err
			}
			fmt.Printf("repaid %s on loan %d\n", loanAmount, id)
			return nil
		},
	}
	repay.Flags().StringVar(&loanAmount, "amount", "", "amount in tokens")

	loanCmd.AddCommand(create, check, health, liquidate, addCollateral, repay)
}

func parseLoanID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("loan id: %w", err)
	}
	return id, nil
}

func parseLoanRaw(s, what string) (wire.Int128, error) {
	if s == "" {
		return wire.Int128{}, fmt.Errorf("--%s is required", what)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return wire.Int128{}, fmt.Errorf("--%s: %w", what, err)
	}
	raw, err := loans.ToRaw(d)
	if err != nil {
		return wire.Int128{}, fmt.Errorf("--%s: %w", what, err)
	}
	return raw, nil
}
