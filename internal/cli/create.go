package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/codec/wire"
	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/orders"
	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/service"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a protective order",
}

var (
	createAsset      string
	createAmount     string
	createStop       string
	createTakeProfit string
	createTrail      uint32
	createPeriods    uint32
	createStopPct    uint32
	createTrigger    string
	createTriggerAt  string
)

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.PersistentFlags().StringVar(&createAsset, "asset", "", "asset ticker, e.g. BTC")
	createCmd.PersistentFlags().StringVar(&createAmount, "amount", "", "order size in tokens")

	stopLoss := &cobra.Command{
		Use:   "stop-loss",
		Short: "Sell when the price falls to the stop level",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(func(a *app) (orders.Spec, error) {
				amount, stop, err := amountAndPrice(createAmount, createStop)
				if err != nil {
					return nil, err
				}
				return orders.StopLoss{
					Owner:     a.signer.Address(),
					Asset:     createAsset,
					Amount:    amount,
					StopPrice: stop,
				}, nil
			})
		},
	}
	stopLoss.Flags().StringVar(&createStop, "stop", "", "stop price")

	trailing := &cobra.Command{
		Use:   "trailing-stop",
		Short: "Follow the high-water price down by a fixed percentage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(func(a *app) (orders.Spec, error) {
				amount, err := parseRaw(createAmount, "amount")
				if err != nil {
					return nil, err
				}
				return orders.TrailingStop{
					Owner:        a.signer.Address(),
					Asset:        createAsset,
					Amount:       amount,
					TrailPercent: createTrail,
				}, nil
			})
		},
	}
	trailing.Flags().Uint32Var(&createTrail, "trail", 0, "trailing percent (1..50)")

	oco := &cobra.Command{
		Use:   "oco",
		Short: "Pair a stop with a take-profit; one cancels the other",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(func(a *app) (orders.Spec, error) {
				amount, stop, err := amountAndPrice(createAmount, createStop)
				if err != nil {
					return nil, err
				}
				takeProfit, err := parseRaw(createTakeProfit, "take-profit")
				if err != nil {
					return nil, err
				}
				return orders.OCO{
					Owner:           a.signer.Address(),
					Asset:           createAsset,
					Amount:          amount,
					StopPrice:       stop,
					TakeProfitPrice: takeProfit,
				}, nil
			})
		},
	}
	oco.Flags().StringVar(&createStop, "stop", "", "stop price")
	oco.Flags().StringVar(&createTakeProfit, "take-profit", "", "take-profit price")

	twap := &cobra.Command{
		Use:   "twap-stop",
		Short: "Anchor the stop to a time-weighted average price",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(func(a *app) (orders.Spec, error) {
				amount, err := parseRaw(createAmount, "amount")
				if err != nil {
					return nil, err
				}
				return orders.TWAPStop{
					Owner:       a.signer.Address(),
					Asset:       createAsset,
					Amount:      amount,
					Periods:     createPeriods,
					StopPercent: createStopPct,
				}, nil
			})
		},
	}
	twap.Flags().Uint32Var(&createPeriods, "periods", 5, "TWAP observation periods (3..20)")
	twap.Flags().Uint32Var(&createStopPct, "stop-percent", 0, "stop offset below the TWAP, in percent")

	cross := &cobra.Command{
		Use:   "cross-stop",
		Short: "Sell one asset when another asset's price hits a trigger",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(func(a *app) (orders.Spec, error) {
				amount, err := parseRaw(createAmount, "amount")
				if err != nil {
					return nil, err
				}
				trigger, err := parseRaw(createTriggerAt, "trigger-price")
				if err != nil {
					return nil, err
				}
				return orders.CrossAssetStop{
					Owner:        a.signer.Address(),
					BaseAsset:    createAsset,
					QuoteAsset:   createTrigger,
					Amount:       amount,
					TriggerPrice: trigger,
				}, nil
			})
		},
	}
	cross.Flags().StringVar(&createTrigger, "trigger-asset", "", "asset whose price triggers the stop")
	cross.Flags().StringVar(&createTriggerAt, "trigger-price", "", "trigger price of that asset")

	createCmd.AddCommand(stopLoss, trailing, oco, twap, cross)
}

func runCreate(build func(*app) (orders.Spec, error)) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	spec, err := build(a)
	if err != nil {
		return err
	}
	res, err := a.svc.CreateOrder(cmdContext(), spec)
	if err != nil {
		return err
	}
	printCreateResult(res)
	return nil
}

func printCreateResult(res service.CreateResult) {
	switch {
	case res.Confirmed && res.FallbackID:
		fmt.Printf("Order confirmed (tx %s); placeholder id %d until the next read\n", res.Hash, res.OrderID)
	case res.Confirmed:
		fmt.Printf("Order %d confirmed (tx %s)\n", res.OrderID, res.Hash)
	default:
		fmt.Printf("Outcome unknown for tx %s: run 'stellarguard reconcile' later; do not resubmit\n", res.Hash)
	}
}

func amountAndPrice(amountStr, priceStr string) (wire.Int128, wire.Int128, error) {
	amount, err := parseRaw(amountStr, "amount")
	if err != nil {
		return wire.Int128{}, wire.Int128{}, err
	}
	price, err := parseRaw(priceStr, "stop")
	if err != nil {
		return wire.Int128{}, wire.Int128{}, err
	}
	return amount, price, nil
}

func parseRaw(s, what string) (wire.Int128, error) {
	if s == "" {
		return wire.Int128{}, fmt.Errorf("--%s is required", what)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return wire.Int128{}, fmt.Errorf("--%s: %w", what, err)
	}
	raw, err := orders.ToRaw(d)
	if err != nil {
		return wire.Int128{}, fmt.Errorf("--%s: %w", what, err)
	}
	return raw, nil
}
