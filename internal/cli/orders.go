package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/orders"
)

var ordersOwner string

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List and inspect orders",
}

func init() {
	rootCmd.AddCommand(ordersCmd)
	ordersCmd.PersistentFlags().StringVar(&ordersOwner, "owner", "", "owner address (defaults to the signing account)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List order ids owned by an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()

			owner := ordersOwner
			if owner == "" {
				owner = a.signer.Address()
			}
			ids, err := a.svc.UserOrders(cmdContext(), owner)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Println("no orders")
				return nil
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <order-id>",
		Short: "Show one order record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("order id: %w", err)
			}
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()

			o, err := a.svc.GetOrder(cmdContext(), id)
			if err != nil {
				return err
			}
			fmt.Printf("order %d (%s)\n", o.ID, o.Type())
			fmt.Printf("  owner:  %s\n", o.Owner)
			fmt.Printf("  asset:  %s\n", o.Asset)
			fmt.Printf("  amount: %s\n", o.AmountDecimal())
			fmt.Printf("  stop:   %s\n", o.StopPriceDecimal())
			if o.HasTrailing {
				fmt.Printf("  trail:  %d%%\n", o.TrailingPercent)
			}
			if o.HasTakeProfit {
				fmt.Printf("  take-profit: %s\n", o.TakeProfitPrice.Decimal(orders.Scale))
			}
			fmt.Printf("  status: %s\n", o.Status)
			return nil
		},
	}

	all := &cobra.Command{
		Use:   "all",
		Short: "List every order on the contract",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()

			list, err := a.svc.AllOrders(cmdContext())
			if err != nil {
				return err
			}
			for _, o := range list {
				fmt.Printf("%d\t%s\t%s\t%s\t%s\n", o.ID, o.Type(), o.Asset, o.StopPriceDecimal(), o.Status)
			}
			return nil
		},
	}

	ordersCmd.AddCommand(list, show, all)
}
