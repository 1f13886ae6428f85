package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <order-id>",
	Short: "Cancel an active order",
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

		if err := a.svc.CancelOrder(cmdContext(), a.signer.Address(), id); err != nil {
			return err
		}
		fmt.Printf("order %d cancelled\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}
