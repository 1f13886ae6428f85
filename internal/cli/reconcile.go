package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Re-poll journaled transactions whose outcome was unknown",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.close()

		outcomes, err := a.svc.Reconcile(cmdContext())
		if err != nil {
			return err
		}
		if len(outcomes) == 0 {
			fmt.Println("nothing to reconcile")
			return nil
		}
		for _, oc := range outcomes {
			fmt.Printf("%s\t%s\t%s (submitted %s)\n",
				oc.Record.Hash, oc.Record.Method, oc.Status,
				oc.Record.SubmittedTime().Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}
