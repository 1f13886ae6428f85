package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/oracle"
)

var (
	priceClass  string
	priceTWAP   uint32
	priceQuote  string
	priceIsAddr bool
)

var priceCmd = &cobra.Command{
	Use:   "price <asset>",
	Short: "Read an oracle price",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.close()

		class, err := parseClass(priceClass)
		if err != nil {
			return err
		}
		asset := oracle.Ticker(args[0])
		if priceIsAddr {
			asset = oracle.ContractAsset(args[0])
		}
		ctx := cmdContext()

		if priceQuote != "" {
			sample, ok, err := a.svc.CrossPrice(ctx, asset, oracle.Ticker(priceQuote))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Printf("no cross price for %s/%s\n", args[0], priceQuote)
				return nil
			}
			fmt.Printf("%s/%s = %s\n", args[0], priceQuote, sample.Price)
			return nil
		}

		if priceTWAP > 0 {
			p, ok, err := a.svc.TWAP(ctx, asset, class, priceTWAP)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Printf("no TWAP for %s\n", args[0])
				return nil
			}
			fmt.Printf("%s TWAP(%d) = %s\n", args[0], priceTWAP, p)
			return nil
		}

		sample, ok, err := a.svc.SpotPrice(ctx, asset, class)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Printf("oracle holds no data for %s\n", args[0])
			return nil
		}
		if t, has := sample.ObservedTime(); has {
			fmt.Printf("%s = %s (observed %s, %s oracle)\n", args[0], sample.Price, t.Format("2006-01-02 15:04:05"), sample.SourceOracle)
		} else {
			fmt.Printf("%s = %s (%s oracle)\n", args[0], sample.Price, sample.SourceOracle)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(priceCmd)
	priceCmd.Flags().StringVar(&priceClass, "class", "crypto", "asset class: crypto, stablecoin, native or forex")
	priceCmd.Flags().Uint32Var(&priceTWAP, "twap", 0, "read a TWAP over this many periods instead of the spot price")
	priceCmd.Flags().StringVar(&priceQuote, "quote", "", "read the cross price against this quote asset")
	priceCmd.Flags().BoolVar(&priceIsAddr, "contract", false, "treat the asset as a contract address")
}
