package cmd

import (
	"bowerbird/core"
	tokenservice "bowerbird/service/token"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// mintCmd seeds a reference ledger with supply, for local runs and
// bootstrap. The pool token mints only through deposits.
var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "mint reference token supply to an account",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		symbol, _ := cmd.Flags().GetString("token")
		accountStr, _ := cmd.Flags().GetString("account")
		amountStr, _ := cmd.Flags().GetString("amount")

		account, err := core.AddressFromString(accountStr)
		if err != nil {
			panic(err)
		}

		amountNum, err := decimal.NewFromString(amountStr)
		if err != nil || amountNum.LessThanOrEqual(decimal.Zero) {
			panic("invalid amount")
		}

		amount, err := uint256.FromDecimal(amountNum.Shift(core.BTokenDecimals).Truncate(0).String())
		if err != nil {
			panic(err)
		}

		store := provideStore()
		defer store.Close()

		registry := core.NewRegistry()
		events := provideEventStore()

		var ledger tokenservice.Token
		switch symbol {
		case core.USDLSymbol:
			ledger = provideUSDLToken(events, registry)
		case "bNEO":
			ledger = provideBNEOToken(events, registry)
		default:
			panic("unknown token " + symbol)
		}

		tx, err := store.Begin()
		if err != nil {
			panic(err)
		}
		defer tx.Discard()

		if err := ledger.Mint(ctx, tx, account, amount); err != nil {
			panic(err)
		}

		if err := tx.Commit(); err != nil {
			panic(err)
		}

		cmd.Println("minted", amount.Dec(), symbol, "to", account.String())
	},
}

func init() {
	rootCmd.AddCommand(mintCmd)
	mintCmd.Flags().StringP("token", "t", core.USDLSymbol, "token symbol")
	mintCmd.Flags().StringP("account", "a", "", "account address")
	mintCmd.Flags().StringP("amount", "q", "", "amount")
}
