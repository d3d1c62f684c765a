package cmd

import (
	"bowerbird/core"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

// collateralCmd manages the collateral registry with the owner's
// witness. Usage:
//
//	bowerbird collateral support <asset>
//	bowerbird collateral invalidate <asset>
//	bowerbird collateral set-ltv <asset> <bps>
//	bowerbird collateral set-max-liquidation-ratio <asset> <bps>
//	bowerbird collateral set-liquidation-penalty <asset> <bps>
var collateralCmd = &cobra.Command{
	Use:   "collateral",
	Short: "manage the collateral registry",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := core.WithWitness(cmd.Context(), mustAddress(cfg.Addresses.Owner, "owner"))

		asset, err := core.AddressFromString(args[1])
		if err != nil {
			panic(err)
		}

		var bps uint64
		if len(args) > 2 {
			bps = cast.ToUint64(args[2])
		}

		store := provideStore()
		defer store.Close()

		_, _, vault, _, _ := provideRegistry()

		tx, err := store.Begin()
		if err != nil {
			panic(err)
		}
		defer tx.Discard()

		switch args[0] {
		case "support":
			err = vault.SupportCollateral(ctx, tx, asset)
		case "invalidate":
			err = vault.InvalidateCollateral(ctx, tx, asset)
		case "set-ltv":
			err = vault.SetLoanToValue(ctx, tx, asset, bps)
		case "set-max-liquidation-ratio":
			err = vault.SetMaxLiquidationRatio(ctx, tx, asset, bps)
		case "set-liquidation-penalty":
			err = vault.SetLiquidationPenalty(ctx, tx, asset, bps)
		default:
			panic("unknown subcommand " + args[0])
		}
		if err != nil {
			panic(err)
		}

		if err := tx.Commit(); err != nil {
			panic(err)
		}

		cmd.Println(args[0], "done")
	},
}

func init() {
	rootCmd.AddCommand(collateralCmd)
}
