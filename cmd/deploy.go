package cmd

import (
	"bowerbird/core"

	"github.com/spf13/cobra"
)

// deployCmd seeds the contract wiring properties. Run once against a
// fresh database; re-running overwrites the wiring in place.
var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "seed contract properties into a fresh database",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		store := provideStore()
		defer store.Close()

		properties := providePropertyStore()

		tx, err := store.Begin()
		if err != nil {
			panic(err)
		}
		defer tx.Discard()

		addresses := map[string]core.Address{
			core.PropertyOwner:        mustAddress(cfg.Addresses.Owner, "owner"),
			core.PropertyUSDLToken:    mustAddress(cfg.Addresses.USDL, "usdl"),
			core.PropertyBUSDLToken:   mustAddress(cfg.Addresses.BToken, "btoken"),
			core.PropertyBNEOToken:    mustAddress(cfg.Addresses.BNEO, "bneo"),
			core.PropertyNestContract: mustAddress(cfg.Addresses.Vault, "vault"),
			core.PropertyOracle:       mustAddress(cfg.Addresses.Oracle, "oracle"),
			core.PropertyUnderlying:   mustAddress(cfg.Addresses.USDL, "usdl"),
		}
		for key, addr := range addresses {
			if err := properties.SetAddress(ctx, tx, key, addr); err != nil {
				panic(err)
			}
		}

		if err := properties.SetUint64(ctx, tx, core.PropertyOracleFee, core.DefaultOracleFee); err != nil {
			panic(err)
		}

		height, err := provideBlockClock().Height(ctx)
		if err != nil {
			panic(err)
		}
		if err := properties.SetUint64(ctx, tx, core.PropertyGenesisHeight, height); err != nil {
			panic(err)
		}

		if err := tx.Commit(); err != nil {
			panic(err)
		}

		cmd.Println("deployed at height", height)
	},
}

func init() {
	rootCmd.AddCommand(deployCmd)
}
