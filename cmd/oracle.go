package cmd

import (
	"encoding/base64"

	"github.com/pandodao/blst"
	"github.com/spf13/cobra"
)

var addOracleSignerCmd = &cobra.Command{
	Use:     "add-oracle-signer",
	Aliases: []string{"aos"},
	Short:   "register an oracle reporter's blst public key",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		id, _ := cmd.Flags().GetString("id")
		publicKey, _ := cmd.Flags().GetString("key")

		if id == "" || publicKey == "" {
			panic("no id or public key")
		}

		raw, err := base64.StdEncoding.DecodeString(publicKey)
		if err != nil {
			panic(err)
		}

		pub := blst.PublicKey{}
		if err := pub.FromBytes(raw); err != nil {
			panic(err)
		}

		store := provideStore()
		defer store.Close()

		tx, err := store.Begin()
		if err != nil {
			panic(err)
		}
		defer tx.Discard()

		if err := provideOracleSignerStore().Save(ctx, tx, id, raw); err != nil {
			panic(err)
		}

		if err := tx.Commit(); err != nil {
			panic(err)
		}

		cmd.Println("oracle signer", id, "registered")
	},
}

var removeOracleSignerCmd = &cobra.Command{
	Use:     "remove-oracle-signer",
	Aliases: []string{"ros"},
	Short:   "remove an oracle reporter",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		id, _ := cmd.Flags().GetString("id")
		if id == "" {
			panic("no id")
		}

		store := provideStore()
		defer store.Close()

		tx, err := store.Begin()
		if err != nil {
			panic(err)
		}
		defer tx.Discard()

		if err := provideOracleSignerStore().Delete(ctx, tx, id); err != nil {
			panic(err)
		}

		if err := tx.Commit(); err != nil {
			panic(err)
		}

		cmd.Println("oracle signer", id, "removed")
	},
}

func init() {
	rootCmd.AddCommand(addOracleSignerCmd)
	addOracleSignerCmd.Flags().String("id", "", "signer id")
	addOracleSignerCmd.Flags().String("key", "", "base64 blst public key")

	rootCmd.AddCommand(removeOracleSignerCmd)
	removeOracleSignerCmd.Flags().String("id", "", "signer id")
}
