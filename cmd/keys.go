package cmd

import (
	"crypto/rand"
	"encoding/base64"

	"bowerbird/core"

	"github.com/pandodao/blst"
	"github.com/spf13/cobra"
)

// maintain command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "generate a blst reporter key pair or a random account address",
	Run: func(cmd *cobra.Command, args []string) {
		cipher, err := cmd.Flags().GetString("cipher")
		if err != nil {
			panic(err)
		}

		if cipher == "blst" {
			private := blst.GenerateKey()
			public := private.PublicKey()

			cmd.Println("blst private key: ", private.String())
			cmd.Println("blst public key:", public.String())
		} else {
			var b [core.AddressLen]byte
			if _, err := rand.Read(b[:]); err != nil {
				panic(err)
			}

			addr, _ := core.NewAddress(b[:])
			cmd.Println("address:", addr.String())
			cmd.Println("raw:", base64.StdEncoding.EncodeToString(b[:]))
		}
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)

	keysCmd.Flags().String("cipher", "address", "cipher type")
}
