package cmd

import (
	"time"

	"bowerbird/core"

	"github.com/fox-one/pkg/uuid"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// transferCmd queues a transfer for the payee worker, the local stand-in
// for an on-chain payment. The action tag decides what the receiving
// contract does with it.
var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "queue a token transfer for settlement",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		senderStr, _ := cmd.Flags().GetString("sender")
		receiverStr, _ := cmd.Flags().GetString("receiver")
		assetStr, _ := cmd.Flags().GetString("asset")
		amountStr, _ := cmd.Flags().GetString("amount")
		action, _ := cmd.Flags().GetString("action")
		targetStr, _ := cmd.Flags().GetString("target")
		escrowStr, _ := cmd.Flags().GetString("escrow-asset")

		sender, err := core.AddressFromString(senderStr)
		if err != nil {
			panic(err)
		}
		receiver, err := core.AddressFromString(receiverStr)
		if err != nil {
			panic(err)
		}
		asset, err := core.AddressFromString(assetStr)
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

		memo := ""
		if action != "" {
			data := &core.TransferData{Action: action}
			if targetStr != "" {
				target, err := core.AddressFromString(targetStr)
				if err != nil {
					panic(err)
				}
				data.Target = target[:]
			}
			if escrowStr != "" {
				escrow, err := core.AddressFromString(escrowStr)
				if err != nil {
					panic(err)
				}
				data.Asset = escrow[:]
			}

			memo, err = data.EncodeMemo()
			if err != nil {
				panic(err)
			}
		}

		store := provideStore()
		defer store.Close()

		tx, err := store.Begin()
		if err != nil {
			panic(err)
		}
		defer tx.Discard()

		output := &core.Output{
			TraceID:   uuid.New(),
			Sender:    sender,
			Receiver:  receiver,
			Asset:     asset,
			Amount:    amount,
			Memo:      memo,
			CreatedAt: time.Now(),
		}

		if err := provideOutputStore().Enqueue(ctx, tx, output); err != nil {
			panic(err)
		}

		if err := tx.Commit(); err != nil {
			panic(err)
		}

		cmd.Println("queued", output.TraceID)
	},
}

func init() {
	rootCmd.AddCommand(transferCmd)
	transferCmd.Flags().String("sender", "", "sender address")
	transferCmd.Flags().String("receiver", "", "receiving contract address")
	transferCmd.Flags().String("asset", "", "token contract address")
	transferCmd.Flags().StringP("amount", "q", "", "amount")
	transferCmd.Flags().String("action", "", "action tag, empty for a plain transfer")
	transferCmd.Flags().String("target", "", "target account for repayment or liquidation")
	transferCmd.Flags().String("escrow-asset", "", "collateral asset for liquidation")
}
