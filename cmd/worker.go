package cmd

import (
	"sync"

	"bowerbird/worker"
	"bowerbird/worker/oracleworker"
	"bowerbird/worker/payee"

	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "bowerbird settlement worker",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		store := provideStore()
		defer store.Close()

		registry, _, vault, _, _ := provideRegistry()

		workers := []worker.Worker{
			payee.New(store, provideOutputStore(), registry),
			oracleworker.New(
				store,
				provideOracleRequestStore(),
				provideOracleSignerStore(),
				providePriceClient(),
				vault,
				mustAddress(cfg.Addresses.Oracle, "oracle"),
			),
		}

		wg := sync.WaitGroup{}
		for _, w := range workers {
			wg.Add(1)

			go func(worker worker.Worker) {
				defer wg.Done()
				_ = worker.Run(ctx)
			}(w)
		}

		wg.Wait()
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
