package cli

import (
	"fmt"

	"dyme-cli/internal/balance"
	"dyme-cli/internal/logger"
	"dyme-cli/internal/watch"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

func newWatchCmd(flags *globalFlags) *cobra.Command {
	var count int

	watchCmd := &cobra.Command{
		Use:   "watch [address]",
		Short: "Stream balance changes over websocket",
		Long: `Subscribe to an account and print its balance whenever it changes.
The address defaults to the provider wallet. Runs until Ctrl+C or --count updates.

Example:
  dyme watch --count 3`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prov, _, err := flags.newProvider()
			if err != nil {
				return err
			}

			account := prov.PublicKey()
			if len(args) == 1 {
				if account, err = solana.PublicKeyFromBase58(args[0]); err != nil {
					return fmt.Errorf("invalid address: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", account)

			seen := 0
			err = watch.Subscribe(cmd.Context(), prov, account, func(n watch.Notification) error {
				fmt.Fprintf(out, "slot %d: %s SOL\n", n.Slot, balance.FormatSOL(n.Lamports))
				seen++
				if count > 0 && seen >= count {
					return watch.ErrStop
				}
				return nil
			})
			if err != nil {
				return err
			}

			logger.Info("Stopped watching %s after %d updates", account, seen)
			return nil
		},
	}

	watchCmd.Flags().IntVarP(&count, "count", "n", 0, "stop after this many updates (0 = unlimited)")
	return watchCmd
}
