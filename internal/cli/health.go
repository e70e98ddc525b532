package cli

import (
	"fmt"
	"time"

	"dyme-cli/internal/network"

	"github.com/spf13/cobra"
)

func newHealthCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the RPC endpoint",
		Long: `Check that the configured RPC node is reachable and healthy, and print its version.

Example:
  dyme health`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prov, _, err := flags.newProvider()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Endpoint:  %s\n", prov.Endpoint)
			fmt.Fprintf(out, "Websocket: %s\n", prov.WSEndpoint)

			status, err := network.Check(cmd.Context(), prov)
			if status != nil && status.Health != "" {
				fmt.Fprintf(out, "Health:    %s\n", status.Health)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Version:   %s (feature set %d)\n", status.SolanaCore, status.FeatureSet)
			fmt.Fprintf(out, "Checked:   %s\n", time.Now().Format(time.RFC3339))
			return nil
		},
	}
}
