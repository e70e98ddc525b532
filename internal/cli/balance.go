package cli

import (
	"fmt"

	"dyme-cli/internal/balance"
	"dyme-cli/internal/logger"

	"github.com/spf13/cobra"
)

func newBalanceCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Print the wallet address and its SOL balance",
		Long: `Print the wallet address and its SOL balance.

The program handle is resolved from the Anchor workspace first, so a missing
program aborts before any network request. Exactly one getBalance request is made.

Example:
  dyme balance`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBalance(cmd, flags)
		},
	}
}

// runBalance bootstraps the provider and resolves the program before reporting
func runBalance(cmd *cobra.Command, flags *globalFlags) error {
	prov, cfg, err := flags.newProvider()
	if err != nil {
		return err
	}

	prog, err := flags.resolveProgram(cfg, prov)
	if err != nil {
		return err
	}
	logger.Debug("using program %s (%s)", prog.Name, prog.ID)

	return balance.Report(cmd.Context(), prog.Provider, cmd.OutOrStdout())
}

func newAddressCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "Print the wallet address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prov, _, err := flags.newProvider()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), prov.PublicKey())
			return nil
		},
	}
}
