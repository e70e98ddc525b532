package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"dyme-cli/internal/provider"

	"github.com/spf13/cobra"
)

func newWalletCmd(flags *globalFlags) *cobra.Command {
	walletCmd := &cobra.Command{
		Use:   "wallet",
		Short: "Manage keyring-stored wallets",
		Long: `Store keypairs in the OS keyring and select them with --wallet keyring:<name>
or ANCHOR_WALLET=keyring:<name>.`,
	}

	var name string
	importCmd := &cobra.Command{
		Use:   "import <keypair-file>",
		Short: "Import a Solana keypair file into the keyring",
		Long: `Import a Solana keypair file into the keyring.

Example:
  dyme wallet import ~/.config/solana/id.json --name default`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wallets, err := flags.walletManager()
			if err != nil {
				return err
			}

			record, err := wallets.Import(name, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported wallet %s (%s)\n", record.Name, record.PublicKey)
			fmt.Fprintf(out, "Use it with --wallet %s%s\n", provider.KeyringPrefix, record.Name)
			return nil
		},
	}
	importCmd.Flags().StringVar(&name, "name", "default", "name to store the wallet under")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored wallets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wallets, err := flags.walletManager()
			if err != nil {
				return err
			}

			records, err := wallets.List()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No wallets stored. Use 'dyme wallet import' to add one.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPUBLIC KEY\tIMPORTED")
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, r.PublicKey, r.CreatedAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}

	forgetCmd := &cobra.Command{
		Use:   "forget <name>",
		Short: "Remove a wallet from the keyring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wallets, err := flags.walletManager()
			if err != nil {
				return err
			}

			if err := wallets.Forget(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed wallet %s\n", args[0])
			return nil
		},
	}

	walletCmd.AddCommand(importCmd, listCmd, forgetCmd)
	return walletCmd
}
