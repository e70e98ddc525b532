package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

const explorerBase = "https://explorer.solana.com/address/"

func newExplorerCmd(flags *globalFlags) *cobra.Command {
	var printOnly bool

	explorerCmd := &cobra.Command{
		Use:   "explorer [address]",
		Short: "Open an address in the Solana explorer",
		Long: `Open an address in the Solana explorer for the configured cluster.
The address defaults to the provider wallet.

Examples:
  dyme explorer
  dyme explorer 6rbcJVHa32dKfw8kF1F1quSravjCLxpcjyuEqw7rP2Gc --print`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				address  solana.PublicKey
				endpoint string
			)

			if len(args) == 1 {
				cfg, err := flags.loadConfig()
				if err != nil {
					return err
				}
				if address, err = solana.PublicKeyFromBase58(args[0]); err != nil {
					return fmt.Errorf("invalid address: %w", err)
				}
				endpoint = cfg.ProviderURL
			} else {
				prov, _, err := flags.newProvider()
				if err != nil {
					return err
				}
				address = prov.PublicKey()
				endpoint = prov.Endpoint
			}

			link := ExplorerURL(address, endpoint)
			if printOnly {
				fmt.Fprintln(cmd.OutOrStdout(), link)
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Opening %s\n", link)
			if err := browser.OpenURL(link); err != nil {
				return fmt.Errorf("failed to open browser: %w", err)
			}
			return nil
		},
	}

	explorerCmd.Flags().BoolVar(&printOnly, "print", false, "print the link instead of opening it")
	return explorerCmd
}

// ExplorerURL links to address on the cluster behind endpoint.
// Unknown endpoints use the explorer's custom cluster mode.
func ExplorerURL(address solana.PublicKey, endpoint string) string {
	link := explorerBase + address.String()

	switch host := strings.ToLower(endpoint); {
	case endpoint == "", strings.Contains(host, "mainnet"):
		return link
	case strings.Contains(host, "devnet"):
		return link + "?cluster=devnet"
	case strings.Contains(host, "testnet"):
		return link + "?cluster=testnet"
	default:
		return link + "?cluster=custom&customUrl=" + url.QueryEscape(endpoint)
	}
}
