package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"dyme-cli/internal/balance"
	"dyme-cli/internal/logger"
	"dyme-cli/internal/stake"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

func newPoolCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "pool <identifier>",
		Short: "Show a stake pool",
		Long: `Derive the stake pool address for an identifier and print the decoded account.

Example:
  dyme pool my-pool`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prov, cfg, err := flags.newProvider()
			if err != nil {
				return err
			}
			programID, err := flags.programIDFrom(cfg)
			if err != nil {
				return err
			}

			address, bump, err := stake.PoolAddress(programID, args[0])
			if err != nil {
				return fmt.Errorf("failed to derive pool address: %w", err)
			}

			pool, err := stake.FetchPool(cmd.Context(), prov, programID, address)
			if err != nil {
				return err
			}

			printPool(cmd.OutOrStdout(), address, bump, pool)
			return nil
		},
	}
}

func newEntryCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "entry <identifier> <mint> [staker]",
		Short: "Show a stake entry",
		Long: `Derive the stake entry for a staker in a pool and print the decoded account.
The staker defaults to the provider wallet.

Example:
  dyme entry my-pool EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			prov, cfg, err := flags.newProvider()
			if err != nil {
				return err
			}
			programID, err := flags.programIDFrom(cfg)
			if err != nil {
				return err
			}

			mint, err := solana.PublicKeyFromBase58(args[1])
			if err != nil {
				return fmt.Errorf("invalid mint: %w", err)
			}
			staker := prov.PublicKey()
			if len(args) == 3 {
				if staker, err = solana.PublicKeyFromBase58(args[2]); err != nil {
					return fmt.Errorf("invalid staker: %w", err)
				}
			}

			poolAddress, _, err := stake.PoolAddress(programID, args[0])
			if err != nil {
				return fmt.Errorf("failed to derive pool address: %w", err)
			}
			address, bump, err := stake.EntryAddress(programID, poolAddress, mint, staker)
			if err != nil {
				return fmt.Errorf("failed to derive entry address: %w", err)
			}

			entry, err := stake.FetchEntry(cmd.Context(), prov, programID, address)
			if err != nil {
				return err
			}

			printEntry(cmd.OutOrStdout(), address, bump, entry)
			return nil
		},
	}
}

func newPDACmd(flags *globalFlags) *cobra.Command {
	pdaCmd := &cobra.Command{
		Use:   "pda",
		Short: "Derive program addresses without touching the network",
	}

	pdaCmd.AddCommand(&cobra.Command{
		Use:   "pool <identifier>",
		Short: "Derive a stake pool address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			programID, err := flags.resolveProgramID()
			if err != nil {
				return err
			}
			address, bump, err := stake.PoolAddress(programID, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", address, bump)
			return nil
		},
	})

	pdaCmd.AddCommand(&cobra.Command{
		Use:   "entry <identifier> <mint> <staker>",
		Short: "Derive a stake entry address",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			programID, err := flags.resolveProgramID()
			if err != nil {
				return err
			}
			keys, err := parseKeys(args[1:]...)
			if err != nil {
				return err
			}
			pool, _, err := stake.PoolAddress(programID, args[0])
			if err != nil {
				return err
			}
			address, bump, err := stake.EntryAddress(programID, pool, keys[0], keys[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", address, bump)
			return nil
		},
	})

	return pdaCmd
}

func newExplainCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "explain [code]",
		Short: "Describe a program error code",
		Long: `Describe a custom program error code, or list all of them.

Examples:
  dyme explain 6002
  dyme explain`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "CODE\tNAME\tMESSAGE")
				for _, e := range stake.Errors() {
					fmt.Fprintf(w, "%d\t%s\t%s\n", e.Code, e.Name, e.Msg)
				}
				return w.Flush()
			}

			code, err := strconv.ParseUint(args[0], 0, 32)
			if err != nil {
				return fmt.Errorf("invalid error code %q: %w", args[0], err)
			}

			// The workspace IDL is preferred when it is available
			if cfg, err := flags.loadConfig(); err == nil {
				if prog, err := flags.resolveProgram(cfg, nil); err == nil {
					if msg, ok := prog.ErrorMessage(uint32(code)); ok {
						fmt.Fprintln(out, msg)
						return nil
					}
				} else {
					logger.Debug("workspace unavailable, using built-in errors: %v", err)
				}
			}

			e, ok := stake.LookupError(uint32(code))
			if !ok {
				return fmt.Errorf("unknown program error %d", code)
			}
			fmt.Fprintln(out, e)
			return nil
		},
	}
}

func parseKeys(vals ...string) ([]solana.PublicKey, error) {
	keys := make([]solana.PublicKey, 0, len(vals))
	for _, v := range vals {
		k, err := solana.PublicKeyFromBase58(v)
		if err != nil {
			return nil, fmt.Errorf("invalid public key %q: %w", v, err)
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func printPool(out io.Writer, address solana.PublicKey, bump uint8, pool *stake.StakePool) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Address:\t%s\n", address)
	fmt.Fprintf(w, "Bump:\t%d\n", bump)
	fmt.Fprintf(w, "Name:\t%s\n", pool.PoolName)
	fmt.Fprintf(w, "Identifier:\t%s\n", pool.Identifier)
	fmt.Fprintf(w, "Authority:\t%s\n", pool.Authority)
	fmt.Fprintf(w, "Token:\t%s\n", pool.TokenAddress)
	fmt.Fprintf(w, "Active:\t%t\n", pool.IsActive)
	fmt.Fprintf(w, "Stakers:\t%d\n", pool.TotalStaked)
	fmt.Fprintf(w, "APR:\t%s\n", formatBps(pool.Apr))
	fmt.Fprintf(w, "Decimals:\t%d\n", pool.DefaultMultiplier)
	if pool.EndDate != nil {
		fmt.Fprintf(w, "Ends:\t%s (ended: %t)\n", formatUnix(*pool.EndDate), pool.Ended(time.Now()))
	} else {
		fmt.Fprintln(w, "Ends:\tnever")
	}
	fmt.Fprintf(w, "Created:\t%s\n", formatUnix(pool.CreatedAt))
	fmt.Fprintf(w, "Creation fee:\t%s SOL\n", balance.FormatSOL(stake.PlatformFee))
	w.Flush()
}

func printEntry(out io.Writer, address solana.PublicKey, bump uint8, entry *stake.StakeEntry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Address:\t%s\n", address)
	fmt.Fprintf(w, "Bump:\t%d\n", bump)
	fmt.Fprintf(w, "Pool:\t%s\n", entry.Pool)
	fmt.Fprintf(w, "Mint:\t%s\n", entry.StakeMint)
	fmt.Fprintf(w, "Amount:\t%d\n", entry.Amount)
	fmt.Fprintf(w, "APR:\t%s\n", formatBps(entry.Apr))
	fmt.Fprintf(w, "Last staker:\t%s\n", entry.LastStaker)
	fmt.Fprintf(w, "Last staked:\t%s\n", formatUnix(entry.LastStakedAt))
	if entry.MinStakeSeconds != nil {
		fmt.Fprintf(w, "Min stake:\t%s (locked: %t)\n",
			time.Duration(*entry.MinStakeSeconds)*time.Second, entry.Locked(time.Now()))
	}
	w.Flush()
}

// formatBps renders basis points, e.g. 1250 -> "1250 bps (12.5%)"
func formatBps(bps uint64) string {
	return fmt.Sprintf("%d bps (%s%%)", bps, strconv.FormatFloat(float64(bps)/100, 'f', -1, 64))
}

func formatUnix(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}
