package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"dyme-cli/internal/config"
	"dyme-cli/internal/logger"
	"dyme-cli/internal/program"
	"dyme-cli/internal/provider"
	"dyme-cli/internal/wallet"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

var version = "1.0.0"

// globalFlags holds persistent flag values; empty means "use the environment"
type globalFlags struct {
	url          string
	wallet       string
	commitment   string
	workspace    string
	program      string
	programID    string
	solanaConfig string
	configDir    string
	verbose      bool
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "dyme",
		Short: "Dyme staking client",
		Long: `dyme is a read-only client for the Dyme staking program.

Run without a subcommand it prints the wallet address and its SOL balance.
The provider is configured from ANCHOR_PROVIDER_URL and ANCHOR_WALLET, the same
variables 'anchor run' sets. A .env file in the working directory is honored.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.verbose || config.IsDebugMode() {
				logger.SetDebug(true)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBalance(cmd, flags)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.url, "url", "u", "", "RPC endpoint (overrides "+config.EnvProviderURL+")")
	pf.StringVarP(&flags.wallet, "wallet", "w", "", "keypair file or keyring:<name> (overrides "+config.EnvWallet+")")
	pf.StringVar(&flags.commitment, "commitment", "", "processed, confirmed or finalized (overrides "+config.EnvCommitment+")")
	pf.StringVar(&flags.workspace, "workspace", "", "directory inside the Anchor workspace (overrides "+config.EnvWorkspace+")")
	pf.StringVarP(&flags.program, "program", "p", config.DefaultProgram, "workspace program name")
	pf.StringVar(&flags.programID, "program-id", "", "program address; skips workspace lookup where possible")
	pf.StringVar(&flags.solanaConfig, "solana-config", "", "fill missing settings from a Solana CLI config.yml")
	pf.Lookup("solana-config").NoOptDefVal = config.DefaultSolanaCLIConfigPath()
	pf.StringVar(&flags.configDir, "config-dir", "", "directory for the wallet index (default ~/.dyme)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newBalanceCmd(flags))
	rootCmd.AddCommand(newAddressCmd(flags))
	rootCmd.AddCommand(newPoolCmd(flags))
	rootCmd.AddCommand(newEntryCmd(flags))
	rootCmd.AddCommand(newPDACmd(flags))
	rootCmd.AddCommand(newExplainCmd(flags))
	rootCmd.AddCommand(newWatchCmd(flags))
	rootCmd.AddCommand(newHealthCmd(flags))
	rootCmd.AddCommand(newExplorerCmd(flags))
	rootCmd.AddCommand(newWalletCmd(flags))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the command tree until completion or SIGINT/SIGTERM
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer logger.Sync()

	return NewRootCmd().ExecuteContext(ctx)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dyme CLI v%s\n", version)
		},
	}
}

// loadConfig layers the optional Solana CLI config, then flags, over the environment
func (f *globalFlags) loadConfig() (*config.Config, error) {
	cfg := config.Load()

	if f.solanaConfig != "" {
		sc, err := config.LoadSolanaCLIConfig(config.ExpandHome(f.solanaConfig))
		if err != nil {
			return nil, err
		}
		cfg.FillFrom(sc)
	}

	if f.url != "" {
		cfg.ProviderURL = f.url
	}
	if f.wallet != "" {
		cfg.WalletPath = f.wallet
	}
	if f.commitment != "" {
		cfg.Commitment = f.commitment
	}
	if f.workspace != "" {
		cfg.Workspace = f.workspace
	}

	return cfg, nil
}

func (f *globalFlags) walletManager() (*wallet.Manager, error) {
	store, err := config.NewStoreManager(f.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet store: %w", err)
	}
	return wallet.NewManager(store), nil
}

// newProvider bootstraps the provider from flags and environment
func (f *globalFlags) newProvider() (*provider.Provider, *config.Config, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	// Validate before touching the keyring so a missing env fails first
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	// The wallet index is only opened for keyring wallets
	var wallets provider.KeyLoader
	if strings.HasPrefix(cfg.WalletPath, provider.KeyringPrefix) {
		m, err := f.walletManager()
		if err != nil {
			return nil, nil, err
		}
		wallets = m
	}

	prov, err := provider.New(cfg, wallets)
	if err != nil {
		return nil, nil, err
	}
	return prov, cfg, nil
}

// resolveProgram resolves the workspace program; prov may be nil
func (f *globalFlags) resolveProgram(cfg *config.Config, prov *provider.Provider) (*program.Program, error) {
	dir := cfg.Workspace
	if dir == "" {
		dir = "."
	}
	return program.Open(dir, f.program, prov)
}

// resolveProgramID honors --program-id before looking at the workspace
func (f *globalFlags) resolveProgramID() (solana.PublicKey, error) {
	if f.programID != "" {
		return f.programIDFrom(nil)
	}

	cfg, err := f.loadConfig()
	if err != nil {
		return solana.PublicKey{}, err
	}
	return f.programIDFrom(cfg)
}

// programIDFrom resolves the program id using an already loaded cfg
func (f *globalFlags) programIDFrom(cfg *config.Config) (solana.PublicKey, error) {
	if f.programID != "" {
		id, err := solana.PublicKeyFromBase58(f.programID)
		if err != nil {
			return solana.PublicKey{}, fmt.Errorf("invalid --program-id: %w", err)
		}
		return id, nil
	}

	prog, err := f.resolveProgram(cfg, nil)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return prog.ID, nil
}
