package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// These variables will be set at build time using -ldflags
var (
	DefaultCommitment = "processed"
	DefaultProgram    = "utils"
	DebugMode         = "false" // "true" or "false" as string (set at build time)
)

// Environment variables read by Load
const (
	EnvProviderURL = "ANCHOR_PROVIDER_URL"
	EnvWallet      = "ANCHOR_WALLET"
	EnvCommitment  = "DYME_COMMITMENT"
	EnvRPCToken    = "DYME_RPC_TOKEN"
	EnvWorkspace   = "DYME_WORKSPACE"
	EnvDebug       = "DYME_DEBUG"
)

// ErrMissing is returned when required provider configuration is absent
var ErrMissing = errors.New("missing provider configuration")

// Config represents the provider configuration
type Config struct {
	ProviderURL string
	WSURL       string // optional, derived from ProviderURL when empty
	WalletPath  string
	Commitment  string
	RPCToken    string
	Workspace   string
}

// Load returns the provider configuration.
// A .env file in the working directory is loaded first; variables already
// set in the process environment take precedence over it.
func Load() *Config {
	// Missing .env is fine
	_ = godotenv.Load()

	return &Config{
		ProviderURL: os.Getenv(EnvProviderURL),
		WalletPath:  os.Getenv(EnvWallet),
		Commitment:  getEnv(EnvCommitment, DefaultCommitment),
		RPCToken:    os.Getenv(EnvRPCToken),
		Workspace:   os.Getenv(EnvWorkspace),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Validate reports which required values are missing
func (c *Config) Validate() error {
	var missing []string
	if c.ProviderURL == "" {
		missing = append(missing, EnvProviderURL)
	}
	if c.WalletPath == "" {
		missing = append(missing, EnvWallet)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s is not set", ErrMissing, strings.Join(missing, ", "))
	}
	return nil
}

// SolanaCLIConfig mirrors the Solana CLI config.yml
type SolanaCLIConfig struct {
	JSONRPCURL   string `yaml:"json_rpc_url"`
	WebsocketURL string `yaml:"websocket_url"`
	KeypairPath  string `yaml:"keypair_path"`
	Commitment   string `yaml:"commitment"`
}

// DefaultSolanaCLIConfigPath returns ~/.config/solana/cli/config.yml
func DefaultSolanaCLIConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "solana", "cli", "config.yml")
}

// LoadSolanaCLIConfig parses a Solana CLI config file
func LoadSolanaCLIConfig(path string) (*SolanaCLIConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read solana config: %w", err)
	}

	var cfg SolanaCLIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse solana config: %w", err)
	}
	return &cfg, nil
}

// FillFrom sets fields the environment left empty from the Solana CLI config.
// The commitment is only taken when it was not explicitly configured.
func (c *Config) FillFrom(sc *SolanaCLIConfig) {
	if c.ProviderURL == "" {
		c.ProviderURL = sc.JSONRPCURL
	}
	if c.WSURL == "" {
		c.WSURL = sc.WebsocketURL
	}
	if c.WalletPath == "" {
		c.WalletPath = sc.KeypairPath
	}
	if os.Getenv(EnvCommitment) == "" && sc.Commitment != "" {
		c.Commitment = sc.Commitment
	}
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// IsDebugMode returns true if debug mode is enabled
func IsDebugMode() bool {
	return DebugMode == "true" || os.Getenv(EnvDebug) == "true"
}
