// Package provider bundles an RPC connection with the signer identity used to
// talk to a Solana cluster. A Provider is built once per process and passed
// explicitly to every operation that needs it.
package provider

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"dyme-cli/internal/config"
	"dyme-cli/internal/logger"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// KeyringPrefix selects a keyring-stored wallet in ANCHOR_WALLET, e.g. keyring:default
const KeyringPrefix = "keyring:"

// ErrSigner is returned when the wallet cannot be loaded
var ErrSigner = errors.New("failed to load signer")

// KeyLoader loads a named private key from a wallet store
type KeyLoader interface {
	Load(name string) (solana.PrivateKey, error)
}

// Provider is a connection to a cluster plus the wallet that signs for it
type Provider struct {
	Client     *rpc.Client
	Endpoint   string
	WSEndpoint string
	Commitment rpc.CommitmentType

	signer solana.PrivateKey
}

// New builds a provider from cfg. No network requests are made.
// wallets may be nil when keyring wallets are not needed.
func New(cfg *config.Config, wallets KeyLoader) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	commitment, err := ParseCommitment(cfg.Commitment)
	if err != nil {
		return nil, err
	}

	signer, err := loadSigner(cfg.WalletPath, wallets)
	if err != nil {
		return nil, err
	}

	if err := CheckToken(cfg.RPCToken); err != nil {
		return nil, err
	}

	var client *rpc.Client
	if cfg.RPCToken != "" {
		client = rpc.NewWithHeaders(cfg.ProviderURL, map[string]string{
			"Authorization": "Bearer " + cfg.RPCToken,
		})
	} else {
		client = rpc.New(cfg.ProviderURL)
	}

	wsEndpoint := cfg.WSURL
	if wsEndpoint == "" {
		wsEndpoint, err = DeriveWSEndpoint(cfg.ProviderURL)
		if err != nil {
			return nil, err
		}
	}

	p := &Provider{
		Client:     client,
		Endpoint:   cfg.ProviderURL,
		WSEndpoint: wsEndpoint,
		Commitment: commitment,
		signer:     signer,
	}
	logger.Debug("provider ready: endpoint=%s ws=%s commitment=%s wallet=%s",
		p.Endpoint, p.WSEndpoint, p.Commitment, p.PublicKey())

	return p, nil
}

// PublicKey returns the wallet address
func (p *Provider) PublicKey() solana.PublicKey {
	return p.signer.PublicKey()
}

func loadSigner(walletPath string, wallets KeyLoader) (solana.PrivateKey, error) {
	if name, ok := strings.CutPrefix(walletPath, KeyringPrefix); ok {
		if wallets == nil {
			return nil, fmt.Errorf("%w: keyring wallets are not available", ErrSigner)
		}
		key, err := wallets.Load(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSigner, err)
		}
		return key, nil
	}

	key, err := solana.PrivateKeyFromSolanaKeygenFile(config.ExpandHome(walletPath))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSigner, walletPath, err)
	}
	return key, nil
}

// ParseCommitment accepts processed, confirmed or finalized
func ParseCommitment(s string) (rpc.CommitmentType, error) {
	switch c := rpc.CommitmentType(strings.ToLower(s)); c {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
		return c, nil
	default:
		return "", fmt.Errorf("unknown commitment %q", s)
	}
}

// DeriveWSEndpoint maps an RPC URL to its websocket URL the way the Solana
// tooling does: http becomes ws, https becomes wss, an explicit port is
// incremented by one.
func DeriveWSEndpoint(rpcURL string) (string, error) {
	u, err := url.Parse(rpcURL)
	if err != nil {
		return "", fmt.Errorf("invalid provider url %q: %w", rpcURL, err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid provider url %q: unsupported scheme", rpcURL)
	}

	if port := u.Port(); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return "", fmt.Errorf("invalid provider url %q: %w", rpcURL, err)
		}
		u.Host = net.JoinHostPort(u.Hostname(), strconv.Itoa(n+1))
	}

	return u.String(), nil
}
