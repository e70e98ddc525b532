package wallet

import (
	"errors"
	"fmt"
	"time"

	"dyme-cli/internal/config"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/zalando/go-keyring"
)

const KeyringService = "dyme-cli"

// ErrNotFound is returned when no wallet is stored under a name
var ErrNotFound = errors.New("wallet not found")

// Manager keeps secret keys in the OS keyring and a public index on disk
type Manager struct {
	store *config.StoreManager
}

func NewManager(store *config.StoreManager) *Manager {
	return &Manager{store: store}
}

// Import reads a Solana keygen file and stores its secret key under name
func (m *Manager) Import(name, keypairPath string) (*config.WalletRecord, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(config.ExpandHome(keypairPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read keypair: %w", err)
	}

	if err := keyring.Set(KeyringService, name, base58.Encode(key)); err != nil {
		return nil, fmt.Errorf("failed to save key to keyring: %w", err)
	}

	record := &config.WalletRecord{
		Name:      name,
		PublicKey: key.PublicKey().String(),
		CreatedAt: time.Now().UTC(),
	}
	if err := m.store.PutWallet(record); err != nil {
		return nil, fmt.Errorf("failed to save wallet index: %w", err)
	}

	return record, nil
}

// Load returns the private key stored under name
func (m *Manager) Load(name string) (solana.PrivateKey, error) {
	secret, err := keyring.Get(KeyringService, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key from keyring: %w", err)
	}

	raw, err := base58.Decode(secret)
	if err != nil {
		return nil, fmt.Errorf("stored key for %s is not base58: %w", name, err)
	}
	if len(raw) != 64 {
		return nil, fmt.Errorf("stored key for %s has length %d, want 64", name, len(raw))
	}

	return solana.PrivateKey(raw), nil
}

// Forget removes the wallet from the keyring and the index
func (m *Manager) Forget(name string) error {
	err := keyring.Delete(KeyringService, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("failed to delete key from keyring: %w", err)
	}

	record, err := m.store.GetWallet(name)
	if err != nil {
		return err
	}
	if record == nil {
		return nil
	}
	return m.store.RemoveWallet(name)
}

// List returns all stored wallets
func (m *Manager) List() ([]*config.WalletRecord, error) {
	return m.store.ListWallets()
}
