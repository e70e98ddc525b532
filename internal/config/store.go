package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// WalletRecord represents a wallet whose secret key lives in the OS keyring
type WalletRecord struct {
	Name      string    `json:"name"`
	PublicKey string    `json:"public_key"`
	CreatedAt time.Time `json:"created_at"`
}

// WalletIndex is the on-disk list of stored wallets
type WalletIndex struct {
	Wallets  map[string]*WalletRecord `json:"wallets"`
	LastSync time.Time                `json:"last_sync"`
}

// StoreManager handles the local wallet index
type StoreManager struct {
	indexFile string
}

// NewStoreManager creates a store manager rooted at dir.
// An empty dir selects ~/.dyme.
func NewStoreManager(dir string) (*StoreManager, error) {
	if dir == "" {
		var err error
		dir, err = GetConfigDir()
		if err != nil {
			return nil, err
		}
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &StoreManager{
		indexFile: filepath.Join(dir, "wallets.json"),
	}, nil
}

// LoadIndex loads the wallet index
func (sm *StoreManager) LoadIndex() (*WalletIndex, error) {
	if _, err := os.Stat(sm.indexFile); os.IsNotExist(err) {
		// Return empty index if file doesn't exist
		return &WalletIndex{Wallets: make(map[string]*WalletRecord)}, nil
	}

	data, err := os.ReadFile(sm.indexFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read wallet index: %w", err)
	}

	var index WalletIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to parse wallet index: %w", err)
	}

	if index.Wallets == nil {
		index.Wallets = make(map[string]*WalletRecord)
	}

	return &index, nil
}

// SaveIndex saves the wallet index
func (sm *StoreManager) SaveIndex(index *WalletIndex) error {
	index.LastSync = time.Now()

	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal wallet index: %w", err)
	}

	return os.WriteFile(sm.indexFile, data, 0600)
}

// PutWallet adds or replaces a wallet record
func (sm *StoreManager) PutWallet(record *WalletRecord) error {
	index, err := sm.LoadIndex()
	if err != nil {
		return err
	}

	index.Wallets[record.Name] = record
	return sm.SaveIndex(index)
}

// GetWallet returns the record for name, or nil when it is not stored
func (sm *StoreManager) GetWallet(name string) (*WalletRecord, error) {
	index, err := sm.LoadIndex()
	if err != nil {
		return nil, err
	}
	return index.Wallets[name], nil
}

// RemoveWallet deletes a wallet record
func (sm *StoreManager) RemoveWallet(name string) error {
	index, err := sm.LoadIndex()
	if err != nil {
		return err
	}

	if _, exists := index.Wallets[name]; !exists {
		return fmt.Errorf("wallet %s not found", name)
	}

	delete(index.Wallets, name)
	return sm.SaveIndex(index)
}

// ListWallets returns stored wallets ordered by name
func (sm *StoreManager) ListWallets() ([]*WalletRecord, error) {
	index, err := sm.LoadIndex()
	if err != nil {
		return nil, err
	}

	records := make([]*WalletRecord, 0, len(index.Wallets))
	for _, record := range index.Wallets {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })

	return records, nil
}

// GetConfigDir returns the configuration directory
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(homeDir, ".dyme")

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}

	return configDir, nil
}
