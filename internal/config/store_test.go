package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStoreManagerWallets(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	sm, err := NewStoreManager(dir)
	require.NoError(err)

	// Empty before anything is written
	records, err := sm.ListWallets()
	require.NoError(err)
	require.Empty(records)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(sm.PutWallet(&WalletRecord{Name: "ops", PublicKey: "B", CreatedAt: now}))
	require.NoError(sm.PutWallet(&WalletRecord{Name: "dev", PublicKey: "A", CreatedAt: now}))

	records, err = sm.ListWallets()
	require.NoError(err)
	require.Len(records, 2)
	require.Equal("dev", records[0].Name)
	require.Equal("ops", records[1].Name)

	got, err := sm.GetWallet("ops")
	require.NoError(err)
	require.Equal("B", got.PublicKey)
	require.True(now.Equal(got.CreatedAt))

	require.NoError(sm.RemoveWallet("ops"))
	require.Error(sm.RemoveWallet("ops"))

	got, err = sm.GetWallet("ops")
	require.NoError(err)
	require.Nil(got)

	info, err := os.Stat(filepath.Join(dir, "wallets.json"))
	require.NoError(err)
	require.Equal(os.FileMode(0600), info.Mode().Perm())
}

func TestStoreManagerCorruptIndex(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wallets.json"), []byte("{not json"), 0600))

	sm, err := NewStoreManager(dir)
	require.NoError(t, err)

	_, err = sm.LoadIndex()
	require.ErrorContains(t, err, "failed to parse wallet index")
}
