package stake

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"
	"time"

	"dyme-cli/internal/config"
	"dyme-cli/internal/provider"
	"dyme-cli/internal/testutil"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

// accountWriter lays out Borsh bytes by hand so the tests pin the wire format
type accountWriter struct{ bytes.Buffer }

func (w *accountWriter) u8(v uint8) { w.WriteByte(v) }
func (w *accountWriter) u32(v uint32) { binary.Write(w, binary.LittleEndian, v) }
func (w *accountWriter) u64(v uint64) { binary.Write(w, binary.LittleEndian, v) }
func (w *accountWriter) i64(v int64) { binary.Write(w, binary.LittleEndian, v) }
func (w *accountWriter) key(k solana.PublicKey) { w.Write(k[:]) }
func (w *accountWriter) str(s string) { w.u32(uint32(len(s))); w.WriteString(s) }
func (w *accountWriter) boolean(b bool) {
	if b {
		w.u8(1)
	} else {
		w.u8(0)
	}
}

func newKey(t *testing.T) solana.PublicKey {
	t.Helper()
	k, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return k.PublicKey()
}

func encodePool(p *StakePool, padding int) []byte {
	var w accountWriter
	w.Write(poolDiscriminator[:])
	w.u8(p.Bump)
	w.key(p.Authority)
	w.u32(p.TotalStaked)
	w.key(p.TokenAddress)
	w.u64(p.Apr)
	if p.EndDate != nil {
		w.u8(1)
		w.i64(*p.EndDate)
	} else {
		w.u8(0)
	}
	w.boolean(p.IsActive)
	w.str(p.Identifier)
	w.str(p.PoolName)
	w.u64(p.DefaultMultiplier)
	w.i64(p.CreatedAt)
	w.Write(make([]byte, padding))
	return w.Bytes()
}

func encodeEntry(e *StakeEntry) []byte {
	var w accountWriter
	w.Write(entryDiscriminator[:])
	w.u8(e.Bump)
	w.key(e.Pool)
	w.u64(e.Amount)
	w.key(e.StakeMint)
	w.key(e.LastStaker)
	w.i64(e.LastStakedAt)
	if e.MinStakeSeconds != nil {
		w.u8(1)
		w.u32(*e.MinStakeSeconds)
	} else {
		w.u8(0)
	}
	w.u64(e.Apr)
	return w.Bytes()
}

func samplePool(t *testing.T) *StakePool {
	end := int64(1_900_000_000)
	return &StakePool{
		Bump:              254,
		Authority:         newKey(t),
		TotalStaked:       3,
		TokenAddress:      newKey(t),
		Apr:               1250,
		EndDate:           &end,
		IsActive:          true,
		Identifier:        "genesis",
		PoolName:          "Genesis Pool",
		DefaultMultiplier: 9,
		CreatedAt:         1_700_000_000,
	}
}

func TestDecodePool(t *testing.T) {
	require := require.New(t)

	want := samplePool(t)
	// Resized accounts carry trailing zeros
	got, err := DecodePool(encodePool(want, 40))
	require.NoError(err)
	require.Equal(want, got)

	want.EndDate = nil
	got, err = DecodePool(encodePool(want, 0))
	require.NoError(err)
	require.Nil(got.EndDate)
	require.Equal("Genesis Pool", got.PoolName)
}

func TestDecodeEntry(t *testing.T) {
	require := require.New(t)

	minSeconds := uint32(86_400)
	want := &StakeEntry{
		Bump:            253,
		Pool:            newKey(t),
		Amount:          5_000_000,
		StakeMint:       newKey(t),
		LastStaker:      newKey(t),
		LastStakedAt:    1_700_000_000,
		MinStakeSeconds: &minSeconds,
		Apr:             10_000,
	}
	got, err := DecodeEntry(encodeEntry(want))
	require.NoError(err)
	require.Equal(want, got)
}

func TestDecodeRejectsWrongAccount(t *testing.T) {
	require := require.New(t)

	poolData := encodePool(samplePool(t), 0)
	_, err := DecodeEntry(poolData)
	require.ErrorIs(err, ErrDiscriminator)

	_, err = DecodePool([]byte{1, 2, 3})
	require.ErrorIs(err, ErrShortData)

	// Correct tag, truncated body
	_, err = DecodePool(poolData[:20])
	require.Error(err)
}

func TestPoolEnded(t *testing.T) {
	end := int64(1_000)
	pool := &StakePool{EndDate: &end}
	require.False(t, pool.Ended(time.Unix(1_000, 0)))
	require.True(t, pool.Ended(time.Unix(1_001, 0)))

	pool.EndDate = nil
	require.False(t, pool.Ended(time.Unix(1<<40, 0)))
}

func TestEntryLocked(t *testing.T) {
	minSeconds := uint32(60)
	entry := &StakeEntry{LastStakedAt: 1_000, MinStakeSeconds: &minSeconds}
	require.True(t, entry.Locked(time.Unix(1_059, 0)))
	require.False(t, entry.Locked(time.Unix(1_060, 0)))

	zero := uint32(0)
	entry.MinStakeSeconds = &zero
	require.False(t, entry.Locked(time.Unix(1_001, 0)))

	entry.MinStakeSeconds = nil
	require.False(t, entry.Locked(time.Unix(1_001, 0)))
}

func TestPoolAddress(t *testing.T) {
	require := require.New(t)

	a, bumpA, err := PoolAddress(ProgramID, "genesis")
	require.NoError(err)
	again, bumpAgain, err := PoolAddress(ProgramID, "genesis")
	require.NoError(err)
	require.Equal(a, again)
	require.Equal(bumpA, bumpAgain)

	b, _, err := PoolAddress(ProgramID, "other")
	require.NoError(err)
	require.NotEqual(a, b)

	// The bump reproduces the address
	created, err := solana.CreateProgramAddress([][]byte{[]byte(PoolSeed), []byte("genesis"), {bumpA}}, ProgramID)
	require.NoError(err)
	require.Equal(a, created)
}

func TestEntryAddress(t *testing.T) {
	require := require.New(t)

	pool, _, err := PoolAddress(ProgramID, "genesis")
	require.NoError(err)
	mint, staker := newKey(t), newKey(t)

	a, bump, err := EntryAddress(ProgramID, pool, mint, staker)
	require.NoError(err)

	created, err := solana.CreateProgramAddress(
		[][]byte{[]byte(EntrySeed), pool[:], mint[:], staker[:], {bump}}, ProgramID)
	require.NoError(err)
	require.Equal(a, created)

	other, _, err := EntryAddress(ProgramID, pool, mint, newKey(t))
	require.NoError(err)
	require.NotEqual(a, other)
}

func TestLookupError(t *testing.T) {
	require := require.New(t)

	e, ok := LookupError(6000)
	require.True(ok)
	require.Equal("StakePoolHasEnded", e.Name)

	e, ok = LookupError(6007)
	require.True(ok)
	require.Equal("InvalidStaker: Invalid Staker", e.String())

	_, ok = LookupError(6008)
	require.False(ok)
	_, ok = LookupError(5999)
	require.False(ok)

	all := Errors()
	require.Len(all, 8)
	for i, e := range all {
		require.Equal(uint32(ErrorCodeOffset+i), e.Code)
	}
}

func newProvider(t *testing.T, endpoint string) *provider.Provider {
	t.Helper()
	walletPath, _ := testutil.WriteKeypair(t, t.TempDir())
	prov, err := provider.New(&config.Config{
		ProviderURL: endpoint,
		WalletPath:  walletPath,
		Commitment:  "confirmed",
	}, nil)
	require.NoError(t, err)
	return prov
}

func TestFetchPool(t *testing.T) {
	require := require.New(t)

	want := samplePool(t)
	srv := testutil.NewRPCServer(t, map[string]testutil.Handler{
		"getAccountInfo": testutil.AccountInfo(ProgramID, encodePool(want, 0)),
	})
	prov := newProvider(t, srv.URL)

	address, _, err := PoolAddress(ProgramID, want.Identifier)
	require.NoError(err)

	got, err := FetchPool(context.Background(), prov, ProgramID, address)
	require.NoError(err)
	require.Equal(want, got)
	require.Equal([]string{"getAccountInfo"}, srv.Calls())
}

func TestFetchEntryFailures(t *testing.T) {
	entryData := encodeEntry(&StakeEntry{Pool: newKey(t)})

	tests := []struct {
		name    string
		handler testutil.Handler
		wantErr error
	}{
		{"missing", testutil.AccountInfo(ProgramID, nil), ErrAccountNotFound},
		{"foreign owner", testutil.AccountInfo(solana.SystemProgramID, entryData), ErrOwner},
		{"wrong type", testutil.AccountInfo(ProgramID, encodePool(samplePool(t), 0)), ErrDiscriminator},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testutil.NewRPCServer(t, map[string]testutil.Handler{"getAccountInfo": tt.handler})
			prov := newProvider(t, srv.URL)

			_, err := FetchEntry(context.Background(), prov, ProgramID, newKey(t))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
