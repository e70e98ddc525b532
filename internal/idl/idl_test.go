package idl

import (
	"os"
	"path/filepath"
	"testing"

	"dyme-cli/internal/testutil"

	"github.com/stretchr/testify/require"
)

const legacyIDL = `{
  "version": "0.1.0",
  "name": "utils",
  "instructions": [
    {
      "name": "initStakeEntry",
      "accounts": [
        {"name": "stakeEntry", "isMut": true, "isSigner": false},
        {"name": "payer", "isMut": true, "isSigner": true}
      ],
      "args": []
    }
  ],
  "accounts": [
    {
      "name": "StakeEntry",
      "type": {"kind": "struct", "fields": [{"name": "bump", "type": "u8"}, {"name": "amount", "type": "u64"}]}
    }
  ],
  "errors": [{"code": 6007, "name": "InvalidStaker", "msg": "Invalid Staker"}],
  "metadata": {"address": "6rbcJVHa32dKfw8kF1F1quSravjCLxpcjyuEqw7rP2Gc"}
}`

func TestParseCurrentLayout(t *testing.T) {
	require := require.New(t)

	d, err := Parse([]byte(testutil.UtilsIDL))
	require.NoError(err)

	require.Equal(testutil.ProgramID, d.Address)
	require.Equal("utils", d.Name)
	require.Equal("0.1.0", d.Version)

	ix, ok := d.Instruction("freeze_pool")
	require.True(ok)
	require.Equal(InstructionDiscriminator("freeze_pool"), ix.Discriminator)
	require.Len(ix.Accounts, 3)
	require.True(ix.Accounts[1].Signer)
	require.True(ix.Accounts[1].Writable)
	require.False(ix.Accounts[2].Writable)

	// Discriminator is derived when the IDL omits it
	ix, ok = d.Instruction("unstakeToken")
	require.True(ok)
	require.Equal(InstructionDiscriminator("unstake_token"), ix.Discriminator)
	require.JSONEq(`{"defined": {"name": "UnstakeIx"}}`, string(ix.Args[0].Type))

	acc, ok := d.Account("StakePool")
	require.True(ok)
	require.Equal(AccountDiscriminator("StakePool"), acc.Discriminator)

	e, ok := d.Error(6002)
	require.True(ok)
	require.Equal("PoolFrozen", e.Name)
	_, ok = d.Error(6001)
	require.False(ok)

	typ, ok := d.Type("UnstakeIx")
	require.True(ok)
	require.Equal("struct", typ.Kind)
	require.Equal("amount", typ.Fields[0].Name)
}

func TestParseLegacyLayout(t *testing.T) {
	require := require.New(t)

	d, err := Parse([]byte(legacyIDL))
	require.NoError(err)

	require.Equal(testutil.ProgramID, d.Address)
	require.Equal("utils", d.Name)

	ix, ok := d.Instruction("init_stake_entry")
	require.True(ok)
	require.Equal(InstructionDiscriminator("init_stake_entry"), ix.Discriminator)
	require.True(ix.Accounts[0].Writable)
	require.False(ix.Accounts[0].Signer)
	require.True(ix.Accounts[1].Signer)

	acc, ok := d.Account("StakeEntry")
	require.True(ok)
	require.Equal(AccountDiscriminator("StakeEntry"), acc.Discriminator)

	// Legacy account layouts are surfaced as types
	typ, ok := d.Type("StakeEntry")
	require.True(ok)
	require.Len(typ.Fields, 2)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"not json", `{`},
		{"no name", `{"address": "` + testutil.ProgramID + `"}`},
		{"bad address", `{"address": "not-a-key", "metadata": {"name": "utils"}}`},
		{"short discriminator", `{"metadata": {"name": "utils"}, "accounts": [{"name": "A", "discriminator": [1, 2]}]}`},
		{"byte out of range", `{"metadata": {"name": "utils"}, "instructions": [{"name": "a", "discriminator": [1,2,3,4,5,6,7,256]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.json))
			require.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "utils.json")
	require.NoError(t, os.WriteFile(path, []byte(testutil.UtilsIDL), 0644))

	d, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "utils", d.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestDiscriminators(t *testing.T) {
	// Values produced by Anchor for the staking program
	require.Equal(t, Discriminator{121, 34, 206, 21, 79, 127, 255, 28}, AccountDiscriminator("StakePool"))
	require.Equal(t, Discriminator{187, 127, 9, 35, 155, 68, 86, 40}, AccountDiscriminator("StakeEntry"))
	require.Equal(t, Discriminator{211, 216, 1, 216, 54, 191, 102, 150}, InstructionDiscriminator("freezePool"))
}

func TestToSnake(t *testing.T) {
	tests := map[string]string{
		"initPool":     "init_pool",
		"InitPool":     "init_pool",
		"init_pool":    "init_pool",
		"unstakeToken": "unstake_token",
		"":             "",
	}
	for in, want := range tests {
		require.Equal(t, want, ToSnake(in), in)
	}
}
