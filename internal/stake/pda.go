package stake

import (
	"github.com/gagliardetto/solana-go"
)

const (
	PoolSeed  = "stake-pool"
	EntrySeed = "stake-entry"
)

var (
	ProgramID  = solana.MustPublicKeyFromBase58("6rbcJVHa32dKfw8kF1F1quSravjCLxpcjyuEqw7rP2Gc")
	SuperAdmin = solana.MustPublicKeyFromBase58("Bx6Z6XxCSdwtqmiKP9prwU7m8NDuUcA11FtPdSZ5Fw9B")
)

// PlatformFee is charged to the pool creator, in lamports (0.5 SOL)
const PlatformFee uint64 = 500_000_000

// PoolAddress derives the StakePool PDA for identifier
func PoolAddress(programID solana.PublicKey, identifier string) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{[]byte(PoolSeed), []byte(identifier)},
		programID,
	)
}

// EntryAddress derives the StakeEntry PDA for a staker in a pool
func EntryAddress(programID, pool, mint, staker solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{[]byte(EntrySeed), pool[:], mint[:], staker[:]},
		programID,
	)
}
