// Package stake reads the staking program's on-chain accounts: StakePool and
// StakeEntry PDAs, their Borsh layouts, and the program's custom error codes.
package stake

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"dyme-cli/internal/idl"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

var (
	// ErrDiscriminator is returned when account data carries another type's tag
	ErrDiscriminator = errors.New("account discriminator mismatch")
	// ErrShortData is returned when account data is shorter than its tag
	ErrShortData = errors.New("account data too short")
)

var (
	poolDiscriminator  = idl.AccountDiscriminator("StakePool")
	entryDiscriminator = idl.AccountDiscriminator("StakeEntry")
)

// StakePool is the on-chain pool account, seeded by its identifier
type StakePool struct {
	Bump              uint8
	Authority         solana.PublicKey
	TotalStaked       uint32
	TokenAddress      solana.PublicKey
	Apr               uint64
	EndDate           *int64 `bin:"optional"`
	IsActive          bool
	Identifier        string
	PoolName          string
	DefaultMultiplier uint64
	CreatedAt         int64
}

// StakeEntry records one staker's position in a pool for a mint
type StakeEntry struct {
	Bump            uint8
	Pool            solana.PublicKey
	Amount          uint64
	StakeMint       solana.PublicKey
	LastStaker      solana.PublicKey
	LastStakedAt    int64
	MinStakeSeconds *uint32 `bin:"optional"`
	Apr             uint64
}

// DecodePool decodes StakePool account data including its 8-byte tag.
// Trailing bytes left by account resizing are ignored.
func DecodePool(data []byte) (*StakePool, error) {
	body, err := checkDiscriminator(data, poolDiscriminator, "StakePool")
	if err != nil {
		return nil, err
	}

	var pool StakePool
	if err := bin.NewBorshDecoder(body).Decode(&pool); err != nil {
		return nil, fmt.Errorf("failed to decode StakePool: %w", err)
	}
	return &pool, nil
}

// DecodeEntry decodes StakeEntry account data including its 8-byte tag
func DecodeEntry(data []byte) (*StakeEntry, error) {
	body, err := checkDiscriminator(data, entryDiscriminator, "StakeEntry")
	if err != nil {
		return nil, err
	}

	var entry StakeEntry
	if err := bin.NewBorshDecoder(body).Decode(&entry); err != nil {
		return nil, fmt.Errorf("failed to decode StakeEntry: %w", err)
	}
	return &entry, nil
}

func checkDiscriminator(data []byte, want idl.Discriminator, name string) ([]byte, error) {
	if len(data) < idl.DiscriminatorSize {
		return nil, fmt.Errorf("%w: %s has %d bytes", ErrShortData, name, len(data))
	}
	if !bytes.Equal(data[:idl.DiscriminatorSize], want[:]) {
		return nil, fmt.Errorf("%w: not a %s", ErrDiscriminator, name)
	}
	return data[idl.DiscriminatorSize:], nil
}

// Ended reports whether the pool has an end date strictly before now
func (p *StakePool) Ended(now time.Time) bool {
	return p.EndDate != nil && now.Unix() > *p.EndDate
}

// Locked reports whether an unstake at now would be inside the minimum
// stake window, which costs the staker a 30% deduction
func (e *StakeEntry) Locked(now time.Time) bool {
	if e.MinStakeSeconds == nil || *e.MinStakeSeconds == 0 {
		return false
	}
	return uint32(now.Unix()-e.LastStakedAt) < *e.MinStakeSeconds
}
