package stake

import (
	"context"
	"errors"
	"fmt"

	"dyme-cli/internal/logger"
	"dyme-cli/internal/provider"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrOwner           = errors.New("account is not owned by the program")
)

// FetchPool reads and decodes the StakePool at address
func FetchPool(ctx context.Context, prov *provider.Provider, programID, address solana.PublicKey) (*StakePool, error) {
	data, err := fetch(ctx, prov, programID, address)
	if err != nil {
		return nil, err
	}
	return DecodePool(data)
}

// FetchEntry reads and decodes the StakeEntry at address
func FetchEntry(ctx context.Context, prov *provider.Provider, programID, address solana.PublicKey) (*StakeEntry, error) {
	data, err := fetch(ctx, prov, programID, address)
	if err != nil {
		return nil, err
	}
	return DecodeEntry(data)
}

func fetch(ctx context.Context, prov *provider.Provider, programID, address solana.PublicKey) ([]byte, error) {
	logger.Debug("getAccountInfo %s (%s)", address, prov.Commitment)

	out, err := prov.Client.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: prov.Commitment,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch account %s: %w", address, err)
	}
	if out == nil || out.Value == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}

	if !out.Value.Owner.Equals(programID) {
		return nil, fmt.Errorf("%w: %s is owned by %s", ErrOwner, address, out.Value.Owner)
	}

	return out.Value.Data.GetBinary(), nil
}
