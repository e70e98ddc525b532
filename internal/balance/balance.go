package balance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"dyme-cli/internal/logger"
	"dyme-cli/internal/provider"

	"github.com/gagliardetto/solana-go"
)

// ErrRequest is returned when the balance lookup fails
var ErrRequest = errors.New("balance request failed")

// Report prints the wallet address, then fetches and prints its balance.
// The address line is written before the request so it survives a failed lookup.
func Report(ctx context.Context, prov *provider.Provider, w io.Writer) error {
	owner := prov.PublicKey()
	if _, err := fmt.Fprintf(w, "My address: %s\n", owner); err != nil {
		return err
	}

	lamports, err := Fetch(ctx, prov, owner)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "My balance: %s SOL\n", FormatSOL(lamports))
	return err
}

// Fetch issues a single getBalance request for account
func Fetch(ctx context.Context, prov *provider.Provider, account solana.PublicKey) (uint64, error) {
	logger.Debug("getBalance %s (%s)", account, prov.Commitment)

	out, err := prov.Client.GetBalance(ctx, account, prov.Commitment)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	if out == nil {
		return 0, fmt.Errorf("%w: empty response", ErrRequest)
	}
	return out.Value, nil
}

// FormatSOL renders lamports as a SOL decimal without trailing zeros.
// Integer arithmetic keeps every lamport exact.
func FormatSOL(lamports uint64) string {
	whole := lamports / solana.LAMPORTS_PER_SOL
	frac := lamports % solana.LAMPORTS_PER_SOL

	if frac == 0 {
		return strconv.FormatUint(whole, 10)
	}

	digits := fmt.Sprintf("%09d", frac)
	return strconv.FormatUint(whole, 10) + "." + strings.TrimRight(digits, "0")
}
