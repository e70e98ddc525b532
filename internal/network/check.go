package network

import (
	"context"
	"errors"
	"fmt"

	"dyme-cli/internal/provider"

	"github.com/gagliardetto/solana-go/rpc"
)

// ErrUnhealthy is returned when the node answers but reports itself unhealthy
var ErrUnhealthy = errors.New("rpc node is unhealthy")

// Status summarizes the RPC node
type Status struct {
	Endpoint   string
	Health     string
	SolanaCore string
	FeatureSet int64
}

// Check verifies the RPC node is reachable and healthy
func Check(ctx context.Context, prov *provider.Provider) (*Status, error) {
	status := &Status{Endpoint: prov.Endpoint}

	health, err := prov.Client.GetHealth(ctx)
	if err != nil {
		return status, fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	status.Health = health
	if health != rpc.HealthOk {
		return status, fmt.Errorf("%w: %s", ErrUnhealthy, health)
	}

	version, err := prov.Client.GetVersion(ctx)
	if err != nil {
		return status, fmt.Errorf("failed to get node version: %w", err)
	}
	status.SolanaCore = version.SolanaCore
	status.FeatureSet = version.FeatureSet

	return status, nil
}
