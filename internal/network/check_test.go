package network

import (
	"context"
	"encoding/json"
	"testing"

	"dyme-cli/internal/config"
	"dyme-cli/internal/provider"
	"dyme-cli/internal/testutil"

	"github.com/stretchr/testify/require"
)

func health(status string) testutil.Handler {
	return func(json.RawMessage) (interface{}, *testutil.RPCError) {
		return status, nil
	}
}

func version(json.RawMessage) (interface{}, *testutil.RPCError) {
	return map[string]interface{}{"solana-core": "1.18.26", "feature-set": 3241752014}, nil
}

func newProvider(t *testing.T, endpoint string) *provider.Provider {
	t.Helper()
	walletPath, _ := testutil.WriteKeypair(t, t.TempDir())
	prov, err := provider.New(&config.Config{
		ProviderURL: endpoint,
		WalletPath:  walletPath,
		Commitment:  config.DefaultCommitment,
	}, nil)
	require.NoError(t, err)
	return prov
}

func TestCheckHealthy(t *testing.T) {
	require := require.New(t)

	srv := testutil.NewRPCServer(t, map[string]testutil.Handler{
		"getHealth":  health("ok"),
		"getVersion": version,
	})

	status, err := Check(context.Background(), newProvider(t, srv.URL))
	require.NoError(err)
	require.Equal(srv.URL, status.Endpoint)
	require.Equal("ok", status.Health)
	require.Equal("1.18.26", status.SolanaCore)
	require.Equal(int64(3241752014), status.FeatureSet)
	require.Equal([]string{"getHealth", "getVersion"}, srv.Calls())
}

func TestCheckUnhealthy(t *testing.T) {
	require := require.New(t)

	srv := testutil.NewRPCServer(t, map[string]testutil.Handler{
		"getHealth":  testutil.Fail("Node is behind by 42 slots"),
		"getVersion": version,
	})

	status, err := Check(context.Background(), newProvider(t, srv.URL))
	require.ErrorIs(err, ErrUnhealthy)
	require.ErrorContains(err, "behind by 42 slots")
	require.Equal(srv.URL, status.Endpoint)
	require.Equal([]string{"getHealth"}, srv.Calls())
}

func TestCheckVersionFailure(t *testing.T) {
	srv := testutil.NewRPCServer(t, map[string]testutil.Handler{
		"getHealth": health("ok"),
	})

	status, err := Check(context.Background(), newProvider(t, srv.URL))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrUnhealthy)
	require.Equal(t, "ok", status.Health)
}
