// Package testutil provides a JSON-RPC stub and on-disk fixtures for tests.
package testutil

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

// ProgramID is the address fixtures declare for the utils program
const ProgramID = "6rbcJVHa32dKfw8kF1F1quSravjCLxpcjyuEqw7rP2Gc"

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Handler answers one JSON-RPC method
type Handler func(params json.RawMessage) (interface{}, *RPCError)

// RPCServer is an HTTP JSON-RPC stub that records every method it is asked for
type RPCServer struct {
	*httptest.Server

	mu      sync.Mutex
	calls   []string
	headers []http.Header
}

func NewRPCServer(t testing.TB, handlers map[string]Handler) *RPCServer {
	s := &RPCServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		s.calls = append(s.calls, req.Method)
		s.headers = append(s.headers, r.Header.Clone())
		s.mu.Unlock()

		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		if h, ok := handlers[req.Method]; ok {
			result, rpcErr := h(req.Params)
			if rpcErr != nil {
				resp["error"] = rpcErr
			} else {
				resp["result"] = result
			}
		} else {
			resp["error"] = &RPCError{Code: -32601, Message: "Method not found"}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(s.Close)
	return s
}

// Calls returns the methods received so far, in order
func (s *RPCServer) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// LastHeader returns the headers of the most recent request
func (s *RPCServer) LastHeader() http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.headers) == 0 {
		return nil
	}
	return s.headers[len(s.headers)-1]
}

// Balance answers getBalance with lamports
func Balance(lamports uint64) Handler {
	return func(json.RawMessage) (interface{}, *RPCError) {
		return map[string]interface{}{
			"context": map[string]uint64{"slot": 1},
			"value":   lamports,
		}, nil
	}
}

// Fail answers any method with a server error
func Fail(msg string) Handler {
	return func(json.RawMessage) (interface{}, *RPCError) {
		return nil, &RPCError{Code: -32000, Message: msg}
	}
}

// AccountInfo answers getAccountInfo; nil data means the account does not exist
func AccountInfo(owner solana.PublicKey, data []byte) Handler {
	return func(json.RawMessage) (interface{}, *RPCError) {
		if data == nil {
			return map[string]interface{}{
				"context": map[string]uint64{"slot": 1},
				"value":   nil,
			}, nil
		}
		return map[string]interface{}{
			"context": map[string]uint64{"slot": 1},
			"value": map[string]interface{}{
				"data":       []string{base64.StdEncoding.EncodeToString(data), "base64"},
				"executable": false,
				"lamports":   1_000_000,
				"owner":      owner.String(),
				"rentEpoch":  0,
				"space":      len(data),
			},
		}, nil
	}
}

// WriteKeypair writes a fresh Solana keygen file into dir
func WriteKeypair(t testing.TB, dir string) (string, solana.PrivateKey) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	// Keygen files are JSON arrays of numbers, not base64
	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	data, err := json.Marshal(ints)
	require.NoError(t, err)

	path := filepath.Join(dir, "id.json")
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path, key
}

// UtilsIDL is a trimmed 0.30-style IDL for the utils program
const UtilsIDL = `{
  "address": "` + ProgramID + `",
  "metadata": {"name": "utils", "version": "0.1.0", "spec": "0.1.0"},
  "instructions": [
    {
      "name": "freeze_pool",
      "discriminator": [211, 216, 1, 216, 54, 191, 102, 150],
      "accounts": [
        {"name": "stake_pool", "writable": true},
        {"name": "payer", "writable": true, "signer": true},
        {"name": "system_program"}
      ],
      "args": []
    },
    {
      "name": "unstake_token",
      "accounts": [{"name": "payer", "writable": true, "signer": true}],
      "args": [{"name": "ix", "type": {"defined": {"name": "UnstakeIx"}}}]
    }
  ],
  "accounts": [
    {"name": "StakeEntry", "discriminator": [187, 127, 9, 35, 155, 68, 86, 40]},
    {"name": "StakePool", "discriminator": [121, 34, 206, 21, 79, 127, 255, 28]}
  ],
  "errors": [
    {"code": 6000, "name": "StakePoolHasEnded", "msg": "Stake pool has ended"},
    {"code": 6002, "name": "PoolFrozen", "msg": "Pool is frozen"}
  ],
  "types": [
    {"name": "UnstakeIx", "type": {"kind": "struct", "fields": [{"name": "amount", "type": "u64"}]}}
  ]
}`

// WriteWorkspace lays out Anchor.toml and target/idl/<name>.json under dir.
// An empty programID leaves the [programs] table out.
func WriteWorkspace(t testing.TB, dir, name, programID, idlJSON string) {
	manifest := "[provider]\ncluster = \"Localnet\"\nwallet = \"~/.config/solana/id.json\"\n"
	if programID != "" {
		manifest = fmt.Sprintf("[programs.localnet]\n%s = %q\n\n", name, programID) + manifest
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Anchor.toml"), []byte(manifest), 0644))

	if idlJSON == "" {
		return
	}
	idlDir := filepath.Join(dir, "target", "idl")
	require.NoError(t, os.MkdirAll(idlDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(idlDir, name+".json"), []byte(idlJSON), 0644))
}
