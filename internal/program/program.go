package program

import (
	"errors"
	"fmt"

	"dyme-cli/internal/idl"
	"dyme-cli/internal/logger"
	"dyme-cli/internal/provider"
	"dyme-cli/internal/stake"
	"dyme-cli/internal/workspace"

	"github.com/gagliardetto/solana-go"
)

// ErrNotFound is returned when a program cannot be resolved from the workspace
var ErrNotFound = errors.New("program not found in workspace")

// Program is a handle to a deployed program bound to its IDL and a provider
type Program struct {
	Name     string
	ID       solana.PublicKey
	IDL      *idl.IDL
	Provider *provider.Provider
}

// Resolve builds a handle for name from the workspace manifest and IDL.
// It performs no network requests.
func Resolve(ws *workspace.Workspace, name string, prov *provider.Provider) (*Program, error) {
	desc, err := idl.Load(ws.IDLPath(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, name, err)
	}

	address, ok := ws.ProgramID(name)
	if !ok {
		address = desc.Address
	}
	if address == "" {
		return nil, fmt.Errorf("%w: %s has no address for cluster %s", ErrNotFound, name, ws.Cluster())
	}

	id, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: invalid address %q: %w", ErrNotFound, name, address, err)
	}

	logger.Debug("resolved program %s at %s (idl %s)", name, id, desc.Version)

	return &Program{
		Name:     name,
		ID:       id,
		IDL:      desc,
		Provider: prov,
	}, nil
}

// Open finds the workspace from dir and resolves name in it
func Open(dir, name string, prov *provider.Provider) (*Program, error) {
	ws, err := workspace.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return Resolve(ws, name, prov)
}

// ErrorMessage describes a custom program error code, preferring the IDL
func (p *Program) ErrorMessage(code uint32) (string, bool) {
	if e, ok := p.IDL.Error(code); ok {
		return fmt.Sprintf("%s: %s", e.Name, e.Msg), true
	}
	if e, ok := stake.LookupError(code); ok {
		return e.String(), true
	}
	return "", false
}
