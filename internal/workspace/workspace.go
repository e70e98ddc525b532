package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const ManifestName = "Anchor.toml"

// ErrNoWorkspace is returned when no Anchor.toml is found
var ErrNoWorkspace = errors.New("no Anchor.toml found")

// Workspace is a parsed Anchor project
type Workspace struct {
	Root     string
	Manifest Manifest
}

// Manifest mirrors the parts of Anchor.toml the client needs
type Manifest struct {
	Programs map[string]map[string]string `toml:"programs"`
	Provider struct {
		Cluster string `toml:"cluster"`
		Wallet  string `toml:"wallet"`
	} `toml:"provider"`
}

// Find walks up from dir to the first directory holding Anchor.toml
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, ManifestName)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoWorkspace
		}
		dir = parent
	}
}

// Open locates and parses the workspace containing dir
func Open(dir string) (*Workspace, error) {
	root, err := Find(dir)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if _, err := toml.DecodeFile(filepath.Join(root, ManifestName), &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ManifestName, err)
	}

	return &Workspace{Root: root, Manifest: m}, nil
}

// Cluster returns the [programs.*] key to use. Custom URLs fall back to localnet.
func (w *Workspace) Cluster() string {
	switch c := strings.ToLower(w.Manifest.Provider.Cluster); c {
	case "localnet", "devnet", "testnet", "mainnet":
		return c
	case "mainnet-beta":
		return "mainnet"
	default:
		return "localnet"
	}
}

// ProgramID returns the address declared for name under the active cluster
func (w *Workspace) ProgramID(name string) (string, bool) {
	programs, ok := w.Manifest.Programs[w.Cluster()]
	if !ok {
		return "", false
	}
	id, ok := programs[name]
	return id, ok && id != ""
}

// IDLPath returns target/idl/<name>.json inside the workspace
func (w *Workspace) IDLPath(name string) string {
	return filepath.Join(w.Root, "target", "idl", name+".json")
}
