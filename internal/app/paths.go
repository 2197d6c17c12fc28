package app

import (
	"os"
	"path/filepath"

	"github.com/corey/vaultlink/internal/config"
)

// Paths holds the resolved filesystem paths vaultlink uses inside a vault.
type Paths struct {
	Vault    string // vault root
	Config   string // <vault>/.vaultlink.yaml
	Root     string // <vault>/.vaultlink/
	Snapshot string // <vault>/.vaultlink/snapshot.db
}

// NewPaths constructs all resolved paths from a vault root directory.
func NewPaths(vault string) *Paths {
	root := filepath.Join(vault, ".vaultlink")
	return &Paths{
		Vault:    vault,
		Config:   filepath.Join(vault, config.FileName),
		Root:     root,
		Snapshot: filepath.Join(root, "snapshot.db"),
	}
}

// EnsureDirs creates the .vaultlink/ directory. Idempotent.
func (p *Paths) EnsureDirs() error {
	return os.MkdirAll(p.Root, 0755)
}
