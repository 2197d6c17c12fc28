// vaultlink finds unlinked mentions of note titles in a markdown vault.
// Single binary, zero config: index a vault, scan for mentions, list
// dangling wikilinks.
package main

import (
	"os"

	"github.com/corey/vaultlink/cmd/vaultlink/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
