package vault

import (
	"path"
	"strings"
	"time"

	"github.com/corey/vaultlink/internal/ports"
)

// Parse builds a Document from a note's vault-relative path and content.
// The title is the file name without its extension.
func Parse(rel, content string, modTime time.Time) *ports.Document {
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	base := path.Base(rel)
	return &ports.Document{
		ID:      ports.DocIDFromPath(rel),
		Path:    rel,
		Title:   strings.TrimSuffix(base, path.Ext(base)),
		Aliases: parseAliases(lines),
		ModTime: modTime,
		Lines:   lines,
	}
}
