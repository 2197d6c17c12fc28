// Package wikilink extracts [[Target]] style links from markdown lines.
package wikilink

import (
	"regexp"
	"strings"
)

// linkRe matches [[target]], [[target|alias]], [[target#heading]] and
// [[target#heading|alias]]. The optional leading "!" marks an embed.
var linkRe = regexp.MustCompile(`(!?)\[\[([^\]\|#]*)(?:#([^\]\|]*))?(?:\|([^\]]*))?\]\]`)

// Link is one wikilink occurrence.
type Link struct {
	Target  string // note name, trimmed
	Heading string // anchor after "#", trimmed; "" when absent
	Alias   string // display text after "|", trimmed; "" when absent
	Line    int    // index into the scanned lines
	Raw     string // the full [[...]] text
}

// Display returns what a reader sees: the alias when set, else the target.
func (l Link) Display() string {
	if l.Alias != "" {
		return l.Alias
	}
	return l.Target
}

// Extract returns every link in lines, in reading order. Embeds (![[...]])
// and links with an empty target (same-note [[#heading]] anchors) are
// skipped.
func Extract(lines []string) []Link {
	var out []Link
	for i, line := range lines {
		if !strings.Contains(line, "[[") {
			continue
		}
		for _, m := range linkRe.FindAllStringSubmatch(line, -1) {
			if m[1] == "!" {
				continue
			}
			target := strings.TrimSpace(m[2])
			if target == "" {
				continue
			}
			out = append(out, Link{
				Target:  target,
				Heading: strings.TrimSpace(m[3]),
				Alias:   strings.TrimSpace(m[4]),
				Line:    i,
				Raw:     strings.TrimPrefix(m[0], "!"),
			})
		}
	}
	return out
}

// Targets returns the distinct link targets in first-seen order, compared
// case-insensitively.
func Targets(links []Link) []string {
	seen := make(map[string]bool, len(links))
	var out []string
	for _, l := range links {
		k := strings.ToLower(l.Target)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, l.Target)
	}
	return out
}
