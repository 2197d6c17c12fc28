package cmd

import (
	"fmt"
	"strings"

	"github.com/corey/vaultlink/internal/app"
	"github.com/corey/vaultlink/internal/domain/index"
	"github.com/corey/vaultlink/internal/domain/matcher"
	"github.com/corey/vaultlink/internal/domain/mention"
	"github.com/corey/vaultlink/internal/ports"
)

// ANSI color codes for terminal output. Cleared by disableColor.
var (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorCyan    = "\033[36m"
	colorMagenta = "\033[35m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorGray    = "\033[90m"
)

func disableColor() {
	colorReset, colorBold, colorCyan, colorMagenta = "", "", "", ""
	colorGreen, colorYellow, colorGray = "", "", ""
}

// titleOf resolves a document ID to something printable.
type titleOf func(ports.DocID) (index.DocRef, bool)

func targetTitles(ids []ports.DocID, lookup titleOf) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if ref, ok := lookup(id); ok {
			names = append(names, "[["+ref.Title+"]]")
		}
	}
	return strings.Join(names, " | ")
}

// formatMentions renders mentions grouped by source note:
//
//	⚡ 3 mentions │ 2 notes
//	  Lecture.md
//	    3: Smooth Muscle → [[Smooth Muscle]]  # Week 1
func formatMentions(mentions []mention.Mention, lookup titleOf) string {
	var sb strings.Builder
	sources := make(map[string]bool)
	for _, m := range mentions {
		sources[m.SourcePath] = true
	}
	fmt.Fprintf(&sb, "%s⚡ %d mentions%s │ %d notes\n", colorBold, len(mentions), colorReset, len(sources))

	current := ""
	for _, m := range mentions {
		if m.SourcePath != current {
			current = m.SourcePath
			fmt.Fprintf(&sb, "  %s%s%s\n", colorCyan, m.SourcePath, colorReset)
		}
		fmt.Fprintf(&sb, "    %d: %s%s%s → %s", m.Line+1, colorBold, m.Span.Text, colorReset,
			targetTitles(m.Targets(), lookup))
		if m.Heading != "" {
			fmt.Fprintf(&sb, "  %s# %s%s", colorGray, m.Heading, colorReset)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatSpans renders match spans in reading order.
func formatSpans(spans []matcher.Span, lookup titleOf) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s⚡ %d matches%s\n", colorBold, len(spans), colorReset)
	for _, s := range matcher.ByPosition(spans) {
		fmt.Fprintf(&sb, "  [%d-%d] %s%s%s → %s\n", s.Start, s.End, colorGreen, s.Text, colorReset,
			targetTitles(s.Docs, lookup))
	}
	return sb.String()
}

// formatMissing renders dangling wikilinks with where they come from.
func formatMissing(missing []app.MissingLink) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s⚡ %d missing notes%s\n", colorBold, len(missing), colorReset)
	for _, ml := range missing {
		fmt.Fprintf(&sb, "  %s[[%s]]%s  %s%d links%s", colorYellow, ml.Target, colorReset, colorGray, len(ml.Sources), colorReset)
		if ml.Suggestion != "" {
			fmt.Fprintf(&sb, "  %sdid you mean [[%s]]?%s", colorMagenta, ml.Suggestion, colorReset)
		}
		sb.WriteString("\n")
		for _, src := range ml.Sources {
			fmt.Fprintf(&sb, "    %s%s%s:%d\n", colorCyan, src.Path, colorReset, src.Line+1)
		}
	}
	return sb.String()
}

// formatStats renders engine counts.
func formatStats(st app.Stats) string {
	return fmt.Sprintf("%s⚡ indexed%s %d notes │ %d terms │ pool %d\n",
		colorBold, colorReset, st.Documents, st.Terms, st.PoolSize)
}
