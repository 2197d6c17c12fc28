package mention

import (
	"fmt"
	"strings"

	"github.com/corey/vaultlink/internal/domain/morph"
)

// Reference is one context block quoted from a source note.
type Reference struct {
	SourceTitle string
	Context     []string
}

// RefNote is the content of a generated reference note for a concept.
type RefNote struct {
	Title      string
	SeeAlso    string      // near-duplicate existing title; "" for none
	Form       *morph.Form // set when Title looks like a plural
	References []Reference
}

// RenderReferences renders n as markdown:
//
//	# Title
//
//	## About this term          (only when Form is set)
//
//	> [!note] See also          (only when SeeAlso is set)
//	> [[SeeAlso]]
//
//	## References
//
//	### From [[Source]]
//
//	context...
//
// Sources appear in first-seen order. Identical context blocks from the same
// source are written once.
func RenderReferences(n RefNote) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", n.Title)

	if n.Form != nil {
		fmt.Fprintf(&sb, "## About this term\n\nThis appears to be the %s form of %q.\n\n", n.Form.Kind, n.Form.Singular)
	}
	if n.SeeAlso != "" {
		fmt.Fprintf(&sb, "> [!note] See also\n> [[%s]]\n\n", n.SeeAlso)
	}

	sb.WriteString("## References\n\n")

	var order []string
	grouped := make(map[string][]string)
	seen := make(map[string]bool)
	for _, ref := range n.References {
		block := strings.Join(ref.Context, "\n")
		key := ref.SourceTitle + "\x00" + block
		if block == "" || seen[key] {
			continue
		}
		seen[key] = true
		if _, ok := grouped[ref.SourceTitle]; !ok {
			order = append(order, ref.SourceTitle)
		}
		grouped[ref.SourceTitle] = append(grouped[ref.SourceTitle], block)
	}

	for _, src := range order {
		fmt.Fprintf(&sb, "### From [[%s]]\n\n", src)
		for _, block := range grouped[src] {
			sb.WriteString(block)
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}
