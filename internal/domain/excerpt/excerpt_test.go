package excerpt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func split(s string) []string { return strings.Split(s, "\n") }

// =============================================================================
// Paragraph mode
// =============================================================================

func TestExtract_ParagraphReturnsEnclosingBlock(t *testing.T) {
	lines := split("intro line\n\nfirst of block\nthe match is here\nlast of block\n\noutro")
	got := Extract(lines, 3)
	assert.Equal(t, []string{"first of block", "the match is here", "last of block"}, got)
}

func TestExtract_ParagraphAtDocumentEdges(t *testing.T) {
	lines := split("top\nmatch\n\nbottom")
	assert.Equal(t, []string{"top", "match"}, Extract(lines, 1))
	assert.Equal(t, []string{"bottom"}, Extract(lines, 3))
}

func TestExtract_WhitespaceOnlyLinesAreBlank(t *testing.T) {
	lines := split("a\n   \nb\nc\n\t\nd")
	assert.Equal(t, []string{"b", "c"}, Extract(lines, 2))
}

func TestExtract_OutOfRange(t *testing.T) {
	lines := split("a\nb")
	assert.Nil(t, Extract(lines, -1))
	assert.Nil(t, Extract(lines, 2))
	assert.Nil(t, Extract(nil, 0))
}

// =============================================================================
// List-item mode
// =============================================================================

const nested = `- Biology
  - Muscle tissue
    - Smooth muscle
    - Cardiac muscle
  - Nerve tissue
- Chemistry`

func TestExtract_ListThreeLevels(t *testing.T) {
	lines := split(nested)
	got := Extract(lines, 1)
	assert.Equal(t, []string{
		"- Biology",
		"  - Muscle tissue",
		"    - Smooth muscle",
		"    - Cardiac muscle",
	}, got)
}

func TestExtract_ListLeafHasAncestorOnly(t *testing.T) {
	lines := split(nested)
	got := Extract(lines, 3)
	assert.Equal(t, []string{"  - Muscle tissue", "    - Cardiac muscle"}, got)
}

func TestExtract_ListTopLevelHasNoAncestor(t *testing.T) {
	lines := split(nested)
	got := Extract(lines, 0)
	assert.Equal(t, []string{
		"- Biology",
		"  - Muscle tissue",
		"    - Smooth muscle",
		"    - Cardiac muscle",
		"  - Nerve tissue",
	}, got)
}

func TestExtract_ListToleratesSingleBlankBetweenDescendants(t *testing.T) {
	lines := split("1. Parent\n   - child one\n\n   - child two\n\n\n   - orphan")
	got := Extract(lines, 0)
	assert.Equal(t, []string{"1. Parent", "   - child one", "   - child two"}, got)
}

func TestExtract_ListAncestorSkipsBlankAndProse(t *testing.T) {
	lines := split("* Top\n\nsome prose\n  + Deep item")
	got := Extract(lines, 3)
	assert.Equal(t, []string{"* Top", "  + Deep item"}, got)
}

func TestExtract_ListContinuationLinesAreDescendants(t *testing.T) {
	lines := split("- item with\n  wrapped continuation\n- next")
	assert.Equal(t, []string{"- item with", "  wrapped continuation"}, Extract(lines, 0))
}

func TestIsListItem(t *testing.T) {
	for _, l := range []string{"- a", "* a", "+ a", "12. a", "   - indented"} {
		assert.True(t, IsListItem(l), l)
	}
	for _, l := range []string{"-a", "1.a", "plain", "", "#. no", "1) paren"} {
		assert.False(t, IsListItem(l), l)
	}
}

func TestIndent(t *testing.T) {
	assert.Equal(t, 0, Indent("x"))
	assert.Equal(t, 4, Indent("    x"))
	assert.Equal(t, 2, Indent("\t\tx"))
}

// =============================================================================
// Headings, frontmatter, fences
// =============================================================================

func TestNearestHeading(t *testing.T) {
	lines := split("# Title\ntext\n## Section Two ##\nmore\nmore")
	assert.Equal(t, "Title", NearestHeading(lines, 1))
	assert.Equal(t, "Section Two", NearestHeading(lines, 4))
	assert.Equal(t, "Section Two", NearestHeading(lines, 2))
	assert.Equal(t, "", NearestHeading(split("no\nheadings"), 1))
	assert.Equal(t, "", NearestHeading(split("#hashtag"), 0))
}

func TestBodyStart(t *testing.T) {
	assert.Equal(t, 3, BodyStart(split("---\naliases: [x]\n---\nbody")))
	assert.Equal(t, 0, BodyStart(split("body\n---\n")))
	assert.Equal(t, 0, BodyStart(split("---\nunterminated")))
	assert.Equal(t, 0, BodyStart(nil))
}

func TestFenceMask(t *testing.T) {
	lines := split("text\n```go\ncode\n```\nafter\n~~~\nx")
	assert.Equal(t, []bool{false, true, true, true, false, true, true}, FenceMask(lines))
}
