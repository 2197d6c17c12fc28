// Package excerpt extracts the minimal surrounding context of a line in a
// markdown document: its paragraph, or its position in a nested list.
package excerpt

import (
	"regexp"
	"strings"
	"unicode"
)

// listItemRe matches a list marker at the start of a trimmed line:
// "-", "*", "+", or digits followed by "." and a space.
var listItemRe = regexp.MustCompile(`^(?:[-*+]|\d+\.)\s`)

// IsListItem reports whether line, once leading whitespace is trimmed, starts
// with a list marker.
func IsListItem(line string) bool {
	return listItemRe.MatchString(strings.TrimLeftFunc(line, unicode.IsSpace))
}

// Indent returns the number of leading whitespace characters in line.
// Tabs count as one.
func Indent(line string) int {
	n := 0
	for _, r := range line {
		if !unicode.IsSpace(r) {
			break
		}
		n++
	}
	return n
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// Extract returns the context block around lines[i], preserving each line's
// original text. An out-of-range i yields nil.
//
// A list item yields its nearest shallower ancestor item (if any), itself,
// and its deeper descendants. Anything else yields its paragraph: the
// contiguous run of non-blank lines containing it.
func Extract(lines []string, i int) []string {
	if i < 0 || i >= len(lines) {
		return nil
	}
	if IsListItem(lines[i]) {
		return listContext(lines, i)
	}
	return paragraphContext(lines, i)
}

// paragraphContext returns the non-blank block containing lines[i].
// A blank match line is returned alone.
func paragraphContext(lines []string, i int) []string {
	start, end := i, i
	if !isBlank(lines[i]) {
		for start > 0 && !isBlank(lines[start-1]) {
			start--
		}
		for end < len(lines)-1 && !isBlank(lines[end+1]) {
			end++
		}
	}
	out := make([]string, 0, end-start+1)
	return append(out, lines[start:end+1]...)
}

// listContext returns ancestor, item, and descendants for the list item at i.
//
//  1. Ancestor: scanning up and skipping blank lines, the first list item with
//     strictly smaller indentation.
//  2. The item itself.
//  3. Descendants: every following line indented deeper than the item. One
//     blank line is tolerated when the line after it is still deeper.
func listContext(lines []string, i int) []string {
	indent := Indent(lines[i])
	var out []string

	for j := i - 1; j >= 0; j-- {
		line := lines[j]
		if isBlank(line) {
			continue
		}
		if IsListItem(line) && Indent(line) < indent {
			out = append(out, line)
			break
		}
	}

	out = append(out, lines[i])

	for j := i + 1; j < len(lines); j++ {
		line := lines[j]
		if isBlank(line) {
			if j+1 < len(lines) && !isBlank(lines[j+1]) && Indent(lines[j+1]) > indent {
				continue
			}
			break
		}
		if Indent(line) <= indent {
			break
		}
		out = append(out, line)
	}
	return out
}

// headingRe matches an ATX heading and captures its text.
var headingRe = regexp.MustCompile(`^#{1,6}\s+(.*?)\s*#*\s*$`)

// IsHeading reports whether line is an ATX heading.
func IsHeading(line string) bool {
	return headingRe.MatchString(line)
}

// NearestHeading returns the text of the closest heading at or above
// lines[i], or "" when there is none.
func NearestHeading(lines []string, i int) string {
	if i >= len(lines) {
		i = len(lines) - 1
	}
	for j := i; j >= 0; j-- {
		if m := headingRe.FindStringSubmatch(lines[j]); m != nil {
			return m[1]
		}
	}
	return ""
}

// BodyStart returns the index of the first line after a leading YAML
// frontmatter block, or 0 when the document has none (or it is unterminated).
func BodyStart(lines []string) int {
	if len(lines) == 0 || strings.TrimRightFunc(lines[0], unicode.IsSpace) != "---" {
		return 0
	}
	for j := 1; j < len(lines); j++ {
		if strings.TrimRightFunc(lines[j], unicode.IsSpace) == "---" {
			return j + 1
		}
	}
	return 0
}

// FenceMask marks lines that sit inside fenced code blocks (``` or ~~~),
// fence lines included.
func FenceMask(lines []string) []bool {
	mask := make([]bool, len(lines))
	var fence string
	for j, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case fence == "" && (strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")):
			fence = trimmed[:3]
			mask[j] = true
		case fence != "":
			mask[j] = true
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}
		}
	}
	return mask
}
