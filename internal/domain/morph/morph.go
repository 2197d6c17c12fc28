// Package morph derives singular and plural forms of English terms.
//
// The rules are best-effort heuristics covering common English patterns.
// They are not linguistically complete: "movies" singularizes to "movy" and
// "knives" to "knif". Callers treat the output as extra lookup keys, never as
// authoritative spellings.
//
// For multi-word terms only the last word is inflected ("Lymph Node" ->
// "Lymph Nodes").
package morph

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// irregulars maps singular -> plural. Checked before any suffix rule, in both
// directions.
var irregulars = map[string]string{
	"child":      "children",
	"person":     "people",
	"man":        "men",
	"woman":      "women",
	"mouse":      "mice",
	"goose":      "geese",
	"foot":       "feet",
	"tooth":      "teeth",
	"ox":         "oxen",
	"analysis":   "analyses",
	"crisis":     "crises",
	"thesis":     "theses",
	"phenomenon": "phenomena",
	"criterion":  "criteria",
	"datum":      "data",
	"cactus":     "cacti",
	"fungus":     "fungi",
	"nucleus":    "nuclei",
}

// irregularSingulars is the reverse of irregulars (plural -> singular).
var irregularSingulars = func() map[string]string {
	m := make(map[string]string, len(irregulars))
	for s, p := range irregulars {
		m[p] = s
	}
	return m
}()

// Singularize returns the singular form of term and true, or "", false when
// no rule applies (the term does not look plural).
//
// Rules, first match wins:
//  1. irregular plural table
//  2. "ies" -> "y"              (length > 4)
//  3. "ves" -> "f"              (length > 4)
//  4. "ses" -> drop "es"        (length > 4)
//  5. "xes", "ches", "shes" -> drop "es"
//  6. trailing "s", not "ss" and not "us" -> drop "s"
func Singularize(term string) (string, bool) {
	head, word := splitLast(term)
	if word == "" {
		return "", false
	}
	lower := strings.ToLower(word)

	if s, ok := irregularSingulars[lower]; ok {
		return head + matchCase(word, s), true
	}
	if _, ok := irregulars[lower]; ok {
		return "", false
	}

	n := utf8.RuneCountInString(lower)
	var stem string
	switch {
	case strings.HasSuffix(lower, "ies") && n > 4:
		stem = word[:len(word)-3] + "y"
	case strings.HasSuffix(lower, "ves") && n > 4:
		stem = word[:len(word)-3] + "f"
	case strings.HasSuffix(lower, "ses") && n > 4:
		stem = word[:len(word)-2]
	case strings.HasSuffix(lower, "xes"),
		strings.HasSuffix(lower, "ches"),
		strings.HasSuffix(lower, "shes"):
		stem = word[:len(word)-2]
	case strings.HasSuffix(lower, "s") &&
		!strings.HasSuffix(lower, "ss") &&
		!strings.HasSuffix(lower, "us"):
		stem = word[:len(word)-1]
	default:
		return "", false
	}
	if stem == "" {
		return "", false
	}
	return head + stem, true
}

// Pluralize returns the plural form of term.
//
// Rules, first match wins:
//  1. irregular singular table
//  2. consonant + "y" -> "ies"
//  3. trailing "f"  -> "ves"
//  4. trailing "fe" -> "ves"
//  5. trailing s, x, z, ch, sh -> + "es"
//  6. otherwise + "s"
func Pluralize(term string) string {
	head, word := splitLast(term)
	if word == "" {
		return term
	}
	lower := strings.ToLower(word)

	if p, ok := irregulars[lower]; ok {
		return head + matchCase(word, p)
	}
	if _, ok := irregularSingulars[lower]; ok {
		return term
	}

	switch {
	case strings.HasSuffix(lower, "y") && len(lower) > 1 && !isVowel(lower[len(lower)-2]):
		return head + word[:len(word)-1] + "ies"
	case strings.HasSuffix(lower, "f"):
		return head + word[:len(word)-1] + "ves"
	case strings.HasSuffix(lower, "fe"):
		return head + word[:len(word)-2] + "ves"
	case strings.HasSuffix(lower, "s"),
		strings.HasSuffix(lower, "x"),
		strings.HasSuffix(lower, "z"),
		strings.HasSuffix(lower, "ch"),
		strings.HasSuffix(lower, "sh"):
		return head + word + "es"
	default:
		return head + word + "s"
	}
}

// Variants returns the inflected forms of term worth indexing: its singular
// when term looks plural, otherwise its plural. Forms equal to term
// (case-insensitively) are dropped.
func Variants(term string) []string {
	v, ok := Singularize(term)
	if !ok {
		v = Pluralize(term)
	}
	if v == "" || strings.EqualFold(v, term) {
		return nil
	}
	return []string{v}
}

// Form describes a detected plural.
type Form struct {
	Kind     string // "plural" or "irregular plural"
	Singular string
}

// Describe reports whether term looks like a plural and, if so, its singular.
// Used when rendering reference notes ("This appears to be the plural form
// of ...").
func Describe(term string) (Form, bool) {
	_, word := splitLast(term)
	if _, ok := irregularSingulars[strings.ToLower(word)]; ok {
		s, _ := Singularize(term)
		return Form{Kind: "irregular plural", Singular: s}, true
	}
	if s, ok := Singularize(term); ok {
		return Form{Kind: "plural", Singular: s}, true
	}
	return Form{}, false
}

// splitLast splits a phrase into everything up to and including the last
// space, and the last word.
func splitLast(term string) (head, word string) {
	term = strings.TrimRightFunc(term, unicode.IsSpace)
	i := strings.LastIndexFunc(term, unicode.IsSpace)
	if i < 0 {
		return "", term
	}
	_, size := utf8.DecodeRuneInString(term[i:])
	return term[:i+size], term[i+size:]
}

// matchCase gives replacement the capitalization of original: all upper,
// leading capital, or unchanged.
func matchCase(original, replacement string) string {
	if original == strings.ToUpper(original) && original != strings.ToLower(original) && len(original) > 1 {
		return strings.ToUpper(replacement)
	}
	r, _ := utf8.DecodeRuneInString(original)
	if unicode.IsUpper(r) {
		rr, size := utf8.DecodeRuneInString(replacement)
		return string(unicode.ToUpper(rr)) + replacement[size:]
	}
	return replacement
}

func isVowel(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
