// Package authors normalizes freeform author strings into canonical
// display names, simplified lookup names, and BibTeX author lists.
package authors

import "strings"

// Name suffixes kept with the surname and excluded from abbreviation.
var nameSuffixes = map[string]bool{
	"I":    true,
	"II":   true,
	"III":  true,
	"IV":   true,
	"V":    true,
	"VI":   true,
	"VII":  true,
	"VIII": true,
	"Jr.":  true,
	"Sr.":  true,
}

// Titles allowed before the given name, never abbreviated.
var namePrefixes = map[string]bool{
	"Dr.": true,
}

// Lowercase particles inside a name, never abbreviated.
var namePrepositions = map[string]bool{
	"van": true,
	"von": true,
	"der": true,
	"de":  true,
	"den": true,
}

var foldReplacer = strings.NewReplacer(
	"ä", "ae",
	"ö", "oe",
	"ü", "ue",
	"ß", "ss",
)

// Normalized is the result of parsing a raw authors string.
type Normalized struct {
	// List holds one display name per author, in input order.
	List []string `json:"list"`
	// Simple holds simplified lookup names. Hyphenated given names
	// expand to one entry per hyphen segment, so Simple may be longer
	// than List.
	Simple []string `json:"simple,omitempty"`
	// BibTeX is the display names joined with " and ".
	BibTeX string `json:"bibtex,omitempty"`
	// Display is the rewritten authors string. For literal input it is
	// the raw string unchanged, braces included, so that reparsing it
	// detects the literal again.
	Display string `json:"display"`
	// Literal reports brace-escaped input ("{Some Group}"). Simple and
	// BibTeX are not computed for literals.
	Literal bool `json:"literal,omitempty"`
}

// Normalize parses a raw authors string. It is a pure function and
// total over its input: malformed input degrades to pass-through, never
// an error. Empty input yields a zero-author result; callers that need
// a first author must guard against that before use.
//
// Recognized separators are commas, semicolons, and the word "and".
// Each author is abbreviated to "C. F. Gauss" form. Concatenated
// initials after the surname ("Gauss CF") are expanded, name suffixes
// (Jr., roman numerals) are kept verbatim, and particles (van, von,
// de...) are never abbreviated.
//
// Known limitations:
//   - Interior runs of spaces are split mechanically, word by word
//   - Non-Latin scripts pass through the abbreviation heuristics as-is
//   - Only ä, ö, ü, ß are folded in simplified names
func Normalize(raw string) Normalized {
	// Brace-escaped input is one opaque author; nothing else applies.
	if strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}") {
		return Normalized{
			List:    []string{raw[1 : len(raw)-1]},
			Display: raw,
			Literal: true,
		}
	}

	var n Normalized

	for _, token := range SplitList(raw) {
		words := strings.Split(token, " ")

		// "Gauss CF" style: trailing run of uppercase initials after
		// the surname becomes leading "C. F." words.
		if last := words[len(words)-1]; isInitialsRun(last) {
			expanded := make([]string, 0, len(last)+len(words)-1)
			for _, c := range last {
				expanded = append(expanded, string(c)+".")
			}
			words = append(expanded, words[:len(words)-1]...)
		}

		// Count trailing suffix words (King Jr., Gauss III).
		numSuffixes := 0
		for i := len(words) - 1; i >= 0 && nameSuffixes[words[i]]; i-- {
			numSuffixes++
		}

		// Abbreviate everything before the surname and its suffixes.
		for j := 0; j < len(words)-1-numSuffixes; j++ {
			word := words[j]
			if j == 0 && namePrefixes[word] {
				continue
			}
			if j > 0 && namePrepositions[word] {
				continue
			}
			r := []rune(word)
			if len(r) > 2 || (len(r) >= 1 && r[len(r)-1] != '.') {
				words[j] = abbreviate(r)
			}
		}

		n.List = append(n.List, strings.Join(words, " "))

		// Simplified names pair each hyphen segment of the first word
		// with the last word: "J.-P. Sartre" yields "j. sartre" and
		// "p. sartre".
		if len(words) > 1 {
			lastWord := words[len(words)-1]
			for _, seg := range strings.Split(words[0], "-") {
				n.Simple = append(n.Simple, Simplify(seg+" "+lastWord))
			}
		} else {
			n.Simple = append(n.Simple, Simplify(words[0]))
		}
	}

	n.BibTeX = strings.Join(n.List, " and ")
	n.Display = JoinDisplay(n.List)
	return n
}

// SplitList splits a comma-, semicolon-, or "and"-separated list into
// trimmed, non-empty items. Separators are unified into ", " with a
// single pass each, in an order that keeps ", and " from degrading into
// a dangling comma. Keyword lists use the same separator grammar as
// author lists.
func SplitList(raw string) []string {
	s := strings.ReplaceAll(raw, ";", ",")
	s = strings.ReplaceAll(s, ", and ", ", ")
	s = strings.ReplaceAll(s, ",and ", ", ")
	s = strings.ReplaceAll(s, " and ", ", ")

	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// isInitialsRun reports whether word is a run of concatenated initials:
// at most three characters, all uppercase ASCII letters, and not a name
// suffix (so "Gauss IV" keeps its roman numeral).
func isInitialsRun(word string) bool {
	r := []rune(word)
	if len(r) > 3 || nameSuffixes[word] {
		return false
	}
	for _, c := range r {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// abbreviate reduces a name to its leading initial. A hyphenated name
// keeps the initial of the segment after the first interior hyphen:
// "Jean-Paul" becomes "J.-P.".
func abbreviate(r []rune) string {
	k := -1
	for i, c := range r {
		if c == '-' {
			k = i
			break
		}
	}
	if k+1 > 0 && k+1 < len(r) {
		return string(r[0]) + ".-" + string(r[k+1]) + "."
	}
	return string(r[0]) + "."
}

// Simplify lowercases a name and folds the German letters ä, ö, ü and ß
// to their ASCII spellings, the form used for lookup and URLs.
func Simplify(name string) string {
	return foldReplacer.Replace(strings.ToLower(name))
}

// JoinDisplay joins display names the way the authors field is shown:
// an Oxford ", and " before the last of three or more, a plain " and "
// between exactly two.
func JoinDisplay(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}

// Surname returns the last space-separated word of a display name, the
// part citation keys are built from. Mechanical split: a trailing space
// yields an empty surname.
func Surname(displayName string) string {
	parts := strings.Split(displayName, " ")
	return parts[len(parts)-1]
}
