package authors

import "strings"

// Query is a parsed author search query.
type Query struct {
	First string // Given name or initials (may be empty)
	Last  string // Surname (required)
}

// ParseQuery parses an author search string into a structured Query.
//
// Supported formats:
//   - "Yang"          → last="Yang" (single word = surname only)
//   - "Ziheng Yang"   → first="Ziheng", last="Yang"
//   - "Yang, Ziheng"  → first="Ziheng", last="Yang"
//
// Case and diacritics are preserved here; Matches folds both sides.
func ParseQuery(input string) Query {
	input = strings.TrimSpace(input)
	if input == "" {
		return Query{}
	}

	// Comma format: "Last, First"
	if idx := strings.Index(input, ","); idx > 0 {
		return Query{
			First: strings.TrimSpace(input[idx+1:]),
			Last:  strings.TrimSpace(input[:idx]),
		}
	}

	parts := strings.Fields(input)
	if len(parts) == 1 {
		return Query{Last: parts[0]}
	}

	// "Timothy C Yu" → first="Timothy C", last="Yu"
	return Query{
		First: strings.Join(parts[:len(parts)-1], " "),
		Last:  parts[len(parts)-1],
	}
}

// Matches checks the query against one normalized display name
// ("Z. Yang", "C. F. Gauss III").
//
// Matching rules:
//   - Surname: simplified-form equality, so case and the folded German
//     letters are ignored ("mueller" matches Müller).
//   - Given names: compared as initial sequences, the only information
//     an abbreviated display name retains. The query's initials must be
//     a prefix of the name's: "Carl Gauss" and "C. F. Gauss" both match
//     "C. F. Gauss"; "Friedrich Gauss" does not.
//
// A single-initial query like "T. Yu" therefore matches any "T." Yu,
// not just Timothy. That is the price of matching against the
// abbreviated form.
func (q Query) Matches(displayName string) bool {
	if q.Last == "" {
		return false
	}

	given, last := splitDisplay(displayName)
	if Simplify(q.Last) != Simplify(last) {
		return false
	}

	if q.First == "" {
		return true
	}
	return strings.HasPrefix(firstInitials(given), firstInitials(q.First))
}

// splitDisplay separates a display name into given names and surname,
// looking past trailing suffixes so "C. F. Gauss III" matches a query
// for Gauss. The citation-key surname stays the mechanical Surname.
func splitDisplay(displayName string) (given, last string) {
	words := strings.Fields(displayName)
	end := len(words)
	for end > 1 && nameSuffixes[words[end-1]] {
		end--
	}
	if end == 0 {
		return "", ""
	}
	return strings.Join(words[:end-1], " "), words[end-1]
}

// MatchesAny checks if the query matches any display name in the list.
func (q Query) MatchesAny(displayNames []string) bool {
	for _, name := range displayNames {
		if q.Matches(name) {
			return true
		}
	}
	return false
}

// AllMatch checks if all queries match at least one author each,
// AND logic for repeated author filters.
func AllMatch(queries []Query, displayNames []string) bool {
	for _, q := range queries {
		if !q.MatchesAny(displayNames) {
			return false
		}
	}
	return true
}

// firstInitials reduces given names to their initial letters: both
// "Carl Friedrich" and "C. F." become "cf", "Jean-Paul" and "J.-P."
// both "jp".
func firstInitials(given string) string {
	var b strings.Builder
	for _, word := range strings.Fields(given) {
		for _, seg := range strings.Split(word, "-") {
			for _, r := range seg {
				if r == '.' {
					continue
				}
				b.WriteString(Simplify(string(r)))
				break
			}
		}
	}
	return b.String()
}
