// Package importer parses publications from external formats.
package importer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/matsen/publist/internal/publication"
)

// maxLineCapacity bounds scanner lines; abstracts can be long.
const maxLineCapacity = 1024 * 1024

// Match entry start: @type{
var entryStartRe = regexp.MustCompile(`^\s*@([A-Za-z]+)\s*\{`)

// Non-record entries that carry no publication.
var skipEntryTypes = map[string]bool{
	"comment":  true,
	"preamble": true,
	"string":   true,
}

// ParseBibTeXFile parses a .bib file into publication drafts.
func ParseBibTeXFile(path string) ([]publication.Publication, []error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, []error{fmt.Errorf("reading file: %w", err)}
	}
	defer f.Close()

	return ParseBibTeX(f)
}

// ParseBibTeX parses BibTeX entries into publication drafts. Malformed
// entries are reported as errors while parsing continues; free text
// between entries is ignored, as BibTeX allows.
func ParseBibTeX(r io.Reader) ([]publication.Publication, []error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineCapacity)

	var pubs []publication.Publication
	var errs []error

	var (
		inEntry   bool
		entryType string
		depth     int
		startLine int
		body      strings.Builder
	)

	finish := func() {
		if skipEntryTypes[entryType] {
			return
		}
		p, err := entryToPublication(entryType, body.String())
		if err != nil {
			errs = append(errs, fmt.Errorf("entry at line %d: %w", startLine, err))
			return
		}
		pubs = append(pubs, p)
	}

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if !inEntry {
			m := entryStartRe.FindStringSubmatchIndex(line)
			if m == nil {
				continue
			}
			entryType = strings.ToLower(line[m[2]:m[3]])
			inEntry = true
			depth = 1
			startLine = lineNo
			body.Reset()
			line = line[m[1]:]
		} else {
			body.WriteByte('\n')
		}

		// Track brace depth through the line; \{ and \} are literal.
		var prev byte
		for i := 0; i < len(line) && inEntry; i++ {
			c := line[i]
			if c == '{' && prev != '\\' {
				depth++
			} else if c == '}' && prev != '\\' {
				depth--
				if depth == 0 {
					finish()
					inEntry = false
					prev = c
					continue
				}
			}
			body.WriteByte(c)
			prev = c
		}
	}

	if err := scanner.Err(); err != nil {
		errs = append(errs, fmt.Errorf("reading input: %w", err))
	}
	if inEntry {
		errs = append(errs, fmt.Errorf("entry at line %d: unterminated", startLine))
	}

	return pubs, errs
}

// entryToPublication converts one entry body (citation key plus field
// list) into a publication draft.
func entryToPublication(entryType, body string) (publication.Publication, error) {
	key := body
	fieldsText := ""
	if idx := strings.IndexByte(body, ','); idx >= 0 {
		key = body[:idx]
		fieldsText = body[idx+1:]
	}

	fields := parseFields(fieldsText)

	p := publication.Publication{
		CiteKey:     strings.TrimSpace(key), // empty means the store assigns one
		Type:        entryType,
		Title:       cleanTitle(fields["title"]),
		Authors:     cleanValue(fields["author"]),
		Journal:     cleanValue(fields["journal"]),
		BookTitle:   cleanValue(fields["booktitle"]),
		Publisher:   cleanValue(fields["publisher"]),
		Volume:      cleanValue(fields["volume"]),
		Number:      cleanValue(fields["number"]),
		Pages:       cleanValue(fields["pages"]),
		Edition:     cleanValue(fields["edition"]),
		Location:    cleanValue(fields["address"]),
		Series:      cleanValue(fields["series"]),
		Note:        cleanValue(fields["note"]),
		Keywords:    cleanValue(fields["keywords"]),
		URL:         cleanValue(fields["url"]),
		DOI:         publication.NormalizeDOI(cleanValue(fields["doi"])),
		ISBN:        cleanValue(fields["isbn"]),
		ISSN:        cleanValue(fields["issn"]),
		Abstract:    cleanValue(fields["abstract"]),
		Institution: cleanValue(fields["institution"]),
	}
	if !publication.EntryTypes[p.Type] {
		p.Type = "misc"
	}

	// Theses carry the degree-granting school in the school field.
	if school := cleanValue(fields["school"]); school != "" {
		p.Institution = school
	}

	if p.Title == "" {
		return publication.Publication{}, fmt.Errorf("missing required field 'title'")
	}
	if p.Authors == "" {
		return publication.Publication{}, fmt.Errorf("missing required field 'author'")
	}

	year, err := strconv.Atoi(strings.TrimSpace(fields["year"]))
	if err != nil {
		return publication.Publication{}, fmt.Errorf("missing or invalid field 'year'")
	}
	p.Year = year
	p.Month = parseMonth(fields["month"])

	return p, nil
}

// parseFields scans "name = value" pairs from an entry body. Values
// may be braced (nesting allowed), quoted, or bare macros/numbers, and
// may span lines.
func parseFields(s string) map[string]string {
	fields := make(map[string]string)

	i, n := 0, len(s)
	for i < n {
		for i < n && (s[i] == ',' || isSpace(s[i])) {
			i++
		}
		if i >= n {
			break
		}

		start := i
		for i < n && isFieldNameChar(s[i]) {
			i++
		}
		name := strings.ToLower(s[start:i])

		for i < n && isSpace(s[i]) {
			i++
		}
		if name == "" || i >= n || s[i] != '=' {
			// Not a field; resync at the next separator.
			for i < n && s[i] != ',' {
				i++
			}
			continue
		}
		i++ // consume '='
		for i < n && isSpace(s[i]) {
			i++
		}
		if i >= n {
			break
		}

		var value string
		switch s[i] {
		case '{':
			value, i = readBraced(s, i)
		case '"':
			value, i = readQuoted(s, i)
		default:
			start = i
			for i < n && s[i] != ',' && !isSpace(s[i]) {
				i++
			}
			value = s[start:i]
		}
		fields[name] = strings.TrimSpace(value)
	}

	return fields
}

// readBraced returns the interior of the brace group starting at
// s[start] and the index just past it.
func readBraced(s string, start int) (string, int) {
	depth := 0
	var prev byte
	for i := start; i < len(s); i++ {
		c := s[i]
		if c == '{' && prev != '\\' {
			depth++
		} else if c == '}' && prev != '\\' {
			depth--
			if depth == 0 {
				return s[start+1 : i], i + 1
			}
		}
		prev = c
	}
	return s[start+1:], len(s) // unclosed; take the rest
}

// readQuoted returns the interior of the quoted value starting at
// s[start] and the index just past it.
func readQuoted(s string, start int) (string, int) {
	for i := start + 1; i < len(s); i++ {
		if s[i] == '"' {
			return s[start+1 : i], i + 1
		}
	}
	return s[start+1:], len(s)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isFieldNameChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}

// latexUnescaper undoes the escaping BibTeX generators apply. Longer
// sequences first so the backslash forms win.
var latexUnescaper = strings.NewReplacer(
	`\textbackslash{}`, `\`,
	`\textasciitilde{}`, `~`,
	`\textasciicircum{}`, `^`,
	`\&`, "&",
	`\%`, "%",
	`\$`, "$",
	`\#`, "#",
	`\_`, "_",
	`\{`, "{",
	`\}`, "}",
)

// cleanValue unescapes a field value and collapses whitespace, which
// folds away multi-line continuation indents.
func cleanValue(value string) string {
	return strings.Join(strings.Fields(latexUnescaper.Replace(value)), " ")
}

// cleanTitle additionally drops the brace layers titles accumulate:
// a redundant outer pair ("{{...}}" inputs) and interior
// capitalization protection ("The {DNA} Story").
func cleanTitle(value string) string {
	value = stripOuterBraces(strings.TrimSpace(value))
	value = removeUnescapedBraces(value)
	return cleanValue(value)
}

// removeUnescapedBraces drops grouping braces but keeps \{ and \}
// intact for the unescaper.
func removeUnescapedBraces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var prev byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c == '{' || c == '}') && prev != '\\' {
			prev = c
			continue
		}
		b.WriteByte(c)
		prev = c
	}
	return b.String()
}

// stripOuterBraces removes one brace pair when it wraps the whole
// value as a single group.
func stripOuterBraces(s string) string {
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return s
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 && i < len(s)-1 {
				return s // closes before the end; not one group
			}
		}
	}
	return s[1 : len(s)-1]
}

// parseMonth accepts numbers, BibTeX macros and English names:
// "3", "mar", "Mar.", "March" all give 3. Anything else gives 0.
func parseMonth(value string) int {
	v := strings.ToLower(strings.TrimSpace(value))
	v = strings.TrimSuffix(v, ".")
	if v == "" {
		return 0
	}

	if n, err := strconv.Atoi(v); err == nil {
		if n >= 1 && n <= 12 {
			return n
		}
		return 0
	}

	if len(v) > 3 {
		v = v[:3]
	}
	for m := time.January; m <= time.December; m++ {
		if strings.ToLower(m.String()[:3]) == v {
			return int(m)
		}
	}
	return 0
}

