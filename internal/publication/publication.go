// Package publication defines the bibliographic record type and its
// normalization lifecycle.
package publication

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/matsen/publist/internal/authors"
	"github.com/matsen/publist/internal/citekey"
)

// EntryTypes lists the BibTeX entry types a publication may carry.
var EntryTypes = map[string]bool{
	"article":       true,
	"book":          true,
	"booklet":       true,
	"inbook":        true,
	"incollection":  true,
	"inproceedings": true,
	"manual":        true,
	"mastersthesis": true,
	"misc":          true,
	"phdthesis":     true,
	"techreport":    true,
	"unpublished":   true,
}

// Publication is one bibliographic record. Only the raw fields are
// persisted; the derived author fields are recomputed by Normalize
// every time a record is constructed or loaded.
type Publication struct {
	// Identity
	ID      int64  `json:"id,omitempty"` // insertion order, assigned by the store
	CiteKey string `json:"citekey,omitempty"`
	Type    string `json:"type"` // BibTeX entry type, see EntryTypes

	// Core metadata
	Title   string `json:"title"`
	Authors string `json:"authors"` // rewritten display form is what gets persisted
	Year    int    `json:"year"`
	Month   int    `json:"month,omitempty"` // 1-12, 0 if unknown

	// Venue
	Journal     string `json:"journal,omitempty"`
	BookTitle   string `json:"book_title,omitempty"`
	Publisher   string `json:"publisher,omitempty"`
	Institution string `json:"institution,omitempty"`
	Volume      string `json:"volume,omitempty"`
	Number      string `json:"number,omitempty"`
	Pages       string `json:"pages,omitempty"`
	Edition     string `json:"edition,omitempty"`
	Location    string `json:"location,omitempty"`
	Series      string `json:"series,omitempty"`

	// External identifiers
	URL  string `json:"url,omitempty"`
	DOI  string `json:"doi,omitempty"`
	ISBN string `json:"isbn,omitempty"`
	ISSN string `json:"issn,omitempty"`

	// Free text
	Note     string `json:"note,omitempty"`
	Keywords string `json:"keywords,omitempty"` // comma-separated, lowercased by Normalize
	Abstract string `json:"abstract,omitempty"`

	// Files
	PDFPath string `json:"pdf_path,omitempty"` // relative to the repository root

	// External marks work produced outside the group.
	External bool `json:"external,omitempty"`

	// Derived by Normalize, never persisted.
	AuthorList     []string `json:"-"`
	SimpleAuthors  []string `json:"-"`
	AuthorsBibTeX  string   `json:"-"`
	LiteralAuthors bool     `json:"-"`
}

// SiblingSource fetches the persisted records considered during
// citation-key generation: same year, authors text containing the
// surname, ordered by month ascending then insertion id ascending.
type SiblingSource interface {
	SiblingsForKey(year int, surname string) ([]citekey.Candidate, error)
}

// EscapedValue pairs a value with its URL-embeddable form.
type EscapedValue struct {
	Value   string `json:"value"`
	Escaped string `json:"escaped"`
}

// Normalize recomputes the derived author fields from the raw authors
// string, rewrites Authors into display form, and canonicalizes
// Keywords (comma-separated, trimmed, lowercased) and the DOI.
func (p *Publication) Normalize() {
	// Keywords get the same separator pass as author lists, so "a and b"
	// is two keywords.
	kws := authors.SplitList(p.Keywords)
	for i, kw := range kws {
		kws[i] = strings.ToLower(kw)
	}
	p.Keywords = strings.Join(kws, ", ")

	p.DOI = NormalizeDOI(p.DOI)

	n := authors.Normalize(p.Authors)
	p.Authors = n.Display
	p.AuthorList = n.List
	p.SimpleAuthors = n.Simple
	p.AuthorsBibTeX = n.BibTeX
	p.LiteralAuthors = n.Literal
}

// NormalizeDOI canonicalizes a DOI: URL and label prefixes removed,
// lowercased. DOIs are case-insensitive by definition, so the stored
// and compared form is always the lowercase bare identifier.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, "https://doi.org/")
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "doi.org/")
	doi = strings.TrimPrefix(doi, "DOI:")
	doi = strings.TrimPrefix(doi, "doi:")
	return strings.ToLower(strings.TrimSpace(doi))
}

// Finalize prepares a record for persisting: assigns a citation key if
// none is set, then trims stray whitespace from the free-text venue
// fields. Key generation needs the sibling records for the same year
// and surname, so it can fail with the generator's faults or a store
// error.
func (p *Publication) Finalize(src SiblingSource) error {
	if p.CiteKey == "" {
		surname := p.FirstAuthorSurname()
		if surname == "" {
			return citekey.ErrInvalidRecordState
		}
		siblings, err := src.SiblingsForKey(p.Year, surname)
		if err != nil {
			return fmt.Errorf("fetching key siblings: %w", err)
		}
		key, err := citekey.Generate(surname, p.Year, siblings, p.ID)
		if err != nil {
			return err
		}
		p.CiteKey = key
	}

	p.Title = strings.TrimSpace(p.Title)
	p.Journal = strings.TrimSpace(p.Journal)
	p.BookTitle = strings.TrimSpace(p.BookTitle)
	p.Publisher = strings.TrimSpace(p.Publisher)
	p.Institution = strings.TrimSpace(p.Institution)
	return nil
}

// Validate reports whether the record can be persisted. An empty Type
// defaults to "article".
func (p *Publication) Validate() error {
	if p.Type == "" {
		p.Type = "article"
	}
	if !EntryTypes[p.Type] {
		return fmt.Errorf("unknown entry type %q", p.Type)
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(p.Authors) == "" {
		return fmt.Errorf("authors is required")
	}
	if p.Year == 0 {
		return fmt.Errorf("year is required")
	}
	if p.Month < 0 || p.Month > 12 {
		return fmt.Errorf("month %d out of range", p.Month)
	}
	return nil
}

// FirstAuthor returns the display name of the first author, or "".
func (p *Publication) FirstAuthor() string {
	if len(p.AuthorList) == 0 {
		return ""
	}
	return p.AuthorList[0]
}

// FirstAuthorSurname returns the last space-separated word of the first
// author's display name, the surname citation keys are built from.
func (p *Publication) FirstAuthorSurname() string {
	if len(p.AuthorList) == 0 {
		return ""
	}
	return authors.Surname(p.AuthorList[0])
}

// DisplayAuthors returns the author list joined for display. Unlike the
// persisted Authors field it hides the braces of a literal author.
func (p *Publication) DisplayAuthors() string {
	return authors.JoinDisplay(p.AuthorList)
}

// MonthBibTeX returns the three-letter BibTeX month macro ("Jan"), or
// "" when the month is unset.
func (p *Publication) MonthBibTeX() string {
	if p.Month < 1 || p.Month > 12 {
		return ""
	}
	return time.Month(p.Month).String()[:3]
}

// MonthName returns the full month name, or "" when the month is unset.
func (p *Publication) MonthName() string {
	if p.Month < 1 || p.Month > 12 {
		return ""
	}
	return time.Month(p.Month).String()
}

// JournalOrBookTitle prefers the journal, falling back to the book
// title.
func (p *Publication) JournalOrBookTitle() string {
	if p.Journal != "" {
		return p.Journal
	}
	return p.BookTitle
}

// TypeLabel returns the descriptive label thesis and report citations
// carry, or "" for other entry types.
func (p *Publication) TypeLabel() string {
	switch p.Type {
	case "phdthesis":
		return "PhD thesis"
	case "mastersthesis":
		return "Master's thesis"
	case "techreport":
		return "Technical report"
	}
	return ""
}

// TitleEndsWithPunct reports whether the title already carries terminal
// punctuation, so renderers know not to add a period.
func (p *Publication) TitleEndsWithPunct() bool {
	r := []rune(p.Title)
	if len(r) == 0 {
		return false
	}
	switch r[len(r)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}

// ShortTitle truncates long titles for compact display. Titles under 64
// runes pass through; longer ones are cut at the last space in the rune
// window [40,62), or hard-cut at 61 when that window has no space, with
// "..." appended.
func (p *Publication) ShortTitle() string {
	r := []rune(p.Title)
	if len(r) < 64 {
		return p.Title
	}
	index := -1
	for i := 40; i < 62; i++ {
		if r[i] == ' ' {
			index = i
		}
	}
	if index < 0 {
		return string(r[:61]) + "..."
	}
	return string(r[:index]) + "..."
}

// KeywordList splits the normalized Keywords field into single
// keywords.
func (p *Publication) KeywordList() []string {
	var kws []string
	for _, kw := range strings.Split(p.Keywords, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			kws = append(kws, kw)
		}
	}
	return kws
}

// EscapedKeywords pairs each keyword with its query-escaped form for
// link building.
func (p *Publication) EscapedKeywords() []EscapedValue {
	var out []EscapedValue
	for _, kw := range p.KeywordList() {
		out = append(out, EscapedValue{Value: kw, Escaped: url.QueryEscape(kw)})
	}
	return out
}

// EscapedAuthors pairs each display name with a lowercase, plus-joined
// form for link building.
func (p *Publication) EscapedAuthors() []EscapedValue {
	var out []EscapedValue
	for _, a := range p.AuthorList {
		out = append(out, EscapedValue{
			Value:   a,
			Escaped: strings.ReplaceAll(strings.ToLower(a), " ", "+"),
		})
	}
	return out
}

// COinS renders the record as a Z39.88-2004 ContextObject query string
// for embedding in HTML spans, so reference managers can pick the
// record up from a web page. The site domain comes from configuration.
func (p *Publication) COinS(domain string) string {
	ctx := []string{"ctx_ver=Z39.88-2004"}

	labels := strings.Split(domain, ".")
	rfrID := ""
	switch {
	case len(labels) > 2:
		rfrID = labels[len(labels)-2]
	case len(labels) > 1:
		rfrID = labels[0]
	}

	if p.BookTitle != "" && p.Journal == "" {
		ctx = append(ctx,
			"rft_val_fmt=info:ofi/fmt:kev:mtx:book",
			"rfr_id=info:sid/"+domain+":"+rfrID,
			"rft_id="+url.QueryEscape(p.DOI),
			"rft.btitle="+url.QueryEscape(p.Title))
		if p.Publisher != "" {
			ctx = append(ctx, "rft.pub="+url.QueryEscape(p.Publisher))
		}
	} else {
		ctx = append(ctx,
			"rft_val_fmt=info:ofi/fmt:kev:mtx:journal",
			"rfr_id=info:sid/"+domain+":"+rfrID,
			"rft_id="+url.QueryEscape(p.DOI),
			"rft.atitle="+url.QueryEscape(p.Title))
		if p.Journal != "" {
			ctx = append(ctx, "rft.jtitle="+url.QueryEscape(p.Journal))
		}
		if p.Volume != "" {
			ctx = append(ctx, "rft.volume="+p.Volume)
		}
		if p.Pages != "" {
			ctx = append(ctx, "rft.pages="+url.QueryEscape(p.Pages))
		}
		if p.Number != "" {
			ctx = append(ctx, "rft.issue="+p.Number)
		}
	}

	if p.Month != 0 {
		ctx = append(ctx, fmt.Sprintf("rft.date=%d-%d-1", p.Year, p.Month))
	} else {
		ctx = append(ctx, fmt.Sprintf("rft.date=%d", p.Year))
	}

	for _, a := range p.AuthorList {
		ctx = append(ctx, "rft.au="+url.QueryEscape(a))
	}

	if p.ISBN != "" {
		ctx = append(ctx, "rft.isbn="+url.QueryEscape(p.ISBN))
	}
	if p.ISSN != "" {
		ctx = append(ctx, "rft.issn="+url.QueryEscape(p.ISSN))
	}

	return strings.Join(ctx, "&")
}
