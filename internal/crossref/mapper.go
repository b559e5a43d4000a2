package crossref

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/matsen/publist/internal/publication"
)

// CrossRef work types mapped onto BibTeX entry types. Anything not
// listed here comes back as "misc".
var entryTypes = map[string]string{
	"journal-article":     "article",
	"proceedings-article": "inproceedings",
	"book-chapter":        "incollection",
	"book-section":        "incollection",
	"book":                "book",
	"monograph":           "book",
	"edited-book":         "book",
	"reference-book":      "book",
	"report":              "techreport",
	"dissertation":        "phdthesis",
	"posted-content":      "article", // preprints
}

// MapWorkToPublication converts a CrossRef work to a Publication.
// The citation key is left empty so the store assigns one on insert.
func MapWorkToPublication(w Work) publication.Publication {
	p := publication.Publication{
		Type:      mapEntryType(w.Type),
		Title:     collapseWhitespace(firstOf(w.Title)),
		Authors:   mapAuthors(w.Author),
		Year:      w.Issued.Year(),
		Month:     w.Issued.Month(),
		Volume:    w.Volume,
		Number:    w.Issue,
		Pages:     mapPages(w.Page),
		Publisher: w.Publisher,
		URL:       w.URL,
		DOI:       w.DOI,
		ISSN:      firstOf(w.ISSN),
		ISBN:      firstOf(w.ISBN),
		Abstract:  stripJATS(w.Abstract),
		Keywords:  strings.Join(w.Subject, ", "),
	}

	// CrossRef uses one container-title field for both journals and
	// parent volumes; which Publication field it lands in depends on
	// the entry type.
	container := collapseWhitespace(firstOf(w.ContainerTitle))
	switch p.Type {
	case "incollection", "inproceedings":
		p.BookTitle = container
	default:
		p.Journal = container
	}

	return p
}

// mapEntryType maps a CrossRef work type to a BibTeX entry type.
func mapEntryType(workType string) string {
	if t, ok := entryTypes[workType]; ok {
		return t
	}
	return "misc"
}

// mapAuthors renders CrossRef authors as a comma-separated list of
// "Given Family" names.
//
// Known limitations:
//   - A corporate author mixed into a list of persons is kept as its
//     plain name and will be split like a person name downstream.
//     Only a sole corporate author is brace-protected.
func mapAuthors(authors []WorkAuthor) string {
	if len(authors) == 1 && authors[0].isCorporate() {
		return fmt.Sprintf("{%s}", strings.TrimSpace(authors[0].Name))
	}

	names := make([]string, 0, len(authors))
	for _, a := range authors {
		name := a.displayName()
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}

// isCorporate reports whether the author is an organization rather
// than a person. CrossRef gives organizations a bare name with no
// given/family split.
func (a WorkAuthor) isCorporate() bool {
	return a.Family == "" && a.Name != ""
}

// displayName renders the author as "Given Family", falling back to
// whichever parts are present.
func (a WorkAuthor) displayName() string {
	switch {
	case a.Given != "" && a.Family != "":
		return a.Given + " " + a.Family
	case a.Family != "":
		return a.Family
	default:
		return strings.TrimSpace(a.Name)
	}
}

// mapPages rewrites a CrossRef page range ("101-115") with the BibTeX
// double dash. Ranges that already use one are left alone.
func mapPages(pages string) string {
	if pages == "" || strings.Contains(pages, "--") {
		return pages
	}
	return strings.ReplaceAll(pages, "-", "--")
}

var jatsTagRe = regexp.MustCompile(`<[^>]*>`)

// stripJATS flattens the JATS XML fragment CrossRef returns for
// abstracts into plain text.
func stripJATS(abstract string) string {
	if abstract == "" {
		return ""
	}
	text := jatsTagRe.ReplaceAllString(abstract, " ")
	text = html.UnescapeString(text)
	return collapseWhitespace(text)
}

// firstOf returns the first element of a CrossRef array field, which
// the API uses even for single-valued data.
func firstOf(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
