// Package export renders publications to interchange formats.
package export

import (
	"fmt"
	"strings"

	"github.com/matsen/publist/internal/publication"
)

// ToBibTeX converts a publication to a BibTeX entry.
func ToBibTeX(p *publication.Publication) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s,\n", p.Type, p.CiteKey))

	// A literal author block is emitted raw: the persisted braces
	// become the inner braces BibTeX needs to treat the name as one
	// token.
	author := p.AuthorsBibTeX
	if p.LiteralAuthors {
		author = p.Authors
	}
	if author != "" {
		b.WriteString(fmt.Sprintf("  author = {%s},\n", author))
	}

	b.WriteString(fmt.Sprintf("  title = {%s},\n", escapeLatex(p.Title)))

	if p.Journal != "" {
		b.WriteString(fmt.Sprintf("  journal = {%s},\n", escapeLatex(p.Journal)))
	}
	if p.BookTitle != "" {
		b.WriteString(fmt.Sprintf("  booktitle = {%s},\n", escapeLatex(p.BookTitle)))
	}
	if p.Publisher != "" {
		b.WriteString(fmt.Sprintf("  publisher = {%s},\n", escapeLatex(p.Publisher)))
	}
	if p.Institution != "" {
		// Theses cite the degree-granting school; reports cite the
		// institution.
		field := "institution"
		if p.Type == "mastersthesis" || p.Type == "phdthesis" {
			field = "school"
		}
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", field, escapeLatex(p.Institution)))
	}

	if p.Volume != "" {
		b.WriteString(fmt.Sprintf("  volume = {%s},\n", p.Volume))
	}
	if p.Number != "" {
		b.WriteString(fmt.Sprintf("  number = {%s},\n", p.Number))
	}
	if p.Pages != "" {
		b.WriteString(fmt.Sprintf("  pages = {%s},\n", p.Pages))
	}
	if p.Edition != "" {
		b.WriteString(fmt.Sprintf("  edition = {%s},\n", escapeLatex(p.Edition)))
	}
	if p.Series != "" {
		b.WriteString(fmt.Sprintf("  series = {%s},\n", escapeLatex(p.Series)))
	}
	if p.Location != "" {
		b.WriteString(fmt.Sprintf("  address = {%s},\n", escapeLatex(p.Location)))
	}

	b.WriteString(fmt.Sprintf("  year = {%d},\n", p.Year))
	if m := p.MonthBibTeX(); m != "" {
		// Month macro, not a quoted string. BibTeX resolves Mar to the
		// built-in mar macro.
		b.WriteString(fmt.Sprintf("  month = %s,\n", m))
	}

	if p.Note != "" {
		b.WriteString(fmt.Sprintf("  note = {%s},\n", escapeLatex(p.Note)))
	}
	if p.Keywords != "" {
		b.WriteString(fmt.Sprintf("  keywords = {%s},\n", p.Keywords))
	}
	if p.URL != "" {
		b.WriteString(fmt.Sprintf("  url = {%s},\n", p.URL))
	}
	if p.DOI != "" {
		b.WriteString(fmt.Sprintf("  doi = {%s},\n", p.DOI))
	}
	if p.ISBN != "" {
		b.WriteString(fmt.Sprintf("  isbn = {%s},\n", p.ISBN))
	}
	if p.ISSN != "" {
		b.WriteString(fmt.Sprintf("  issn = {%s},\n", p.ISSN))
	}
	if p.Abstract != "" {
		b.WriteString(fmt.Sprintf("  abstract = {%s},\n", escapeLatex(p.Abstract)))
	}

	b.WriteString("}\n")

	return b.String()
}

// ToBibTeXList converts multiple publications to BibTeX format.
func ToBibTeXList(pubs []publication.Publication) string {
	var entries []string
	for i := range pubs {
		entries = append(entries, ToBibTeX(&pubs[i]))
	}
	return strings.Join(entries, "\n")
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
