// Package styles renders publications as formatted citation strings.
//
// A style holds one template per entry-type bucket plus a default.
// Built-in styles cover the common citation formats; repositories can
// add or override styles from a YAML file.
package styles

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/template"

	"github.com/matsen/publist/internal/publication"
	"gopkg.in/yaml.v3"
)

// templateBuckets are the keys a style may define templates for.
var templateBuckets = map[string]bool{
	"article":      true,
	"book":         true,
	"incollection": true,
	"techreport":   true,
	"default":      true,
}

// bucketFor maps a BibTeX entry type to its template bucket.
func bucketFor(entryType string) string {
	switch entryType {
	case "article":
		return "article"
	case "book", "booklet", "manual":
		return "book"
	case "inbook", "incollection", "inproceedings":
		return "incollection"
	case "mastersthesis", "phdthesis", "techreport":
		return "techreport"
	}
	return "default"
}

// builtins defines the shipped citation styles. The template data is
// the publication record, so templates can reach its fields and helper
// methods directly.
var builtins = map[string]map[string]string{
	"plain": {
		"article":      `{{.DisplayAuthors}}. {{.Title}}{{if not .TitleEndsWithPunct}}.{{end}} {{.Journal}}{{if .Volume}}, {{.Volume}}{{end}}{{if .Number}}({{.Number}}){{end}}{{if .Pages}}:{{.Pages}}{{end}}, {{if .MonthName}}{{.MonthName}} {{end}}{{.Year}}.`,
		"incollection": `{{.DisplayAuthors}}. {{.Title}}{{if not .TitleEndsWithPunct}}.{{end}} In {{.BookTitle}}{{if .Pages}}, pages {{.Pages}}{{end}}. {{if .Publisher}}{{.Publisher}}, {{end}}{{.Year}}.`,
		"book":         `{{.DisplayAuthors}}. {{.Title}}{{if not .TitleEndsWithPunct}}.{{end}} {{if .Publisher}}{{.Publisher}}, {{end}}{{if .Edition}}{{.Edition}} edition, {{end}}{{.Year}}.`,
		"techreport":   `{{.DisplayAuthors}}. {{.Title}}{{if not .TitleEndsWithPunct}}.{{end}} {{.TypeLabel}}{{if .Institution}}, {{.Institution}}{{end}}, {{.Year}}.`,
		"default":      `{{.DisplayAuthors}}. {{.Title}}{{if not .TitleEndsWithPunct}}.{{end}} {{if .JournalOrBookTitle}}{{.JournalOrBookTitle}}, {{end}}{{.Year}}.`,
	},
	"harvard": {
		"article":      `{{.DisplayAuthors}} ({{.Year}}) '{{.Title}}', {{.Journal}}{{if .Volume}}, {{.Volume}}{{end}}{{if .Number}}({{.Number}}){{end}}{{if .Pages}}, pp. {{.Pages}}{{end}}.`,
		"incollection": `{{.DisplayAuthors}} ({{.Year}}) '{{.Title}}', in {{.BookTitle}}{{if .Publisher}}. {{.Publisher}}{{end}}{{if .Pages}}, pp. {{.Pages}}{{end}}.`,
		"book":         `{{.DisplayAuthors}} ({{.Year}}) {{.Title}}{{if .Edition}}, {{.Edition}} edn{{end}}{{if .Publisher}}. {{.Publisher}}{{end}}.`,
		"techreport":   `{{.DisplayAuthors}} ({{.Year}}) '{{.Title}}'. {{.TypeLabel}}{{if .Institution}}, {{.Institution}}{{end}}.`,
		"default":      `{{.DisplayAuthors}} ({{.Year}}) '{{.Title}}'{{if .JournalOrBookTitle}}, {{.JournalOrBookTitle}}{{end}}.`,
	},
	"ieee": {
		"article":      `{{.DisplayAuthors}}, "{{.Title}}," {{.Journal}}{{if .Volume}}, vol. {{.Volume}}{{end}}{{if .Number}}, no. {{.Number}}{{end}}{{if .Pages}}, pp. {{.Pages}}{{end}}, {{if .MonthBibTeX}}{{.MonthBibTeX}}. {{end}}{{.Year}}.`,
		"incollection": `{{.DisplayAuthors}}, "{{.Title}}," in {{.BookTitle}}{{if .Publisher}}. {{.Publisher}}{{end}}, {{.Year}}{{if .Pages}}, pp. {{.Pages}}{{end}}.`,
		"book":         `{{.DisplayAuthors}}, {{.Title}}{{if .Edition}}, {{.Edition}} ed.{{end}}{{if .Location}} {{.Location}}:{{end}}{{if .Publisher}} {{.Publisher}},{{end}} {{.Year}}.`,
		"techreport":   `{{.DisplayAuthors}}, "{{.Title}}," {{.TypeLabel}}{{if .Institution}}, {{.Institution}}{{end}}, {{.Year}}.`,
		"default":      `{{.DisplayAuthors}}, "{{.Title}}," {{.Year}}.`,
	},
	"mla": {
		"article":      `{{.DisplayAuthors}}. "{{.Title}}{{if not .TitleEndsWithPunct}}.{{end}}" {{.Journal}}{{if .Volume}}, vol. {{.Volume}}{{end}}{{if .Number}}, no. {{.Number}}{{end}}, {{.Year}}{{if .Pages}}, pp. {{.Pages}}{{end}}.`,
		"incollection": `{{.DisplayAuthors}}. "{{.Title}}{{if not .TitleEndsWithPunct}}.{{end}}" {{.BookTitle}}{{if .Publisher}}, {{.Publisher}}{{end}}, {{.Year}}{{if .Pages}}, pp. {{.Pages}}{{end}}.`,
		"book":         `{{.DisplayAuthors}}. {{.Title}}{{if not .TitleEndsWithPunct}}.{{end}} {{if .Publisher}}{{.Publisher}}, {{end}}{{.Year}}.`,
		"techreport":   `{{.DisplayAuthors}}. {{.Title}}{{if not .TitleEndsWithPunct}}.{{end}} {{.TypeLabel}}{{if .Institution}}, {{.Institution}}{{end}}, {{.Year}}.`,
		"default":      `{{.DisplayAuthors}}. "{{.Title}}{{if not .TitleEndsWithPunct}}.{{end}}" {{.Year}}.`,
	},
}

// Style is a named set of citation templates keyed by entry-type
// bucket.
type Style struct {
	Name      string
	templates map[string]*template.Template
}

// Format renders one publication through the style, using the bucket
// template for its entry type and falling back to the default.
func (s *Style) Format(p *publication.Publication) (string, error) {
	tmpl := s.templates[bucketFor(p.Type)]
	if tmpl == nil {
		tmpl = s.templates["default"]
	}
	if tmpl == nil {
		return "", fmt.Errorf("style %q has no template for %s entries", s.Name, p.Type)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("rendering %q with style %q: %w", p.CiteKey, s.Name, err)
	}

	// Optional fields leave doubled spaces behind; collapse them.
	return strings.Join(strings.Fields(buf.String()), " "), nil
}

// Registry holds the available citation styles.
type Registry struct {
	styles map[string]*Style
}

// NewRegistry returns a registry preloaded with the built-in styles.
func NewRegistry() *Registry {
	r := &Registry{styles: make(map[string]*Style)}
	for name, sources := range builtins {
		s, err := parseStyle(name, sources)
		if err != nil {
			panic(err) // built-ins are parsed at startup, a failure is a programming error
		}
		r.styles[name] = s
	}
	return r
}

// Get returns a style by name.
func (r *Registry) Get(name string) (*Style, error) {
	s, ok := r.styles[name]
	if !ok {
		return nil, fmt.Errorf("unknown citation style %q (available: %s)", name, strings.Join(r.Names(), ", "))
	}
	return s, nil
}

// Names returns the registered style names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.styles))
	for name := range r.styles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// stylesFile is the YAML shape of a style overrides file.
type stylesFile struct {
	Styles map[string]map[string]string `yaml:"styles"`
}

// LoadOverrides merges styles from a YAML file into the registry. A
// missing file is not an error. New styles must define a default
// template; overrides of existing styles may replace any subset of
// buckets.
func (r *Registry) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading styles file: %w", err)
	}

	var file stylesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing styles file: %w", err)
	}

	for name, sources := range file.Styles {
		for bucket := range sources {
			if !templateBuckets[bucket] {
				return fmt.Errorf("style %q: unknown entry bucket %q", name, bucket)
			}
		}

		existing, ok := r.styles[name]
		if !ok && sources["default"] == "" {
			return fmt.Errorf("style %q: a new style must define a default template", name)
		}

		s, err := parseStyle(name, sources)
		if err != nil {
			return err
		}
		if ok {
			for bucket, tmpl := range existing.templates {
				if s.templates[bucket] == nil {
					s.templates[bucket] = tmpl
				}
			}
		}
		r.styles[name] = s
	}

	return nil
}

func parseStyle(name string, sources map[string]string) (*Style, error) {
	s := &Style{
		Name:      name,
		templates: make(map[string]*template.Template, len(sources)),
	}
	for bucket, source := range sources {
		tmpl, err := template.New(name + "/" + bucket).Parse(source)
		if err != nil {
			return nil, fmt.Errorf("style %q: parsing %s template: %w", name, bucket, err)
		}
		s.templates[bucket] = tmpl
	}
	return s, nil
}
