package authors

import (
	"reflect"
	"testing"
)

func TestNormalizeDisplay(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "initials after surname are expanded",
			raw:  "Gauss CF",
			want: "C. F. Gauss",
		},
		{
			name: "three-letter initials run",
			raw:  "Knuth DEK",
			want: "D. E. K. Knuth",
		},
		{
			name: "hyphenated given name",
			raw:  "Jean-Paul Sartre",
			want: "J.-P. Sartre",
		},
		{
			name: "full given names are abbreviated",
			raw:  "Alice Smith",
			want: "A. Smith",
		},
		{
			name: "two authors joined with and",
			raw:  "Alice Smith and Bob Jones",
			want: "A. Smith and B. Jones",
		},
		{
			name: "three authors get an Oxford comma",
			raw:  "Alice Smith, Bob Jones, Carol Lee",
			want: "A. Smith, B. Jones, and C. Lee",
		},
		{
			name: "semicolon separator",
			raw:  "Alice Smith; Bob Jones",
			want: "A. Smith and B. Jones",
		},
		{
			name: "comma before and",
			raw:  "Alice Smith, and Bob Jones",
			want: "A. Smith and B. Jones",
		},
		{
			name: "comma directly before and",
			raw:  "Alice Smith,and Bob Jones",
			want: "A. Smith and B. Jones",
		},
		{
			name: "mixed and separators",
			raw:  "A. Einstein and B. Podolsky, and N. Rosen",
			want: "A. Einstein, B. Podolsky, and N. Rosen",
		},
		{
			name: "generational suffix stays with surname",
			raw:  "Martin Luther King Jr.",
			want: "M. L. King Jr.",
		},
		{
			name: "roman numeral suffix is not an initials run",
			raw:  "Gauss IV",
			want: "Gauss IV",
		},
		{
			name: "particle is never abbreviated",
			raw:  "Ludwig van Beethoven",
			want: "L. van Beethoven",
		},
		{
			name: "leading title is kept",
			raw:  "Dr. Alice Smith",
			want: "Dr. A. Smith",
		},
		{
			name: "single-word author passes through",
			raw:  "Gauss",
			want: "Gauss",
		},
		{
			name: "non-ASCII initial survives abbreviation",
			raw:  "Émile Zola",
			want: "É. Zola",
		},
		{
			name: "blank tokens are dropped",
			raw:  "Alice Smith, , Bob Jones",
			want: "A. Smith and B. Jones",
		},
		{
			name: "empty input yields empty display",
			raw:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			if got.Display != tt.want {
				t.Errorf("Normalize(%q).Display = %q, want %q", tt.raw, got.Display, tt.want)
			}
		})
	}
}

func TestNormalizeList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "three authors in input order",
			raw:  "Alice Smith, Bob Jones, Carol Lee",
			want: []string{"A. Smith", "B. Jones", "C. Lee"},
		},
		{
			name: "blank tokens are reindexed away",
			raw:  "Alice Smith, , Carol Lee",
			want: []string{"A. Smith", "C. Lee"},
		},
		{
			name: "empty input has zero entries",
			raw:  "",
			want: nil,
		},
		{
			name: "already abbreviated names are stable",
			raw:  "C. F. Gauss",
			want: []string{"C. F. Gauss"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			if !reflect.DeepEqual(got.List, tt.want) {
				t.Errorf("Normalize(%q).List = %v, want %v", tt.raw, got.List, tt.want)
			}
		})
	}
}

func TestNormalizeSimple(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "hyphen segments expand to one entry each",
			raw:  "Jean-Paul Sartre",
			want: []string{"j. sartre", "p. sartre"},
		},
		{
			name: "single word is folded directly",
			raw:  "Müller",
			want: []string{"mueller"},
		},
		{
			name: "diacritics fold to ASCII spellings",
			raw:  "Jörg Müßig",
			want: []string{"j. muessig"},
		},
		{
			name: "one entry per plain author",
			raw:  "Alice Smith, Bob Jones",
			want: []string{"a. smith", "b. jones"},
		},
		{
			name: "suffix is mechanically taken as the last word",
			raw:  "Martin Luther King Jr.",
			want: []string{"m. jr."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			if !reflect.DeepEqual(got.Simple, tt.want) {
				t.Errorf("Normalize(%q).Simple = %v, want %v", tt.raw, got.Simple, tt.want)
			}
		})
	}
}

func TestNormalizeBibTeX(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "authors joined with and",
			raw:  "Alice Smith, Bob Jones, Carol Lee",
			want: "A. Smith and B. Jones and C. Lee",
		},
		{
			name: "single author",
			raw:  "Gauss CF",
			want: "C. F. Gauss",
		},
		{
			name: "empty input",
			raw:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			if got.BibTeX != tt.want {
				t.Errorf("Normalize(%q).BibTeX = %q, want %q", tt.raw, got.BibTeX, tt.want)
			}
		})
	}
}

func TestNormalizeLiteral(t *testing.T) {
	got := Normalize("{Special Group Name}")

	if !got.Literal {
		t.Error("Normalize should mark brace-wrapped input as literal")
	}
	if want := []string{"Special Group Name"}; !reflect.DeepEqual(got.List, want) {
		t.Errorf("List = %v, want %v", got.List, want)
	}
	if got.Display != "{Special Group Name}" {
		t.Errorf("Display = %q, want braces preserved", got.Display)
	}
	if got.Simple != nil {
		t.Errorf("Simple = %v, want none for literal input", got.Simple)
	}
	if got.BibTeX != "" {
		t.Errorf("BibTeX = %q, want empty for literal input", got.BibTeX)
	}

	// Reparsing the preserved display string detects the literal again.
	again := Normalize(got.Display)
	if !again.Literal || !reflect.DeepEqual(again.List, got.List) {
		t.Errorf("reparse of %q = %+v, want same literal", got.Display, again)
	}
}

// TestNormalizeIdempotent verifies that reparsing a display string
// yields the same display string: normalization converges in one step.
func TestNormalizeIdempotent(t *testing.T) {
	raws := []string{
		"Gauss CF",
		"Jean-Paul Sartre",
		"Alice Smith, Bob Jones, Carol Lee",
		"Martin Luther King Jr.",
		"Ludwig van Beethoven",
		"Dr. Alice Smith",
		"Alice Smith and Bob Jones",
	}

	for _, raw := range raws {
		t.Run(raw, func(t *testing.T) {
			first := Normalize(raw)
			second := Normalize(first.Display)
			if second.Display != first.Display {
				t.Errorf("Normalize(%q).Display = %q, reparse = %q", raw, first.Display, second.Display)
			}
			if !reflect.DeepEqual(second.List, first.List) {
				t.Errorf("reparse of %q changed List: %v -> %v", raw, first.List, second.List)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "commas",
			raw:  "alpha, beta, gamma",
			want: []string{"alpha", "beta", "gamma"},
		},
		{
			name: "semicolons and and",
			raw:  "alpha; beta and gamma",
			want: []string{"alpha", "beta", "gamma"},
		},
		{
			name: "comma before and",
			raw:  "alpha, and beta",
			want: []string{"alpha", "beta"},
		},
		{
			name: "blank items vanish",
			raw:  "alpha,, beta, ",
			want: []string{"alpha", "beta"},
		},
		{
			name: "empty input",
			raw:  "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitList(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitList(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSimplify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Müller", "mueller"},
		{"Schönberg", "schoenberg"},
		{"Über", "ueber"},
		{"Weiß", "weiss"},
		{"Smith", "smith"},
	}

	for _, tt := range tests {
		if got := Simplify(tt.in); got != tt.want {
			t.Errorf("Simplify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSurname(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"last word of display name", "C. F. Gauss", "Gauss"},
		{"single word", "Gauss", "Gauss"},
		{"suffix is mechanically the last word", "M. L. King Jr.", "Jr."},
		{"empty name", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Surname(tt.in); got != tt.want {
				t.Errorf("Surname(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestJoinDisplay(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  string
	}{
		{"none", nil, ""},
		{"one", []string{"A. Smith"}, "A. Smith"},
		{"two", []string{"A. Smith", "B. Jones"}, "A. Smith and B. Jones"},
		{"three", []string{"A. Smith", "B. Jones", "C. Lee"}, "A. Smith, B. Jones, and C. Lee"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JoinDisplay(tt.names); got != tt.want {
				t.Errorf("JoinDisplay(%v) = %q, want %q", tt.names, got, tt.want)
			}
		})
	}
}
