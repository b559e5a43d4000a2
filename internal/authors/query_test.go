package authors

import "testing"

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Query
	}{
		{
			name:  "single word is surname",
			input: "Yang",
			want:  Query{Last: "Yang"},
		},
		{
			name:  "two words is First Last",
			input: "Ziheng Yang",
			want:  Query{First: "Ziheng", Last: "Yang"},
		},
		{
			name:  "three words: first two are given names",
			input: "Timothy C Yu",
			want:  Query{First: "Timothy C", Last: "Yu"},
		},
		{
			name:  "comma format: Last, First",
			input: "Yang, Ziheng",
			want:  Query{First: "Ziheng", Last: "Yang"},
		},
		{
			name:  "comma format with extra spaces",
			input: "Yu,  Timothy C",
			want:  Query{First: "Timothy C", Last: "Yu"},
		},
		{
			name:  "leading and trailing whitespace",
			input: "  Felsenstein  ",
			want:  Query{Last: "Felsenstein"},
		},
		{
			name:  "empty string",
			input: "",
			want:  Query{},
		},
		{
			name:  "whitespace only",
			input: "   ",
			want:  Query{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseQuery(tt.input)
			if got != tt.want {
				t.Errorf("ParseQuery(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestQuery_Matches(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		displayName string
		want        bool
	}{
		{"surname only", "Yang", "Z. Yang", true},
		{"surname case-insensitive", "yang", "Z. Yang", true},
		{"surname mismatch", "Yang", "R. Nielsen", false},
		{"surname is not a substring match", "Smith", "B. Smithson", false},
		{"full given name against initial", "Ziheng Yang", "Z. Yang", true},
		{"initial against initial", "Z Yang", "Z. Yang", true},
		{"dotted initial against initial", "Z. Yang", "Z. Yang", true},
		{"wrong initial", "Rasmus Yang", "Z. Yang", false},
		{"two given names against two initials", "Carl Friedrich Gauss", "C. F. Gauss", true},
		{"one given name prefixes two initials", "Carl Gauss", "C. F. Gauss", true},
		{"query more specific than record", "Carl Friedrich Gauss", "C. Gauss", false},
		{"middle name alone does not match", "Friedrich Gauss", "C. F. Gauss", false},
		{"hyphenated given name", "Jean-Paul Sartre", "J.-P. Sartre", true},
		{"suffix skipped for surname", "Gauss", "C. F. Gauss III", true},
		{"suffix with given name", "Carl Gauss", "C. F. Gauss III", true},
		{"folded diacritics", "Mueller", "J. Müller", true},
		{"diacritic query", "Müller", "J. Müller", true},
		{"single-word display name", "Madonna", "Madonna", true},
		{"given query against mononym", "Louise Madonna", "Madonna", false},
		{"empty query", "", "Z. Yang", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := ParseQuery(tt.query)
			if got := q.Matches(tt.displayName); got != tt.want {
				t.Errorf("ParseQuery(%q).Matches(%q) = %v, want %v", tt.query, tt.displayName, got, tt.want)
			}
		})
	}
}

func TestQuery_MatchesAny(t *testing.T) {
	names := []string{"Z. Yang", "R. Nielsen"}

	if !ParseQuery("Nielsen").MatchesAny(names) {
		t.Error("Nielsen should match the author list")
	}
	if ParseQuery("Felsenstein").MatchesAny(names) {
		t.Error("Felsenstein should not match the author list")
	}
	if ParseQuery("Yang").MatchesAny(nil) {
		t.Error("no authors should never match")
	}
}

func TestAllMatch(t *testing.T) {
	names := []string{"Z. Yang", "R. Nielsen"}

	tests := []struct {
		name    string
		queries []string
		want    bool
	}{
		{"both present", []string{"Yang", "Nielsen"}, true},
		{"one missing", []string{"Yang", "Felsenstein"}, false},
		{"no queries", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queries := make([]Query, 0, len(tt.queries))
			for _, q := range tt.queries {
				queries = append(queries, ParseQuery(q))
			}
			if got := AllMatch(queries, names); got != tt.want {
				t.Errorf("AllMatch(%v) = %v, want %v", tt.queries, got, tt.want)
			}
		})
	}
}

func TestFirstInitials(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Carl Friedrich", "cf"},
		{"C. F.", "cf"},
		{"Jean-Paul", "jp"},
		{"J.-P.", "jp"},
		{"Ziheng", "z"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := firstInitials(tt.in); got != tt.want {
			t.Errorf("firstInitials(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
