package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/publist/internal/publication"
)

// Constants for output formatting.
// Names indicate the context where each constant is used.
const (
	DefaultSearchLimit = 50 // Default limit for search commands

	// Title truncation lengths by context
	ImportTitleMaxLen = 60 // Used in import command output
	SearchTitleMaxLen = 70 // Used in search result summaries
	ListTitleMaxLen   = 50 // Used in list command output

	// Text wrapping widths
	TextWrapWidth       = 60 // Standard text wrap width
	DetailTextWrapWidth = 68 // Wider wrap for detail views
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError writes an error message to stderr and returns the exit code.
func outputError(code int, format string, args ...interface{}) int {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	return code
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// ConfigResponse is the response for config get commands.
type ConfigResponse struct {
	SiteDomain string `json:"site_domain,omitempty"`
	Style      string `json:"style,omitempty"`
	PDFRoot    string `json:"pdf_root,omitempty"`
	PDFReader  string `json:"pdf_reader,omitempty"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// wrapText wraps text to the specified width with indentation on subsequent lines.
func wrapText(text string, width int, indent string) string {
	if len(text) <= width {
		return text
	}

	var lines []string
	words := strings.Fields(text)
	var currentLine strings.Builder

	for _, word := range words {
		if currentLine.Len() == 0 {
			currentLine.WriteString(word)
		} else if currentLine.Len()+1+len(word) <= width {
			currentLine.WriteString(" ")
			currentLine.WriteString(word)
		} else {
			lines = append(lines, currentLine.String())
			currentLine.Reset()
			currentLine.WriteString(word)
		}
	}
	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}

	return strings.Join(lines, "\n"+indent)
}

// printPubSummary prints a numbered one-paragraph summary of a record.
func printPubSummary(num int, p publication.Publication) {
	fmt.Printf("[%d] %s\n", num, p.CiteKey)
	fmt.Printf("    %s\n", truncateString(p.Title, SearchTitleMaxLen))

	if authors := p.DisplayAuthors(); authors != "" {
		fmt.Printf("    %s\n", authors)
	}

	if venue := p.JournalOrBookTitle(); venue != "" {
		fmt.Printf("    %s (%d)\n", venue, p.Year)
	} else {
		fmt.Printf("    (%d)\n", p.Year)
	}
	fmt.Println()
}

// printPubDetail prints the full detail view of a record.
func printPubDetail(p publication.Publication) {
	fmt.Println(p.CiteKey)
	fmt.Println(strings.Repeat("=", 70))
	fmt.Println()

	fmt.Printf("Type:     %s\n", p.TypeLabel())
	fmt.Printf("Title:    %s\n", wrapText(p.Title, TextWrapWidth, "          "))
	if authors := p.DisplayAuthors(); authors != "" {
		fmt.Printf("Authors:  %s\n", wrapText(authors, TextWrapWidth, "          "))
	}

	if venue := p.JournalOrBookTitle(); venue != "" {
		fmt.Printf("Venue:    %s\n", venue)
	}
	if p.Volume != "" {
		detail := p.Volume
		if p.Number != "" {
			detail += "(" + p.Number + ")"
		}
		if p.Pages != "" {
			detail += ":" + p.Pages
		}
		fmt.Printf("Issue:    %s\n", detail)
	}
	if p.Publisher != "" {
		fmt.Printf("Publisher: %s\n", p.Publisher)
	}
	if p.Institution != "" {
		fmt.Printf("Institution: %s\n", p.Institution)
	}

	date := fmt.Sprintf("%d", p.Year)
	if p.Month > 0 {
		date = fmt.Sprintf("%d-%02d", p.Year, p.Month)
	}
	fmt.Printf("Date:     %s\n", date)

	if p.DOI != "" {
		fmt.Printf("DOI:      %s\n", p.DOI)
	}
	if p.URL != "" {
		fmt.Printf("URL:      %s\n", p.URL)
	}
	if p.Keywords != "" {
		fmt.Printf("Keywords: %s\n", p.Keywords)
	}

	if p.Abstract != "" {
		fmt.Println()
		fmt.Println("Abstract:")
		fmt.Printf("  %s\n", wrapText(p.Abstract, DetailTextWrapWidth, "  "))
	}

	if p.PDFPath != "" {
		fmt.Println()
		fmt.Printf("PDF:      %s\n", p.PDFPath)
	}
}
