package main

import (
	"fmt"
	"strings"

	"github.com/matsen/publist/internal/publication"
	"github.com/spf13/cobra"
)

var searchLimit int

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", DefaultSearchLimit, "Maximum results to return")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over publications",
	Long: `Search publications by full text.

Query Syntax:
  Plain text     - Searches citekey, title, authors, venue, abstract, keywords
  author:name    - Search author names only
  title:text     - Search title only
  venue:text     - Search journal/booktitle only
  keyword:text   - Search keywords only

Author search also matches ASCII-folded name forms, so "muller" and
"mueller" both find Müller.

Examples:
  pub search "coalescent"
  pub search author:Nielsen
  pub search title:"substitution rates" --limit 10`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

// fieldPrefixes maps query prefixes to store search fields.
var fieldPrefixes = []string{"author", "title", "venue", "keyword"}

func runSearch(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenStore(repoRoot)
	defer db.Close()

	query := args[0]

	var pubs []publication.Publication
	var err error

	fielded := false
	for _, field := range fieldPrefixes {
		if strings.HasPrefix(query, field+":") {
			value := strings.TrimPrefix(query, field+":")
			pubs, err = db.SearchField(field, value, searchLimit)
			fielded = true
			break
		}
	}
	if !fielded {
		pubs, err = db.Search(query, searchLimit)
	}
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	// Empty result is not an error
	if pubs == nil {
		pubs = []publication.Publication{}
	}

	if humanOutput {
		if len(pubs) == 0 {
			fmt.Println("No publications found")
		} else {
			fmt.Printf("Found %d publications:\n\n", len(pubs))
			for i, p := range pubs {
				printPubSummary(i+1, p)
			}
		}
	} else {
		outputJSON(pubs)
	}

	return nil
}
