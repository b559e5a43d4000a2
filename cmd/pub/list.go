package main

import (
	"fmt"

	"github.com/matsen/publist/internal/authors"
	"github.com/matsen/publist/internal/publication"
	"github.com/matsen/publist/internal/storage"
	"github.com/spf13/cobra"
)

var (
	listYear    int
	listAuthors []string
	listKeyword string
	listLimit   int
)

func init() {
	listCmd.Flags().IntVar(&listYear, "year", 0, "Filter by publication year")
	listCmd.Flags().StringArrayVarP(&listAuthors, "author", "a", nil, "Filter by author name (can be repeated, uses AND logic)")
	listCmd.Flags().StringVar(&listKeyword, "keyword", "", "Filter by keyword")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum results to return (0 = all)")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List publications in display order",
	Long: `List publications, newest first (year, then month, then insertion).

Author filters accept "Last, First", "First Last", or a bare surname.
Surname matching ignores case and diacritics ("mueller" finds Müller);
given names match by initial prefix, so "Ziheng Yang" finds "Z. Yang".
With multiple --author flags, every one must match.

Examples:
  pub list
  pub list --year 2024 --limit 20
  pub list --author "Yang, Ziheng" --author Nielsen
  pub list --keyword phylogenetics`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenStore(repoRoot)
	defer db.Close()

	// Author filtering happens after the query: the match rules
	// (simplified surnames, initial prefixes) live in the authors
	// package, not in SQL. The limit is applied after filtering so it
	// counts matching records.
	queryLimit := listLimit
	if len(listAuthors) > 0 {
		queryLimit = 0
	}

	pubs, err := db.List(storage.ListFilters{
		Year:    listYear,
		Keyword: listKeyword,
	}, queryLimit)
	if err != nil {
		exitWithError(ExitError, "listing publications: %v", err)
	}

	if len(listAuthors) > 0 {
		queries := make([]authors.Query, len(listAuthors))
		for i, a := range listAuthors {
			queries[i] = authors.ParseQuery(a)
		}

		var matched []publication.Publication
		for _, p := range pubs {
			if authors.AllMatch(queries, p.AuthorList) {
				matched = append(matched, p)
				if listLimit > 0 && len(matched) == listLimit {
					break
				}
			}
		}
		pubs = matched
	}

	if humanOutput {
		if len(pubs) == 0 {
			fmt.Println("No publications found")
		} else {
			fmt.Printf("%d publications:\n\n", len(pubs))
			for _, p := range pubs {
				title := truncateString(p.Title, ListTitleMaxLen)
				fmt.Printf("  %-18s %d  %s\n", p.CiteKey, p.Year, title)
			}
		}
	} else {
		if pubs == nil {
			pubs = []publication.Publication{}
		}
		outputJSON(pubs)
	}

	return nil
}
