package main

import (
	"fmt"

	"github.com/matsen/publist/internal/importer"
	"github.com/matsen/publist/internal/publication"
	"github.com/matsen/publist/internal/storage"
	"github.com/spf13/cobra"
)

var (
	importBibtex bool
	importJSONL  bool
	importDryRun bool
)

func init() {
	importCmd.Flags().BoolVar(&importBibtex, "bibtex", false, "Import from a BibTeX file")
	importCmd.Flags().BoolVar(&importJSONL, "jsonl", false, "Import from a JSONL snapshot")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Show what would be imported without writing")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import publications from BibTeX or JSONL",
	Long: `Import publications from an external file.

Records already in the repository are skipped: first by DOI, then by
citation key. Records without a citation key get one assigned on
insert. Malformed entries are reported and skipped.

Examples:
  pub import --bibtex refs.bib
  pub import --bibtex refs.bib --dry-run
  pub import --jsonl publications.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

// ImportResult represents the result of an import operation.
type ImportResult struct {
	Added   int      `json:"added"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

// DryRunResult represents the result of a dry-run import.
type DryRunResult struct {
	WouldAdd  int            `json:"would_add"`
	WouldSkip int            `json:"would_skip"`
	Details   []ImportDetail `json:"details,omitempty"`
}

// ImportDetail describes a single import action.
type ImportDetail struct {
	CiteKey string `json:"citekey,omitempty"`
	Action  string `json:"action"` // add, skip, error
	Title   string `json:"title"`
	Reason  string `json:"reason,omitempty"`
}

// importStats tracks import operation counts.
type importStats struct {
	added   int
	skipped int
}

func runImport(cmd *cobra.Command, args []string) error {
	if importBibtex == importJSONL {
		exitWithError(ExitError, "exactly one of --bibtex, --jsonl is required")
	}

	repoRoot := mustFindRepository()

	drafts, parseErrors := parseImportFile(args[0])

	db := mustOpenStore(repoRoot)
	defer db.Close()

	stats, details, errStrs := processImports(db, drafts)

	// Parse failures count as skipped entries
	for _, e := range parseErrors {
		errStrs = append(errStrs, e.Error())
	}
	stats.skipped += len(parseErrors)
	if errStrs == nil {
		errStrs = []string{}
	}

	if importDryRun {
		reportDryRun(stats, details, errStrs)
		return nil
	}

	reportImportResults(stats, errStrs)
	return nil
}

// parseImportFile reads and parses the import file into drafts.
func parseImportFile(path string) ([]publication.Publication, []error) {
	if importBibtex {
		drafts, parseErrors := importer.ParseBibTeXFile(path)
		if len(parseErrors) > 0 && len(drafts) == 0 {
			exitWithError(ExitDataError, "failed to parse any publications: %v", parseErrors[0])
		}
		return drafts, parseErrors
	}

	drafts, err := storage.ReadSnapshot(path)
	if err != nil {
		exitWithError(ExitDataError, "reading snapshot: %v", err)
	}
	return drafts, nil
}

// processImports classifies each draft against the store and the batch
// so far, inserting the new ones unless this is a dry run.
func processImports(db *storage.DB, drafts []publication.Publication) (importStats, []ImportDetail, []string) {
	existing, err := db.List(storage.ListFilters{}, 0)
	if err != nil {
		exitWithError(ExitError, "reading existing publications: %v", err)
	}

	// Working sets include both persisted records and records added
	// earlier in this batch, so in-batch duplicates are caught too.
	doiSeen := make(map[string]string) // canonical DOI -> citekey
	keySeen := make(map[string]bool)
	for _, p := range existing {
		if p.DOI != "" {
			doiSeen[p.DOI] = p.CiteKey
		}
		keySeen[p.CiteKey] = true
	}

	var stats importStats
	var details []ImportDetail
	var errStrs []string

	for i := range drafts {
		draft := &drafts[i]
		title := truncateString(draft.Title, ImportTitleMaxLen)

		// JSONL drafts are raw records; snapshot ids must not leak
		// into fresh inserts.
		draft.ID = 0
		doi := publication.NormalizeDOI(draft.DOI)

		if reason, dup := classifyDuplicate(doiSeen, keySeen, doi, draft.CiteKey); dup {
			stats.skipped++
			details = append(details, ImportDetail{
				CiteKey: draft.CiteKey,
				Action:  "skip",
				Title:   title,
				Reason:  reason,
			})
			continue
		}

		if !importDryRun {
			if err := db.Insert(draft); err != nil {
				stats.skipped++
				errStrs = append(errStrs, fmt.Sprintf("%s: %v", title, err))
				details = append(details, ImportDetail{
					CiteKey: draft.CiteKey,
					Action:  "error",
					Title:   title,
					Reason:  err.Error(),
				})
				continue
			}
		}
		stats.added++

		if doi != "" {
			doiSeen[doi] = draft.CiteKey
		}
		if draft.CiteKey != "" {
			keySeen[draft.CiteKey] = true
		}

		details = append(details, ImportDetail{
			CiteKey: draft.CiteKey,
			Action:  "add",
			Title:   title,
		})
	}

	return stats, details, errStrs
}

// classifyDuplicate reports whether the draft duplicates a known
// record. DOI match wins over citation-key match. Dry runs leave
// generated keys empty, so a batch duplicate may have no key to name.
func classifyDuplicate(doiSeen map[string]string, keySeen map[string]bool, doi, citeKey string) (string, bool) {
	if doi != "" {
		if key, ok := doiSeen[doi]; ok {
			if key == "" {
				return "duplicate doi in batch", true
			}
			return fmt.Sprintf("doi matches %s", key), true
		}
	}
	if citeKey != "" && keySeen[citeKey] {
		return "citekey already exists", true
	}
	return "", false
}

// importFormatName names the active import format for messages.
func importFormatName() string {
	if importBibtex {
		return "BibTeX"
	}
	return "JSONL"
}

// reportDryRun outputs the dry-run results.
func reportDryRun(stats importStats, details []ImportDetail, errStrs []string) {
	if humanOutput {
		fmt.Printf("Dry run - would import from %s file...\n", importFormatName())
		fmt.Printf("  Would add:  %d new publications\n", stats.added)
		fmt.Printf("  Would skip: %d (errors or duplicates)\n", stats.skipped)
		if len(errStrs) > 0 {
			fmt.Println("\nParse errors:")
			for _, e := range errStrs {
				fmt.Printf("  - %s\n", e)
			}
		}
	} else {
		outputJSON(DryRunResult{
			WouldAdd:  stats.added,
			WouldSkip: stats.skipped,
			Details:   details,
		})
	}
}

// reportImportResults outputs the actual import results.
func reportImportResults(stats importStats, errStrs []string) {
	if humanOutput {
		fmt.Printf("Imported from %s file:\n", importFormatName())
		fmt.Printf("  Added:   %d new publications\n", stats.added)
		fmt.Printf("  Skipped: %d (errors or duplicates)\n", stats.skipped)
		if len(errStrs) > 0 {
			fmt.Println("\nErrors:")
			for _, e := range errStrs {
				fmt.Printf("  - %s\n", e)
			}
		}
	} else {
		outputJSON(ImportResult{
			Added:   stats.added,
			Skipped: stats.skipped,
			Errors:  errStrs,
		})
	}
}
