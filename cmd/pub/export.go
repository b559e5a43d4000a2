package main

import (
	"fmt"
	"strings"

	"github.com/matsen/publist/internal/config"
	"github.com/matsen/publist/internal/export"
	"github.com/matsen/publist/internal/publication"
	"github.com/matsen/publist/internal/storage"
	"github.com/spf13/cobra"
)

var (
	exportBibtex bool
	exportJSONL  bool
	exportCoins  bool
	exportKeys   string
)

func init() {
	exportCmd.Flags().BoolVar(&exportBibtex, "bibtex", false, "Export as BibTeX to stdout")
	exportCmd.Flags().BoolVar(&exportJSONL, "jsonl", false, "Write the JSONL snapshot to .publist/publications.jsonl")
	exportCmd.Flags().BoolVar(&exportCoins, "coins", false, "Export as COinS spans to stdout")
	exportCmd.Flags().StringVar(&exportKeys, "keys", "", "Export only specified citation keys (comma-separated)")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export publications as BibTeX, JSONL, or COinS",
	Long: `Export publications.

BibTeX and COinS go to stdout; the JSONL export writes the snapshot
file that 'pub import --jsonl' reads back. COinS spans carry the
configured site_domain as the referrer.

Examples:
  pub export --bibtex > publications.bib
  pub export --bibtex --keys Gauss1809a,Yang2024a
  pub export --jsonl
  pub export --coins > coins.html`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

// ExportResult reports a snapshot export.
type ExportResult struct {
	Status string `json:"status"`
	Path   string `json:"path"`
	Count  int    `json:"count"`
}

func runExport(cmd *cobra.Command, args []string) error {
	formats := 0
	for _, set := range []bool{exportBibtex, exportJSONL, exportCoins} {
		if set {
			formats++
		}
	}
	if formats != 1 {
		exitWithError(ExitError, "exactly one of --bibtex, --jsonl, --coins is required")
	}

	repoRoot := mustFindRepository()
	db := mustOpenStore(repoRoot)
	defer db.Close()

	var pubs []publication.Publication

	if exportKeys != "" {
		for _, key := range strings.Split(exportKeys, ",") {
			key = strings.TrimSpace(key)
			p, err := db.GetByCiteKey(key)
			if err != nil {
				exitWithError(ExitError, "getting publication %s: %v", key, err)
			}
			if p == nil {
				exitWithError(ExitDataError, "unknown citation key: %s", key)
			}
			pubs = append(pubs, *p)
		}
	} else {
		var err error
		pubs, err = db.List(storage.ListFilters{}, 0)
		if err != nil {
			exitWithError(ExitError, "listing publications: %v", err)
		}
	}

	switch {
	case exportBibtex:
		// BibTeX is always text output, never JSON
		fmt.Print(export.ToBibTeXList(pubs))

	case exportCoins:
		cfg := mustLoadConfig(repoRoot)
		if cfg.SiteDomain == "" {
			exitWithError(ExitConfigError, "site_domain not configured\n  Hint: Use 'pub config site-domain example.org' to set the COinS referrer domain")
		}
		fmt.Print(export.COinSList(pubs, cfg.SiteDomain))

	case exportJSONL:
		path := config.SnapshotPath(repoRoot)
		if err := storage.WriteSnapshot(path, pubs); err != nil {
			exitWithError(ExitError, "writing snapshot: %v", err)
		}
		if humanOutput {
			fmt.Printf("Wrote %d publications to %s\n", len(pubs), path)
		} else {
			outputJSON(ExportResult{Status: "exported", Path: path, Count: len(pubs)})
		}
	}

	return nil
}
