package main

import (
	"fmt"

	"github.com/matsen/publist/internal/config"
	"github.com/matsen/publist/internal/pdfscan"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(openCmd)
}

var openCmd = &cobra.Command{
	Use:   "open <citekey>",
	Short: "Open the PDF attached to a publication",
	Long: `Open the PDF attached to a publication in the configured reader.

Relative attachment paths are resolved against pdf_root. The reader
comes from the pdf_reader config key (default: the system opener).

Examples:
  pub open Yang2024a
  pub config pdf-reader zathura`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

// OpenResult reports an opened PDF.
type OpenResult struct {
	Status  string `json:"status"`
	CiteKey string `json:"citekey"`
	Path    string `json:"path"`
}

func runOpen(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	db := mustOpenStore(repoRoot)
	defer db.Close()

	citeKey := args[0]
	p, err := db.GetByCiteKey(citeKey)
	if err != nil {
		exitWithError(ExitError, "getting publication: %v", err)
	}
	if p == nil {
		exitWithError(ExitDataError, "publication not found: %s", citeKey)
	}
	if p.PDFPath == "" {
		exitWithError(ExitDataError, "no PDF attached to %s", citeKey)
	}

	opener := pdfscan.NewOpener(config.ExpandPath(cfg.PDFRoot), cfg.PDFReader)
	fullPath, err := opener.Resolve(p.PDFPath)
	if err != nil {
		exitWithError(ExitDataError, "resolving PDF path: %v", err)
	}
	if err := opener.Open(fullPath); err != nil {
		exitWithError(ExitError, "opening PDF: %v", err)
	}

	if humanOutput {
		fmt.Printf("Opened %s\n", fullPath)
	} else {
		outputJSON(OpenResult{Status: "opened", CiteKey: citeKey, Path: fullPath})
	}

	return nil
}
