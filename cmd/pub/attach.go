package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/matsen/publist/internal/config"
	"github.com/matsen/publist/internal/pdfscan"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(attachCmd)
}

var attachCmd = &cobra.Command{
	Use:   "attach <citekey> <pdf>",
	Short: "Attach a PDF to a publication",
	Long: `Attach a PDF file to a publication.

The stored path is made relative to pdf_root when the file lives under
it, so the library can move without breaking attachments. If the
record has no DOI yet, the first pages of the PDF are scanned for one.

Examples:
  pub attach Yang2024a ~/papers/yang-nielsen-2024.pdf
  pub config pdf-root ~/papers   # store relative paths`,
	Args: cobra.ExactArgs(2),
	RunE: runAttach,
}

// AttachResult reports an attached PDF.
type AttachResult struct {
	Status    string `json:"status"`
	CiteKey   string `json:"citekey"`
	PDFPath   string `json:"pdf_path"`
	DOI       string `json:"doi,omitempty"`
	DOIFilled bool   `json:"doi_filled,omitempty"`
}

func runAttach(cmd *cobra.Command, args []string) error {
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

	pdfPath, err := filepath.Abs(args[1])
	if err != nil {
		exitWithError(ExitError, "resolving path: %v", err)
	}
	if _, err := os.Stat(pdfPath); err != nil {
		exitWithError(ExitDataError, "PDF not found: %s", pdfPath)
	}

	opener := pdfscan.NewOpener(config.ExpandPath(cfg.PDFRoot), cfg.PDFReader)
	p.PDFPath = opener.Relativize(pdfPath)

	// Fill a missing DOI from the PDF text when one can be found.
	// Extraction failure is not fatal; the attachment still happens.
	doiFilled := false
	if p.DOI == "" {
		if doi, err := pdfscan.ExtractDOI(pdfPath); err == nil && doi != "" {
			p.DOI = doi
			doiFilled = true
		}
	}

	if err := db.Update(p); err != nil {
		exitWithError(ExitError, "updating publication: %v", err)
	}

	if humanOutput {
		fmt.Printf("Attached %s to %s\n", p.PDFPath, p.CiteKey)
		if doiFilled {
			fmt.Printf("Filled DOI from PDF: %s\n", p.DOI)
		}
	} else {
		outputJSON(AttachResult{
			Status:    "attached",
			CiteKey:   p.CiteKey,
			PDFPath:   p.PDFPath,
			DOI:       p.DOI,
			DOIFilled: doiFilled,
		})
	}

	return nil
}
