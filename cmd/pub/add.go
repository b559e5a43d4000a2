package main

import (
	"fmt"

	"github.com/matsen/publist/internal/publication"
	"github.com/spf13/cobra"
)

var addPub publication.Publication

func init() {
	f := addCmd.Flags()
	f.StringVar(&addPub.CiteKey, "citekey", "", "Citation key (assigned automatically when omitted)")
	f.StringVar(&addPub.Type, "type", "article", "BibTeX entry type")
	f.StringVar(&addPub.Title, "title", "", "Title (required)")
	f.StringVar(&addPub.Authors, "authors", "", "Authors, BibTeX style: \"Last, First and Last, First\" (required)")
	f.IntVar(&addPub.Year, "year", 0, "Publication year (required)")
	f.IntVar(&addPub.Month, "month", 0, "Publication month (1-12)")
	f.StringVar(&addPub.Journal, "journal", "", "Journal name")
	f.StringVar(&addPub.BookTitle, "booktitle", "", "Book or proceedings title")
	f.StringVar(&addPub.Publisher, "publisher", "", "Publisher")
	f.StringVar(&addPub.Institution, "institution", "", "Institution or school")
	f.StringVar(&addPub.Volume, "volume", "", "Volume")
	f.StringVar(&addPub.Number, "number", "", "Issue number")
	f.StringVar(&addPub.Pages, "pages", "", "Page range (101--115)")
	f.StringVar(&addPub.Edition, "edition", "", "Edition")
	f.StringVar(&addPub.Location, "location", "", "Location")
	f.StringVar(&addPub.Series, "series", "", "Series")
	f.StringVar(&addPub.URL, "url", "", "URL")
	f.StringVar(&addPub.DOI, "doi", "", "DOI")
	f.StringVar(&addPub.ISBN, "isbn", "", "ISBN")
	f.StringVar(&addPub.ISSN, "issn", "", "ISSN")
	f.StringVar(&addPub.Note, "note", "", "Free-form note")
	f.StringVar(&addPub.Keywords, "keywords", "", "Comma-separated keywords")
	f.StringVar(&addPub.Abstract, "abstract", "", "Abstract")
	f.BoolVar(&addPub.External, "external", false, "Mark as external (not authored by the group)")

	addCmd.MarkFlagRequired("title")
	addCmd.MarkFlagRequired("authors")
	addCmd.MarkFlagRequired("year")
	rootCmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a publication",
	Long: `Add a publication to the repository.

When --citekey is omitted, one is generated from the first author's
surname and the year (Gauss1809a, Gauss1809b, ...).

Examples:
  pub add --title "Theoria Motus" --authors "Gauss, Carl Friedrich" --year 1809 --type book
  pub add --title "..." --authors "Yang, Ziheng and Nielsen, Rasmus" --year 2024 \
    --journal "Mol Biol Evol" --volume 41 --pages 101--115 --doi 10.1093/molbev/msae001`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenStore(repoRoot)
	defer db.Close()

	p := addPub
	if err := db.Insert(&p); err != nil {
		exitWithError(ExitDataError, "adding publication: %v", err)
	}

	if humanOutput {
		fmt.Printf("Added %s: %s\n", p.CiteKey, truncateString(p.Title, ListTitleMaxLen))
	} else {
		outputJSON(p)
	}

	return nil
}
