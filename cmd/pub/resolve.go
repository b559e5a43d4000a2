package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/matsen/publist/internal/config"
	"github.com/matsen/publist/internal/crossref"
	"github.com/spf13/cobra"
)

var resolveAdd bool

func init() {
	// Load .env if present (for CROSSREF_MAILTO)
	_ = godotenv.Load()

	resolveCmd.Flags().BoolVar(&resolveAdd, "add", false, "Add the resolved publication to the repository")
	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <doi>",
	Short: "Resolve a DOI to publication metadata via CrossRef",
	Long: `Look up a DOI in the CrossRef works API and map the record to a
publication draft. With --add, the draft is inserted and a citation
key assigned.

CrossRef asks API users to identify themselves with a mailto address
for better service (the "polite pool"). Set one with the mailto key in
the global config, or the CROSSREF_MAILTO environment variable (a
.env file is honored).

Examples:
  pub resolve 10.1093/molbev/msae001
  pub resolve 10.1093/molbev/msae001 --add
  pub resolve https://doi.org/10.1093/molbev/msae001 --human`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	var opts []crossref.ClientOption
	if mailto := config.GetMailto(); mailto != "" {
		opts = append(opts, crossref.WithMailto(mailto))
	}
	client := crossref.NewClient(opts...)

	doi := args[0]
	work, err := client.GetWork(context.Background(), doi)
	if err != nil {
		switch {
		case crossref.IsNotFound(err):
			exitWithError(ExitDataError, "no CrossRef record for %s", doi)
		case crossref.IsRateLimited(err):
			exitWithError(ExitError, "CrossRef rate limit hit, try again shortly")
		default:
			exitWithError(ExitError, "resolving %s: %v", doi, err)
		}
	}

	p := crossref.MapWorkToPublication(*work)

	if resolveAdd {
		repoRoot := mustFindRepository()
		db := mustOpenStore(repoRoot)
		defer db.Close()

		if p.DOI != "" {
			existing, err := db.GetByDOI(p.DOI)
			if err != nil {
				exitWithError(ExitError, "checking for existing DOI: %v", err)
			}
			if existing != nil {
				exitWithError(ExitDataError, "%s is already in the repository as %s", p.DOI, existing.CiteKey)
			}
		}

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

	// Draft only; show it the way it would be stored.
	p.Normalize()

	if humanOutput {
		printPubDetail(p)
	} else {
		outputJSON(p)
	}

	return nil
}
