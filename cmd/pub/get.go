package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <citekey>",
	Short: "Get a single publication by citation key",
	Long: `Get a single publication by its citation key.

Example:
  pub get Gauss1809a`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
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

	if humanOutput {
		printPubDetail(*p)
	} else {
		outputJSON(p)
	}

	return nil
}
