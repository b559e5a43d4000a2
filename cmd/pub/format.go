package main

import (
	"fmt"

	"github.com/matsen/publist/internal/config"
	"github.com/matsen/publist/internal/styles"
	"github.com/spf13/cobra"
)

var (
	formatStyle      string
	formatListStyles bool
)

func init() {
	formatCmd.Flags().StringVar(&formatStyle, "style", "", "Citation style (defaults to the repo's configured style)")
	formatCmd.Flags().BoolVar(&formatListStyles, "list-styles", false, "List available styles and exit")
	rootCmd.AddCommand(formatCmd)
}

var formatCmd = &cobra.Command{
	Use:   "format <citekey>... [--style <name>]",
	Short: "Format publications as citation text",
	Long: `Format publications using a citation style.

Built-in styles can be extended or overridden by .publist/styles.yml.

Examples:
  pub format Gauss1809a
  pub format Gauss1809a Yang2024a --style mla --human
  pub format --list-styles`,
	RunE: runFormat,
}

// FormattedPub pairs a citation key with its rendered citation.
type FormattedPub struct {
	CiteKey string `json:"citekey"`
	Style   string `json:"style"`
	Text    string `json:"text"`
}

func runFormat(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	registry := styles.NewRegistry()
	if err := registry.LoadOverrides(config.StylesPath(repoRoot)); err != nil {
		exitWithError(ExitDataError, "loading styles: %v", err)
	}

	if formatListStyles {
		names := registry.Names()
		if humanOutput {
			for _, name := range names {
				fmt.Println(name)
			}
		} else {
			outputJSON(map[string][]string{"styles": names})
		}
		return nil
	}

	if len(args) == 0 {
		exitWithError(ExitError, "at least one citation key is required")
	}

	styleName := formatStyle
	if styleName == "" {
		cfg := mustLoadConfig(repoRoot)
		styleName = cfg.Style
	}
	if styleName == "" {
		styleName = "plain"
	}

	style, err := registry.Get(styleName)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	db := mustOpenStore(repoRoot)
	defer db.Close()

	var results []FormattedPub
	for _, citeKey := range args {
		p, err := db.GetByCiteKey(citeKey)
		if err != nil {
			exitWithError(ExitError, "getting publication %s: %v", citeKey, err)
		}
		if p == nil {
			exitWithError(ExitDataError, "publication not found: %s", citeKey)
		}

		text, err := style.Format(p)
		if err != nil {
			exitWithError(ExitError, "formatting %s: %v", citeKey, err)
		}
		results = append(results, FormattedPub{CiteKey: citeKey, Style: styleName, Text: text})
	}

	if humanOutput {
		for _, r := range results {
			fmt.Println(r.Text)
		}
	} else {
		outputJSON(results)
	}

	return nil
}
