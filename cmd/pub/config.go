package main

import (
	"fmt"
	"strings"

	"github.com/matsen/publist/internal/config"
	"github.com/matsen/publist/internal/styles"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values.

Usage:
  pub config                        # Show all config
  pub config style                  # Get specific value
  pub config style chicago          # Set value
  pub config site-domain example.org
  pub config pdf-root ~/papers
  pub config pdf-reader zathura

Keys:
  site-domain  Referrer domain embedded in COinS exports
  style        Default formatting style (see pub format --list-styles)
  pdf-root     Path to the PDF folder attachments resolve against
  pdf-reader   PDF reader preference (system, skim, preview, zathura, evince, okular)`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	// No args: show all config
	if len(args) == 0 {
		if humanOutput {
			fmt.Printf("site-domain: %s\n", cfg.SiteDomain)
			fmt.Printf("style:       %s\n", cfg.Style)
			fmt.Printf("pdf-root:    %s\n", cfg.PDFRoot)
			fmt.Printf("pdf-reader:  %s\n", cfg.PDFReader)
		} else {
			outputJSON(ConfigResponse{
				SiteDomain: cfg.SiteDomain,
				Style:      cfg.Style,
				PDFRoot:    cfg.PDFRoot,
				PDFReader:  cfg.PDFReader,
			})
		}
		return nil
	}

	key := args[0]
	normalizedKey := normalizeKey(key)

	// One arg: get specific value
	if len(args) == 1 {
		switch normalizedKey {
		case "site-domain":
			printConfigValue("site_domain", cfg.SiteDomain)
		case "style":
			printConfigValue("style", cfg.Style)
		case "pdf-root":
			printConfigValue("pdf_root", cfg.PDFRoot)
		case "pdf-reader":
			printConfigValue("pdf_reader", cfg.PDFReader)
		default:
			exitWithError(ExitError, "unknown configuration key: %s", key)
		}
		return nil
	}

	// Two args: set value
	value := args[1]

	switch normalizedKey {
	case "site-domain":
		cfg.SiteDomain = strings.TrimPrefix(strings.TrimPrefix(value, "https://"), "http://")

	case "style":
		registry := styles.NewRegistry()
		if err := registry.LoadOverrides(config.StylesPath(repoRoot)); err != nil {
			exitWithError(ExitDataError, "loading styles: %v", err)
		}
		if _, err := registry.Get(value); err != nil {
			exitWithError(ExitError, "%v", err)
		}
		cfg.Style = value

	case "pdf-root":
		expandedValue := config.ExpandPath(value)
		if err := config.ValidatePDFRoot(expandedValue); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		cfg.PDFRoot = expandedValue

	case "pdf-reader":
		if err := config.ValidatePDFReader(value); err != nil {
			exitWithError(ExitError, "%v", err)
		}
		cfg.PDFReader = value

	default:
		exitWithError(ExitError, "unknown configuration key: %s", key)
	}

	if err := cfg.Save(repoRoot); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Updated %s to %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{
			Status: "updated",
			Key:    normalizedKey,
			Value:  value,
		})
	}

	return nil
}

func printConfigValue(jsonKey, value string) {
	if humanOutput {
		fmt.Println(value)
	} else {
		outputJSON(map[string]string{jsonKey: value})
	}
}

// normalizeKey converts key formats (pdf-root, pdf_root, PDF-Root) to one form
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "-")
	return key
}
