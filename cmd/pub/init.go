package main

import (
	"fmt"
	"os"

	"github.com/matsen/publist/internal/config"
	"github.com/matsen/publist/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new publist repository",
	Long: `Initialize a new publist repository in the current directory.

Creates:
  .publist/
  ├── publications.db   # Empty database
  └── config.json       # Default config`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	if config.IsRepository(root) {
		exitWithError(ExitError, "directory already contains a publist repository")
	}

	if err := os.MkdirAll(config.PublistPath(root), 0755); err != nil {
		exitWithError(ExitError, "creating .publist directory: %v", err)
	}

	// Opening the store creates the schema.
	db, err := storage.OpenDB(config.DBPath(root))
	if err != nil {
		exitWithError(ExitError, "creating database: %v", err)
	}
	db.Close()

	cfg := &config.Config{
		Style:     "plain",
		PDFReader: "system",
	}
	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "creating config.json: %v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized publist repository in %s\n", root)
	} else {
		outputJSON(StatusResponse{
			Status: "initialized",
			Path:   root,
		})
	}

	return nil
}
