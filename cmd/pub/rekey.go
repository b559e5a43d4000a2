package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rekeyCmd)
}

var rekeyCmd = &cobra.Command{
	Use:   "rekey <citekey>",
	Short: "Recompute suffixes among same-author same-year publications",
	Long: `Recompute disambiguation suffixes for the cluster a citekey belongs to.

Publications sharing a first-author surname and year are suffixed a, b,
c... in date order. Adding or removing a sibling can leave the cluster
inconsistent (a lone "a", or a gap); rekey reassigns the whole cluster.

Only generated citekeys move. Hand-picked keys keep their spelling and
are skipped.

Examples:
  pub rekey Yang2024a`,
	Args: cobra.ExactArgs(1),
	RunE: runRekey,
}

// RekeyedPub is one citekey change from a rekey pass.
type RekeyedPub struct {
	ID     int64  `json:"id"`
	OldKey string `json:"old_key"`
	NewKey string `json:"new_key"`
}

// RekeyResult reports the outcome of a rekey pass.
type RekeyResult struct {
	Status  string       `json:"status"`
	Changes []RekeyedPub `json:"changes"`
}

func runRekey(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenStore(repoRoot)
	defer db.Close()

	changes, err := db.Rekey(args[0])
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	result := RekeyResult{Status: "rekeyed", Changes: make([]RekeyedPub, 0, len(changes))}
	for _, c := range changes {
		result.Changes = append(result.Changes, RekeyedPub{ID: c.ID, OldKey: c.OldKey, NewKey: c.NewKey})
	}
	if len(changes) == 0 {
		result.Status = "unchanged"
	}

	if humanOutput {
		if len(changes) == 0 {
			fmt.Println("Citekeys already canonical, nothing to do")
			return nil
		}
		for _, c := range changes {
			fmt.Printf("%s -> %s\n", c.OldKey, c.NewKey)
		}
		fmt.Printf("Rekeyed %d publication(s)\n", len(changes))
	} else {
		outputJSON(result)
	}

	return nil
}
