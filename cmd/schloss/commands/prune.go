package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var pruneMax int

// pruneCmd applies snapshot retention without a run
var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest result snapshots",
	Args:  cobra.NoArgs,
	RunE:  runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)
	pruneCmd.Flags().IntVar(&pruneMax, "max", 0, "snapshots to keep (default MAX_SNAPSHOTS)")
}

func runPrune(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	keep := a.cfg.Storage.MaxSnapshots
	if pruneMax > 0 {
		keep = pruneMax
	}

	removed, err := a.store.Prune(keep)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	if len(removed) == 0 {
		PrintInfo(fmt.Sprintf("Nothing to prune (keeping %d)", keep))
		return nil
	}

	names := make([]string, len(removed))
	for i, p := range removed {
		names[i] = filepath.Base(p)
	}
	PrintList(names)
	PrintSuccess(fmt.Sprintf("Removed %d old result files", len(removed)))
	return nil
}
