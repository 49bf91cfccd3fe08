package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// universeCmd groups ticker cache commands
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "Manage the ticker cache",
}

var universeRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the ticker cache from S&P 500, NASDAQ and Dow",
	Args:  cobra.NoArgs,
	RunE:  runUniverseRefresh,
}

var universeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the cached tickers (building the cache if missing)",
	Args:  cobra.NoArgs,
	RunE:  runUniverseShow,
}

func init() {
	rootCmd.AddCommand(universeCmd)
	universeCmd.AddCommand(universeRefreshCmd)
	universeCmd.AddCommand(universeShowCmd)
}

func runUniverseRefresh(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	symbols, err := a.source.Refresh(ctx)
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		PrintError("Ticker list could not be generated; existing cache left unchanged")
		return fmt.Errorf("universe refresh produced no symbols")
	}

	PrintSuccess(fmt.Sprintf("Generated and saved %d tickers to %s", len(symbols), a.cfg.Storage.TickerCachePath))
	return nil
}

func runUniverseShow(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	symbols, err := a.source.Load(ctx)
	if err != nil {
		return err
	}
	for _, s := range symbols {
		fmt.Println(s)
	}
	PrintInfo(fmt.Sprintf("%d tickers", len(symbols)))
	return nil
}
