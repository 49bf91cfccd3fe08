package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/schloss/internal/notify"
)

var (
	// Global flags
	configFile string
	verbose    bool

	// Root flags
	testEmail bool
)

// rootCmd runs one full screening pass when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   "schloss",
	Short: "Walter Schloss value screener for US equities",
	Long: `Screens the S&P 500, NASDAQ and Dow universe against Walter Schloss
style value rules and records the qualifying symbols.

Without a subcommand a single run is executed:
  load tickers → screen → print → append audit log → save snapshot

Examples:
  go run ./cmd/schloss
  go run ./cmd/schloss --test-email
  go run ./cmd/schloss schedule
  go run ./cmd/schloss universe refresh
  go run ./cmd/schloss auth
  go run ./cmd/schloss prune --max 7`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runRoot,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.Flags().BoolVar(&testEmail, "test-email", false, "send a dummy notification (AAPL, MSFT, GOOGL) and exit")
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runRoot(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	if testEmail {
		return sendTestEmail(ctx, a)
	}

	r, err := a.newRunner(os.Stdout)
	if err != nil {
		return err
	}

	report, err := r.Run(ctx)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	printReport(report)
	return nil
}

func sendTestEmail(ctx context.Context, a *app) error {
	recipient := a.cfg.Mail.User
	if recipient == "" {
		return fmt.Errorf("MAIL_USER is not set")
	}

	n, err := a.newNotifier()
	if err != nil {
		return err
	}

	if err := n.Notify(ctx, notify.TestSymbols, recipient); err != nil {
		PrintError(err.Error())
		return err
	}

	PrintSuccess("Test email sent successfully via Gmail OAuth2.")
	return nil
}
