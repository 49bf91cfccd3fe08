package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/schloss/internal/notify"
)

// authCmd runs the interactive OAuth2 consent flow
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize Gmail sending and store the OAuth2 token",
	Long: `Runs the installed-app OAuth2 flow against the client secret at
OAUTH_CLIENT_SECRET_PATH. A local loopback listener receives the redirect and
the token is written to OAUTH_TOKEN_PATH for later runs.`,
	Args: cobra.NoArgs,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	conf, err := notify.LoadOAuthConfig(a.cfg.OAuth.ClientSecretPath)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	tok, err := notify.Authorize(ctx, conf, notify.PrintURL(os.Stdout), a.log)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	if err := notify.SaveToken(a.cfg.OAuth.TokenPath, tok); err != nil {
		PrintError(err.Error())
		return err
	}

	PrintSuccess("Token saved to " + a.cfg.OAuth.TokenPath)
	return nil
}
