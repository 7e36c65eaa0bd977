package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/coachly/adapter/cli"
)

// Cmd is the auth command group.
var Cmd = &cobra.Command{
	Use:   "auth",
	Short: "Sign in and out",
	Long: `Manage the signed-in user. Signing in links premium status to your
account; signing out also logs out of the purchase provider.`,
}

func init() {
	Cmd.AddCommand(loginCmd)
	Cmd.AddCommand(logoutCmd)
	Cmd.AddCommand(whoamiCmd)
}

func requireSessions() (*cli.App, error) {
	app := cli.GetApp()
	if app == nil || app.Sessions == nil {
		return nil, cli.ErrNotInitialized
	}
	return app, nil
}

var loginCmd = &cobra.Command{
	Use:   "login <user-id>",
	Short: "Sign in as a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireSessions()
		if err != nil {
			return err
		}
		if err := app.Sessions.SignIn(cli.Context(cmd.Context()), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", app.CurrentUserID())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireSessions()
		if err != nil {
			return err
		}
		if app.CurrentUserID() == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
			return nil
		}
		if err := app.Sessions.SignOut(cli.Context(cmd.Context())); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireSessions()
		if err != nil {
			return err
		}
		userID := app.CurrentUserID()
		if cli.JSONOutput() {
			return cli.PrintJSON(cmd.OutOrStdout(), map[string]any{
				"user_id":   userID,
				"signed_in": userID != "",
			})
		}
		if userID == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), userID)
		return nil
	},
}
