package premium

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/coachly/adapter/cli"
	"github.com/felixgeelhaar/coachly/internal/entitlements/domain"
)

// Cmd is the premium command group.
var Cmd = &cobra.Command{
	Use:   "premium",
	Short: "Manage the premium subscription",
	Long:  `Inspect premium status, buy or restore a subscription, and log out of the purchase provider.`,
}

func init() {
	Cmd.AddCommand(statusCmd)
	Cmd.AddCommand(offeringCmd)
	Cmd.AddCommand(purchaseCmd)
	Cmd.AddCommand(restoreCmd)
	Cmd.AddCommand(logoutCmd)
	Cmd.AddCommand(simulateCmd)
}

func requireStore() (*cli.App, error) {
	app := cli.GetApp()
	if app == nil || app.Entitlements == nil {
		return nil, cli.ErrNotInitialized
	}
	return app, nil
}

func printStatus(w io.Writer, platform domain.Platform, status domain.Status) {
	fmt.Fprintf(w, "Tier:         %s\n", status.Tier())
	fmt.Fprintf(w, "Platform:     %s\n", platform)
	entitlements := "none"
	if !status.IsEmpty() {
		ids := make([]string, len(status.ActiveEntitlements))
		for i, id := range status.ActiveEntitlements {
			ids[i] = string(id)
		}
		entitlements = strings.Join(ids, ", ")
	}
	fmt.Fprintf(w, "Entitlements: %s\n", entitlements)
}
