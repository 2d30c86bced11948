package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	cliconfig "github.com/RamaShankarRay/XGpt/internal/cli/config"
	"github.com/RamaShankarRay/XGpt/internal/cli/ui"
)

// listCmd is the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "list your chats",
	Long: `List your chats in a tree view, newest first.

The output includes each chat's title, ID, message count, and the time of
its last update. Chats come from the remote store when one is configured
and from local files otherwise.`,
	Example: `  # List your chats
  $ xgptctl list`,
	RunE: runList,
}

func init() {
	listCmd.SilenceUsage = true
}

func runList(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		ui.PrintError("unexpected argument: %s", args[0])
		fmt.Printf("\nRun '%s --help' for usage.\n", cmd.CommandPath())
		return fmt.Errorf("invalid arguments")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := cliconfig.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return fmt.Errorf("config load failed")
	}

	if !cfg.IsSignedIn() {
		ui.PrintError("not signed in, please login first")
		fmt.Println("\nRun 'xgptctl login' to sign in.")
		return fmt.Errorf("authentication required")
	}

	coordinator, cleanup, err := newSession(ctx, cfg)
	if err != nil {
		ui.PrintError("failed to open session: %v", err)
		return fmt.Errorf("session setup failed")
	}
	defer cleanup()

	chats := coordinator.Chats()

	fmt.Println()
	fmt.Println(ui.RenderChatList(chats))
	fmt.Println(ui.RenderChatSummary(len(chats)))

	return nil
}
