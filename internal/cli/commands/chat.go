package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	cliconfig "github.com/RamaShankarRay/XGpt/internal/cli/config"
	"github.com/RamaShankarRay/XGpt/internal/cli/tui"
	"github.com/RamaShankarRay/XGpt/internal/cli/ui"
)

// chatCmd is the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "start interactive chat",
	Long: `Start an interactive chat session.

Messages are saved as you go; new chats are titled from your first
message. If the remote store becomes unavailable the session keeps
working against local files.`,
	Example: `  # Start interactive chat
  $ xgptctl chat

  # Keyboard controls:
  • Enter sends the message
  • Ctrl+N starts a new chat
  • ←/→ switch between chats
  • Esc exits the session`,
	RunE: runChat,
}

func init() {
	chatCmd.SilenceUsage = true
}

func runChat(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		ui.PrintError("unexpected argument: %s", args[0])
		fmt.Println("\nRun 'xgptctl chat' to start interactive session.")
		return fmt.Errorf("invalid arguments")
	}

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

	coordinator, cleanup, err := newSession(context.Background(), cfg)
	if err != nil {
		ui.PrintError("failed to open session: %v", err)
		return fmt.Errorf("session setup failed")
	}
	defer cleanup()

	program := tui.NewChatProgram(coordinator, cfg.Email)
	if err := program.Run(); err != nil {
		return fmt.Errorf("failed to run chat TUI: %w", err)
	}

	return nil
}
