package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	cliconfig "github.com/RamaShankarRay/XGpt/internal/cli/config"
	"github.com/RamaShankarRay/XGpt/internal/cli/ui"
)

var deleteForce bool

// deleteCmd is the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <chat-id>",
	Short: "delete a chat and its messages",
	Long: `Delete a chat and all of its messages.

By default, you will be prompted to confirm the deletion. Use --force to
skip confirmation. Chat IDs are shown by 'xgptctl list'.`,
	Example: `  # Delete a chat
  $ xgptctl delete 2f6e7a0c-6a3f-4f7e-9f1a-8b1d2c3e4f5a

  # Force delete without confirmation
  $ xgptctl delete local_1756000000000_k3j9x2m4q --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation prompt")

	deleteCmd.SilenceUsage = true
}

func runDelete(cmd *cobra.Command, args []string) error {
	chatID := args[0]

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

	// Resolve the title for the confirmation prompt.
	title := chatID
	for _, chat := range coordinator.Chats() {
		if chat.ID == chatID {
			title = chat.Title
			break
		}
	}

	if !deleteForce {
		confirm := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Delete chat '%s'?", title),
		}
		if err := survey.AskOne(prompt, &confirm); err != nil {
			return fmt.Errorf("confirmation prompt failed: %w", err)
		}

		if !confirm {
			ui.PrintInfo("Deletion cancelled")
			return nil
		}
	}

	ui.PrintInfo("Deleting chat '%s'...", title)

	if err := coordinator.DeleteChat(ctx, chatID); err != nil {
		ui.PrintError("failed to delete: %v", err)
		return fmt.Errorf("deletion failed")
	}

	ui.PrintSuccess("Successfully deleted chat '%s'", title)
	return nil
}
