package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/RamaShankarRay/XGpt/internal/auth"
	cliconfig "github.com/RamaShankarRay/XGpt/internal/cli/config"
	"github.com/RamaShankarRay/XGpt/internal/cli/ui"
	"github.com/RamaShankarRay/XGpt/internal/infrastructure/completion"
)

var (
	loginServer string
	loginEmail  string
)

// loginCmd is the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "sign in and save the session locally",
	Long: `Sign in to XGpt and save the session locally.

The signed-in identity is stored in ~/.xgpt/config.json and used
automatically for all subsequent commands. Signing in again with the same
email keeps the same user ID so existing chats stay visible.`,
	Example: `  # Sign in against the default server (localhost:8080)
  $ xgptctl login

  # Sign in against a custom server
  $ xgptctl login -s http://api.example.com:8080

  # Sign in with email (will prompt for password)
  $ xgptctl login -e demo@example.com`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&loginServer, "server", "s", "", "Backend proxy address")
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Email for authentication")

	loginCmd.SilenceUsage = true
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := cliconfig.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return fmt.Errorf("config load failed")
	}

	if loginServer != "" {
		cfg.Server = strings.TrimRight(loginServer, "/")
	}

	if loginEmail == "" {
		prompt := &survey.Input{
			Message: "Email:",
		}
		if err := survey.AskOne(prompt, &loginEmail, survey.WithValidator(survey.Required)); err != nil {
			ui.PrintError("failed to read email: %v", err)
			return fmt.Errorf("input failed")
		}
	}

	var password string
	prompt := &survey.Password{
		Message: "Password:",
	}
	if err := survey.AskOne(prompt, &password, survey.WithValidator(survey.Required)); err != nil {
		ui.PrintError("failed to read password: %v", err)
		return fmt.Errorf("input failed")
	}

	provider := auth.NewDemoProvider()
	user, err := provider.SignIn(ctx, loginEmail, password)
	if err != nil {
		ui.PrintErrorBox("Sign-in Failed", err.Error())
		return fmt.Errorf("authentication failed")
	}

	// Same email keeps its user ID across sign-ins so saved chats
	// stay owned by the same user.
	if cfg.Email != user.Email || cfg.UserID == "" {
		cfg.UserID = user.UID
	}
	cfg.Email = user.Email

	if err := cfg.Save(); err != nil {
		ui.PrintError("failed to save config: %v", err)
		return fmt.Errorf("config save failed")
	}

	// Best effort: report whether the backend proxy is reachable.
	serverStatus := "unreachable"
	if client, err := completion.NewClient(cfg.Server); err == nil {
		if health, err := client.HealthCheck(ctx); err == nil {
			serverStatus = health.Status
			if !health.OpenAIConfigured {
				serverStatus += " (OpenAI key not configured)"
			}
		}
	}

	configPath, _ := cliconfig.GetConfigPath()
	successContent := fmt.Sprintf(`Email:          %s
User ID:        %s
Server:         %s (%s)
Config saved:   %s`,
		cfg.Email,
		cfg.UserID,
		cfg.Server,
		serverStatus,
		configPath,
	)

	ui.PrintSuccessBox("✓ Signed In", successContent)

	fmt.Println()
	ui.PrintInfo("You can now use the following commands:")
	ui.PrintBold("  xgptctl list              # List your chats")
	ui.PrintBold("  xgptctl chat              # Start interactive chat")

	return nil
}
