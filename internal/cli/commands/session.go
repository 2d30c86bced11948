package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	cliconfig "github.com/RamaShankarRay/XGpt/internal/cli/config"
	"github.com/RamaShankarRay/XGpt/internal/cli/ui"
	"github.com/RamaShankarRay/XGpt/internal/domain"
	"github.com/RamaShankarRay/XGpt/internal/infrastructure/completion"
	"github.com/RamaShankarRay/XGpt/internal/infrastructure/database"
	"github.com/RamaShankarRay/XGpt/internal/infrastructure/localstore"
	"github.com/RamaShankarRay/XGpt/internal/usecase"
	dbpkg "github.com/RamaShankarRay/XGpt/pkg/database"
)

// newSession wires the stores and the completion client into a coordinator
// for the signed-in user. The returned cleanup closes the coordinator and
// any database connection.
func newSession(ctx context.Context, cfg *cliconfig.Config) (*usecase.Coordinator, func(), error) {
	// Keep command output clean; the TUI owns the terminal.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	storageDir, err := cfg.DefaultStorageDir()
	if err != nil {
		return nil, nil, err
	}

	local, err := localstore.New(storageDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open local store: %w", err)
	}

	var remote domain.ChatStore
	cleanupDB := func() {}
	if cfg.Database.Driver != "" {
		db, err := dbpkg.NewClient(cfg.DatabaseConfig(), logger)
		if err != nil {
			// Sticky fallback starts at session setup: keep going on
			// local files only.
			ui.PrintWarning("remote store unavailable, using local storage: %v", err)
		} else {
			store, err := database.NewStore(db)
			if err != nil {
				ui.PrintWarning("remote store unavailable, using local storage: %v", err)
				_ = dbpkg.Close(db, logger)
			} else {
				remote = store
				cleanupDB = func() { _ = dbpkg.Close(db, logger) }
			}
		}
	}

	client, err := completion.NewClient(cfg.Server)
	if err != nil {
		cleanupDB()
		return nil, nil, fmt.Errorf("failed to create completion client: %w", err)
	}

	coordinator := usecase.NewCoordinator(remote, local, client, cfg.Model, logger)
	if err := coordinator.Initialize(ctx, cfg.UserID); err != nil {
		cleanupDB()
		return nil, nil, fmt.Errorf("failed to initialize session: %w", err)
	}

	cleanup := func() {
		coordinator.Close()
		cleanupDB()
	}

	return coordinator, cleanup, nil
}
