package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stackit-qa/stackit-api/internal/config"
	"github.com/stackit-qa/stackit-api/internal/database"
	"github.com/stackit-qa/stackit-api/internal/logger"
)

// connect loads the server configuration and opens the database it points at.
func connect() (*database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func closeDB(db *database.DB) {
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
	}
}

// commandLogger returns a console logger when --verbose is set and a no-op logger otherwise.
func commandLogger(cmd *cobra.Command) *zap.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		return zap.NewNop()
	}
	log, err := logger.NewDevelopmentLogger(true)
	if err != nil {
		return zap.NewNop()
	}
	return log
}
