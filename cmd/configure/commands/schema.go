package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stackit-qa/stackit-api/internal/database"
)

// NewSchemaCmd creates the schema command.
func NewSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage the composer's database schema",
	}
	cmd.AddCommand(newSchemaApplyCmd())
	return cmd
}

func newSchemaApplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Create missing tables",
		Long:  "Create the tables the API server owns. Existing tables are left untouched, so the command can be re-run safely.",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := commandLogger(cmd)
			defer func() { _ = log.Sync() }()

			db, err := connect()
			if err != nil {
				return err
			}
			defer closeDB(db)

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			log.Debug("applying_schema", zap.Int("statements", len(database.SchemaStatements())))
			if err := db.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
			log.Info("schema_applied")
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		},
	}
}
