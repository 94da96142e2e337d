package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stackit-qa/stackit-api/internal/database"
	"github.com/stackit-qa/stackit-api/internal/models"
	"github.com/stackit-qa/stackit-api/internal/validation"
)

// NewRatelimitCmd creates the ratelimit configuration command with list and set subcommands.
func NewRatelimitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Manage rate limit configuration",
		Long:  "List or update the rate limit applied to the API route groups (e.g. 5-S, 100-M). Running servers pick up changes within a minute.",
	}
	cmd.AddCommand(newRatelimitListCmd())
	cmd.AddCommand(newRatelimitSetCmd())
	return cmd
}

func newRatelimitListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List current rate limit configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connect()
			if err != nil {
				return err
			}
			defer closeDB(db)

			c, err := database.NewRatelimitConfigRepository(db).Get(context.Background())
			if err != nil {
				return fmt.Errorf("get ratelimit config: %w", err)
			}
			out := cmd.OutOrStdout()
			if c == nil {
				fmt.Fprintln(out, "No rate limit configuration in database. Use 'ratelimit set' to add one.")
				return nil
			}
			fmt.Fprintln(out, "Rate limit configuration:")
			fmt.Fprintf(out, "  Rate:    %s\n", c.Rate)
			fmt.Fprintf(out, "  Updated: %s\n", c.UpdatedAt.UTC().Format(time.RFC3339))
			return nil
		},
	}
}

func newRatelimitSetCmd() *cobra.Command {
	var rate string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set rate limit configuration",
		Long:  "Update rate limit (e.g. 5-S, 100-M, 1000-H). Stored in database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			rate = strings.TrimSpace(rate)
			if rate == "" {
				return fmt.Errorf("--rate is required (e.g. 5-S, 100-M)")
			}
			if err := validation.ValidateRate(rate); err != nil {
				return err
			}

			log := commandLogger(cmd)
			defer func() { _ = log.Sync() }()

			db, err := connect()
			if err != nil {
				return err
			}
			defer closeDB(db)

			c := &models.RatelimitConfig{Rate: rate}
			if err := database.NewRatelimitConfigRepository(db).Set(context.Background(), c); err != nil {
				return fmt.Errorf("set ratelimit config: %w", err)
			}
			log.Info("ratelimit_config_updated", zap.String("rate", c.Rate))
			fmt.Fprintf(cmd.OutOrStdout(), "Rate limit set to %s.\n", c.Rate)
			return nil
		},
	}
	cmd.Flags().StringVar(&rate, "rate", "", "Rate (e.g. 5-S, 100-M, 1000-H) (required)")
	return cmd
}
