package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wlvh/Process-SemanticModel/pkg/apperrors"
	"github.com/wlvh/Process-SemanticModel/pkg/config"
	"github.com/wlvh/Process-SemanticModel/pkg/database"
	"github.com/wlvh/Process-SemanticModel/pkg/repositories"
)

// newHistoryCommand creates the history command for browsing persisted runs.
func newHistoryCommand(common *commonOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse persisted inference runs",
		Long: `List inference runs saved with "semdoc document --save", or print one
stored contract by run id. Requires the history database (database.enabled
in ` + config.ConfigFile + ` or SEMDOC_HISTORY_ENABLED=1).`,
		Example: `  # Recent runs across all datasets
  semdoc history

  # Recent runs of one model
  semdoc history --dataset 2b6cf2f5-3c4d-4f4e-9c37-1f0c35a2f9aa

  # Replay one stored contract
  semdoc history --id 550e8400-e29b-41d4-a716-446655440000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, common)
		},
	}

	cmd.Flags().Int("limit", 20, "maximum number of runs to list")
	cmd.Flags().String("id", "", "print the stored contract of one run")

	return cmd
}

func runHistory(cmd *cobra.Command, common *commonOptions) error {
	cfg, err := common.loadConfig()
	if err != nil {
		return err
	}

	var runID uuid.UUID
	if id, _ := cmd.Flags().GetString("id"); id != "" {
		if runID, err = uuid.Parse(id); err != nil {
			return fmt.Errorf("invalid run id %q: %w", id, err)
		}
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := openHistory(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()
	repo := repositories.NewRunRepository(db)

	if runID != uuid.Nil {
		return printRunContract(cmd, repo, runID)
	}

	// List filters by dataset only when the flag was given on the command
	// line; the configured default dataset should not hide other runs.
	dataset := ""
	if cmd.Flags().Changed("dataset") {
		dataset = cfg.Service.Dataset
	}
	limit, _ := cmd.Flags().GetInt("limit")

	runs, err := repo.List(cmd.Context(), dataset, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(cmd.OutOrStdout())
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Run ID", "Dataset", "Facts", "Dims", "Rels", "Severity", "Warnings", "Created"})
	for _, run := range runs {
		tw.AppendRow(table.Row{
			run.ID.String(),
			run.Dataset,
			run.Facts,
			run.Dimensions,
			run.Relationships,
			string(run.WorstSeverity),
			run.Warnings,
			run.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	tw.Render()
	fmt.Fprintf(cmd.OutOrStdout(), "(%d runs)\n", len(runs))
	return nil
}

// printRunContract writes one stored contract to stdout exactly as saved.
func printRunContract(cmd *cobra.Command, repo repositories.RunRepository, runID uuid.UUID) error {
	run, err := repo.Get(cmd.Context(), runID)
	if err != nil {
		if err == apperrors.ErrNotFound {
			return fmt.Errorf("no run with id %s", runID)
		}
		return err
	}

	_, err = cmd.OutOrStdout().Write(append(run.Contract, '\n'))
	return err
}

// openHistory connects to the run history database and ensures its schema
// is current. Callers own the returned pool.
func openHistory(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*database.DB, error) {
	if !cfg.Database.Enabled {
		return nil, fmt.Errorf("%w; set database.enabled in %s or SEMDOC_HISTORY_ENABLED=1",
			apperrors.ErrDatabaseDisabled, config.ConfigFile)
	}

	dsn := cfg.Database.ConnectionString()
	if err := database.EnsureHistorySchema(dsn, logger); err != nil {
		return nil, err
	}

	return database.Connect(ctx, &database.Config{
		URL:            dsn,
		MaxConnections: cfg.Database.MaxConnections,
	})
}
