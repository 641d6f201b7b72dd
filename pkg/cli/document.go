package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/wlvh/Process-SemanticModel/pkg/config"
	"github.com/wlvh/Process-SemanticModel/pkg/models"
	"github.com/wlvh/Process-SemanticModel/pkg/report"
	"github.com/wlvh/Process-SemanticModel/pkg/repositories"
)

// newDocumentCommand creates the document command: the full pipeline from
// metadata snapshot to rendered document.
func newDocumentCommand(common *commonOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "document",
		Short: "Generate a model document",
		Long: `Run the full inference pipeline and render a model document.

The profile mode decides how much live data is read: "off" documents
structure only, "light" adds row counts and freshness anchors, "standard"
adds relationship quality measurements.`,
		Example: `  # Markdown document for the configured model
  semdoc document

  # JSON contract written to a file, structure only
  semdoc document --format json --output model.json --profile off

  # Full profiling with value samples, persisted to history
  semdoc document --profile standard --enums --save`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDocument(cmd, common)
		},
	}

	cmd.Flags().StringP("format", "f", "", `output format: "markdown", "json" or "yaml"`)
	cmd.Flags().StringP("output", "o", "", "output file; empty writes to stdout")
	cmd.Flags().String("profile", "", `profile mode: "off", "light" or "standard"`)
	cmd.Flags().Bool("enums", false, "sample top values of category-like fact columns (standard mode)")
	cmd.Flags().Bool("expressions", false, "include measure definition text")
	cmd.Flags().Bool("save", false, "persist the run to the history database")

	return cmd
}

func runDocument(cmd *cobra.Command, common *commonOptions) error {
	cfg, err := common.loadConfig()
	if err != nil {
		return err
	}
	if err := applyDocumentFlags(cfg, cmd.Flags()); err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	engine, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}

	result, err := engine.Run(cmd.Context(), cfg.Service.Dataset, cfg.Service.Workspace)
	if err != nil {
		return err
	}

	save, _ := cmd.Flags().GetBool("save")
	if save {
		if err := saveRun(cmd.Context(), cfg, result, logger); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if cfg.Output.Path != "" {
		f, err := os.Create(cfg.Output.Path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := report.Render(out, cfg.Output.Format, result); err != nil {
		return err
	}
	if cfg.Output.Path != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Document written to %s\n", cfg.Output.Path)
	}
	return nil
}

// applyDocumentFlags overlays document command flags onto the loaded
// configuration. Only flags the caller actually set override it.
func applyDocumentFlags(cfg *config.Config, flags *pflag.FlagSet) error {
	if flags.Changed("format") {
		cfg.Output.Format, _ = flags.GetString("format")
	}
	if flags.Changed("output") {
		cfg.Output.Path, _ = flags.GetString("output")
	}
	if flags.Changed("profile") {
		cfg.Profile.Mode, _ = flags.GetString("profile")
	}
	if flags.Changed("enums") {
		cfg.Profile.IncludeEnums, _ = flags.GetBool("enums")
	}
	if flags.Changed("expressions") {
		cfg.Profile.IncludeExpressions, _ = flags.GetBool("expressions")
	}
	return cfg.Validate()
}

// saveRun persists one result to the history database.
func saveRun(ctx context.Context, cfg *config.Config, result *models.InferenceResult, logger *zap.Logger) error {
	db, err := openHistory(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	contract, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode contract for history: %w", err)
	}

	run := repositories.NewRunFromResult(result, contract)
	if err := repositories.NewRunRepository(db).Save(ctx, run); err != nil {
		return err
	}
	logger.Info("run saved", zap.String("run_id", run.ID.String()))
	return nil
}
