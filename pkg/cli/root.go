// Package cli provides the semdoc command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wlvh/Process-SemanticModel/pkg/adapters/tabular"
	"github.com/wlvh/Process-SemanticModel/pkg/config"
	"github.com/wlvh/Process-SemanticModel/pkg/inference"
	"github.com/wlvh/Process-SemanticModel/pkg/logging"
)

// commonOptions holds the persistent flags shared by every command that
// talks to the model service.
type commonOptions struct {
	version   string
	dataset   string
	workspace string
	logLevel  string
}

// NewRootCmd creates the root semdoc command.
func NewRootCmd(version string) *cobra.Command {
	opts := &commonOptions{version: version}

	rootCmd := &cobra.Command{
		Use:   "semdoc",
		Short: "Semantic model inference and documentation",
		Long: `semdoc inspects a published tabular semantic model, reconstructs the
facts a human author left implicit - which tables are facts and dimensions,
how facts reach the calendar, which joins can be trusted - and profiles live
data to anchor "recent" windows to the freshest date the model actually
holds.

The result is rendered as a Markdown document for people, or as a JSON/YAML
contract for tools and LLM agents (also served over MCP).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	rootCmd.PersistentFlags().StringVar(&opts.dataset, "dataset", "", "semantic model (dataset) GUID; overrides configuration")
	rootCmd.PersistentFlags().StringVar(&opts.workspace, "workspace", "", "workspace (group) GUID; empty uses the token's default")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(
		newDocumentCommand(opts),
		newContractCommand(opts),
		newHistoryCommand(opts),
		newMCPCommand(opts),
		newVersionCommand(version),
	)

	return rootCmd
}

// loadConfig reads configuration and applies the persistent flag overrides.
func (o *commonOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.version)
	if err != nil {
		return nil, err
	}
	if o.dataset != "" {
		cfg.Service.Dataset = o.dataset
	}
	if o.workspace != "" {
		cfg.Service.Workspace = o.workspace
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	return cfg, nil
}

// newLogger builds the process logger for one command invocation. Logs go
// to stderr so stdout stays clean for rendered output and the MCP stream.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// newEngine wires the inference engine to the configured query service.
func newEngine(cfg *config.Config, logger *zap.Logger) (*inference.Engine, error) {
	if cfg.Service.Dataset == "" {
		return nil, fmt.Errorf("no dataset configured; set --dataset, SEMDOC_DATASET or service.dataset in %s", config.ConfigFile)
	}
	if cfg.Service.AccessToken == "" {
		return nil, fmt.Errorf("no access token configured; set SEMDOC_ACCESS_TOKEN")
	}

	client := tabular.NewClient(cfg.Service, logger)
	provider := tabular.NewInfoViewProvider(client, logger)
	return inference.NewEngine(provider, client, cfg.Profile, logger), nil
}
