package cli

import (
	"github.com/spf13/cobra"

	"github.com/wlvh/Process-SemanticModel/pkg/mcp"
	"github.com/wlvh/Process-SemanticModel/pkg/mcp/tools"
)

// newMCPCommand creates the mcp command serving the contract over stdio.
func newMCPCommand(common *commonOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the contract over the Model Context Protocol",
		Long: `Serve the inference contract to MCP clients over stdin/stdout. The
contract is computed on the first tool call and cached; clients pass
refresh=true to recompute against the live model.

Tools: health, get_model_contract, get_fact_profile,
get_relationship_quality. All logging goes to stderr; stdout carries the
protocol stream.`,
		Example: `  SEMDOC_ACCESS_TOKEN=... semdoc mcp --dataset 2b6cf2f5-3c4d-4f4e-9c37-1f0c35a2f9aa`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMCP(common)
		},
	}
}

func runMCP(common *commonOptions) error {
	cfg, err := common.loadConfig()
	if err != nil {
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

	provider := mcp.NewEngineProvider(engine, cfg.Service.Dataset, cfg.Service.Workspace, logger)
	srv := mcp.NewServer("semdoc", cfg.Version, logger)

	tools.RegisterHealthTool(srv.MCP(), tools.HealthDeps{
		Version:     cfg.Version,
		Dataset:     cfg.Service.Dataset,
		ProfileMode: cfg.Profile.Mode,
	})
	tools.RegisterContractTools(srv.MCP(), &tools.ContractToolDeps{
		Contracts: provider,
		Logger:    logger,
	})

	return srv.ServeStdio()
}
