package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// newContractCommand creates the contract command: the machine-readable
// counterpart of document, always compact JSON on stdout.
func newContractCommand(common *commonOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contract",
		Short: "Print the inference contract as JSON",
		Long: `Run the inference pipeline and print the resulting contract as a single
line of JSON on stdout. This is the same payload the MCP server serves, so
the output pipes cleanly into jq or another tool.`,
		Example: `  semdoc contract | jq '.facts | keys'
  semdoc contract --pretty > contract.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runContract(cmd, common)
		},
	}

	cmd.Flags().Bool("pretty", false, "indent the JSON output")

	return cmd
}

func runContract(cmd *cobra.Command, common *commonOptions) error {
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

	result, err := engine.Run(cmd.Context(), cfg.Service.Dataset, cfg.Service.Workspace)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if pretty, _ := cmd.Flags().GetBool("pretty"); pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(result)
}
