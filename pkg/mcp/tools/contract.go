package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/wlvh/Process-SemanticModel/pkg/dax"
	"github.com/wlvh/Process-SemanticModel/pkg/models"
)

// ContractProvider supplies the current inference contract. Implementations
// are expected to cache; tools pass refresh=true through on request.
type ContractProvider interface {
	Contract(ctx context.Context, refresh bool) (*models.InferenceResult, error)
}

// ContractToolDeps contains dependencies for the contract tools.
type ContractToolDeps struct {
	Contracts ContractProvider
	Logger    *zap.Logger
}

// RegisterContractTools registers the inference contract MCP tools.
func RegisterContractTools(s *server.MCPServer, deps *ContractToolDeps) {
	registerGetModelContractTool(s, deps)
	registerGetFactProfileTool(s, deps)
	registerGetRelationshipQualityTool(s, deps)
}

// registerGetModelContractTool adds the get_model_contract tool returning
// the full inference result.
func registerGetModelContractTool(s *server.MCPServer, deps *ContractToolDeps) {
	tool := mcp.NewTool(
		"get_model_contract",
		mcp.WithDescription(
			"Returns the full inference contract for the configured model: table roles, "+
				"star schema, date axis, per-fact time anchors, dimension labels and aliases, "+
				"relationship quality, measure categories and warnings. "+
				"Pass refresh=true to re-run inference against the live model.",
		),
		mcp.WithBoolean(
			"refresh",
			mcp.Description("Optional - recompute the contract instead of serving the cached one"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		refresh, _ := getOptionalBool(req, "refresh")
		contract, err := deps.Contracts.Contract(ctx, refresh)
		if err != nil {
			return nil, fmt.Errorf("failed to build contract: %w", err)
		}

		jsonResult, err := json.Marshal(contract)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal contract: %w", err)
		}
		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

// factProfileResponse is the response format for the get_fact_profile tool.
type factProfileResponse struct {
	Fact       string                        `json:"fact"`
	Role       string                        `json:"role"`
	TimeAxis   *models.FactTimeAxis          `json:"time_axis,omitempty"`
	RowCount   *int64                        `json:"row_count,omitempty"`
	Profile    *models.TimeAnchorProfile     `json:"profile,omitempty"`
	Dimensions []models.DimensionEdge        `json:"dimensions,omitempty"`
	EnumValues map[string][]models.EnumValue `json:"enum_values,omitempty"`
}

// registerGetFactProfileTool adds the get_fact_profile tool returning one
// fact's time axis, freshness anchor and star edges.
func registerGetFactProfileTool(s *server.MCPServer, deps *ContractToolDeps) {
	tool := mcp.NewTool(
		"get_fact_profile",
		mcp.WithDescription(
			"Returns everything inferred about one fact table: its time axis, "+
				"data-freshness anchor with 7/30/90-day counts, row count, dimension edges "+
				"and sampled enum values. "+
				"Example: get_fact_profile(fact='FactSales')",
		),
		mcp.WithString(
			"fact",
			mcp.Required(),
			mcp.Description("Fact table name exactly as listed in the contract"),
		),
		mcp.WithBoolean(
			"refresh",
			mcp.Description("Optional - recompute the contract instead of serving the cached one"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fact, err := req.RequireString("fact")
		if err != nil {
			return nil, err
		}
		fact = trimString(fact)
		if fact == "" {
			return NewErrorResult("invalid_parameters", "parameter 'fact' cannot be empty"), nil
		}
		if err := dax.ValidateIdentifier("table", fact); err != nil {
			return NewErrorResult("invalid_identifier", err.Error()), nil
		}

		refresh, _ := getOptionalBool(req, "refresh")
		contract, err := deps.Contracts.Contract(ctx, refresh)
		if err != nil {
			return nil, fmt.Errorf("failed to build contract: %w", err)
		}

		summary, ok := contract.Facts[fact]
		if !ok {
			return NewErrorResultWithDetails(
				"fact_not_found",
				fmt.Sprintf("no fact table named %q in the model", fact),
				map[string]any{"facts": factNames(contract)},
			), nil
		}

		response := factProfileResponse{
			Fact:       fact,
			Role:       string(contract.Roles[fact]),
			TimeAxis:   summary.TimeAxis,
			RowCount:   summary.RowCount,
			Profile:    summary.Profile,
			Dimensions: summary.Dimensions,
			EnumValues: summary.EnumValues,
		}
		jsonResult, err := json.Marshal(response)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal result: %w", err)
		}
		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

// registerGetRelationshipQualityTool adds the get_relationship_quality tool
// returning the ranked join-health report.
func registerGetRelationshipQualityTool(s *server.MCPServer, deps *ContractToolDeps) {
	tool := mcp.NewTool(
		"get_relationship_quality",
		mcp.WithDescription(
			"Returns the relationship quality report: blank foreign-key ratios, orphan "+
				"coverage, RED/YELLOW/GREEN severity per business relationship, and lints. "+
				"Requires profile mode 'standard'. "+
				"Optionally filters by severity: get_relationship_quality(severity='RED')",
		),
		mcp.WithString(
			"severity",
			mcp.Description("Optional - only return relationships at this severity (RED, YELLOW or GREEN)"),
		),
		mcp.WithBoolean(
			"refresh",
			mcp.Description("Optional - recompute the contract instead of serving the cached one"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		severity := strings.ToUpper(trimString(getOptionalString(req, "severity")))
		switch models.Severity(severity) {
		case "", models.SeverityRed, models.SeverityYellow, models.SeverityGreen:
		default:
			return NewErrorResult("invalid_parameters",
				fmt.Sprintf("severity %q is not one of RED, YELLOW, GREEN", severity)), nil
		}

		refresh, _ := getOptionalBool(req, "refresh")
		contract, err := deps.Contracts.Contract(ctx, refresh)
		if err != nil {
			return nil, fmt.Errorf("failed to build contract: %w", err)
		}
		if contract.Quality == nil {
			return NewErrorResult("quality_unavailable",
				"relationship quality was not measured; run with profile mode 'standard'"), nil
		}

		report := contract.Quality
		if severity != "" {
			filtered := &models.QualityReport{
				Summary:    filterBySeverity(report.Summary, models.Severity(severity)),
				Details:    filterBySeverity(report.Details, models.Severity(severity)),
				Lints:      report.Lints,
				Thresholds: report.Thresholds,
			}
			report = filtered
		}

		jsonResult, err := json.Marshal(report)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal result: %w", err)
		}
		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

func filterBySeverity(details []models.RelationshipQuality, severity models.Severity) []models.RelationshipQuality {
	out := make([]models.RelationshipQuality, 0, len(details))
	for _, d := range details {
		if d.Severity == severity {
			out = append(out, d)
		}
	}
	return out
}

func factNames(contract *models.InferenceResult) []string {
	names := make([]string, 0, len(contract.Facts))
	for name := range contract.Facts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
