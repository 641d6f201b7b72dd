// Package tabular connects the engine to a semantic-model query service:
// a REST endpoint that evaluates queries against a published model and
// returns rows as JSON.
package tabular

import (
	"context"

	"github.com/wlvh/Process-SemanticModel/pkg/models"
)

// QueryRunner executes one query against a model and returns decoded rows.
// Implementations own transport, auth, timeouts and retries; callers own
// query text. This is the engine's only blocking dependency.
type QueryRunner interface {
	// Execute evaluates query against the dataset. workspace may be empty
	// for the token's default workspace.
	Execute(ctx context.Context, dataset, query, workspace string) (*RowSet, error)
}

// MetadataProvider produces a point-in-time snapshot of the model's
// structural metadata. A category that cannot be listed yields an empty
// slice plus a warning on the snapshot, not a failure.
type MetadataProvider interface {
	FetchMetadata(ctx context.Context, dataset, workspace string) (*models.ModelMetadata, error)
}
