package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/wlvh/Process-SemanticModel/pkg/models"
)

// RenderJSON writes the contract as indented JSON.
func RenderJSON(w io.Writer, result *models.InferenceResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}
