package report

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/wlvh/Process-SemanticModel/pkg/models"
)

// RenderYAML writes the contract as YAML. The result is routed through its
// JSON form first so YAML keys match the JSON contract exactly.
func RenderYAML(w io.Writer, result *models.InferenceResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to rebuild result document: %w", err)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		enc.Close()
		return fmt.Errorf("failed to encode result as yaml: %w", err)
	}
	return enc.Close()
}
