// Package report renders an inference result into a consumable document.
// Markdown is the human-facing form; JSON and YAML carry the contract
// verbatim for machine consumers.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/wlvh/Process-SemanticModel/pkg/models"
)

// Output formats accepted by Render.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
)

// Render writes the result in the named format. An empty format renders
// Markdown.
func Render(w io.Writer, format string, result *models.InferenceResult) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		return RenderJSON(w, result)
	case FormatYAML, "yml":
		return RenderYAML(w, result)
	case FormatMarkdown, "md", "":
		return RenderMarkdown(w, result)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
