package dax

import (
	"fmt"
	"unicode"

	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/wlvh/Process-SemanticModel/pkg/apperrors"
)

// MaxIdentifierLength bounds externally supplied object names. The tabular
// object model caps names well below this.
const MaxIdentifierLength = 256

// ValidateIdentifier screens a table or column name supplied by an external
// caller (CLI flag, MCP tool argument) before it is echoed into query text.
// Names coming from the model's own metadata listings do not pass through
// here; they are trusted as-is and only escaped.
func ValidateIdentifier(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%s name is empty: %w", kind, apperrors.ErrInvalidIdentifier)
	}
	if len(name) > MaxIdentifierLength {
		return fmt.Errorf("%s name exceeds %d characters: %w", kind, MaxIdentifierLength, apperrors.ErrInvalidIdentifier)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("%s name contains control characters: %w", kind, apperrors.ErrInvalidIdentifier)
		}
	}

	if isInjection, fingerprint := libinjection.IsSQLi(name); isInjection {
		return fmt.Errorf("%s name matches injection pattern %q: %w", kind, fingerprint, apperrors.ErrInvalidIdentifier)
	}

	return nil
}
