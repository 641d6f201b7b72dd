package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// InferenceRun is one persisted engine run: identifying info, headline
// counts for listing, and the full contract document.
type InferenceRun struct {
	ID            uuid.UUID       `json:"id"`
	Dataset       string          `json:"dataset"`
	Workspace     string          `json:"workspace,omitempty"`
	Facts         int             `json:"facts"`
	Dimensions    int             `json:"dimensions"`
	Relationships int             `json:"relationships"`
	WorstSeverity Severity        `json:"worst_severity,omitempty"`
	Warnings      int             `json:"warnings"`
	Contract      json.RawMessage `json:"contract,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
