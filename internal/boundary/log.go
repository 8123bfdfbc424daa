// internal/boundary/log.go
package boundary

import (
	"time"

	"github.com/google/uuid"
)

// ImpactMetrics are class metrics re-measured some time after an adjustment
// was applied, recorded against the log entry that made the change.
type ImpactMetrics struct {
	MeasuredAt           time.Time `json:"measured_at"`
	AvgAIUsageRate       float64   `json:"avg_ai_usage_rate"`
	AvgReflectionQuality float64   `json:"avg_reflection_quality"`
	CompletionRate       float64   `json:"completion_rate"`
}

// AdjustmentLog is one entry of the append-only boundary audit trail. The
// configuration fields are frozen at creation; Impact is the single permitted
// late write and may be filled exactly once via Store.RecordImpact.
type AdjustmentLog struct {
	ID           uuid.UUID      `json:"id"`
	AssignmentID string         `json:"assignment_id"`
	ProposalID   string         `json:"proposal_id,omitempty"`
	Previous     Config         `json:"previous"`
	Updated      Config         `json:"updated"`
	Reason       string         `json:"reason"`
	Actor        string         `json:"actor"`
	Notes        string         `json:"notes,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	Impact       *ImpactMetrics `json:"impact,omitempty"`
}
