package ai

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	FlowRunStatusOK        = "ok"
	FlowRunStatusDegraded  = "degraded"
	FlowRunStatusRejected  = "rejected"
	FlowRunStatusCancelled = "cancelled"
)

// FlowRun is the audit row written for every flow invocation. A cancelled run
// is one whose caller went away before the model answered.
type FlowRun struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	FlowID            string         `gorm:"column:flow_id;not null;index" json:"flow_id"`
	PromptName        string         `gorm:"column:prompt_name" json:"prompt_name"`
	PromptVersion     int            `gorm:"column:prompt_version" json:"prompt_version"`
	InputFingerprint  string         `gorm:"column:input_fingerprint;index" json:"input_fingerprint"`
	PromptFingerprint string         `gorm:"column:prompt_fingerprint" json:"prompt_fingerprint,omitempty"`
	Status            string         `gorm:"column:status;not null;index" json:"status"`
	Reason            string         `gorm:"column:reason;type:text" json:"reason,omitempty"`
	ToolCalls         int            `gorm:"column:tool_calls;not null;default:0" json:"tool_calls"`
	DurationMS        int64          `gorm:"column:duration_ms;not null;default:0" json:"duration_ms"`
	TraceID           string         `gorm:"column:trace_id" json:"trace_id,omitempty"`
	Violations        datatypes.JSON `gorm:"column:violations" json:"violations,omitempty"`
	CreatedAt         time.Time      `gorm:"not null;index" json:"created_at"`
}

func (FlowRun) TableName() string { return "ai_flow_run" }

func (r *FlowRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
