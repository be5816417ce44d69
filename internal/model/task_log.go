package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

const (
	LogStatusPending  = "pending"
	LogStatusApproved = "approved"
	LogStatusRejected = "rejected"
)

// TaskLog is one segment of logged work: user/day/task with a duration and a
// free-text description. Metadata is a free-form JSON blob; the scoring code
// only reads the priority and completion_percent/completion keys from it.
type TaskLog struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	TaskID        *uuid.UUID      `gorm:"type:uuid" json:"task_id"`
	Task          *Task           `json:"task,omitempty"`
	LogDate       time.Time       `gorm:"type:date;index" json:"log_date"`
	DurationHours float64         `json:"duration_hours"`
	StartTime     *time.Time      `json:"start_time"`
	EndTime       *time.Time      `json:"end_time"`
	Description   string          `gorm:"type:text" json:"description"`
	KpiCategoryID *uint           `json:"kpi_category_id"`
	Metadata      string          `gorm:"type:jsonb;default:'{}'" json:"metadata"`
	Status        string          `gorm:"type:varchar(50);default:'pending'" json:"status"`
	ApprovedByID  *uuid.UUID      `gorm:"type:uuid" json:"approved_by_id"`
	ApprovedAt    *time.Time      `json:"approved_at"`
	LLMSuggestion string          `gorm:"type:jsonb" json:"llm_suggestion"`
	Embedding     pgvector.Vector `gorm:"type:vector(768)" json:"-"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
