package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type CreateTaskLogRequest struct {
	UserID        uuid.UUID       `json:"user_id"`
	TaskID        *uuid.UUID      `json:"task_id"`
	LogDate       string          `json:"log_date"` // YYYY-MM-DD
	DurationHours float64         `json:"duration_hours"`
	StartTime     *time.Time      `json:"start_time"`
	EndTime       *time.Time      `json:"end_time"`
	Description   string          `json:"description"`
	KpiCategoryID *uint           `json:"kpi_category_id"`
	Metadata      json.RawMessage `json:"metadata"`
}

type ReviewTaskLogRequest struct {
	ReviewerID uuid.UUID `json:"reviewer_id"`
}
