package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	EvaluationStatusPending   = "pending"
	EvaluationStatusApproved  = "approved"
	EvaluationStatusPublished = "published"
)

// UncategorizedID is the synthetic breakdown bucket for logs without a
// KPI category.
const UncategorizedID uint = 0

// CategoryScore is one breakdown entry. LLMScore and SupervisorScore stay
// nil until the corresponding scoring pass has run; a missing breakdown key
// means the category was not scored at all, never zero-filled.
type CategoryScore struct {
	CategoryName    string   `json:"category_name"`
	LoggedHours     float64  `json:"logged_hours"`
	PlannedHours    float64  `json:"planned_hours"`
	RuleScore       float64  `json:"rule_score"`
	LLMScore        *float64 `json:"llm_score"`
	SupervisorScore *float64 `json:"supervisor_score"`
}

// Breakdown maps category id to its scores. Encoded as a jsonb object keyed
// by the stringified category id.
type Breakdown map[uint]CategoryScore

func (b Breakdown) Value() (driver.Value, error) {
	if b == nil {
		return "{}", nil
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (b *Breakdown) Scan(value interface{}) error {
	if value == nil {
		*b = Breakdown{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Breakdown", value)
	}
	return json.Unmarshal(data, b)
}

// MonthlyEvaluation is one evaluation per (user, year, month). Score stays
// nil until the approval step aggregates the breakdown.
type MonthlyEvaluation struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_eval_user_month" json:"user_id"`
	Year         int        `gorm:"not null;uniqueIndex:idx_eval_user_month" json:"year"`
	Month        int        `gorm:"not null;uniqueIndex:idx_eval_user_month" json:"month"`
	Breakdown    Breakdown  `gorm:"type:jsonb" json:"breakdown"`
	Score        *float64   `json:"score"`
	Status       string     `gorm:"type:varchar(50);default:'pending'" json:"status"`
	ApprovedByID *uuid.UUID `gorm:"type:uuid" json:"approved_by_id"`
	ApprovedAt   *time.Time `json:"approved_at"`
	PublishedAt  *time.Time `json:"published_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
