package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	AuditActionGenerated        = "generated"
	AuditActionSupervisorScored = "supervisor_scored"
	AuditActionApproved         = "approved"
	AuditActionPublished        = "published"
)

type EvaluationAudit struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	EvaluationID uuid.UUID  `gorm:"type:uuid;not null;index" json:"evaluation_id"`
	Action       string     `gorm:"type:varchar(50)" json:"action"`
	ActorID      *uuid.UUID `gorm:"type:uuid" json:"actor_id"`
	Comments     string     `gorm:"type:text" json:"comments"`
	CreatedAt    time.Time  `json:"created_at"`
}
