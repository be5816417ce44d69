package model

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title        string     `gorm:"type:varchar(255)" json:"title"`
	PlannedHours float64    `gorm:"default:0" json:"planned_hours"`
	AssignedToID *uuid.UUID `gorm:"type:uuid" json:"assigned_to_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
