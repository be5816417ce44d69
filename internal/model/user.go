package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleEmployee   = "employee"
	RoleSupervisor = "supervisor"
	RoleHR         = "hr"
	RoleAdmin      = "admin"
	RoleITAdmin    = "it_admin"
)

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name         string     `gorm:"type:varchar(255)" json:"name"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	Role         string     `gorm:"type:varchar(50);default:'employee'" json:"role"`
	SupervisorID *uuid.UUID `gorm:"type:uuid" json:"supervisor_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
