package model

import "time"

// KpiCategory is a named scoring bucket (e.g. "Deep Work") with a relative
// weight used when the final evaluation score is aggregated.
type KpiCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Weight    float64   `gorm:"default:1" json:"weight"`
	Unit      string    `gorm:"type:varchar(50)" json:"unit"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
