package model

import "time"

const (
	KeyStatusActive   = "active"
	KeyStatusDegraded = "degraded"
	KeyStatusRevoked  = "revoked"
)

// ApiKey is one credential for one LLM provider. Lower priority is tried
// first. A degraded key always carries a cooldown timestamp and is skipped
// by the health checker until the cooldown elapses.
type ApiKey struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Provider      string     `gorm:"type:varchar(50);not null" json:"provider"`
	Secret        string     `gorm:"type:text;not null" json:"-"`
	Model         string     `gorm:"type:varchar(100)" json:"model"`
	BaseURL       string     `gorm:"type:varchar(255)" json:"base_url"`
	Priority      int        `gorm:"default:100;index" json:"priority"`
	Status        string     `gorm:"type:varchar(50);default:'active'" json:"status"`
	FailureCount  int        `gorm:"default:0" json:"failure_count"`
	CooldownUntil *time.Time `json:"cooldown_until"`
	DailyQuota    int        `gorm:"default:0" json:"daily_quota"`
	UsedToday     int        `gorm:"default:0" json:"used_today"`
	UsageDate     *time.Time `gorm:"type:date" json:"usage_date"`
	LastCheckedAt *time.Time `json:"last_checked_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// QuotaExhausted reports whether the key's daily budget is spent. A zero
// quota means unlimited.
func (k *ApiKey) QuotaExhausted(now time.Time) bool {
	if k.DailyQuota <= 0 {
		return false
	}
	if k.UsageDate == nil || k.UsageDate.Format("2006-01-02") != now.Format("2006-01-02") {
		return false
	}
	return k.UsedToday >= k.DailyQuota
}
