package dto

type CreateApiKeyRequest struct {
	Provider   string `json:"provider"`
	Secret     string `json:"secret"`
	Model      string `json:"model"`
	BaseURL    string `json:"base_url"`
	Priority   int    `json:"priority"`
	DailyQuota int    `json:"daily_quota"`
}

type HealthCheckRequest struct {
	DegradedOnly bool `json:"degraded_only"`
}
