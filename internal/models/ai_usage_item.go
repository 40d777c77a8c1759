package models

// AIUsageItem represents a metered quota on an external AI service,
// independent of credit cards. Position is user-controlled display order.
type AIUsageItem struct {
	Base
	UserID      string    `gorm:"type:uuid;not null;index" json:"user_id"`
	ServiceName string    `gorm:"not null" json:"service_name"` // e.g. ChatGPT
	PlanName    string    `json:"plan_name"`                    // e.g. Business (Teams)
	LoginURL    string    `json:"login_url,omitempty"`
	QuotaName   string    `gorm:"not null" json:"quota_name"` // e.g. "Agent Runs"
	QuotaAmount float64   `gorm:"not null" json:"quota_amount"`
	UsedAmount  float64   `gorm:"not null;default:0" json:"used_amount"`
	RenewalDay  int       `gorm:"not null" json:"renewal_day"` // 1-31
	Frequency   Frequency `gorm:"not null;default:'Monthly'" json:"frequency"`
	AutoPay     bool      `gorm:"default:false" json:"auto_pay"`
	Position    int       `gorm:"not null;default:0" json:"position"`
}

// UsagePercent returns usage as a percentage of quota. The value is not
// clamped to 100 so overuse sorts above exhausted quotas.
func (a *AIUsageItem) UsagePercent() float64 {
	if a.QuotaAmount <= 0 {
		return 0
	}
	return a.UsedAmount / a.QuotaAmount * 100
}
