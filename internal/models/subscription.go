package models

// Subscription represents a recurring paid service, optionally linked to
// the card that pays for it. The link is a weak reference: the card may be
// deleted later, and readers treat a dangling link as unlinked.
type Subscription struct {
	Base
	UserID       string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Name         string    `gorm:"not null" json:"name"`
	Cost         float64   `gorm:"not null" json:"cost"`
	Frequency    Frequency `gorm:"not null;default:'Monthly'" json:"frequency"`
	RenewalDay   int       `gorm:"not null" json:"renewal_day"` // 1-31
	Category     string    `json:"category"`
	LinkedCardID string    `gorm:"type:uuid" json:"linked_card_id,omitempty"`
	AutoPay      bool      `gorm:"default:false" json:"auto_pay"`
}
