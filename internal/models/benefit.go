package models

// Frequency represents how often a benefit's usable amount resets.
type Frequency string

const (
	FrequencyMonthly    Frequency = "Monthly"
	FrequencyQuarterly  Frequency = "Quarterly"
	FrequencySemiAnnual Frequency = "Semi-Annual"
	FrequencyAnnual     Frequency = "Annual"
	FrequencyOneTime    Frequency = "One-time"
	FrequencyDaily      Frequency = "Daily" // AI quota items only
)

// ResetType determines whether a benefit resets on fixed calendar dates
// or relative to the card's renewal anniversary.
type ResetType string

const (
	ResetTypeCalendar    ResetType = "calendar"
	ResetTypeAnniversary ResetType = "anniversary"
)

// Benefit represents a single perk or credit attached to a card.
// A zero Value marks a non-monetary perk (lounge access, status, insurance).
type Benefit struct {
	Base
	CardID      string    `gorm:"type:uuid;not null;index" json:"card_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	Value       float64   `gorm:"not null;default:0" json:"value"`
	Frequency   Frequency `gorm:"not null" json:"frequency"`
	UsedAmount  float64   `gorm:"not null;default:0" json:"used_amount"`
	IsCredit    bool      `gorm:"default:false" json:"is_credit"`
	Category    string    `json:"category,omitempty"` // Travel, Dining, Shopping, ...
	ResetType   ResetType `gorm:"default:'calendar'" json:"reset_type"`
	IsHidden    bool      `gorm:"default:false" json:"is_hidden"`
	Position    int       `gorm:"not null;default:0" json:"position"`
}

// IsMonetary reports whether the benefit carries trackable dollar value.
func (b *Benefit) IsMonetary() bool {
	return b.Value > 0
}

// IsRedeemed reports whether the full value has been used this cycle.
func (b *Benefit) IsRedeemed() bool {
	return b.Value > 0 && b.UsedAmount >= b.Value
}
