package models

// Card represents a credit card in a user's wallet, owning an ordered
// list of benefits.
type Card struct {
	Base
	UserID     string  `gorm:"type:uuid;not null;index" json:"user_id"`
	Name       string  `gorm:"not null" json:"name"`
	Nickname   string  `json:"nickname,omitempty"`
	Last4      string  `gorm:"size:4" json:"last4,omitempty"`
	Issuer     string  `gorm:"not null" json:"issuer"`
	Network    string  `json:"network,omitempty"` // Visa, Mastercard, Amex, Discover
	AnnualFee  float64 `gorm:"not null;default:0" json:"annual_fee"`
	ColorFrom  string  `json:"color_from"`
	ColorTo    string  `json:"color_to"`
	RenewalDate string `gorm:"size:10" json:"renewal_date,omitempty"` // ISO date YYYY-MM-DD
	LoginURL   string  `json:"login_url,omitempty"`
	Points     int64   `gorm:"default:0" json:"points"`
	PointsName string  `json:"points_name,omitempty"` // e.g. "Membership Rewards"
	AutoPay    bool    `gorm:"default:false" json:"auto_pay"`

	// Relationships
	Benefits []Benefit `gorm:"foreignKey:CardID" json:"benefits,omitempty"`
}

// DisplayName returns the user nickname when set, otherwise the product name.
func (c *Card) DisplayName() string {
	if c.Nickname != "" {
		return c.Nickname
	}
	return c.Name
}
