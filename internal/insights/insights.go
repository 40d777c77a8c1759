// Package insights computes dashboard aggregates over a user's wallet.
//
// Everything here is a pure fold over already-loaded models: no database
// access, no caching, recomputed on every request. Used amounts are
// clamped into [0, value] before any math so imported or stale rows can
// never push a rate outside its range.
package insights

import (
	"sort"
	"strings"
	"time"

	"creditmax/internal/models"
	"creditmax/internal/reset"
)

const (
	expiringWindowDays = 60
	expiringLimit      = 6
	renewalsLimit      = 3
	aiAlertsLimit      = 3
)

// Summary holds the wallet-wide headline numbers.
type Summary struct {
	TotalValue      float64 `json:"total_value"`
	TotalUsed       float64 `json:"total_used"`
	RemainingValue  float64 `json:"remaining_value"`
	CaptureRate     int     `json:"capture_rate"` // 0-100
	TotalAnnualFees float64 `json:"total_annual_fees"`
	NetValue        float64 `json:"net_value"` // used minus fees, may be negative
	TotalPoints     int64   `json:"total_points"`
	CardCount       int     `json:"card_count"`
	BenefitCount    int     `json:"benefit_count"`
}

// CardStats holds the per-card utilization figures shown on card detail.
type CardStats struct {
	CardID      string  `json:"card_id"`
	Name        string  `json:"name"`
	TotalValue  float64 `json:"total_value"`
	TotalUsed   float64 `json:"total_used"`
	Utilization int     `json:"utilization"` // 0-100
	NetValue    float64 `json:"net_value"`
}

// ExpiringBenefit is one row of the expiring-soon dashboard widget.
type ExpiringBenefit struct {
	BenefitID     string    `json:"benefit_id"`
	CardID        string    `json:"card_id"`
	CardName      string    `json:"card_name"`
	Title         string    `json:"title"`
	Remaining     float64   `json:"remaining"`
	ExpiresOn     time.Time `json:"expires_on"`
	DaysRemaining int       `json:"days_remaining"`
}

// UpcomingRenewal is one row of the upcoming-charges widget, drawn from
// the user's subscriptions.
type UpcomingRenewal struct {
	Name       string  `json:"name"`
	Cost       float64 `json:"cost,omitempty"`
	RenewalDay int     `json:"renewal_day"`
	DaysUntil  int     `json:"days_until"`
}

// AIAlert flags the AI quotas closest to exhaustion.
type AIAlert struct {
	ItemID      string  `json:"item_id"`
	ServiceName string  `json:"service_name"`
	QuotaName   string  `json:"quota_name"`
	Percent     float64 `json:"percent"` // unclamped, >100 means overuse
}

// PointsProgram is one rewards-currency bucket.
type PointsProgram struct {
	Program string   `json:"program"`
	Points  int64    `json:"points"`
	Cards   []string `json:"cards"`
}

// PerkCategory buckets non-monetary perks for display.
type PerkCategory string

const (
	PerkInsurance PerkCategory = "Insurance"
	PerkStatus    PerkCategory = "Status"
	PerkTravel    PerkCategory = "Travel"
	PerkOther     PerkCategory = "Other"
)

// Perk is a non-monetary benefit annotated with its owning card.
type Perk struct {
	BenefitID   string `json:"benefit_id"`
	CardName    string `json:"card_name"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// PerkGroup is one display bucket of perks.
type PerkGroup struct {
	Category PerkCategory `json:"category"`
	Perks    []Perk       `json:"perks"`
}

// Summarize folds a wallet into its headline numbers.
func Summarize(cards []models.Card) Summary {
	var s Summary
	s.CardCount = len(cards)
	for i := range cards {
		card := &cards[i]
		s.TotalAnnualFees += card.AnnualFee
		s.TotalPoints += card.Points
		for j := range card.Benefits {
			b := &card.Benefits[j]
			if b.IsHidden || !b.IsMonetary() {
				continue
			}
			s.BenefitCount++
			s.TotalValue += b.Value
			s.TotalUsed += clampUsed(b)
		}
	}
	s.RemainingValue = s.TotalValue - s.TotalUsed
	s.CaptureRate = rate(s.TotalUsed, s.TotalValue)
	s.NetValue = s.TotalUsed - s.TotalAnnualFees
	return s
}

// PerCardStats computes utilization for each card in input order.
func PerCardStats(cards []models.Card) []CardStats {
	stats := make([]CardStats, 0, len(cards))
	for i := range cards {
		card := &cards[i]
		cs := CardStats{CardID: card.ID, Name: card.DisplayName()}
		for j := range card.Benefits {
			b := &card.Benefits[j]
			if b.IsHidden || !b.IsMonetary() {
				continue
			}
			cs.TotalValue += b.Value
			cs.TotalUsed += clampUsed(b)
		}
		cs.Utilization = rate(cs.TotalUsed, cs.TotalValue)
		cs.NetValue = cs.TotalUsed - card.AnnualFee
		stats = append(stats, cs)
	}
	return stats
}

// ExpiringSoon lists monetary benefits with unredeemed value expiring
// within the next 60 days, soonest first. Monthly benefits are excluded:
// they churn every few weeks and would drown the list.
func ExpiringSoon(cards []models.Card, now time.Time) []ExpiringBenefit {
	var out []ExpiringBenefit
	for i := range cards {
		card := &cards[i]
		for j := range card.Benefits {
			b := &card.Benefits[j]
			if b.IsHidden || !b.IsMonetary() || b.IsRedeemed() {
				continue
			}
			if b.Frequency == models.FrequencyMonthly {
				continue
			}
			expires := reset.Expiry(b.Frequency, b.ResetType, card.RenewalDate, now)
			days := reset.DaysRemaining(now, expires)
			if days < 0 || days > expiringWindowDays {
				continue
			}
			out = append(out, ExpiringBenefit{
				BenefitID:     b.ID,
				CardID:        card.ID,
				CardName:      card.DisplayName(),
				Title:         b.Title,
				Remaining:     b.Value - clampUsed(b),
				ExpiresOn:     expires,
				DaysRemaining: days,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysRemaining < out[j].DaysRemaining
	})
	if len(out) > expiringLimit {
		out = out[:expiringLimit]
	}
	return out
}

// UpcomingRenewals lists the next few subscription charges. Distance to
// the renewal day is measured forward on a 30-day cycle, so a renewal day
// earlier in the month counts as next month's charge.
func UpcomingRenewals(subs []models.Subscription, now time.Time) []UpcomingRenewal {
	today := now.Day()
	var out []UpcomingRenewal
	for i := range subs {
		out = append(out, UpcomingRenewal{
			Name:       subs[i].Name,
			Cost:       subs[i].Cost,
			RenewalDay: subs[i].RenewalDay,
			DaysUntil:  cyclicDays(today, subs[i].RenewalDay),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysUntil < out[j].DaysUntil
	})
	if len(out) > renewalsLimit {
		out = out[:renewalsLimit]
	}
	return out
}

// AIAlerts surfaces the quotas closest to their cap, heaviest first.
// Percentages are left unclamped so overused quotas sort on top.
func AIAlerts(items []models.AIUsageItem) []AIAlert {
	alerts := make([]AIAlert, 0, len(items))
	for i := range items {
		it := &items[i]
		alerts = append(alerts, AIAlert{
			ItemID:      it.ID,
			ServiceName: it.ServiceName,
			QuotaName:   it.QuotaName,
			Percent:     it.UsagePercent(),
		})
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Percent > alerts[j].Percent
	})
	if len(alerts) > aiAlertsLimit {
		alerts = alerts[:aiAlertsLimit]
	}
	return alerts
}

// PointsByProgram groups card point balances by rewards currency and
// returns the buckets, largest first, plus the grand total.
func PointsByProgram(cards []models.Card) ([]PointsProgram, int64) {
	byName := make(map[string]*PointsProgram)
	var order []string
	var total int64
	for i := range cards {
		card := &cards[i]
		total += card.Points
		if card.PointsName == "" {
			continue
		}
		p, ok := byName[card.PointsName]
		if !ok {
			p = &PointsProgram{Program: card.PointsName}
			byName[card.PointsName] = p
			order = append(order, card.PointsName)
		}
		p.Points += card.Points
		p.Cards = append(p.Cards, card.DisplayName())
	}
	programs := make([]PointsProgram, 0, len(order))
	for _, name := range order {
		programs = append(programs, *byName[name])
	}
	sort.SliceStable(programs, func(i, j int) bool {
		return programs[i].Points > programs[j].Points
	})
	return programs, total
}

// PerkGroups buckets every visible non-monetary perk into the four
// display categories, preserving card order within each bucket. Empty
// buckets are omitted.
func PerkGroups(cards []models.Card) []PerkGroup {
	buckets := map[PerkCategory][]Perk{}
	for i := range cards {
		card := &cards[i]
		for j := range card.Benefits {
			b := &card.Benefits[j]
			if b.IsHidden || b.IsMonetary() {
				continue
			}
			cat := CategorizePerk(b)
			buckets[cat] = append(buckets[cat], Perk{
				BenefitID:   b.ID,
				CardName:    card.DisplayName(),
				Title:       b.Title,
				Description: b.Description,
			})
		}
	}
	var groups []PerkGroup
	for _, cat := range []PerkCategory{PerkInsurance, PerkStatus, PerkTravel, PerkOther} {
		if perks := buckets[cat]; len(perks) > 0 {
			groups = append(groups, PerkGroup{Category: cat, Perks: perks})
		}
	}
	return groups
}

// CategorizePerk maps a perk to a display bucket. An explicit category
// tag wins; otherwise title keywords decide, checked in a fixed order so
// a "Gold status travel insurance" perk lands in Insurance, not Travel.
func CategorizePerk(b *models.Benefit) PerkCategory {
	switch PerkCategory(b.Category) {
	case PerkInsurance, PerkStatus, PerkTravel, PerkOther:
		return PerkCategory(b.Category)
	}
	title := strings.ToLower(b.Title)
	for _, kw := range []string{"insurance", "protection", "warranty", "assurance", "liability", "damage"} {
		if strings.Contains(title, kw) {
			return PerkInsurance
		}
	}
	for _, kw := range []string{"status", "elite", "membership", "president", "platinum", "diamond", "gold"} {
		if strings.Contains(title, kw) {
			return PerkStatus
		}
	}
	for _, kw := range []string{"lounge", "club", "entry", "tsa", "clear", "global", "bag", "boarding", "concierge"} {
		if strings.Contains(title, kw) {
			return PerkTravel
		}
	}
	return PerkOther
}

// clampUsed bounds a benefit's used amount into [0, value].
func clampUsed(b *models.Benefit) float64 {
	if b.UsedAmount < 0 {
		return 0
	}
	if b.UsedAmount > b.Value {
		return b.Value
	}
	return b.UsedAmount
}

// rate returns round(100*used/total) as an int, 0 when total is 0.
func rate(used, total float64) int {
	if total <= 0 {
		return 0
	}
	return int(used/total*100 + 0.5)
}

// cyclicDays measures forward distance from today's day-of-month to the
// renewal day on a 30-day cycle. Same day counts as due today, while a
// renewal day a full cycle ahead keeps its 30-day distance.
func cyclicDays(today, renewalDay int) int {
	d := renewalDay - today
	if d < 0 {
		d += 30
	}
	return d
}
