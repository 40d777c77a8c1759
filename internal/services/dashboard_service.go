package services

import (
	"time"

	"creditmax/internal/insights"
)

// dashboardService computes dashboard widgets by loading the wallet and
// delegating the math to the insights package.
type dashboardService struct {
	cards CardServicer
	subs  SubscriptionServicer
	ai    AIUsageServicer
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(cards CardServicer, subs SubscriptionServicer, ai AIUsageServicer) DashboardServicer {
	return &dashboardService{cards: cards, subs: subs, ai: ai}
}

// Summary returns the wallet-wide headline numbers.
func (s *dashboardService) Summary(userID string) (*insights.Summary, error) {
	cards, err := s.cards.GetAllUserCards(userID)
	if err != nil {
		return nil, err
	}
	summary := insights.Summarize(cards)
	return &summary, nil
}

// CardStats returns per-card utilization figures.
func (s *dashboardService) CardStats(userID string) ([]insights.CardStats, error) {
	cards, err := s.cards.GetAllUserCards(userID)
	if err != nil {
		return nil, err
	}
	return insights.PerCardStats(cards), nil
}

// ExpiringSoon returns monetary benefits expiring within the window.
func (s *dashboardService) ExpiringSoon(userID string, now time.Time) ([]insights.ExpiringBenefit, error) {
	cards, err := s.cards.GetAllUserCards(userID)
	if err != nil {
		return nil, err
	}
	return insights.ExpiringSoon(cards, now), nil
}

// UpcomingRenewals returns the next few subscription charges.
func (s *dashboardService) UpcomingRenewals(userID string, now time.Time) ([]insights.UpcomingRenewal, error) {
	subs, err := s.subs.GetAllUserSubscriptions(userID)
	if err != nil {
		return nil, err
	}
	return insights.UpcomingRenewals(subs, now), nil
}

// AIAlerts returns the AI quotas closest to exhaustion.
func (s *dashboardService) AIAlerts(userID string) ([]insights.AIAlert, error) {
	items, err := s.ai.GetUserItems(userID)
	if err != nil {
		return nil, err
	}
	return insights.AIAlerts(items), nil
}

// Points returns point balances grouped by rewards program.
func (s *dashboardService) Points(userID string) ([]insights.PointsProgram, int64, error) {
	cards, err := s.cards.GetAllUserCards(userID)
	if err != nil {
		return nil, 0, err
	}
	programs, total := insights.PointsByProgram(cards)
	return programs, total, nil
}

// Perks returns non-monetary perks grouped by display category.
func (s *dashboardService) Perks(userID string) ([]insights.PerkGroup, error) {
	cards, err := s.cards.GetAllUserCards(userID)
	if err != nil {
		return nil, err
	}
	return insights.PerkGroups(cards), nil
}
