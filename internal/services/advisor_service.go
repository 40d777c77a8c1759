package services

import (
	"context"

	"golang.org/x/sync/singleflight"

	"creditmax/internal/gemini"
	"creditmax/internal/models"
)

// WalletAdvisor is the slice of the Gemini client used by the advisor
// service, extracted so tests can stub the external calls.
type WalletAdvisor interface {
	FetchCardBenefits(ctx context.Context, cardName string) (*gemini.CardBenefitsResult, error)
	AnalyzeWallet(ctx context.Context, snapshot gemini.WalletSnapshot) (*gemini.WalletAnalysis, error)
}

// advisorService orchestrates AI-assisted wallet operations.
type advisorService struct {
	advisor WalletAdvisor
	cards   CardServicer
	subs    SubscriptionServicer
	ai      AIUsageServicer

	// refreshGroup collapses concurrent refreshes of the same card into
	// one upstream call, so double-clicks don't double-bill the API.
	refreshGroup singleflight.Group
}

// NewAdvisorService creates a new AdvisorServicer.
func NewAdvisorService(advisor WalletAdvisor, cards CardServicer, subs SubscriptionServicer, ai AIUsageServicer) AdvisorServicer {
	return &advisorService{advisor: advisor, cards: cards, subs: subs, ai: ai}
}

// RefreshCardBenefits researches a card's current benefit list and merges
// it into the stored card, preserving redemption progress on matching rows.
func (s *advisorService) RefreshCardBenefits(ctx context.Context, userID, cardID string) (*models.Card, error) {
	result, err, _ := s.refreshGroup.Do(userID+":"+cardID, func() (interface{}, error) {
		card, err := s.cards.GetCardByID(userID, cardID)
		if err != nil {
			return nil, err
		}

		research, err := s.advisor.FetchCardBenefits(ctx, card.Name)
		if err != nil {
			return nil, err
		}

		incoming := make([]IncomingBenefit, len(research.Benefits))
		for i, b := range research.Benefits {
			incoming[i] = IncomingBenefit{
				Title:       b.Title,
				Description: b.Description,
				Value:       b.Value,
				Frequency:   b.Frequency,
				IsCredit:    b.IsCredit,
				Category:    b.Category,
			}
		}

		return s.cards.MergeBenefits(userID, cardID, incoming)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Card), nil
}

// AnalyzeWallet reduces the wallet to an anonymous snapshot and asks the
// advisor for a score and action items.
func (s *advisorService) AnalyzeWallet(ctx context.Context, userID string) (*gemini.WalletAnalysis, error) {
	cards, err := s.cards.GetAllUserCards(userID)
	if err != nil {
		return nil, err
	}
	subs, err := s.subs.GetAllUserSubscriptions(userID)
	if err != nil {
		return nil, err
	}
	items, err := s.ai.GetUserItems(userID)
	if err != nil {
		return nil, err
	}

	return s.advisor.AnalyzeWallet(ctx, buildSnapshot(cards, subs, items))
}

// buildSnapshot reduces wallet models to the fields the advisor sees:
// names and amounts only, never internal IDs.
func buildSnapshot(cards []models.Card, subs []models.Subscription, items []models.AIUsageItem) gemini.WalletSnapshot {
	cardNames := make(map[string]string, len(cards))
	snapshot := gemini.WalletSnapshot{
		Cards:         make([]gemini.CardSnapshot, 0, len(cards)),
		Subscriptions: make([]gemini.SubscriptionSnapshot, 0, len(subs)),
		AIUsage:       make([]gemini.AIUsageSnapshot, 0, len(items)),
	}

	for i := range cards {
		card := &cards[i]
		cardNames[card.ID] = card.Name
		cs := gemini.CardSnapshot{
			Name:      card.Name,
			Issuer:    card.Issuer,
			AnnualFee: card.AnnualFee,
		}
		for j := range card.Benefits {
			b := &card.Benefits[j]
			if b.IsHidden {
				continue
			}
			cs.Benefits = append(cs.Benefits, gemini.BenefitSnapshot{
				Title: b.Title,
				Value: b.Value,
				Used:  b.UsedAmount,
			})
		}
		snapshot.Cards = append(snapshot.Cards, cs)
	}

	for i := range subs {
		linked := "Unlinked"
		if name, ok := cardNames[subs[i].LinkedCardID]; ok {
			linked = name
		}
		snapshot.Subscriptions = append(snapshot.Subscriptions, gemini.SubscriptionSnapshot{
			Name:       subs[i].Name,
			Cost:       subs[i].Cost,
			LinkedCard: linked,
		})
	}

	for i := range items {
		snapshot.AIUsage = append(snapshot.AIUsage, gemini.AIUsageSnapshot{
			Service: items[i].ServiceName,
			Used:    items[i].UsedAmount,
			Limit:   items[i].QuotaAmount,
		})
	}

	return snapshot
}
