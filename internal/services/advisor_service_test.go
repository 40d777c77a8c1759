package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"creditmax/internal/gemini"
	"creditmax/internal/models"
	"creditmax/internal/testutil"
)

// stubAdvisor is a WalletAdvisor test double with canned responses.
type stubAdvisor struct {
	fetchCalls   atomic.Int32
	fetchResult  *gemini.CardBenefitsResult
	fetchErr     error
	analyzeErr   error
	lastSnapshot gemini.WalletSnapshot
	mu           sync.Mutex
	release      chan struct{} // when set, FetchCardBenefits blocks until closed
}

func (s *stubAdvisor) FetchCardBenefits(_ context.Context, _ string) (*gemini.CardBenefitsResult, error) {
	s.fetchCalls.Add(1)
	if s.release != nil {
		<-s.release
	}
	return s.fetchResult, s.fetchErr
}

func (s *stubAdvisor) AnalyzeWallet(_ context.Context, snapshot gemini.WalletSnapshot) (*gemini.WalletAnalysis, error) {
	s.mu.Lock()
	s.lastSnapshot = snapshot
	s.mu.Unlock()
	if s.analyzeErr != nil {
		return nil, s.analyzeErr
	}
	return &gemini.WalletAnalysis{Score: 80, Summary: "Looks good"}, nil
}

func TestRefreshCardBenefits(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	cards := NewCardService(db)
	user := testutil.CreateTestUser(t, db)

	card, err := cards.CreateCard(user.ID, &models.Card{
		Name:   "Amex Gold",
		Issuer: "American Express",
		Benefits: []models.Benefit{
			{Title: "Dining Credit", Value: 100, UsedAmount: 40, Frequency: models.FrequencyMonthly},
		},
	})
	testutil.AssertNoError(t, err)

	stub := &stubAdvisor{fetchResult: &gemini.CardBenefitsResult{
		Issuer:  "American Express",
		Network: "Amex",
		Benefits: []gemini.FetchedBenefit{
			{Title: "Dining Credit", Value: 120, Frequency: models.FrequencyMonthly, IsCredit: true},
			{Title: "Resy Credit", Value: 100, Frequency: models.FrequencySemiAnnual, IsCredit: true},
		},
	}}
	svc := NewAdvisorService(stub, cards, NewSubscriptionService(db), NewAIUsageService(db))

	refreshed, err := svc.RefreshCardBenefits(context.Background(), user.ID, card.ID)
	testutil.AssertNoError(t, err)

	if len(refreshed.Benefits) != 2 {
		t.Fatalf("expected 2 benefits after refresh, got %d", len(refreshed.Benefits))
	}
	if refreshed.Benefits[0].UsedAmount != 40 {
		t.Errorf("refresh should preserve redemption progress, got %v", refreshed.Benefits[0].UsedAmount)
	}
}

func TestRefreshCardBenefits_DeduplicatesConcurrentCalls(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	cards := NewCardService(db)
	user := testutil.CreateTestUser(t, db)

	card, err := cards.CreateCard(user.ID, &models.Card{Name: "Sapphire", Issuer: "Chase"})
	testutil.AssertNoError(t, err)

	release := make(chan struct{})
	stub := &stubAdvisor{
		fetchResult: &gemini.CardBenefitsResult{Issuer: "Chase", Benefits: []gemini.FetchedBenefit{}},
		release:     release,
	}
	svc := NewAdvisorService(stub, cards, NewSubscriptionService(db), NewAIUsageService(db))

	var wg, ready sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		ready.Add(1)
		go func() {
			defer wg.Done()
			ready.Done()
			_, _ = svc.RefreshCardBenefits(context.Background(), user.ID, card.ID)
		}()
	}
	ready.Wait()
	close(release)
	wg.Wait()

	if calls := stub.fetchCalls.Load(); calls >= 5 {
		t.Errorf("expected concurrent refreshes collapsed, upstream called %d times", calls)
	}
}

func TestAnalyzeWallet_SnapshotOmitsInternals(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	cards := NewCardService(db)
	subs := NewSubscriptionService(db)
	ai := NewAIUsageService(db)
	user := testutil.CreateTestUser(t, db)

	card, err := cards.CreateCard(user.ID, &models.Card{
		Name:      "Amex Gold",
		Issuer:    "American Express",
		AnnualFee: 250,
		Benefits: []models.Benefit{
			{Title: "Dining Credit", Value: 120, UsedAmount: 85, Frequency: models.FrequencyMonthly},
			{Title: "Secret Perk", Value: 50, Frequency: models.FrequencyMonthly, IsHidden: true},
		},
	})
	testutil.AssertNoError(t, err)

	_, err = subs.CreateSubscription(user.ID, &models.Subscription{
		Name: "Netflix", Cost: 15.49, RenewalDay: 25, LinkedCardID: card.ID,
	})
	testutil.AssertNoError(t, err)
	_, err = subs.CreateSubscription(user.ID, &models.Subscription{
		Name: "Spotify", Cost: 11.99, RenewalDay: 5,
	})
	testutil.AssertNoError(t, err)

	_, err = ai.CreateItem(user.ID, &models.AIUsageItem{
		ServiceName: "ChatGPT", QuotaName: "Messages", QuotaAmount: 100, UsedAmount: 50, RenewalDay: 1,
	})
	testutil.AssertNoError(t, err)

	stub := &stubAdvisor{}
	svc := NewAdvisorService(stub, cards, subs, ai)

	analysis, err := svc.AnalyzeWallet(context.Background(), user.ID)
	testutil.AssertNoError(t, err)
	if analysis.Score != 80 {
		t.Errorf("unexpected analysis: %+v", analysis)
	}

	snap := stub.lastSnapshot
	if len(snap.Cards) != 1 {
		t.Fatalf("expected 1 card in snapshot, got %d", len(snap.Cards))
	}
	if len(snap.Cards[0].Benefits) != 1 {
		t.Errorf("hidden benefits must not reach the advisor, got %d benefits", len(snap.Cards[0].Benefits))
	}
	if snap.Subscriptions[0].LinkedCard != "Amex Gold" {
		t.Errorf("expected linked card resolved to its name, got %s", snap.Subscriptions[0].LinkedCard)
	}
	if snap.Subscriptions[1].LinkedCard != "Unlinked" {
		t.Errorf("expected unlinked subscription marked Unlinked, got %s", snap.Subscriptions[1].LinkedCard)
	}
	if snap.AIUsage[0].Limit != 100 || snap.AIUsage[0].Used != 50 {
		t.Errorf("unexpected AI usage snapshot: %+v", snap.AIUsage[0])
	}
}
