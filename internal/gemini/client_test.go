package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	apperrors "creditmax/internal/errors"
	"creditmax/internal/models"
)

// modelTextResponse wraps model output text in the generateContent envelope.
func modelTextResponse(text string) generateResponse {
	var resp generateResponse
	resp.Candidates = []struct {
		Content content `json:"content"`
	}{
		{Content: content{Parts: []part{{Text: text}}}},
	}
	return resp
}

// newMockServer serves the given model output text for every request.
func newMockServer(t *testing.T, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(modelTextResponse(text))
	}))
}

// newTestClient points a client at a mock server.
func newTestClient(server *httptest.Server) *Client {
	c := NewClient("test-key", server.Client())
	c.SetBaseURL(server.URL)
	return c
}

func assertAppError(t *testing.T, err error, want *apperrors.AppError) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %s, got nil", want.Code)
	}
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}
	if appErr.Code != want.Code {
		t.Errorf("expected error code %s, got %s", want.Code, appErr.Code)
	}
}

func TestFetchCardBenefits(t *testing.T) {
	payload := `{
		"issuer": "American Express",
		"network": "Amex",
		"annualFee": 250,
		"benefits": [
			{"title": "Dining Credit", "description": "Monthly dining credit", "value": 120, "frequency": "Monthly", "isCredit": true, "category": "Dining"},
			{"title": "Purchase Protection", "description": "Covers damage", "value": 0, "frequency": "Annual", "isCredit": false}
		]
	}`
	server := newMockServer(t, payload)
	defer server.Close()

	result, err := newTestClient(server).FetchCardBenefits(context.Background(), "Amex Gold")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Issuer != "American Express" || result.AnnualFee != 250 {
		t.Errorf("unexpected card metadata: %+v", result)
	}
	if len(result.Benefits) != 2 {
		t.Fatalf("expected 2 benefits, got %d", len(result.Benefits))
	}
	if result.Benefits[0].Frequency != models.FrequencyMonthly || !result.Benefits[0].IsCredit {
		t.Errorf("unexpected first benefit: %+v", result.Benefits[0])
	}
}

func TestFetchCardBenefits_NormalizesBadRows(t *testing.T) {
	payload := `{
		"issuer": "Chase",
		"network": "Visa",
		"annualFee": 95,
		"benefits": [
			{"title": "Hotel Credit", "value": -50, "frequency": "Biweekly", "isCredit": true}
		]
	}`
	server := newMockServer(t, payload)
	defer server.Close()

	result, err := newTestClient(server).FetchCardBenefits(context.Background(), "Sapphire Preferred")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := result.Benefits[0]
	if b.Value != 0 {
		t.Errorf("negative value should clamp to 0, got %v", b.Value)
	}
	if b.Frequency != models.FrequencyAnnual {
		t.Errorf("unknown frequency should normalize to Annual, got %s", b.Frequency)
	}
}

func TestFetchCardBenefits_MissingFields(t *testing.T) {
	server := newMockServer(t, `{"network": "Visa", "annualFee": 0}`)
	defer server.Close()

	_, err := newTestClient(server).FetchCardBenefits(context.Background(), "Mystery Card")
	assertAppError(t, err, apperrors.ErrAdvisorBadResponse)
}

func TestFetchCardBenefits_MalformedModelText(t *testing.T) {
	server := newMockServer(t, `not json at all`)
	defer server.Close()

	_, err := newTestClient(server).FetchCardBenefits(context.Background(), "Amex Gold")
	assertAppError(t, err, apperrors.ErrAdvisorBadResponse)
}

func TestFetchCardBenefits_EmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(generateResponse{})
	}))
	defer server.Close()

	_, err := newTestClient(server).FetchCardBenefits(context.Background(), "Amex Gold")
	assertAppError(t, err, apperrors.ErrAdvisorBadResponse)
}

func TestGenerate_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	payload := `{"issuer": "Chase", "network": "Visa", "annualFee": 0, "benefits": []}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(modelTextResponse(payload))
	}))
	defer server.Close()

	result, err := newTestClient(server).FetchCardBenefits(context.Background(), "Freedom")
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if result.Issuer != "Chase" {
		t.Errorf("unexpected result after retry: %+v", result)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestGenerate_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := newTestClient(server).FetchCardBenefits(context.Background(), "Freedom")
	assertAppError(t, err, apperrors.ErrAdvisorUnavailable)
	if calls.Load() != 1 {
		t.Errorf("expected a single call for a 400, got %d", calls.Load())
	}
}

func TestAnalyzeWallet(t *testing.T) {
	payload := `{
		"score": 72,
		"summary": "Solid capture rate with a few idle credits.",
		"actionItems": [
			{"title": "Use your Saks credit", "description": "Expires at quarter end", "impact": "High", "type": "Credit"},
			{"title": "Review Netflix", "description": "Unlinked subscription", "impact": "Sideways", "type": "Subscription"}
		],
		"strengths": ["Good use of monthly dining credit"]
	}`
	server := newMockServer(t, payload)
	defer server.Close()

	snapshot := WalletSnapshot{
		Cards: []CardSnapshot{{Name: "Amex Gold", Issuer: "American Express", AnnualFee: 250,
			Benefits: []BenefitSnapshot{{Title: "Dining Credit", Value: 120, Used: 85}}}},
		Subscriptions: []SubscriptionSnapshot{{Name: "Netflix", Cost: 15.49, LinkedCard: "Unlinked"}},
		AIUsage:       []AIUsageSnapshot{{Service: "ChatGPT", Used: 50, Limit: 100}},
	}

	result, err := newTestClient(server).AnalyzeWallet(context.Background(), snapshot)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score != 72 {
		t.Errorf("Score = %d, want 72", result.Score)
	}
	if len(result.ActionItems) != 2 {
		t.Fatalf("expected 2 action items, got %d", len(result.ActionItems))
	}
	if result.ActionItems[1].Impact != "Medium" {
		t.Errorf("invalid impact should normalize to Medium, got %s", result.ActionItems[1].Impact)
	}
}

func TestAnalyzeWallet_ClampsScore(t *testing.T) {
	payload := `{"score": 250, "summary": "Over-enthusiastic model.", "actionItems": [], "strengths": []}`
	server := newMockServer(t, payload)
	defer server.Close()

	result, err := newTestClient(server).AnalyzeWallet(context.Background(), WalletSnapshot{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score != 100 {
		t.Errorf("Score = %d, want clamped to 100", result.Score)
	}
}

func TestAnalyzeWallet_MissingSummary(t *testing.T) {
	server := newMockServer(t, `{"score": 50, "actionItems": [], "strengths": []}`)
	defer server.Close()

	_, err := newTestClient(server).AnalyzeWallet(context.Background(), WalletSnapshot{})
	assertAppError(t, err, apperrors.ErrAdvisorBadResponse)
}
