// Package gemini calls the Google Gemini API for card benefit research and
// wallet optimization analysis. Responses are requested as structured JSON
// and validated at the boundary before anything reaches the rest of the app.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"creditmax/internal/errors"
	"creditmax/internal/models"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	benefitsModel = "gemini-3-flash-preview"
	analysisModel = "gemini-3-pro-preview"

	maxRetries   = 2
	retryBackoff = 500 * time.Millisecond
)

// Client is a Gemini API client. Construct it with NewClient; the base URL
// is overridable for tests.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string // overridable for tests
}

// NewClient creates a Gemini client with the given API key.
func NewClient(apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{apiKey: apiKey, httpClient: httpClient, baseURL: defaultBaseURL}
}

// SetBaseURL overrides the API endpoint, used by tests and self-hosted proxies.
func (c *Client) SetBaseURL(url string) { c.baseURL = url }

// FetchedBenefit is one benefit row returned by card research.
type FetchedBenefit struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Value       float64          `json:"value"`
	Frequency   models.Frequency `json:"frequency"`
	IsCredit    bool             `json:"isCredit"`
	Category    string           `json:"category"`
}

// CardBenefitsResult is the structured result of card benefit research.
type CardBenefitsResult struct {
	Issuer    string           `json:"issuer"`
	Network   string           `json:"network"`
	AnnualFee float64          `json:"annualFee"`
	Benefits  []FetchedBenefit `json:"benefits"`
}

// ActionItem is one recommendation in a wallet analysis.
type ActionItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"` // High, Medium, Low
	Type        string `json:"type"`   // Credit, Subscription, Optimization
}

// WalletAnalysis is the structured result of a wallet optimization run.
type WalletAnalysis struct {
	Score       int          `json:"score"` // 0-100
	Summary     string       `json:"summary"`
	ActionItems []ActionItem `json:"actionItems"`
	Strengths   []string     `json:"strengths"`
}

// WalletSnapshot is the reduced view of a wallet sent for analysis. It
// carries names and amounts only, never internal IDs.
type WalletSnapshot struct {
	Cards         []CardSnapshot         `json:"cards"`
	Subscriptions []SubscriptionSnapshot `json:"subscriptions"`
	AIUsage       []AIUsageSnapshot      `json:"aiUsage"`
}

// CardSnapshot is one card in a wallet snapshot.
type CardSnapshot struct {
	Name      string            `json:"name"`
	Issuer    string            `json:"issuer"`
	AnnualFee float64           `json:"annualFee"`
	Benefits  []BenefitSnapshot `json:"benefits"`
}

// BenefitSnapshot is one visible benefit in a wallet snapshot.
type BenefitSnapshot struct {
	Title string  `json:"title"`
	Value float64 `json:"value"`
	Used  float64 `json:"used"`
}

// SubscriptionSnapshot is one subscription in a wallet snapshot.
type SubscriptionSnapshot struct {
	Name       string  `json:"name"`
	Cost       float64 `json:"cost"`
	LinkedCard string  `json:"linkedCard"` // card name or "Unlinked"
}

// AIUsageSnapshot is one AI quota in a wallet snapshot.
type AIUsageSnapshot struct {
	Service string  `json:"service"`
	Used    float64 `json:"used"`
	Limit   float64 `json:"limit"`
}

// FetchCardBenefits asks Gemini for the full benefit list of a named card
// product. Unknown frequencies are normalized to Annual rather than
// rejected, so one odd row never sinks the whole import.
func (c *Client) FetchCardBenefits(ctx context.Context, cardName string) (*CardBenefitsResult, error) {
	prompt := fmt.Sprintf(`You are a credit card rewards expert. Analyze the credit card %q and provide an EXHAUSTIVE list of all current benefits.

CRITICAL: Include partnership benefits (Uber, Lyft, DoorDash, Instacart, Streaming services).
For "value", calculate the total ANNUAL dollar value. If it's $10/mo, value is 120. Use 0 if purely insurance/protection.
For "frequency", use: Monthly, Annual, One-time, Quarterly, or Semi-Annual.
For "isCredit", use true if it is a statement credit or cash equivalent.

Respond with JSON of the shape:
{"issuer": string, "network": string, "annualFee": number, "benefits": [{"title": string, "description": string, "value": number, "frequency": string, "isCredit": boolean, "category": string}]}`, cardName)

	var result CardBenefitsResult
	if err := c.generate(ctx, benefitsModel, prompt, &result); err != nil {
		return nil, err
	}

	if result.Issuer == "" || result.Benefits == nil {
		return nil, errors.WithMessage(errors.ErrAdvisorBadResponse, "card research response missing required fields")
	}
	for i := range result.Benefits {
		b := &result.Benefits[i]
		if b.Value < 0 {
			b.Value = 0
		}
		switch b.Frequency {
		case models.FrequencyMonthly, models.FrequencyQuarterly, models.FrequencySemiAnnual,
			models.FrequencyAnnual, models.FrequencyOneTime:
		default:
			b.Frequency = models.FrequencyAnnual
		}
	}
	return &result, nil
}

// AnalyzeWallet asks Gemini to score and critique a wallet snapshot.
func (c *Client) AnalyzeWallet(ctx context.Context, snapshot WalletSnapshot) (*WalletAnalysis, error) {
	walletJSON, err := json.Marshal(snapshot)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInternalServer, err)
	}

	prompt := fmt.Sprintf(`Analyze this user's wallet: %s. Provide a score and actionable optimization steps.

Respond with JSON of the shape:
{"score": number 0-100, "summary": string, "actionItems": [{"title": string, "description": string, "impact": "High"|"Medium"|"Low", "type": "Credit"|"Subscription"|"Optimization"}], "strengths": [string]}`, walletJSON)

	var result WalletAnalysis
	if err := c.generate(ctx, analysisModel, prompt, &result); err != nil {
		return nil, err
	}

	if result.Summary == "" {
		return nil, errors.WithMessage(errors.ErrAdvisorBadResponse, "analysis response missing summary")
	}
	if result.Score < 0 {
		result.Score = 0
	}
	if result.Score > 100 {
		result.Score = 100
	}
	for i := range result.ActionItems {
		switch result.ActionItems[i].Impact {
		case "High", "Medium", "Low":
		default:
			result.ActionItems[i].Impact = "Medium"
		}
	}
	return &result, nil
}

// generateContent request/response wire types, trimmed to the fields used.
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// generate calls the generateContent endpoint and decodes the model's JSON
// text into out. Network failures, 429s and 5xx responses are retried with
// exponential backoff; anything malformed is a bad-response error.
func (c *Client) generate(ctx context.Context, model, prompt string, out any) error {
	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{ResponseMIMEType: "application/json"},
	})
	if err != nil {
		return errors.Wrap(errors.ErrInternalServer, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)

	var genResp generateResponse
	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(retryBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("building request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("http request: %w", err))
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("unexpected status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		genResp = generateResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(errors.ErrAdvisorUnavailable, err)
	}

	if genResp.Error != nil {
		return errors.WithMessage(errors.ErrAdvisorUnavailable, genResp.Error.Message)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return errors.WithMessage(errors.ErrAdvisorBadResponse, "empty response from model")
	}

	text := genResp.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return errors.WithMessage(errors.ErrAdvisorBadResponse, "empty response from model")
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return errors.Wrap(errors.ErrAdvisorBadResponse, err)
	}
	return nil
}
