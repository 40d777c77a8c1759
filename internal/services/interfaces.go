package services

import (
	"context"
	"time"

	"creditmax/internal/gemini"
	"creditmax/internal/insights"
	"creditmax/internal/models"
	"creditmax/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// CardUpdateFields holds optional card fields for partial updates.
type CardUpdateFields struct {
	Name        *string
	Nickname    *string
	Last4       *string
	Issuer      *string
	Network     *string
	AnnualFee   *float64
	ColorFrom   *string
	ColorTo     *string
	RenewalDate *string
	LoginURL    *string
	Points      *int64
	PointsName  *string
	AutoPay     *bool
}

// IncomingBenefit is one benefit row from card research, to be merged into
// an existing card's benefit list.
type IncomingBenefit struct {
	Title       string
	Description string
	Value       float64
	Frequency   models.Frequency
	IsCredit    bool
	Category    string
}

// CardServicer defines the contract for card-related business logic.
type CardServicer interface {
	CreateCard(userID string, card *models.Card) (*models.Card, error)
	GetUserCards(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Card], error)
	GetAllUserCards(userID string) ([]models.Card, error)
	GetCardByID(userID, cardID string) (*models.Card, error)
	UpdateCard(userID, cardID string, fields CardUpdateFields) (*models.Card, error)
	DeleteCard(userID, cardID string) error
	MergeBenefits(userID, cardID string, incoming []IncomingBenefit) (*models.Card, error)
}

// BenefitUpdateFields holds optional benefit fields for partial updates.
type BenefitUpdateFields struct {
	Title       *string
	Description *string
	Value       *float64
	Frequency   *models.Frequency
	IsCredit    *bool
	Category    *string
	ResetType   *models.ResetType
	Position    *int
}

// BenefitServicer defines the contract for benefit-related business logic.
type BenefitServicer interface {
	AddBenefit(userID, cardID string, benefit *models.Benefit) (*models.Benefit, error)
	UpdateBenefit(userID, benefitID string, fields BenefitUpdateFields) (*models.Benefit, error)
	DeleteBenefit(userID, benefitID string) error
	UpdateUsage(userID, benefitID string, amount float64) (*models.Benefit, error)
	ToggleRedeemed(userID, benefitID string) (*models.Benefit, error)
	SetHidden(userID, benefitID string, hidden bool) (*models.Benefit, error)
}

// SubscriptionUpdateFields holds optional subscription fields for partial updates.
type SubscriptionUpdateFields struct {
	Name         *string
	Cost         *float64
	Frequency    *models.Frequency
	RenewalDay   *int
	Category     *string
	LinkedCardID *string // empty string unlinks
	AutoPay      *bool
}

// SubscriptionServicer defines the contract for subscription business logic.
type SubscriptionServicer interface {
	CreateSubscription(userID string, sub *models.Subscription) (*models.Subscription, error)
	GetUserSubscriptions(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Subscription], error)
	GetAllUserSubscriptions(userID string) ([]models.Subscription, error)
	GetSubscriptionByID(userID, subID string) (*models.Subscription, error)
	UpdateSubscription(userID, subID string, fields SubscriptionUpdateFields) (*models.Subscription, error)
	DeleteSubscription(userID, subID string) error
}

// AIItemUpdateFields holds optional AI usage item fields for partial updates.
type AIItemUpdateFields struct {
	ServiceName *string
	PlanName    *string
	LoginURL    *string
	QuotaName   *string
	QuotaAmount *float64
	RenewalDay  *int
	Frequency   *models.Frequency
	AutoPay     *bool
}

// AIUsageServicer defines the contract for AI usage quota business logic.
type AIUsageServicer interface {
	CreateItem(userID string, item *models.AIUsageItem) (*models.AIUsageItem, error)
	GetUserItems(userID string) ([]models.AIUsageItem, error)
	GetItemByID(userID, itemID string) (*models.AIUsageItem, error)
	UpdateItem(userID, itemID string, fields AIItemUpdateFields) (*models.AIUsageItem, error)
	DeleteItem(userID, itemID string) error
	UpdateUsage(userID, itemID string, amount float64) (*models.AIUsageItem, error)
	MoveItem(userID, itemID string, direction string) ([]models.AIUsageItem, error)
}

// DashboardServicer defines the contract for dashboard aggregate queries.
type DashboardServicer interface {
	Summary(userID string) (*insights.Summary, error)
	CardStats(userID string) ([]insights.CardStats, error)
	ExpiringSoon(userID string, now time.Time) ([]insights.ExpiringBenefit, error)
	UpcomingRenewals(userID string, now time.Time) ([]insights.UpcomingRenewal, error)
	AIAlerts(userID string) ([]insights.AIAlert, error)
	Points(userID string) ([]insights.PointsProgram, int64, error)
	Perks(userID string) ([]insights.PerkGroup, error)
}

// ExportPayload is the wire format of a wallet backup.
type ExportPayload struct {
	Cards         []models.Card         `json:"cards"`
	Subscriptions []models.Subscription `json:"subscriptions"`
	AIItems       []models.AIUsageItem  `json:"aiItems"`
	ExportDate    string                `json:"exportDate"`
}

// BackupServicer defines the contract for wallet export and import.
type BackupServicer interface {
	Export(userID string) (*ExportPayload, error)
	Import(userID string, data []byte) error
}

// AdvisorServicer defines the contract for AI-assisted wallet operations.
type AdvisorServicer interface {
	RefreshCardBenefits(ctx context.Context, userID, cardID string) (*models.Card, error)
	AnalyzeWallet(ctx context.Context, userID string) (*gemini.WalletAnalysis, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID string, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
