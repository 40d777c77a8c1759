package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"creditmax/internal/gemini"
	"creditmax/internal/handlers"
	"creditmax/internal/logger"
	"creditmax/internal/middleware"
	"creditmax/internal/models"
	"creditmax/internal/services"
	"creditmax/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB      *gorm.DB
	Router  *gin.Engine
	Advisor *stubAdvisor
}

// stubAdvisor replaces the Gemini client so no network calls are made.
type stubAdvisor struct {
	fetchFn   func(ctx context.Context, cardName string) (*gemini.CardBenefitsResult, error)
	analyzeFn func(ctx context.Context, snapshot gemini.WalletSnapshot) (*gemini.WalletAnalysis, error)
}

var _ services.WalletAdvisor = (*stubAdvisor)(nil)

func (s *stubAdvisor) FetchCardBenefits(ctx context.Context, cardName string) (*gemini.CardBenefitsResult, error) {
	if s.fetchFn != nil {
		return s.fetchFn(ctx, cardName)
	}
	return &gemini.CardBenefitsResult{Issuer: "Test Bank"}, nil
}

func (s *stubAdvisor) AnalyzeWallet(ctx context.Context, snapshot gemini.WalletSnapshot) (*gemini.WalletAnalysis, error) {
	if s.analyzeFn != nil {
		return s.analyzeFn(ctx, snapshot)
	}
	return &gemini.WalletAnalysis{Summary: "Looks fine", Score: 80}, nil
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Card{},
		&models.Benefit{},
		&models.Subscription{},
		&models.AIUsageItem{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	userService := services.NewUserService(db)
	cardService := services.NewCardService(db)
	benefitService := services.NewBenefitService(db)
	subscriptionService := services.NewSubscriptionService(db)
	aiUsageService := services.NewAIUsageService(db)
	auditService := services.NewAuditService(db)
	dashboardService := services.NewDashboardService(cardService, subscriptionService, aiUsageService)
	backupService := services.NewBackupService(db, cardService, subscriptionService, aiUsageService)

	advisor := &stubAdvisor{}
	advisorService := services.NewAdvisorService(advisor, cardService, subscriptionService, aiUsageService)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	cardHandler := handlers.NewCardHandler(cardService, auditService)
	benefitHandler := handlers.NewBenefitHandler(benefitService, auditService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService, auditService)
	aiUsageHandler := handlers.NewAIUsageHandler(aiUsageService, auditService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	advisorHandler := handlers.NewAdvisorHandler(advisorService, auditService)
	settingsHandler := handlers.NewSettingsHandler(backupService, auditService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	cards := protected.Group("/cards")
	cards.POST("", cardHandler.CreateCard)
	cards.GET("", cardHandler.ListCards)
	cards.GET("/:id", cardHandler.GetCard)
	cards.PUT("/:id", cardHandler.UpdateCard)
	cards.DELETE("/:id", cardHandler.DeleteCard)
	cards.POST("/:id/benefits", benefitHandler.AddBenefit)
	cards.POST("/:id/refresh-benefits", advisorHandler.RefreshBenefits)

	benefits := protected.Group("/benefits")
	benefits.PUT("/:id", benefitHandler.UpdateBenefit)
	benefits.DELETE("/:id", benefitHandler.DeleteBenefit)
	benefits.PUT("/:id/usage", benefitHandler.UpdateUsage)
	benefits.POST("/:id/toggle", benefitHandler.ToggleRedeemed)
	benefits.PUT("/:id/hidden", benefitHandler.SetHidden)

	subscriptions := protected.Group("/subscriptions")
	subscriptions.POST("", subscriptionHandler.CreateSubscription)
	subscriptions.GET("", subscriptionHandler.ListSubscriptions)
	subscriptions.GET("/:id", subscriptionHandler.GetSubscription)
	subscriptions.PUT("/:id", subscriptionHandler.UpdateSubscription)
	subscriptions.DELETE("/:id", subscriptionHandler.DeleteSubscription)

	aiItems := protected.Group("/ai-items")
	aiItems.POST("", aiUsageHandler.CreateItem)
	aiItems.GET("", aiUsageHandler.ListItems)
	aiItems.GET("/:id", aiUsageHandler.GetItem)
	aiItems.PUT("/:id", aiUsageHandler.UpdateItem)
	aiItems.DELETE("/:id", aiUsageHandler.DeleteItem)
	aiItems.PUT("/:id/usage", aiUsageHandler.UpdateUsage)
	aiItems.POST("/:id/move", aiUsageHandler.MoveItem)

	dashboard := protected.Group("/dashboard")
	dashboard.GET("/summary", dashboardHandler.GetSummary)
	dashboard.GET("/card-stats", dashboardHandler.GetCardStats)
	dashboard.GET("/expiring", dashboardHandler.GetExpiring)
	dashboard.GET("/renewals", dashboardHandler.GetRenewals)
	dashboard.GET("/ai-alerts", dashboardHandler.GetAIAlerts)
	dashboard.GET("/points", dashboardHandler.GetPoints)
	dashboard.GET("/perks", dashboardHandler.GetPerks)

	advisorRoutes := protected.Group("/advisor")
	advisorRoutes.POST("/analyze", advisorHandler.AnalyzeWallet)

	settings := protected.Group("/settings")
	settings.GET("/export", settingsHandler.ExportData)
	settings.POST("/import", settingsHandler.ImportData)

	return &testApp{DB: db, Router: router, Advisor: advisor}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(string)
}
