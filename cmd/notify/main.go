package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"creditmax/internal/config"
	"creditmax/internal/database"
	"creditmax/internal/insights"
	"creditmax/internal/logger"
	"creditmax/internal/models"
	"creditmax/internal/services"
)

// notify sends a Telegram digest of benefits expiring soon and the next
// upcoming renewals. Intended to run daily from cron.
func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Notify error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.TelegramBotToken == "" || cfg.TelegramChatID == 0 {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set")
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	db := dbManager.DB()
	cardService := services.NewCardService(db)
	subscriptionService := services.NewSubscriptionService(db)
	aiUsageService := services.NewAIUsageService(db)

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	var users []models.User
	if err := db.Where("is_active = ?", true).Find(&users).Error; err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}

	now := time.Now()
	sent := 0
	for _, user := range users {
		cards, err := cardService.GetAllUserCards(user.ID)
		if err != nil {
			logger.Get().Errorw("Failed to load cards for digest", "user_id", user.ID, "error", err)
			continue
		}
		subs, err := subscriptionService.GetAllUserSubscriptions(user.ID)
		if err != nil {
			logger.Get().Errorw("Failed to load subscriptions for digest", "user_id", user.ID, "error", err)
			continue
		}
		items, err := aiUsageService.GetUserItems(user.ID)
		if err != nil {
			logger.Get().Errorw("Failed to load AI items for digest", "user_id", user.ID, "error", err)
			continue
		}

		text := buildDigest(user.Email, cards, subs, items, now)
		if text == "" {
			continue
		}

		msg := tgbotapi.NewMessage(cfg.TelegramChatID, text)
		msg.ParseMode = tgbotapi.ModeMarkdown
		if _, err := bot.Send(msg); err != nil {
			logger.Get().Errorw("Failed to send digest", "user_id", user.ID, "error", err)
			continue
		}
		sent++
	}

	logger.Get().Infof("Sent %d digest message(s)", sent)
	return nil
}

// buildDigest renders one user's digest. Returns "" when there is nothing
// worth sending.
func buildDigest(email string, cards []models.Card, subs []models.Subscription, items []models.AIUsageItem, now time.Time) string {
	expiring := insights.ExpiringSoon(cards, now)
	renewals := insights.UpcomingRenewals(subs, now)
	alerts := insights.AIAlerts(items)

	if len(expiring) == 0 && len(renewals) == 0 && len(alerts) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*CreditMax digest for %s*\n", email)

	if len(expiring) > 0 {
		b.WriteString("\n*Expiring benefits*\n")
		for _, e := range expiring {
			fmt.Fprintf(&b, "• %s (%s): $%.0f left, %d day(s) remaining\n",
				e.Title, e.CardName, e.Remaining, e.DaysRemaining)
		}
	}

	if len(renewals) > 0 {
		b.WriteString("\n*Upcoming charges*\n")
		for _, r := range renewals {
			fmt.Fprintf(&b, "• %s: $%.2f in %d day(s)\n", r.Name, r.Cost, r.DaysUntil)
		}
	}

	if len(alerts) > 0 {
		b.WriteString("\n*AI quotas running hot*\n")
		for _, a := range alerts {
			fmt.Fprintf(&b, "• %s %s: %.0f%% used\n", a.ServiceName, a.QuotaName, a.Percent)
		}
	}

	return b.String()
}
