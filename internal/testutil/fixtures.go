package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"creditmax/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCard creates a card with no benefits and no annual fee.
func CreateTestCard(t *testing.T, db *gorm.DB, userID string) *models.Card {
	t.Helper()

	card := &models.Card{
		UserID:      userID,
		Name:        fmt.Sprintf("Test Card %d", nextID()),
		Issuer:      "Test Bank",
		Network:     "Visa",
		RenewalDate: "2024-06-15",
	}
	if err := db.Create(card).Error; err != nil {
		t.Fatalf("failed to create test card: %v", err)
	}
	return card
}

// CreateTestBenefit creates a monthly statement credit on the given card.
func CreateTestBenefit(t *testing.T, db *gorm.DB, cardID string, value float64) *models.Benefit {
	t.Helper()

	benefit := &models.Benefit{
		CardID:    cardID,
		Title:     fmt.Sprintf("Test Benefit %d", nextID()),
		Value:     value,
		Frequency: models.FrequencyMonthly,
		IsCredit:  true,
		ResetType: models.ResetTypeCalendar,
	}
	if err := db.Create(benefit).Error; err != nil {
		t.Fatalf("failed to create test benefit: %v", err)
	}
	return benefit
}

// CreateTestSubscription creates a monthly subscription renewing on the 15th.
func CreateTestSubscription(t *testing.T, db *gorm.DB, userID string) *models.Subscription {
	t.Helper()

	sub := &models.Subscription{
		UserID:     userID,
		Name:       fmt.Sprintf("Test Subscription %d", nextID()),
		Cost:       9.99,
		Frequency:  models.FrequencyMonthly,
		RenewalDay: 15,
	}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("failed to create test subscription: %v", err)
	}
	return sub
}

// CreateTestAIItem creates a monthly AI quota renewing on the 1st.
func CreateTestAIItem(t *testing.T, db *gorm.DB, userID string, quota float64) *models.AIUsageItem {
	t.Helper()

	item := &models.AIUsageItem{
		UserID:      userID,
		ServiceName: fmt.Sprintf("Test Service %d", nextID()),
		QuotaName:   "Requests",
		QuotaAmount: quota,
		RenewalDay:  1,
		Frequency:   models.FrequencyMonthly,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create test AI item: %v", err)
	}
	return item
}
