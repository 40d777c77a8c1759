package services

import (
	"testing"

	"creditmax/internal/models"
	"creditmax/internal/testutil"
)

func TestCreateSubscription(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSubscriptionService(db)
		user := testutil.CreateTestUser(t, db)

		sub, err := svc.CreateSubscription(user.ID, &models.Subscription{
			Name:       "Netflix",
			Cost:       15.49,
			RenewalDay: 25,
			Category:   "Entertainment",
		})
		testutil.AssertNoError(t, err)

		if sub.ID == "" {
			t.Fatal("expected non-empty subscription ID")
		}
		if sub.Frequency != models.FrequencyMonthly {
			t.Errorf("expected default Monthly frequency, got %s", sub.Frequency)
		}
	})

	t.Run("invalid_renewal_day", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSubscriptionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateSubscription(user.ID, &models.Subscription{Name: "Bad", RenewalDay: 0})
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateSubscription(user.ID, &models.Subscription{Name: "Bad", RenewalDay: 32})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("link_to_foreign_card_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSubscriptionService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		foreignCard := testutil.CreateTestCard(t, db, other.ID)

		_, err := svc.CreateSubscription(user.ID, &models.Subscription{
			Name:         "Spotify",
			RenewalDay:   5,
			LinkedCardID: foreignCard.ID,
		})
		testutil.AssertAppError(t, err, "CARD_NOT_FOUND")
	})
}

func TestUpdateSubscription_LinkAndUnlink(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewSubscriptionService(db)
	user := testutil.CreateTestUser(t, db)
	card := testutil.CreateTestCard(t, db, user.ID)
	sub := testutil.CreateTestSubscription(t, db, user.ID)

	linked, err := svc.UpdateSubscription(user.ID, sub.ID, SubscriptionUpdateFields{LinkedCardID: &card.ID})
	testutil.AssertNoError(t, err)
	if linked.LinkedCardID != card.ID {
		t.Errorf("expected linked card %s, got %s", card.ID, linked.LinkedCardID)
	}

	unlink := ""
	unlinked, err := svc.UpdateSubscription(user.ID, sub.ID, SubscriptionUpdateFields{LinkedCardID: &unlink})
	testutil.AssertNoError(t, err)
	if unlinked.LinkedCardID != "" {
		t.Errorf("expected card unlinked, got %s", unlinked.LinkedCardID)
	}
}

func TestDeleteSubscription(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewSubscriptionService(db)
	user := testutil.CreateTestUser(t, db)
	sub := testutil.CreateTestSubscription(t, db, user.ID)

	testutil.AssertNoError(t, svc.DeleteSubscription(user.ID, sub.ID))

	_, err := svc.GetSubscriptionByID(user.ID, sub.ID)
	testutil.AssertAppError(t, err, "SUBSCRIPTION_NOT_FOUND")
}
