package services

import (
	"testing"

	"creditmax/internal/models"
	"creditmax/internal/testutil"
)

func TestAddBenefit(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBenefitService(db)
		user := testutil.CreateTestUser(t, db)
		card := testutil.CreateTestCard(t, db, user.ID)
		testutil.CreateTestBenefit(t, db, card.ID, 100)

		benefit, err := svc.AddBenefit(user.ID, card.ID, &models.Benefit{
			Title:     "Saks Credit",
			Value:     50,
			Frequency: models.FrequencyQuarterly,
			IsCredit:  true,
		})
		testutil.AssertNoError(t, err)

		if benefit.ID == "" {
			t.Fatal("expected non-empty benefit ID")
		}
		if benefit.Position != 1 {
			t.Errorf("expected benefit appended at position 1, got %d", benefit.Position)
		}
		if benefit.ResetType != models.ResetTypeCalendar {
			t.Errorf("expected default calendar reset type, got %s", benefit.ResetType)
		}
	})

	t.Run("other_users_card", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBenefitService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		card := testutil.CreateTestCard(t, db, other.ID)

		_, err := svc.AddBenefit(user.ID, card.ID, &models.Benefit{Title: "Sneaky", Frequency: models.FrequencyMonthly})
		testutil.AssertAppError(t, err, "CARD_NOT_FOUND")
	})
}

func TestUpdateUsage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBenefitService(db)
	user := testutil.CreateTestUser(t, db)
	card := testutil.CreateTestCard(t, db, user.ID)
	benefit := testutil.CreateTestBenefit(t, db, card.ID, 100)

	t.Run("in_range", func(t *testing.T) {
		updated, err := svc.UpdateUsage(user.ID, benefit.ID, 60)
		testutil.AssertNoError(t, err)
		if updated.UsedAmount != 60 {
			t.Errorf("expected used 60, got %v", updated.UsedAmount)
		}
	})

	t.Run("clamps_above_value", func(t *testing.T) {
		updated, err := svc.UpdateUsage(user.ID, benefit.ID, 250)
		testutil.AssertNoError(t, err)
		if updated.UsedAmount != 100 {
			t.Errorf("expected used clamped to 100, got %v", updated.UsedAmount)
		}
	})

	t.Run("clamps_below_zero", func(t *testing.T) {
		updated, err := svc.UpdateUsage(user.ID, benefit.ID, -10)
		testutil.AssertNoError(t, err)
		if updated.UsedAmount != 0 {
			t.Errorf("expected used clamped to 0, got %v", updated.UsedAmount)
		}
	})
}

func TestToggleRedeemed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBenefitService(db)
	user := testutil.CreateTestUser(t, db)
	card := testutil.CreateTestCard(t, db, user.ID)
	benefit := testutil.CreateTestBenefit(t, db, card.ID, 100)

	// Untouched -> fully redeemed.
	toggled, err := svc.ToggleRedeemed(user.ID, benefit.ID)
	testutil.AssertNoError(t, err)
	if toggled.UsedAmount != 100 {
		t.Errorf("expected used 100 after toggle, got %v", toggled.UsedAmount)
	}

	// Redeemed -> back to zero.
	toggled, err = svc.ToggleRedeemed(user.ID, benefit.ID)
	testutil.AssertNoError(t, err)
	if toggled.UsedAmount != 0 {
		t.Errorf("expected used 0 after second toggle, got %v", toggled.UsedAmount)
	}

	// Partially used counts as unredeemed: toggle completes it.
	_, err = svc.UpdateUsage(user.ID, benefit.ID, 40)
	testutil.AssertNoError(t, err)
	toggled, err = svc.ToggleRedeemed(user.ID, benefit.ID)
	testutil.AssertNoError(t, err)
	if toggled.UsedAmount != 100 {
		t.Errorf("expected partial usage toggled to full, got %v", toggled.UsedAmount)
	}
}

func TestUpdateBenefit(t *testing.T) {
	t.Run("shrinking_value_clamps_usage", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBenefitService(db)
		user := testutil.CreateTestUser(t, db)
		card := testutil.CreateTestCard(t, db, user.ID)
		benefit := testutil.CreateTestBenefit(t, db, card.ID, 100)

		_, err := svc.UpdateUsage(user.ID, benefit.ID, 80)
		testutil.AssertNoError(t, err)

		newValue := 50.0
		updated, err := svc.UpdateBenefit(user.ID, benefit.ID, BenefitUpdateFields{Value: &newValue})
		testutil.AssertNoError(t, err)

		if updated.Value != 50 || updated.UsedAmount != 50 {
			t.Errorf("expected value 50 with usage clamped to 50, got value %v used %v", updated.Value, updated.UsedAmount)
		}
	})

	t.Run("not_owned", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBenefitService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		card := testutil.CreateTestCard(t, db, other.ID)
		benefit := testutil.CreateTestBenefit(t, db, card.ID, 100)

		title := "Hijacked"
		_, err := svc.UpdateBenefit(user.ID, benefit.ID, BenefitUpdateFields{Title: &title})
		testutil.AssertAppError(t, err, "BENEFIT_NOT_FOUND")
	})
}

func TestSetHidden(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBenefitService(db)
	user := testutil.CreateTestUser(t, db)
	card := testutil.CreateTestCard(t, db, user.ID)
	benefit := testutil.CreateTestBenefit(t, db, card.ID, 100)

	hidden, err := svc.SetHidden(user.ID, benefit.ID, true)
	testutil.AssertNoError(t, err)
	if !hidden.IsHidden {
		t.Error("expected benefit hidden")
	}

	shown, err := svc.SetHidden(user.ID, benefit.ID, false)
	testutil.AssertNoError(t, err)
	if shown.IsHidden {
		t.Error("expected benefit visible again")
	}
}

func TestDeleteBenefit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBenefitService(db)
	user := testutil.CreateTestUser(t, db)
	card := testutil.CreateTestCard(t, db, user.ID)
	benefit := testutil.CreateTestBenefit(t, db, card.ID, 100)

	testutil.AssertNoError(t, svc.DeleteBenefit(user.ID, benefit.ID))

	_, err := svc.UpdateUsage(user.ID, benefit.ID, 10)
	testutil.AssertAppError(t, err, "BENEFIT_NOT_FOUND")
}
