package testutil_test

import (
	"context"
	"testing"

	"monetra/internal/errors"
	"monetra/internal/models"
	"monetra/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"users", "sessions", "categories", "transactions"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have a generated ID")
	}
	if !user.IsEmailVerified {
		t.Error("fixture user should be verified")
	}

	session := testutil.CreateTestSession(t, db, user.ID)
	if session.UserID != user.ID {
		t.Errorf("expected session owner %s, got %s", user.ID, session.UserID)
	}

	category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	if category.Type != models.CategoryTypeExpense {
		t.Errorf("expected expense category, got %s", category.Type)
	}

	tx := testutil.CreateTestTransaction(t, db, user.ID, category.ID, models.TransactionTypeExpense, 42.50)
	if tx.Amount != 42.50 {
		t.Errorf("expected amount 42.50, got %f", tx.Amount)
	}
}

func TestRecordingMailer(t *testing.T) {
	mailer, sender := testutil.NewRecordingMailer()

	if err := mailer.SendLoginOTP(context.Background(), "user@test.com", "Test", "123456"); err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}

	last := sender.Last()
	if last == nil {
		t.Fatal("expected a recorded email")
	}
	if last.To != "user@test.com" {
		t.Errorf("expected recipient user@test.com, got %s", last.To)
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrCategoryNotFound, "custom message")
	testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
