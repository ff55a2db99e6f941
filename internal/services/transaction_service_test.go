package services

import (
	"testing"
	"time"

	"monetra/internal/models"
	"monetra/internal/pagination"
	"monetra/internal/testutil"
)

func TestCreateTransaction(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		tx, err := svc.CreateTransaction(user.ID, category.ID, "Lunch", "ramen", 12.40,
			models.TransactionTypeExpense, time.Now(), "", []string{"food"}, "Tokyo", nil, false, "")
		testutil.AssertNoError(t, err)

		if tx.ID == "" {
			t.Fatal("expected a generated transaction ID")
		}
		if tx.Status != models.TransactionStatusCompleted {
			t.Errorf("expected default status completed, got %s", tx.Status)
		}
		if len(tx.Tags) != 1 || tx.Tags[0] != "food" {
			t.Errorf("expected tags to round-trip, got %v", tx.Tags)
		}
	})

	t.Run("minimum_amount_boundary", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		_, err := svc.CreateTransaction(user.ID, category.ID, "Penny", "", 0.01,
			models.TransactionTypeExpense, time.Now(), "", nil, "", nil, false, "")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateTransaction(user.ID, category.ID, "Nothing", "", 0,
			models.TransactionTypeExpense, time.Now(), "", nil, "", nil, false, "")
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")

		_, err = svc.CreateTransaction(user.ID, category.ID, "Negative", "", -5,
			models.TransactionTypeExpense, time.Now(), "", nil, "", nil, false, "")
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("category_type_mismatch", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		user := testutil.CreateTestUser(t, db)
		incomeCategory := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncome)

		_, err := svc.CreateTransaction(user.ID, incomeCategory.ID, "Lunch", "", 12.40,
			models.TransactionTypeExpense, time.Now(), "", nil, "", nil, false, "")
		testutil.AssertAppError(t, err, "CATEGORY_TYPE_MISMATCH")

		// Nothing may be persisted on a failed invariant.
		var count int64
		db.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&count)
		if count != 0 {
			t.Errorf("expected no transactions, got %d", count)
		}
	})

	t.Run("foreign_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		alice := testutil.CreateTestUser(t, db)
		bob := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, alice.ID, models.CategoryTypeExpense)

		_, err := svc.CreateTransaction(bob.ID, category.ID, "Lunch", "", 12.40,
			models.TransactionTypeExpense, time.Now(), "", nil, "", nil, false, "")
		testutil.AssertAppError(t, err, "CATEGORY_TYPE_MISMATCH")
	})

	t.Run("inactive_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		db.Model(category).Update("is_active", false)

		_, err := svc.CreateTransaction(user.ID, category.ID, "Lunch", "", 12.40,
			models.TransactionTypeExpense, time.Now(), "", nil, "", nil, false, "")
		testutil.AssertAppError(t, err, "CATEGORY_TYPE_MISMATCH")
	})
}

func TestGetUserTransactions(t *testing.T) {
	t.Run("filters", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		user := testutil.CreateTestUser(t, db)
		expense := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		income := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncome)

		now := time.Now()
		testutil.CreateTestTransactionOn(t, db, user.ID, expense.ID, models.TransactionTypeExpense, 50, now.AddDate(0, 0, -10))
		testutil.CreateTestTransactionOn(t, db, user.ID, expense.ID, models.TransactionTypeExpense, 150, now.AddDate(0, 0, -1))
		testutil.CreateTestTransactionOn(t, db, user.ID, income.ID, models.TransactionTypeIncome, 1000, now)

		incomeType := models.TransactionTypeIncome
		page, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{Type: &incomeType})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 {
			t.Errorf("expected 1 income transaction, got %d", page.TotalItems)
		}

		min := 100.0
		page, err = svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{MinAmount: &min})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 2 {
			t.Errorf("expected 2 transactions >= 100, got %d", page.TotalItems)
		}

		from := now.AddDate(0, 0, -2)
		page, err = svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{FromDate: &from})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 2 {
			t.Errorf("expected 2 transactions in window, got %d", page.TotalItems)
		}
	})

	t.Run("newest_first", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		now := time.Now()
		old := testutil.CreateTestTransactionOn(t, db, user.ID, category.ID, models.TransactionTypeExpense, 10, now.AddDate(0, 0, -5))
		recent := testutil.CreateTestTransactionOn(t, db, user.ID, category.ID, models.TransactionTypeExpense, 20, now)

		page, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if len(page.Data) != 2 || page.Data[0].ID != recent.ID || page.Data[1].ID != old.ID {
			t.Error("expected transactions ordered newest first")
		}
	})

	t.Run("search", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		_, err := svc.CreateTransaction(user.ID, category.ID, "Coffee beans", "", 18,
			models.TransactionTypeExpense, time.Now(), "", nil, "", nil, false, "")
		testutil.AssertNoError(t, err)
		_, err = svc.CreateTransaction(user.ID, category.ID, "Bus ticket", "", 3,
			models.TransactionTypeExpense, time.Now(), "", nil, "", nil, false, "")
		testutil.AssertNoError(t, err)

		page, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{Search: "coffee"})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 {
			t.Errorf("expected 1 match for coffee, got %d", page.TotalItems)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		for i := 0; i < 5; i++ {
			testutil.CreateTestTransaction(t, db, user.ID, category.ID, models.TransactionTypeExpense, float64(i+1))
		}

		page, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{Page: 2, PageSize: 2}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 5 || page.TotalPages != 3 || len(page.Data) != 2 {
			t.Errorf("unexpected pagination: total=%d pages=%d len=%d", page.TotalItems, page.TotalPages, len(page.Data))
		}
	})
}

func TestGetTransactionByID(t *testing.T) {
	t.Run("foreign_transaction_reads_as_missing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		alice := testutil.CreateTestUser(t, db)
		bob := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, alice.ID, models.CategoryTypeExpense)
		tx := testutil.CreateTestTransaction(t, db, alice.ID, category.ID, models.TransactionTypeExpense, 10)

		_, err := svc.GetTransactionByID(bob.ID, tx.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("partial_update", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		tx := testutil.CreateTestTransaction(t, db, user.ID, category.ID, models.TransactionTypeExpense, 25)

		title := "Renamed"
		amount := 30.5
		updated, err := svc.UpdateTransaction(user.ID, tx.ID, TransactionUpdate{Title: &title, Amount: &amount})
		testutil.AssertNoError(t, err)
		if updated.Title != "Renamed" || updated.Amount != 30.5 {
			t.Errorf("unexpected update result: %q %f", updated.Title, updated.Amount)
		}

		var stored models.Transaction
		db.First(&stored, "id = ?", tx.ID)
		if stored.Type != models.TransactionTypeExpense {
			t.Error("omitted fields must keep their stored values")
		}
	})

	t.Run("type_change_revalidates_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		user := testutil.CreateTestUser(t, db)
		expense := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		tx := testutil.CreateTestTransaction(t, db, user.ID, expense.ID, models.TransactionTypeExpense, 25)

		// Flipping the type while keeping the expense category breaks the invariant.
		newType := models.TransactionTypeIncome
		_, err := svc.UpdateTransaction(user.ID, tx.ID, TransactionUpdate{Type: &newType})
		testutil.AssertAppError(t, err, "CATEGORY_TYPE_MISMATCH")

		// Moving both type and category together is valid.
		income := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncome)
		updated, err := svc.UpdateTransaction(user.ID, tx.ID, TransactionUpdate{Type: &newType, CategoryID: &income.ID})
		testutil.AssertNoError(t, err)
		if updated.Type != models.TransactionTypeIncome || updated.CategoryID != income.ID {
			t.Error("expected the type and category to move together")
		}
	})

	t.Run("tags_update", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		tx := testutil.CreateTestTransaction(t, db, user.ID, category.ID, models.TransactionTypeExpense, 25)

		_, err := svc.UpdateTransaction(user.ID, tx.ID, TransactionUpdate{Tags: []string{"a", "b"}})
		testutil.AssertNoError(t, err)

		var stored models.Transaction
		db.First(&stored, "id = ?", tx.ID)
		if len(stored.Tags) != 2 {
			t.Errorf("expected 2 tags, got %v", stored.Tags)
		}
	})

	t.Run("invalid_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)

		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		tx := testutil.CreateTestTransaction(t, db, user.ID, category.ID, models.TransactionTypeExpense, 25)

		zero := 0.0
		_, err := svc.UpdateTransaction(user.ID, tx.ID, TransactionUpdate{Amount: &zero})
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})
}

func TestDeleteTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db)

	user := testutil.CreateTestUser(t, db)
	category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	tx := testutil.CreateTestTransaction(t, db, user.ID, category.ID, models.TransactionTypeExpense, 10)

	testutil.AssertNoError(t, svc.DeleteTransaction(user.ID, tx.ID))

	var count int64
	db.Model(&models.Transaction{}).Where("id = ?", tx.ID).Count(&count)
	if count != 0 {
		t.Error("expected the transaction row to be gone")
	}

	err := svc.DeleteTransaction(user.ID, tx.ID)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
}

func TestGetRecentTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db)

	user := testutil.CreateTestUser(t, db)
	category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	now := time.Now()
	for i := 0; i < 15; i++ {
		testutil.CreateTestTransactionOn(t, db, user.ID, category.ID, models.TransactionTypeExpense, 10, now.AddDate(0, 0, -i))
	}

	// Zero limit falls back to the default of 10.
	transactions, err := svc.GetRecentTransactions(user.ID, 0)
	testutil.AssertNoError(t, err)
	if len(transactions) != 10 {
		t.Errorf("expected default limit of 10, got %d", len(transactions))
	}

	transactions, err = svc.GetRecentTransactions(user.ID, 3)
	testutil.AssertNoError(t, err)
	if len(transactions) != 3 {
		t.Errorf("expected 3 transactions, got %d", len(transactions))
	}
}

func TestGetSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db)

	user := testutil.CreateTestUser(t, db)
	income := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncome)
	expense := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

	now := time.Now()
	testutil.CreateTestTransactionOn(t, db, user.ID, income.ID, models.TransactionTypeIncome, 1000, now)
	testutil.CreateTestTransactionOn(t, db, user.ID, income.ID, models.TransactionTypeIncome, 500, now)
	testutil.CreateTestTransactionOn(t, db, user.ID, expense.ID, models.TransactionTypeExpense, 300, now)

	// Pending transactions are excluded from aggregates.
	pending := testutil.CreateTestTransactionOn(t, db, user.ID, expense.ID, models.TransactionTypeExpense, 999, now)
	db.Model(pending).Update("status", models.TransactionStatusPending)

	summary, err := svc.GetSummary(user.ID, now.AddDate(0, 0, -1), now.AddDate(0, 0, 1))
	testutil.AssertNoError(t, err)

	if summary.TotalIncome != 1500 {
		t.Errorf("expected income 1500, got %f", summary.TotalIncome)
	}
	if summary.TotalExpense != 300 {
		t.Errorf("expected expense 300, got %f", summary.TotalExpense)
	}
	if summary.Balance != 1200 {
		t.Errorf("expected balance 1200, got %f", summary.Balance)
	}
	if summary.IncomeCount != 2 || summary.ExpenseCount != 1 {
		t.Errorf("unexpected counts: %d income, %d expense", summary.IncomeCount, summary.ExpenseCount)
	}
	if summary.AverageIncome != 750 {
		t.Errorf("expected average income 750, got %f", summary.AverageIncome)
	}
}
