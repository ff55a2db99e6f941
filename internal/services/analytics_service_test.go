package services

import (
	"math"
	"testing"
	"time"

	"monetra/internal/models"
	"monetra/internal/testutil"
)

func TestResolvePeriod(t *testing.T) {
	now := time.Date(2026, 8, 15, 13, 45, 0, 0, time.UTC)

	t.Run("week", func(t *testing.T) {
		start, end, err := ResolvePeriod("week", nil, nil, now)
		testutil.AssertNoError(t, err)
		if end.Sub(start) != 7*24*time.Hour {
			t.Errorf("expected a 7-day window, got %v", end.Sub(start))
		}
		if !end.After(now) {
			t.Error("window must cover today")
		}
	})

	t.Run("month", func(t *testing.T) {
		start, end, err := ResolvePeriod("month", nil, nil, now)
		testutil.AssertNoError(t, err)
		if start.Day() != 1 || start.Month() != time.August {
			t.Errorf("expected start of August, got %v", start)
		}
		if end.Month() != time.September || end.Day() != 1 {
			t.Errorf("expected exclusive end at September 1, got %v", end)
		}
	})

	t.Run("year", func(t *testing.T) {
		start, end, err := ResolvePeriod("year", nil, nil, now)
		testutil.AssertNoError(t, err)
		if start.Year() != 2026 || start.YearDay() != 1 {
			t.Errorf("expected start of 2026, got %v", start)
		}
		if end.Year() != 2027 {
			t.Errorf("expected exclusive end in 2027, got %v", end)
		}
	})

	t.Run("custom", func(t *testing.T) {
		from := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		to := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
		start, end, err := ResolvePeriod("custom", &from, &to, now)
		testutil.AssertNoError(t, err)
		if start.Hour() != 0 {
			t.Error("custom start should snap to midnight")
		}
		// The end date itself is included: the window ends the following midnight.
		if !end.Equal(time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected custom end: %v", end)
		}
	})

	t.Run("custom_requires_bounds", func(t *testing.T) {
		_, _, err := ResolvePeriod("custom", nil, nil, now)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("custom_rejects_inverted_bounds", func(t *testing.T) {
		from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		_, _, err := ResolvePeriod("custom", &from, &to, now)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("unknown_period", func(t *testing.T) {
		_, _, err := ResolvePeriod("fortnight", nil, nil, now)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})
}

func TestGetCategoryBreakdown(t *testing.T) {
	t.Run("shares_sum_to_100", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAnalyticsService(db)

		user := testutil.CreateTestUser(t, db)
		food := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		rent := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		fun := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		now := time.Now()
		testutil.CreateTestTransactionOn(t, db, user.ID, food.ID, models.TransactionTypeExpense, 300, now)
		testutil.CreateTestTransactionOn(t, db, user.ID, food.ID, models.TransactionTypeExpense, 100, now)
		testutil.CreateTestTransactionOn(t, db, user.ID, rent.ID, models.TransactionTypeExpense, 500, now)
		testutil.CreateTestTransactionOn(t, db, user.ID, fun.ID, models.TransactionTypeExpense, 100, now)

		breakdown, err := svc.GetCategoryBreakdown(user.ID, models.TransactionTypeExpense,
			now.AddDate(0, 0, -1), now.AddDate(0, 0, 1))
		testutil.AssertNoError(t, err)

		if len(breakdown) != 3 {
			t.Fatalf("expected 3 categories, got %d", len(breakdown))
		}
		if breakdown[0].CategoryID != rent.ID {
			t.Error("expected the largest category first")
		}
		if breakdown[0].Total != 500 || breakdown[0].Percentage != 50 {
			t.Errorf("unexpected top entry: total=%f pct=%f", breakdown[0].Total, breakdown[0].Percentage)
		}

		var pctSum float64
		for _, entry := range breakdown {
			pctSum += entry.Percentage
		}
		if math.Abs(pctSum-100) > 0.01*float64(len(breakdown)) {
			t.Errorf("percentages should sum to ~100, got %f", pctSum)
		}
	})

	t.Run("filters_by_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAnalyticsService(db)

		user := testutil.CreateTestUser(t, db)
		salary := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncome)
		food := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		now := time.Now()
		testutil.CreateTestTransactionOn(t, db, user.ID, salary.ID, models.TransactionTypeIncome, 1000, now)
		testutil.CreateTestTransactionOn(t, db, user.ID, food.ID, models.TransactionTypeExpense, 50, now)

		breakdown, err := svc.GetCategoryBreakdown(user.ID, models.TransactionTypeIncome,
			now.AddDate(0, 0, -1), now.AddDate(0, 0, 1))
		testutil.AssertNoError(t, err)
		if len(breakdown) != 1 || breakdown[0].CategoryID != salary.ID {
			t.Errorf("expected only the income category, got %d entries", len(breakdown))
		}
	})

	t.Run("empty_window", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAnalyticsService(db)

		user := testutil.CreateTestUser(t, db)
		now := time.Now()
		breakdown, err := svc.GetCategoryBreakdown(user.ID, models.TransactionTypeExpense,
			now.AddDate(0, 0, -1), now)
		testutil.AssertNoError(t, err)
		if len(breakdown) != 0 {
			t.Errorf("expected an empty breakdown, got %d entries", len(breakdown))
		}
	})
}

func TestGetTrends(t *testing.T) {
	t.Run("daily", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAnalyticsService(db)

		user := testutil.CreateTestUser(t, db)
		income := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncome)
		expense := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		day1 := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
		day2 := time.Date(2026, 5, 2, 12, 0, 0, 0, time.UTC)
		testutil.CreateTestTransactionOn(t, db, user.ID, income.ID, models.TransactionTypeIncome, 100, day1)
		testutil.CreateTestTransactionOn(t, db, user.ID, expense.ID, models.TransactionTypeExpense, 40, day1)
		testutil.CreateTestTransactionOn(t, db, user.ID, expense.ID, models.TransactionTypeExpense, 60, day2)

		start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2026, 5, 8, 0, 0, 0, 0, time.UTC)
		trends, err := svc.GetTrends(user.ID, start, end, "day")
		testutil.AssertNoError(t, err)

		if len(trends) != 2 {
			t.Fatalf("expected 2 daily points, got %d", len(trends))
		}
		if trends[0].Period != "2026-05-01" || trends[0].Income != 100 || trends[0].Expense != 40 {
			t.Errorf("unexpected first point: %+v", trends[0])
		}
		if trends[1].Period != "2026-05-02" || trends[1].Expense != 60 {
			t.Errorf("unexpected second point: %+v", trends[1])
		}
	})

	t.Run("monthly", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAnalyticsService(db)

		user := testutil.CreateTestUser(t, db)
		expense := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		testutil.CreateTestTransactionOn(t, db, user.ID, expense.ID, models.TransactionTypeExpense, 10,
			time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC))
		testutil.CreateTestTransactionOn(t, db, user.ID, expense.ID, models.TransactionTypeExpense, 20,
			time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC))
		testutil.CreateTestTransactionOn(t, db, user.ID, expense.ID, models.TransactionTypeExpense, 5,
			time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))

		start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
		trends, err := svc.GetTrends(user.ID, start, end, "month")
		testutil.AssertNoError(t, err)

		if len(trends) != 2 {
			t.Fatalf("expected 2 monthly points, got %d", len(trends))
		}
		if trends[0].Period != "2026-05" || trends[0].Expense != 30 {
			t.Errorf("unexpected May point: %+v", trends[0])
		}
		if trends[1].Period != "2026-06" || trends[1].Expense != 5 {
			t.Errorf("unexpected June point: %+v", trends[1])
		}
	})
}

func TestGetComparison(t *testing.T) {
	t.Run("relative_change", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAnalyticsService(db)

		user := testutil.CreateTestUser(t, db)
		income := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncome)
		expense := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
		prev := start.AddDate(0, 0, -15)

		testutil.CreateTestTransactionOn(t, db, user.ID, income.ID, models.TransactionTypeIncome, 1200, start.AddDate(0, 0, 5))
		testutil.CreateTestTransactionOn(t, db, user.ID, income.ID, models.TransactionTypeIncome, 1000, prev)
		testutil.CreateTestTransactionOn(t, db, user.ID, expense.ID, models.TransactionTypeExpense, 400, start.AddDate(0, 0, 10))
		testutil.CreateTestTransactionOn(t, db, user.ID, expense.ID, models.TransactionTypeExpense, 500, prev)

		comparison, err := svc.GetComparison(user.ID, start, end)
		testutil.AssertNoError(t, err)

		if comparison.CurrentIncome != 1200 || comparison.PreviousIncome != 1000 {
			t.Errorf("unexpected income totals: %f vs %f", comparison.CurrentIncome, comparison.PreviousIncome)
		}
		if comparison.IncomeChangePct != 20 {
			t.Errorf("expected +20%% income change, got %f", comparison.IncomeChangePct)
		}
		if comparison.ExpenseChangePct != -20 {
			t.Errorf("expected -20%% expense change, got %f", comparison.ExpenseChangePct)
		}
	})

	t.Run("zero_baseline", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAnalyticsService(db)

		user := testutil.CreateTestUser(t, db)
		income := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncome)

		start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
		testutil.CreateTestTransactionOn(t, db, user.ID, income.ID, models.TransactionTypeIncome, 100, start.AddDate(0, 0, 3))

		comparison, err := svc.GetComparison(user.ID, start, end)
		testutil.AssertNoError(t, err)

		// Growth from nothing reads as +100%; no activity either side reads as 0%.
		if comparison.IncomeChangePct != 100 {
			t.Errorf("expected +100%% on a zero baseline, got %f", comparison.IncomeChangePct)
		}
		if comparison.ExpenseChangePct != 0 {
			t.Errorf("expected 0%% with no activity, got %f", comparison.ExpenseChangePct)
		}
	})
}

func TestGetDashboard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAnalyticsService(db)

	user := testutil.CreateTestUser(t, db)
	income := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncome)
	expense := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

	now := time.Now()
	testutil.CreateTestTransactionOn(t, db, user.ID, income.ID, models.TransactionTypeIncome, 2000, now)
	testutil.CreateTestTransactionOn(t, db, user.ID, expense.ID, models.TransactionTypeExpense, 750, now)

	// A transaction outside the window is invisible.
	testutil.CreateTestTransactionOn(t, db, user.ID, expense.ID, models.TransactionTypeExpense, 999, now.AddDate(0, -2, 0))

	summary, err := svc.GetDashboard(user.ID, now.AddDate(0, 0, -1), now.AddDate(0, 0, 1))
	testutil.AssertNoError(t, err)
	if summary.TotalIncome != 2000 || summary.TotalExpense != 750 || summary.Balance != 1250 {
		t.Errorf("unexpected dashboard: %+v", summary)
	}
}
