package services

import (
	"math"
	"time"

	"gorm.io/gorm"

	apperrors "monetra/internal/errors"
	"monetra/internal/models"
)

// analyticsService aggregates completed transactions into dashboards,
// breakdowns, trends, and period comparisons.
type analyticsService struct {
	db *gorm.DB
}

// NewAnalyticsService creates a new AnalyticsServicer.
func NewAnalyticsService(db *gorm.DB) AnalyticsServicer {
	return &analyticsService{db: db}
}

// ResolvePeriod maps a named period to a [start, end) window anchored at
// now. Custom periods take their bounds from the provided dates; endDate is
// exclusive after being pushed to the following midnight.
func ResolvePeriod(period string, startDate, endDate *time.Time, now time.Time) (time.Time, time.Time, error) {
	switch period {
	case "week":
		end := startOfDay(now).AddDate(0, 0, 1)
		return end.AddDate(0, 0, -7), end, nil
	case "month":
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 1, 0), nil
	case "year":
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(1, 0, 0), nil
	case "custom":
		if startDate == nil || endDate == nil {
			return time.Time{}, time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "custom period requires start_date and end_date")
		}
		if endDate.Before(*startDate) {
			return time.Time{}, time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "end_date must not be before start_date")
		}
		return startOfDay(*startDate), startOfDay(*endDate).AddDate(0, 0, 1), nil
	default:
		return time.Time{}, time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "period must be one of week, month, year, custom")
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// GetDashboard returns per-type totals, counts, averages, and the balance
// for completed transactions in the window.
func (s *analyticsService) GetDashboard(userID string, start, end time.Time) (*TransactionSummary, error) {
	return summarize(s.db, userID, start, end)
}

// GetCategoryBreakdown groups the window's completed transactions of one
// type by category and computes each category's share of the total. An empty
// window yields an empty slice; a zero total yields 0% entries.
func (s *analyticsService) GetCategoryBreakdown(userID string, transactionType models.TransactionType, start, end time.Time) ([]CategoryBreakdownEntry, error) {
	var rows []CategoryBreakdownEntry
	err := s.db.Model(&models.Transaction{}).
		Select("transactions.category_id AS category_id, categories.name AS category_name, categories.icon AS icon, categories.color AS color, COALESCE(SUM(transactions.amount), 0) AS total, COUNT(*) AS count").
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ? AND transactions.type = ? AND transactions.status = ? AND transactions.date >= ? AND transactions.date < ?",
			userID, transactionType, models.TransactionStatusCompleted, start, end).
		Group("transactions.category_id, categories.name, categories.icon, categories.color").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var grandTotal float64
	for _, row := range rows {
		grandTotal += row.Total
	}
	for i := range rows {
		if grandTotal > 0 {
			rows[i].Percentage = round2(rows[i].Total / grandTotal * 100)
		}
	}

	if rows == nil {
		rows = []CategoryBreakdownEntry{}
	}
	return rows, nil
}

// GetTrends returns a per-interval income/expense series across the window.
// Rows are grouped by day in SQL (portable across Postgres and SQLite) and
// bucketed into the requested interval here.
func (s *analyticsService) GetTrends(userID string, start, end time.Time, interval string) ([]TrendPoint, error) {
	if interval != "day" && interval != "month" {
		interval = "day"
	}

	var rows []struct {
		Day   string
		Type  models.TransactionType
		Total float64
	}
	err := s.db.Model(&models.Transaction{}).
		Select("DATE(date) AS day, type, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ? AND status = ? AND date >= ? AND date < ?",
			userID, models.TransactionStatusCompleted, start, end).
		Group("DATE(date), type").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	points := make([]TrendPoint, 0, len(rows))
	index := make(map[string]int)
	for _, row := range rows {
		key := row.Day
		if interval == "month" && len(key) >= 7 {
			key = key[:7]
		}
		i, ok := index[key]
		if !ok {
			i = len(points)
			index[key] = i
			points = append(points, TrendPoint{Period: key})
		}
		switch row.Type {
		case models.TransactionTypeIncome:
			points[i].Income += row.Total
		case models.TransactionTypeExpense:
			points[i].Expense += row.Total
		}
	}
	return points, nil
}

// GetComparison diffs the window against the adjacent preceding window of
// equal length.
func (s *analyticsService) GetComparison(userID string, start, end time.Time) (*PeriodComparison, error) {
	length := end.Sub(start)
	prevStart := start.Add(-length)

	current, err := summarize(s.db, userID, start, end)
	if err != nil {
		return nil, err
	}
	previous, err := summarize(s.db, userID, prevStart, start)
	if err != nil {
		return nil, err
	}

	return &PeriodComparison{
		CurrentIncome:    current.TotalIncome,
		CurrentExpense:   current.TotalExpense,
		PreviousIncome:   previous.TotalIncome,
		PreviousExpense:  previous.TotalExpense,
		IncomeChangePct:  percentChange(current.TotalIncome, previous.TotalIncome),
		ExpenseChangePct: percentChange(current.TotalExpense, previous.TotalExpense),
		CurrentStart:     start.Format("2006-01-02"),
		CurrentEnd:       end.Format("2006-01-02"),
		PreviousStart:    prevStart.Format("2006-01-02"),
		PreviousEnd:      start.Format("2006-01-02"),
	}, nil
}

// percentChange computes the relative change from previous to current. A
// zero baseline yields +100 when the current value is positive, 0 otherwise.
func percentChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return round2((current - previous) / previous * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
