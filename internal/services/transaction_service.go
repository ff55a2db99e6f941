package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "monetra/internal/errors"
	"monetra/internal/models"
	"monetra/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// CreateTransaction creates a new transaction. The referenced category must
// belong to the same user, be active, and match the transaction type;
// nothing is persisted otherwise.
func (s *transactionService) CreateTransaction(
	userID, categoryID, title, description string,
	amount float64,
	transactionType models.TransactionType,
	date time.Time,
	status models.TransactionStatus,
	tags []string,
	location string,
	attachments []string,
	isRecurring bool,
	recurrencePattern string,
) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required")
	}
	if date.IsZero() {
		date = time.Now()
	}
	if status == "" {
		status = models.TransactionStatusCompleted
	}

	if err := s.validateCategory(userID, categoryID, transactionType); err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		UserID:            userID,
		CategoryID:        categoryID,
		Title:             title,
		Description:       description,
		Amount:            amount,
		Type:              transactionType,
		Date:              date,
		Status:            status,
		Tags:              tags,
		Location:          location,
		Attachments:       attachments,
		IsRecurring:       isRecurring,
		RecurrencePattern: recurrencePattern,
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return transaction, nil
}

// GetUserTransactions retrieves a paginated, filtered list of the user's transactions.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date < ?", *f.ToDate)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user.
// A transaction owned by someone else is indistinguishable from a missing one.
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction applies a partial update. Whenever the type or the
// category reference changes, the category/type invariant is re-checked
// against the resulting pair before anything is written.
func (s *transactionService) UpdateTransaction(userID, transactionID string, update TransactionUpdate) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	if update.Amount != nil && *update.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	newType := transaction.Type
	if update.Type != nil {
		newType = *update.Type
	}
	newCategoryID := transaction.CategoryID
	if update.CategoryID != nil {
		newCategoryID = *update.CategoryID
	}
	if newType != transaction.Type || newCategoryID != transaction.CategoryID {
		if err := s.validateCategory(userID, newCategoryID, newType); err != nil {
			return nil, err
		}
	}

	updates := make(map[string]interface{})
	if update.Title != nil {
		updates["title"] = *update.Title
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.Amount != nil {
		updates["amount"] = *update.Amount
	}
	if update.Type != nil {
		updates["type"] = *update.Type
	}
	if update.CategoryID != nil {
		updates["category_id"] = *update.CategoryID
	}
	if update.Date != nil {
		updates["date"] = *update.Date
	}
	if update.Status != nil {
		updates["status"] = *update.Status
	}
	if update.Location != nil {
		updates["location"] = *update.Location
	}
	if update.IsRecurring != nil {
		updates["is_recurring"] = *update.IsRecurring
	}
	if update.RecurrencePattern != nil {
		updates["recurrence_pattern"] = *update.RecurrencePattern
	}

	if len(updates) > 0 {
		if err := s.db.Model(transaction).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	// Serialized slice columns go through struct updates so the JSON
	// serializer runs.
	if update.Tags != nil || update.Attachments != nil {
		if update.Tags != nil {
			transaction.Tags = update.Tags
		}
		if update.Attachments != nil {
			transaction.Attachments = update.Attachments
		}
		if err := s.db.Model(transaction).Select("tags", "attachments").Updates(transaction).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return transaction, nil
}

// DeleteTransaction permanently removes a transaction.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetRecentTransactions returns the user's latest transactions by date.
func (s *transactionService) GetRecentTransactions(userID string, limit int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	var transactions []models.Transaction
	if err := s.db.Where("user_id = ?", userID).
		Order("date DESC").
		Limit(limit).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// GetSummary aggregates the user's completed transactions over [start, end).
func (s *transactionService) GetSummary(userID string, start, end time.Time) (*TransactionSummary, error) {
	return summarize(s.db, userID, start, end)
}

// summarize computes per-type totals, counts, and averages over completed
// transactions in [start, end). Shared with the analytics service.
func summarize(db *gorm.DB, userID string, start, end time.Time) (*TransactionSummary, error) {
	var rows []struct {
		Type  models.TransactionType
		Total float64
		Count int64
	}
	err := db.Model(&models.Transaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("user_id = ? AND status = ? AND date >= ? AND date < ?",
			userID, models.TransactionStatusCompleted, start, end).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := &TransactionSummary{}
	for _, row := range rows {
		switch row.Type {
		case models.TransactionTypeIncome:
			summary.TotalIncome = row.Total
			summary.IncomeCount = row.Count
			if row.Count > 0 {
				summary.AverageIncome = row.Total / float64(row.Count)
			}
		case models.TransactionTypeExpense:
			summary.TotalExpense = row.Total
			summary.ExpenseCount = row.Count
			if row.Count > 0 {
				summary.AverageExpense = row.Total / float64(row.Count)
			}
		}
	}
	summary.Balance = summary.TotalIncome - summary.TotalExpense
	return summary, nil
}

// validateCategory enforces the ownership and type-match invariant. A
// missing, foreign, inactive, or type-mismatched category all yield the same
// client error.
func (s *transactionService) validateCategory(userID, categoryID string, transactionType models.TransactionType) error {
	if categoryID == "" {
		return apperrors.ErrCategoryTypeMismatch
	}

	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ? AND is_active = ?", categoryID, userID, true).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCategoryTypeMismatch
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if models.TransactionType(category.Type) != transactionType {
		return apperrors.ErrCategoryTypeMismatch
	}
	return nil
}
