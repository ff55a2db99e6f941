package services

import (
	"context"
	"time"

	"monetra/internal/models"
	"monetra/internal/pagination"
)

// LoginResult reports the outcome of a primary-credential check. When the
// account has 2FA enabled no session is issued yet: the caller must complete
// the OTP step first.
type LoginResult struct {
	User              *models.User
	TwoFactorRequired bool
}

// UserServicer defines the contract for the account and credential lifecycle.
type UserServicer interface {
	Register(ctx context.Context, email, password, name string) (*models.User, error)
	VerifyEmail(token string) (*models.User, error)
	ResendVerification(ctx context.Context, email string) error
	Login(ctx context.Context, email, password, userAgent, ipAddress string) (*LoginResult, error)
	VerifyLoginOTP(email, code, userAgent, ipAddress string) (*models.User, error)
	Enable2FA(userID string) (*models.User, error)
	Disable2FA(userID string) (*models.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(token, newPassword string) error
	ChangePassword(userID, currentPassword, newPassword string) error
	GetUserByID(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	UpdateProfile(userID, name string) (*models.User, error)
	UpdatePreferences(userID string, currency, locale *string, hideBalances *bool) (*models.User, error)
	SetAvatarURL(userID, url string) (*models.User, error)
	RequestEmailChange(ctx context.Context, userID, newEmail string) error
	VerifyEmailChange(userID, code string) (*models.User, error)
	DeleteAccount(userID, password string) error
	ListSessions(userID string) ([]models.Session, error)
	RevokeSession(userID, sessionID string) error
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID, name string, categoryType models.CategoryType, icon, color string) (*models.Category, error)
	CreateDefaultCategories(userID string) ([]models.Category, error)
	GetUserCategories(userID string, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID, name, icon, color string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	Status     *models.TransactionStatus
	CategoryID *string
	MinAmount  *float64
	MaxAmount  *float64
	Search     string
}

// TransactionUpdate holds the mutable transaction fields for a partial
// update; nil pointers leave the stored value unchanged.
type TransactionUpdate struct {
	Title             *string
	Description       *string
	Amount            *float64
	Type              *models.TransactionType
	CategoryID        *string
	Date              *time.Time
	Status            *models.TransactionStatus
	Tags              []string
	Location          *string
	Attachments       []string
	IsRecurring       *bool
	RecurrencePattern *string
}

// TransactionSummary aggregates a user's completed transactions over a window.
type TransactionSummary struct {
	TotalIncome    float64 `json:"total_income"`
	TotalExpense   float64 `json:"total_expense"`
	Balance        float64 `json:"balance"`
	IncomeCount    int64   `json:"income_count"`
	ExpenseCount   int64   `json:"expense_count"`
	AverageIncome  float64 `json:"average_income"`
	AverageExpense float64 `json:"average_expense"`
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID, categoryID, title, description string, amount float64, transactionType models.TransactionType, date time.Time, status models.TransactionStatus, tags []string, location string, attachments []string, isRecurring bool, recurrencePattern string) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, update TransactionUpdate) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
	GetRecentTransactions(userID string, limit int) ([]models.Transaction, error)
	GetSummary(userID string, start, end time.Time) (*TransactionSummary, error)
}

// CategoryBreakdownEntry is one category's share of a period's totals.
type CategoryBreakdownEntry struct {
	CategoryID   string  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Icon         string  `json:"icon"`
	Color        string  `json:"color"`
	Total        float64 `json:"total"`
	Count        int64   `json:"count"`
	Percentage   float64 `json:"percentage"`
}

// TrendPoint is one interval's totals in a trend series.
type TrendPoint struct {
	Period  string  `json:"period"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// PeriodComparison diffs two adjacent periods.
type PeriodComparison struct {
	CurrentIncome    float64 `json:"current_income"`
	CurrentExpense   float64 `json:"current_expense"`
	PreviousIncome   float64 `json:"previous_income"`
	PreviousExpense  float64 `json:"previous_expense"`
	IncomeChangePct  float64 `json:"income_change_pct"`
	ExpenseChangePct float64 `json:"expense_change_pct"`
	CurrentStart     string  `json:"current_start"`
	CurrentEnd       string  `json:"current_end"`
	PreviousStart    string  `json:"previous_start"`
	PreviousEnd      string  `json:"previous_end"`
}

// AnalyticsServicer defines the contract for aggregation analytics over
// completed transactions.
type AnalyticsServicer interface {
	GetDashboard(userID string, start, end time.Time) (*TransactionSummary, error)
	GetCategoryBreakdown(userID string, transactionType models.TransactionType, start, end time.Time) ([]CategoryBreakdownEntry, error)
	GetTrends(userID string, start, end time.Time, interval string) ([]TrendPoint, error)
	GetComparison(userID string, start, end time.Time) (*PeriodComparison, error)
}
