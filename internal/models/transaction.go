package models

import "time"

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// TransactionStatus represents the lifecycle status of a transaction.
// Only completed transactions count towards analytics.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// Transaction represents a single income or expense record. The referenced
// category must belong to the same user and carry the same type; this is
// enforced at write time by the transaction service.
type Transaction struct {
	Base
	UserID      string            `gorm:"type:uuid;not null;index:idx_transactions_user_date;index:idx_transactions_user_type_date;index:idx_transactions_user_category_date" json:"user_id"`
	CategoryID  string            `gorm:"type:uuid;not null;index:idx_transactions_user_category_date" json:"category_id"`
	Title       string            `gorm:"not null" json:"title"`
	Description string            `json:"description"`
	Amount      float64           `gorm:"not null" json:"amount"`
	Type        TransactionType   `gorm:"not null;index:idx_transactions_user_type_date" json:"type"`
	Date        time.Time         `gorm:"not null;index:idx_transactions_user_date;index:idx_transactions_user_type_date;index:idx_transactions_user_category_date" json:"date"`
	Status      TransactionStatus `gorm:"default:completed" json:"status"`

	Tags        []string `gorm:"serializer:json" json:"tags,omitempty"`
	Location    string   `json:"location,omitempty"`
	Attachments []string `gorm:"serializer:json" json:"attachments,omitempty"`

	IsRecurring       bool   `gorm:"default:false" json:"is_recurring"`
	RecurrencePattern string `json:"recurrence_pattern,omitempty"`

	Category Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
