package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Category represents a transaction category. Categories are soft-deleted
// via IsActive so historical transactions keep a resolvable reference.
// Default (system-seeded) categories cannot be renamed or deleted.
type Category struct {
	Base
	UserID    string       `gorm:"type:uuid;not null;index:idx_categories_user_type" json:"user_id"`
	Name      string       `gorm:"not null" json:"name"`
	Type      CategoryType `gorm:"not null;index:idx_categories_user_type" json:"type"`
	Icon      string       `json:"icon"`
	Color     string       `json:"color"`
	IsActive  bool         `gorm:"default:true" json:"is_active"`
	IsDefault bool         `gorm:"default:false" json:"is_default"`

	Transactions []Transaction `gorm:"foreignKey:CategoryID" json:"transactions,omitempty"`
}
