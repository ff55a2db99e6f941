package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "monetra/internal/errors"
	"monetra/internal/models"
	"monetra/internal/pagination"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// defaultCategories is the system-seeded set created by CreateDefaultCategories.
var defaultCategories = []models.Category{
	{Name: "Salary", Type: models.CategoryTypeIncome, Icon: "briefcase", Color: "#2E7D32"},
	{Name: "Freelance", Type: models.CategoryTypeIncome, Icon: "laptop", Color: "#388E3C"},
	{Name: "Investments", Type: models.CategoryTypeIncome, Icon: "trending-up", Color: "#43A047"},
	{Name: "Other Income", Type: models.CategoryTypeIncome, Icon: "plus-circle", Color: "#4CAF50"},
	{Name: "Food & Dining", Type: models.CategoryTypeExpense, Icon: "utensils", Color: "#C62828"},
	{Name: "Transport", Type: models.CategoryTypeExpense, Icon: "car", Color: "#D32F2F"},
	{Name: "Housing", Type: models.CategoryTypeExpense, Icon: "home", Color: "#E53935"},
	{Name: "Utilities", Type: models.CategoryTypeExpense, Icon: "zap", Color: "#F44336"},
	{Name: "Entertainment", Type: models.CategoryTypeExpense, Icon: "film", Color: "#EF5350"},
	{Name: "Health", Type: models.CategoryTypeExpense, Icon: "heart", Color: "#E57373"},
	{Name: "Shopping", Type: models.CategoryTypeExpense, Icon: "shopping-bag", Color: "#EF9A9A"},
	{Name: "Other Expenses", Type: models.CategoryTypeExpense, Icon: "more-horizontal", Color: "#FFCDD2"},
}

// CreateCategory creates a new category. The partial unique index on
// (user_id, name) where is_active backs the duplicate pre-check.
func (s *categoryService) CreateCategory(userID, name string, categoryType models.CategoryType, icon, color string) (*models.Category, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("user_id = ? AND name = ? AND is_active = ?", userID, name, true).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateCategoryName
	}

	category := &models.Category{
		UserID:   userID,
		Name:     name,
		Type:     categoryType,
		Icon:     icon,
		Color:    color,
		IsActive: true,
	}

	if err := s.db.Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateCategoryName
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// CreateDefaultCategories seeds the system category set for a new user. The
// operation is guarded for idempotence: it refuses when the user already
// owns any category, active or not.
func (s *categoryService) CreateDefaultCategories(userID string) ([]models.Category, error) {
	var count int64
	if err := s.db.Model(&models.Category{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrAlreadyHasCategories
	}

	created := make([]models.Category, 0, len(defaultCategories))
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, def := range defaultCategories {
			category := models.Category{
				UserID:    userID,
				Name:      def.Name,
				Type:      def.Type,
				Icon:      def.Icon,
				Color:     def.Color,
				IsActive:  true,
				IsDefault: true,
			}
			if err := tx.Create(&category).Error; err != nil {
				return err
			}
			created = append(created, category)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrAlreadyHasCategories
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return created, nil
}

// GetUserCategories retrieves a paginated list of the user's active
// categories, optionally filtered by type.
func (s *categoryService) GetUserCategories(userID string, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	base := s.db.Model(&models.Category{}).Where("user_id = ? AND is_active = ?", userID, true)
	if categoryType != nil {
		base = base.Where("type = ?", *categoryType)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.Scopes(pagination.Paginate(page)).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCategoryByID retrieves an active category by ID for a specific user.
// A category owned by someone else is indistinguishable from a missing one.
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ? AND is_active = ?", categoryID, userID, true).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory updates an existing non-default category.
func (s *categoryService) UpdateCategory(userID, categoryID, name, icon, color string) (*models.Category, error) {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return nil, err
	}
	if category.IsDefault {
		return nil, apperrors.ErrDefaultCategoryProtected
	}

	updates := make(map[string]interface{})
	if name != "" && name != category.Name {
		var count int64
		if err := s.db.Model(&models.Category{}).
			Where("user_id = ? AND name = ? AND is_active = ? AND id <> ?", userID, name, true, categoryID).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return nil, apperrors.ErrDuplicateCategoryName
		}
		updates["name"] = name
	}
	if icon != "" {
		updates["icon"] = icon
	}
	if color != "" {
		updates["color"] = color
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperrors.ErrDuplicateCategoryName
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return category, nil
}

// DeleteCategory soft-deletes a non-default category. The row stays in place
// so existing transactions keep a resolvable reference.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return err
	}
	if category.IsDefault {
		return apperrors.ErrDefaultCategoryProtected
	}

	if err := s.db.Model(category).Update("is_active", false).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
