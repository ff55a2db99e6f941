package handlers

import (
	"github.com/gin-gonic/gin"

	"monetra/internal/models"
	"monetra/internal/pagination"
	"monetra/internal/services"
)

// CategoryHandler handles category-related requests
type CategoryHandler struct {
	categoryService services.CategoryServicer
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService services.CategoryServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategoryRequest represents the request payload for creating a category
type CreateCategoryRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Type  string `json:"type" binding:"required,category_type"`
	Icon  string `json:"icon" binding:"max=50"`
	Color string `json:"color" binding:"omitempty,hex_color"`
}

// UpdateCategoryRequest represents the request payload for updating a category
type UpdateCategoryRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Icon  string `json:"icon" binding:"max=50"`
	Color string `json:"color" binding:"omitempty,hex_color"`
}

// listCategoriesQuery holds the list endpoint's query parameters.
type listCategoriesQuery struct {
	pagination.PageRequest
	Type string `form:"type" binding:"omitempty,category_type"`
}

// CreateCategory handles the creation of a new category
// @Summary     Create a category
// @Description Create a new transaction category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateCategoryRequest true "Category details"
// @Success     201 {object} Response "Category created"
// @Failure     400 {object} Response "Invalid input or duplicate name"
// @Failure     401 {object} Response "Unauthorized"
// @Router      /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	category, err := h.categoryService.CreateCategory(userID, req.Name, models.CategoryType(req.Type), req.Icon, req.Color)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondCreated(c, "Category created", gin.H{"category": category})
}

// CreateDefaults seeds the starter category set
// @Summary     Create default categories
// @Description Seed the account with the standard income and expense categories. Fails if any categories already exist.
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Success     201 {object} Response "Default categories created"
// @Failure     400 {object} Response "Account already has categories"
// @Failure     401 {object} Response "Unauthorized"
// @Router      /categories/defaults [post]
func (h *CategoryHandler) CreateDefaults(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categories, err := h.categoryService.CreateDefaultCategories(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondCreated(c, "Default categories created", gin.H{"categories": categories})
}

// GetUserCategories handles the retrieval of the user's active categories
// @Summary     List categories
// @Description List active categories, optionally filtered by type, ordered by name
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       type query string false "Filter by category type (income/expense)"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size (max 100)"
// @Success     200 {object} Response "Paginated categories"
// @Failure     401 {object} Response "Unauthorized"
// @Router      /categories [get]
func (h *CategoryHandler) GetUserCategories(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query listCategoriesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindingError(c, err)
		return
	}

	var categoryType *models.CategoryType
	if query.Type != "" {
		ct := models.CategoryType(query.Type)
		categoryType = &ct
	}

	page, err := h.categoryService.GetUserCategories(userID, categoryType, query.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, "Categories retrieved", page)
}

// GetCategoryByID handles the retrieval of a specific category
// @Summary     Get category by ID
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Success     200 {object} Response "Category details"
// @Failure     400 {object} Response "Invalid category ID"
// @Failure     401 {object} Response "Unauthorized"
// @Failure     404 {object} Response "Category not found"
// @Router      /categories/{id} [get]
func (h *CategoryHandler) GetCategoryByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	category, err := h.categoryService.GetCategoryByID(userID, categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, "Category retrieved", gin.H{"category": category})
}

// UpdateCategory handles updating a category
// @Summary     Update category
// @Description Update a category's name, icon, or color. Default categories cannot be modified.
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Param       request body UpdateCategoryRequest true "Updated category details"
// @Success     200 {object} Response "Updated category"
// @Failure     400 {object} Response "Invalid input, duplicate name, or default category"
// @Failure     401 {object} Response "Unauthorized"
// @Failure     404 {object} Response "Category not found"
// @Router      /categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	category, err := h.categoryService.UpdateCategory(userID, categoryID, req.Name, req.Icon, req.Color)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, "Category updated", gin.H{"category": category})
}

// DeleteCategory handles deactivating a category
// @Summary     Delete category
// @Description Deactivate a category. Its transactions keep their history. Default categories cannot be deleted.
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Success     200 {object} Response "Category deleted"
// @Failure     400 {object} Response "Invalid category ID or default category"
// @Failure     401 {object} Response "Unauthorized"
// @Failure     404 {object} Response "Category not found"
// @Router      /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.categoryService.DeleteCategory(userID, categoryID); err != nil {
		respondWithError(c, err)
		return
	}

	respondMessage(c, "Category deleted")
}
