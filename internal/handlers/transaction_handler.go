package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	apperrors "monetra/internal/errors"
	"monetra/internal/models"
	"monetra/internal/pagination"
	"monetra/internal/services"
)

// TransactionHandler handles transaction-related requests
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the request payload for creating a transaction
type CreateTransactionRequest struct {
	Title             string     `json:"title" binding:"required,max=200"`
	Description       string     `json:"description" binding:"max=1000"`
	Amount            float64    `json:"amount" binding:"required,gt=0"`
	Type              string     `json:"type" binding:"required,transaction_type"`
	CategoryID        string     `json:"category_id" binding:"required,uuid"`
	Date              *time.Time `json:"date"`
	Status            string     `json:"status" binding:"omitempty,transaction_status"`
	Tags              []string   `json:"tags" binding:"max=20,dive,max=50"`
	Location          string     `json:"location" binding:"max=200"`
	Attachments       []string   `json:"attachments" binding:"max=10,dive,max=500"`
	IsRecurring       bool       `json:"is_recurring"`
	RecurrencePattern string     `json:"recurrence_pattern" binding:"omitempty,recurrence_pattern"`
}

// UpdateTransactionRequest carries optional field changes; omitted fields
// keep their stored values.
type UpdateTransactionRequest struct {
	Title             *string    `json:"title" binding:"omitempty,max=200"`
	Description       *string    `json:"description" binding:"omitempty,max=1000"`
	Amount            *float64   `json:"amount" binding:"omitempty,gt=0"`
	Type              *string    `json:"type" binding:"omitempty,transaction_type"`
	CategoryID        *string    `json:"category_id" binding:"omitempty,uuid"`
	Date              *time.Time `json:"date"`
	Status            *string    `json:"status" binding:"omitempty,transaction_status"`
	Tags              []string   `json:"tags" binding:"omitempty,max=20,dive,max=50"`
	Location          *string    `json:"location" binding:"omitempty,max=200"`
	Attachments       []string   `json:"attachments" binding:"omitempty,max=10,dive,max=500"`
	IsRecurring       *bool      `json:"is_recurring"`
	RecurrencePattern *string    `json:"recurrence_pattern" binding:"omitempty,recurrence_pattern"`
}

// listTransactionsQuery holds the list endpoint's query parameters.
type listTransactionsQuery struct {
	pagination.PageRequest
	FromDate   *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate     *time.Time `form:"to_date" time_format:"2006-01-02"`
	Type       string     `form:"type" binding:"omitempty,transaction_type"`
	Status     string     `form:"status" binding:"omitempty,transaction_status"`
	CategoryID string     `form:"category_id" binding:"omitempty,uuid"`
	MinAmount  *float64   `form:"min_amount" binding:"omitempty,gte=0"`
	MaxAmount  *float64   `form:"max_amount" binding:"omitempty,gte=0"`
	Search     string     `form:"search" binding:"max=200"`
}

// periodQuery resolves a named reporting period from query parameters.
type periodQuery struct {
	Period    string     `form:"period" binding:"omitempty,analytics_period"`
	StartDate *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate   *time.Time `form:"end_date" time_format:"2006-01-02"`
}

func (q *periodQuery) resolve() (time.Time, time.Time, error) {
	if q.Period == "" {
		q.Period = "month"
	}
	return services.ResolvePeriod(q.Period, q.StartDate, q.EndDate, time.Now())
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record an income or expense against one of the user's categories
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} Response "Transaction created"
// @Failure     400 {object} Response "Invalid input or category/type mismatch"
// @Failure     401 {object} Response "Unauthorized"
// @Failure     404 {object} Response "Category not found"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}

	transaction, err := h.transactionService.CreateTransaction(
		userID,
		req.CategoryID,
		req.Title,
		req.Description,
		req.Amount,
		models.TransactionType(req.Type),
		date,
		models.TransactionStatus(req.Status),
		req.Tags,
		req.Location,
		req.Attachments,
		req.IsRecurring,
		req.RecurrencePattern,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondCreated(c, "Transaction created", gin.H{"transaction": transaction})
}

// GetUserTransactions lists the user's transactions with filters
// @Summary     List transactions
// @Description List transactions newest first, with optional date, type, status, category, amount, and text filters
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size (max 100)"
// @Param       from_date query string false "Inclusive start date (YYYY-MM-DD)"
// @Param       to_date query string false "Exclusive end date (YYYY-MM-DD)"
// @Param       type query string false "income or expense"
// @Param       status query string false "completed, pending, or cancelled"
// @Param       category_id query string false "Category ID"
// @Param       min_amount query number false "Minimum amount"
// @Param       max_amount query number false "Maximum amount"
// @Param       search query string false "Match against title and description"
// @Success     200 {object} Response "Paginated transactions"
// @Failure     400 {object} Response "Invalid filters"
// @Failure     401 {object} Response "Unauthorized"
// @Router      /transactions [get]
func (h *TransactionHandler) GetUserTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query listTransactionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindingError(c, err)
		return
	}
	if query.MinAmount != nil && query.MaxAmount != nil && *query.MaxAmount < *query.MinAmount {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "max_amount must not be less than min_amount"))
		return
	}

	filter := services.TransactionFilter{
		FromDate:  query.FromDate,
		ToDate:    query.ToDate,
		MinAmount: query.MinAmount,
		MaxAmount: query.MaxAmount,
		Search:    query.Search,
	}
	if query.Type != "" {
		t := models.TransactionType(query.Type)
		filter.Type = &t
	}
	if query.Status != "" {
		s := models.TransactionStatus(query.Status)
		filter.Status = &s
	}
	if query.CategoryID != "" {
		filter.CategoryID = &query.CategoryID
	}

	page, err := h.transactionService.GetUserTransactions(userID, query.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, "Transactions retrieved", page)
}

// GetRecentTransactions lists the most recent transactions
// @Summary     Recent transactions
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       limit query int false "Number of transactions (default 10, max 50)"
// @Success     200 {object} Response "Recent transactions"
// @Failure     401 {object} Response "Unauthorized"
// @Router      /transactions/recent [get]
func (h *TransactionHandler) GetRecentTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query struct {
		Limit int `form:"limit" binding:"omitempty,min=1,max=50"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindingError(c, err)
		return
	}

	transactions, err := h.transactionService.GetRecentTransactions(userID, query.Limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, "Recent transactions retrieved", gin.H{"transactions": transactions})
}

// GetSummary aggregates completed transactions over a period
// @Summary     Transaction summary
// @Description Totals, counts, averages, and balance for completed transactions in the period
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       period query string false "week, month (default), year, or custom"
// @Param       start_date query string false "Custom period start (YYYY-MM-DD)"
// @Param       end_date query string false "Custom period end (YYYY-MM-DD)"
// @Success     200 {object} Response "Summary"
// @Failure     400 {object} Response "Invalid period"
// @Failure     401 {object} Response "Unauthorized"
// @Router      /transactions/summary [get]
func (h *TransactionHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query periodQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindingError(c, err)
		return
	}

	start, end, err := query.resolve()
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.transactionService.GetSummary(userID, start, end)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, "Summary retrieved", gin.H{"summary": summary})
}

// GetTransactionByID retrieves one transaction
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} Response "Transaction details"
// @Failure     400 {object} Response "Invalid transaction ID"
// @Failure     401 {object} Response "Unauthorized"
// @Failure     404 {object} Response "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, "Transaction retrieved", gin.H{"transaction": transaction})
}

// UpdateTransaction applies a partial update
// @Summary     Update transaction
// @Description Update transaction fields. Changing type or category re-checks that the category matches the type.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to change"
// @Success     200 {object} Response "Updated transaction"
// @Failure     400 {object} Response "Invalid input or category/type mismatch"
// @Failure     401 {object} Response "Unauthorized"
// @Failure     404 {object} Response "Transaction not found"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	update := services.TransactionUpdate{
		Title:             req.Title,
		Description:       req.Description,
		Amount:            req.Amount,
		CategoryID:        req.CategoryID,
		Date:              req.Date,
		Tags:              req.Tags,
		Location:          req.Location,
		Attachments:       req.Attachments,
		IsRecurring:       req.IsRecurring,
		RecurrencePattern: req.RecurrencePattern,
	}
	if req.Type != nil {
		t := models.TransactionType(*req.Type)
		update.Type = &t
	}
	if req.Status != nil {
		s := models.TransactionStatus(*req.Status)
		update.Status = &s
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, transactionID, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, "Transaction updated", gin.H{"transaction": transaction})
}

// DeleteTransaction permanently removes a transaction
// @Summary     Delete transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} Response "Transaction deleted"
// @Failure     400 {object} Response "Invalid transaction ID"
// @Failure     401 {object} Response "Unauthorized"
// @Failure     404 {object} Response "Transaction not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	respondMessage(c, "Transaction deleted")
}
