package handlers

import (
	"github.com/gin-gonic/gin"

	"monetra/internal/models"
	"monetra/internal/services"
)

// AnalyticsHandler handles aggregation and reporting requests
type AnalyticsHandler struct {
	analyticsService services.AnalyticsServicer
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService services.AnalyticsServicer) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// breakdownQuery adds the transaction type to the period parameters.
type breakdownQuery struct {
	periodQuery
	Type string `form:"type" binding:"omitempty,transaction_type"`
}

// trendsQuery adds the bucketing interval to the period parameters.
type trendsQuery struct {
	periodQuery
	Interval string `form:"interval" binding:"omitempty,oneof=day month"`
}

// GetDashboard returns the period's headline numbers
// @Summary     Dashboard summary
// @Description Income, expense, balance, counts, and averages for the period
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       period query string false "week, month (default), year, or custom"
// @Param       start_date query string false "Custom period start (YYYY-MM-DD)"
// @Param       end_date query string false "Custom period end (YYYY-MM-DD)"
// @Success     200 {object} Response "Dashboard summary"
// @Failure     400 {object} Response "Invalid period"
// @Failure     401 {object} Response "Unauthorized"
// @Router      /analytics/dashboard [get]
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
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

	summary, err := h.analyticsService.GetDashboard(userID, start, end)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, "Dashboard retrieved", gin.H{"summary": summary})
}

// GetCategoryBreakdown returns per-category totals and shares
// @Summary     Category breakdown
// @Description Per-category totals, counts, and percentage shares for one transaction type over the period
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       type query string false "income or expense (default expense)"
// @Param       period query string false "week, month (default), year, or custom"
// @Param       start_date query string false "Custom period start (YYYY-MM-DD)"
// @Param       end_date query string false "Custom period end (YYYY-MM-DD)"
// @Success     200 {object} Response "Category breakdown"
// @Failure     400 {object} Response "Invalid period or type"
// @Failure     401 {object} Response "Unauthorized"
// @Router      /analytics/categories [get]
func (h *AnalyticsHandler) GetCategoryBreakdown(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query breakdownQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindingError(c, err)
		return
	}

	start, end, err := query.resolve()
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionType := models.TransactionTypeExpense
	if query.Type != "" {
		transactionType = models.TransactionType(query.Type)
	}

	breakdown, err := h.analyticsService.GetCategoryBreakdown(userID, transactionType, start, end)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, "Category breakdown retrieved", gin.H{"breakdown": breakdown})
}

// GetTrends returns the income/expense time series
// @Summary     Trends
// @Description Income and expense totals per day or month across the period
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       interval query string false "day (default) or month"
// @Param       period query string false "week, month (default), year, or custom"
// @Param       start_date query string false "Custom period start (YYYY-MM-DD)"
// @Param       end_date query string false "Custom period end (YYYY-MM-DD)"
// @Success     200 {object} Response "Trend series"
// @Failure     400 {object} Response "Invalid period or interval"
// @Failure     401 {object} Response "Unauthorized"
// @Router      /analytics/trends [get]
func (h *AnalyticsHandler) GetTrends(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query trendsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindingError(c, err)
		return
	}

	start, end, err := query.resolve()
	if err != nil {
		respondWithError(c, err)
		return
	}

	trends, err := h.analyticsService.GetTrends(userID, start, end, query.Interval)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, "Trends retrieved", gin.H{"trends": trends})
}

// GetComparison diffs the period against the preceding one
// @Summary     Period comparison
// @Description Income and expense for the period versus the adjacent preceding period of equal length
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       period query string false "week, month (default), year, or custom"
// @Param       start_date query string false "Custom period start (YYYY-MM-DD)"
// @Param       end_date query string false "Custom period end (YYYY-MM-DD)"
// @Success     200 {object} Response "Period comparison"
// @Failure     400 {object} Response "Invalid period"
// @Failure     401 {object} Response "Unauthorized"
// @Router      /analytics/comparison [get]
func (h *AnalyticsHandler) GetComparison(c *gin.Context) {
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

	comparison, err := h.analyticsService.GetComparison(userID, start, end)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, "Comparison retrieved", gin.H{"comparison": comparison})
}
