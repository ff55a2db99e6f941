package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "monetra/internal/errors"
	"monetra/internal/logger"
	"monetra/internal/uuid"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    interface{}  `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError describes one problem in an error response. Field is set for
// validation failures, empty for request-level errors.
type FieldError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID, exists := c.Get("userID")
	if !exists {
		return "", apperrors.ErrUnauthorized
	}
	return userID.(string), nil
}

// parsePathID validates a UUID path parameter.
func parsePathID(c *gin.Context, param string) (string, error) {
	id := c.Param(param)
	if !uuid.IsValid(id) {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// respondOK writes a success envelope with data.
func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data})
}

// respondCreated writes a success envelope with data and status 201.
func respondCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

// respondMessage writes a success envelope with no data.
func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message})
}

// respondBindingError converts a ShouldBind error into a 400 envelope. Field
// validation failures are reported per field; anything else (malformed JSON,
// type mismatches) becomes a single request-level entry.
func respondBindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Code:    apperrors.ErrInvalidInput.Code,
				Message: validationMessage(fe),
				Field:   strings.ToLower(fe.Field()),
			})
		}
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Message: apperrors.ErrInvalidInput.Message,
			Errors:  fields,
		})
		return
	}
	respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Malformed request body"))
}

func validationMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return field + " must be at least " + fe.Param() + " characters"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	case "gt":
		return field + " must be greater than " + fe.Param()
	case "iso4217":
		return field + " must be a valid ISO 4217 currency code"
	case "hex_color":
		return field + " must be a hex color like #4CAF50"
	case "transaction_type", "category_type":
		return field + " must be income or expense"
	case "transaction_status":
		return field + " must be completed, pending, or cancelled"
	case "recurrence_pattern":
		return field + " must be daily, weekly, monthly, or yearly"
	case "analytics_period":
		return field + " must be week, month, year, or custom"
	case "otp":
		return field + " must be a 6-digit code"
	default:
		return field + " is invalid"
	}
}

// respondWithError writes a consistent JSON error envelope. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, Response{
			Success: false,
			Message: appErr.Message,
			Errors:  []FieldError{{Code: appErr.Code, Message: appErr.Message}},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, Response{
		Success: false,
		Message: apperrors.ErrInternalServer.Message,
		Errors: []FieldError{{
			Code:    apperrors.ErrInternalServer.Code,
			Message: apperrors.ErrInternalServer.Message,
		}},
	})
}
