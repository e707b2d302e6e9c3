package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"little-lemon-go/logger"
	"little-lemon-go/services"
)

// statusFor maps domain and persistence errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrLinePriceTooLarge),
		errors.Is(err, services.ErrOrderTotalTooLarge),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrStatusRegression),
		errors.Is(err, services.ErrNotDeliveryCrew),
		errors.Is(err, services.ErrEmptyUpdate),
		errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrMenuItemNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrGroupNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrCrewAssignmentForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrCartChanged):
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": ...} for err. Server errors are logged and
// reported without their details.
func (h *Handler) respondError(c *gin.Context, action string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Log.Error(action, logger.RequestID(c), "request failed", err)
		c.AbortWithStatusJSON(status, gin.H{"error": "Internal server error"})
		return
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		c.AbortWithStatusJSON(status, gin.H{"error": "A record with this value already exists"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
