package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rmfarias/fleetreserve/internal/domain"
)

// writeError maps the domain error taxonomy onto HTTP status codes. Anything
// unrecognized is a store failure and surfaces as a plain 500.
func writeError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	var conflictErr *domain.ConflictError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Reason})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{
			"error": conflictErr.Error(),
			"conflict": gin.H{
				"vehicle_id":         conflictErr.VehicleID,
				"pickup_at":          conflictErr.PickupAt.Format(time.RFC3339),
				"expected_return_at": conflictErr.ExpectedReturnAt.Format(time.RFC3339),
			},
		})
	case errors.Is(err, domain.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
