package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/gin-gonic/gin"
)

// writeError maps domain errors to HTTP responses. Anything unrecognised is
// treated as a storage failure and hidden behind a generic retry message.
func writeError(c *gin.Context, err error) {
	var capErr *domain.CapacityError
	if errors.As(err, &capErr) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "remaining": capErr.Remaining})
		return
	}

	switch {
	case errors.Is(err, domain.ErrSlotNotFound), errors.Is(err, domain.ErrReservationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrSlotNotOpen),
		errors.Is(err, domain.ErrSlotDeparted),
		errors.Is(err, domain.ErrDuplicateRequest),
		errors.Is(err, domain.ErrReservationNotHeld),
		errors.Is(err, domain.ErrReservationPending):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidPax),
		errors.Is(err, domain.ErrEmailRequired),
		errors.Is(err, domain.ErrInvalidSlotStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("ERROR: %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "seat inventory is temporarily unavailable, try again"})
	}
}
