package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	domainaccommodations "staybook/internal/domain/accommodations"
	domaincomments "staybook/internal/domain/comments"
	domainreservations "staybook/internal/domain/reservations"
	"staybook/internal/domain/shared/daterange"
	domainuser "staybook/internal/domain/user"
)

// respondDomainError maps sentinel domain errors onto HTTP statuses. Anything
// unrecognized is a 500 and gets logged; domain errors speak for themselves.
func respondDomainError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domainaccommodations.ErrNotFound),
		errors.Is(err, domainreservations.ErrNotFound),
		errors.Is(err, domaincomments.ErrNotFound),
		errors.Is(err, domainuser.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, domainreservations.ErrCheckInPast),
		errors.Is(err, domainreservations.ErrInvalidGuests),
		errors.Is(err, domainreservations.ErrCapacityExceeded),
		errors.Is(err, domaincomments.ErrInvalidRating),
		errors.Is(err, domaincomments.ErrEmptyReply),
		errors.Is(err, domainaccommodations.ErrTitleRequired),
		errors.Is(err, domainaccommodations.ErrCityRequired),
		errors.Is(err, domainaccommodations.ErrNegativePrice),
		errors.Is(err, domainaccommodations.ErrInvalidCapacity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domainreservations.ErrDateRangeConflict),
		errors.Is(err, domainreservations.ErrInvalidTransition),
		errors.Is(err, domaincomments.ErrDuplicate),
		errors.Is(err, domaincomments.ErrStayNotDone),
		errors.Is(err, domainaccommodations.ErrAlreadyDeleted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		if logger != nil {
			logger.Error("request failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
