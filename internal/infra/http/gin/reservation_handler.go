package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	ReservationApp "staybook/internal/app/handlers/reservations"
	"staybook/internal/app/queries"
)

type ReservationHTTP interface {
	Create(c *gin.Context)
	Confirm(c *gin.Context)
	Cancel(c *gin.Context)
	Complete(c *gin.Context)
	ListMine(c *gin.Context)
	ListByAccommodation(c *gin.Context)
}

type ReservationHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createReservationRequest struct {
	AccommodationID string    `json:"accommodation_id"`
	CheckIn         time.Time `json:"check_in"`
	CheckOut        time.Time `json:"check_out"`
	Guests          int       `json:"guests"`
}

func (h ReservationHandler) Create(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cmd := ReservationApp.CreateReservationCommand{
		ReservationID:   uuid.NewString(),
		AccommodationID: req.AccommodationID,
		GuestID:         user.ID,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Guests:          req.Guests,
		ClientKey:       c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[ReservationApp.CreateReservationCommand, dto.Reservation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ReservationHandler) Confirm(c *gin.Context) {
	if _, ok := requireRole(c, "host"); !ok {
		return
	}
	cmd := ReservationApp.ConfirmReservationCommand{ReservationID: c.Param("id")}
	result, err := commands.Dispatch[ReservationApp.ConfirmReservationCommand, dto.Reservation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReservationHandler) Cancel(c *gin.Context) {
	if _, ok := requireRole(c, ""); !ok {
		return
	}
	cmd := ReservationApp.CancelReservationCommand{ReservationID: c.Param("id")}
	result, err := commands.Dispatch[ReservationApp.CancelReservationCommand, dto.Reservation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReservationHandler) Complete(c *gin.Context) {
	if _, ok := requireRole(c, "host"); !ok {
		return
	}
	cmd := ReservationApp.CompleteReservationCommand{ReservationID: c.Param("id")}
	result, err := commands.Dispatch[ReservationApp.CompleteReservationCommand, dto.Reservation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReservationHandler) ListMine(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	q := ReservationApp.ListByGuestQuery{GuestID: user.ID, Page: pageFromQuery(c)}
	result, err := queries.Ask[ReservationApp.ListByGuestQuery, dto.ReservationCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReservationHandler) ListByAccommodation(c *gin.Context) {
	if _, ok := requireRole(c, "host"); !ok {
		return
	}
	q := ReservationApp.ListByAccommodationQuery{AccommodationID: c.Param("id"), Page: pageFromQuery(c)}
	result, err := queries.Ask[ReservationApp.ListByAccommodationQuery, dto.ReservationCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func pageFromQuery(c *gin.Context) dto.PageRequest {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	return dto.PageRequest{Limit: limit, Offset: offset}
}

var _ ReservationHTTP = ReservationHandler{}
