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
	AccommodationApp "staybook/internal/app/handlers/accommodations"
	"staybook/internal/app/queries"
)

type AccommodationHTTP interface {
	Search(c *gin.Context)
	Get(c *gin.Context)
}

type HostAccommodationHTTP interface {
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type AccommodationHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h AccommodationHandler) Search(c *gin.Context) {
	q := AccommodationApp.SearchQuery{
		City:      c.Query("city"),
		MinGuests: intQuery(c, "guests"),
		Page:      pageFromQuery(c),
	}
	q.PriceMinCents = int64(intQuery(c, "price_min_cents"))
	q.PriceMaxCents = int64(intQuery(c, "price_max_cents"))
	if checkIn, ok := dateQuery(c, "check_in"); ok {
		q.CheckIn = checkIn
	}
	if checkOut, ok := dateQuery(c, "check_out"); ok {
		q.CheckOut = checkOut
	}
	result, err := queries.Ask[AccommodationApp.SearchQuery, dto.AccommodationCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AccommodationHandler) Get(c *gin.Context) {
	q := AccommodationApp.GetQuery{AccommodationID: c.Param("id")}
	result, err := queries.Ask[AccommodationApp.GetQuery, dto.Accommodation](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type accommodationRequest struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	City              string `json:"city"`
	NightlyPriceCents int64  `json:"nightly_price_cents"`
	MaxGuests         int    `json:"max_guests"`
}

func (h AccommodationHandler) Create(c *gin.Context) {
	user, ok := requireRole(c, "host")
	if !ok {
		return
	}
	var req accommodationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cmd := AccommodationApp.CreateAccommodationCommand{
		AccommodationID:   uuid.NewString(),
		HostID:            user.ID,
		Title:             req.Title,
		Description:       req.Description,
		City:              req.City,
		NightlyPriceCents: req.NightlyPriceCents,
		MaxGuests:         req.MaxGuests,
	}
	result, err := commands.Dispatch[AccommodationApp.CreateAccommodationCommand, dto.Accommodation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h AccommodationHandler) Update(c *gin.Context) {
	if _, ok := requireRole(c, "host"); !ok {
		return
	}
	var req accommodationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cmd := AccommodationApp.UpdateAccommodationCommand{
		AccommodationID:   c.Param("id"),
		Title:             req.Title,
		Description:       req.Description,
		City:              req.City,
		NightlyPriceCents: req.NightlyPriceCents,
		MaxGuests:         req.MaxGuests,
	}
	result, err := commands.Dispatch[AccommodationApp.UpdateAccommodationCommand, dto.Accommodation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AccommodationHandler) Delete(c *gin.Context) {
	if _, ok := requireRole(c, "host"); !ok {
		return
	}
	cmd := AccommodationApp.DeleteAccommodationCommand{AccommodationID: c.Param("id")}
	result, err := commands.Dispatch[AccommodationApp.DeleteAccommodationCommand, dto.Accommodation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func intQuery(c *gin.Context, key string) int {
	v, _ := strconv.Atoi(c.Query(key))
	return v
}

func dateQuery(c *gin.Context, key string) (time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

var _ AccommodationHTTP = AccommodationHandler{}
var _ HostAccommodationHTTP = AccommodationHandler{}
