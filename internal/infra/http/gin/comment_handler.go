package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	CommentApp "staybook/internal/app/handlers/comments"
	"staybook/internal/app/queries"
)

type CommentHTTP interface {
	Submit(c *gin.Context)
	Reply(c *gin.Context)
	ListByAccommodation(c *gin.Context)
	AverageRating(c *gin.Context)
}

type CommentHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type submitCommentRequest struct {
	ReservationID string `json:"reservation_id"`
	Rating        int    `json:"rating"`
	Text          string `json:"text"`
}

func (h CommentHandler) Submit(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req submitCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cmd := CommentApp.SubmitCommentCommand{
		CommentID:     uuid.NewString(),
		ReservationID: req.ReservationID,
		AuthorID:      user.ID,
		Rating:        req.Rating,
		Text:          req.Text,
	}
	result, err := commands.Dispatch[CommentApp.SubmitCommentCommand, dto.Comment](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type replyRequest struct {
	Reply string `json:"reply"`
}

func (h CommentHandler) Reply(c *gin.Context) {
	if _, ok := requireRole(c, "host"); !ok {
		return
	}
	var req replyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cmd := CommentApp.RespondCommentCommand{
		CommentID: c.Param("id"),
		Reply:     req.Reply,
	}
	result, err := commands.Dispatch[CommentApp.RespondCommentCommand, dto.Comment](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CommentHandler) ListByAccommodation(c *gin.Context) {
	q := CommentApp.ListByAccommodationQuery{
		AccommodationID: c.Param("id"),
		Page:            pageFromQuery(c),
	}
	result, err := queries.Ask[CommentApp.ListByAccommodationQuery, dto.CommentCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CommentHandler) AverageRating(c *gin.Context) {
	q := CommentApp.AverageRatingQuery{AccommodationID: c.Param("id")}
	result, err := queries.Ask[CommentApp.AverageRatingQuery, dto.AverageRating](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ CommentHTTP = CommentHandler{}
