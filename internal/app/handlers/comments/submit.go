package comments

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	"staybook/internal/app/support"
	"staybook/internal/app/uow"
	domaincomments "staybook/internal/domain/comments"
	domainreservations "staybook/internal/domain/reservations"
	domainuser "staybook/internal/domain/user"
)

const submitCommentKey = "comments.submit"

// SubmitCommentCommand posts a rating and optional text for a completed stay.
type SubmitCommentCommand struct {
	CommentID     string
	ReservationID string
	AuthorID      string
	Rating        int
	Text          string
	Now           time.Time
}

func (c SubmitCommentCommand) Key() string { return submitCommentKey }

// SubmitCommentHandler enforces the rating gate: the reservation must exist,
// be COMPLETED, and carry no earlier comment. On success it refreshes the
// accommodation's cached average.
type SubmitCommentHandler struct {
	UoWFactory uow.UoWFactory
	Ratings    policies.RatingCache
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *SubmitCommentHandler) Handle(ctx context.Context, cmd SubmitCommentCommand) (dto.Comment, error) {
	unit, execCtx, managed, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return dto.Comment{}, err
	}
	committed := false
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(execCtx)
			}
		}()
	}

	now := cmd.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	reservation, err := unit.Reservations().ByID(execCtx, domainreservations.ReservationID(cmd.ReservationID))
	if err != nil {
		return dto.Comment{}, err
	}
	author, err := unit.Users().ByID(execCtx, domainuser.ID(cmd.AuthorID))
	if err != nil {
		return dto.Comment{}, err
	}
	if reservation.State != domainreservations.StateCompleted {
		return dto.Comment{}, domaincomments.ErrStayNotDone
	}
	exists, err := unit.Comments().ExistsByReservation(execCtx, reservation.ID)
	if err != nil {
		return dto.Comment{}, err
	}
	if exists {
		return dto.Comment{}, domaincomments.ErrDuplicate
	}

	commentID := cmd.CommentID
	if commentID == "" {
		commentID = uuid.NewString()
	}
	comment, err := domaincomments.Submit(domaincomments.SubmitParams{
		ID:              domaincomments.CommentID(commentID),
		ReservationID:   reservation.ID,
		AccommodationID: reservation.AccommodationID,
		AuthorID:        string(author.ID),
		Rating:          cmd.Rating,
		Text:            cmd.Text,
		CreatedAt:       now,
	})
	if err != nil {
		return dto.Comment{}, err
	}
	if err := unit.Comments().Save(execCtx, comment); err != nil {
		return dto.Comment{}, err
	}

	if err := refreshAccommodationRating(execCtx, unit, reservation.AccommodationID, now); err != nil {
		return dto.Comment{}, err
	}

	pending := comment.PendingEvents()
	comment.ClearEvents()
	if err := outbox.RecordDomainEvents(execCtx, h.Outbox, h.Encoder, pending); err != nil {
		return dto.Comment{}, err
	}

	if managed {
		if err := unit.Commit(execCtx); err != nil {
			return dto.Comment{}, err
		}
		committed = true
	}

	if h.Ratings != nil {
		if err := h.Ratings.Invalidate(ctx, reservation.AccommodationID); err != nil && h.Logger != nil {
			h.Logger.Warn("rating cache invalidation failed", "accommodation_id", reservation.AccommodationID, "error", err)
		}
	}
	if h.Logger != nil {
		h.Logger.Info("comment submitted",
			"comment_id", comment.ID,
			"reservation_id", comment.ReservationID,
			"accommodation_id", comment.AccommodationID,
			"rating", comment.Rating)
	}
	return dto.MapComment(comment), nil
}

// Register wires the submit command onto a bus.
func (h *SubmitCommentHandler) Register(bus *commands.InMemoryBus) {
	commands.RegisterHandler(bus, submitCommentKey, commands.HandlerFunc[SubmitCommentCommand, dto.Comment](h.Handle))
}

var _ commands.Handler[SubmitCommentCommand, dto.Comment] = (*SubmitCommentHandler)(nil)
