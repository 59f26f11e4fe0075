package comments

import (
	"context"
	"log/slog"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/outbox"
	"staybook/internal/app/support"
	"staybook/internal/app/uow"
	domaincomments "staybook/internal/domain/comments"
)

const respondCommentKey = "comments.respond"

// RespondCommentCommand records the host's reply to a comment. Whether the
// caller actually owns the accommodation is settled by the authorization
// layer upstream.
type RespondCommentCommand struct {
	CommentID string
	Reply     string
	Now       time.Time
}

func (c RespondCommentCommand) Key() string { return respondCommentKey }

type RespondCommentHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *RespondCommentHandler) Handle(ctx context.Context, cmd RespondCommentCommand) (dto.Comment, error) {
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
	comment, err := unit.Comments().ByID(execCtx, domaincomments.CommentID(cmd.CommentID))
	if err != nil {
		return dto.Comment{}, err
	}
	if err := comment.Reply(cmd.Reply, now); err != nil {
		return dto.Comment{}, err
	}
	if err := unit.Comments().Save(execCtx, comment); err != nil {
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

	if h.Logger != nil {
		h.Logger.Info("host replied", "comment_id", comment.ID, "accommodation_id", comment.AccommodationID)
	}
	return dto.MapComment(comment), nil
}

// Register wires the respond command onto a bus.
func (h *RespondCommentHandler) Register(bus *commands.InMemoryBus) {
	commands.RegisterHandler(bus, respondCommentKey, commands.HandlerFunc[RespondCommentCommand, dto.Comment](h.Handle))
}

var _ commands.Handler[RespondCommentCommand, dto.Comment] = (*RespondCommentHandler)(nil)
