package comments

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/domain/accommodations"
	"staybook/internal/domain/reservations"
	"staybook/internal/domain/shared/events"
)

var (
	ErrNotFound      = errors.New("comments: not found")
	ErrInvalidRating = errors.New("comments: rating must be between 1 and 5")
	ErrDuplicate     = errors.New("comments: reservation already has a comment")
	ErrStayNotDone   = errors.New("comments: reservation is not completed")
	ErrEmptyReply    = errors.New("comments: reply text is required")
)

type CommentID string

// Comment carries a guest's rating for a completed stay, at most one per
// reservation. The host reply is the only mutation after submission.
type Comment struct {
	ID              CommentID
	ReservationID   reservations.ReservationID
	AccommodationID accommodations.AccommodationID
	AuthorID        string
	Rating          int
	Text            string
	HostReply       string
	RepliedAt       time.Time
	CreatedAt       time.Time
	Version         int64
	events.EventRecorder
}

type Page struct {
	Limit  int
	Offset int
}

type Repository interface {
	ByID(ctx context.Context, id CommentID) (*Comment, error)
	Save(ctx context.Context, comment *Comment) error
	ExistsByReservation(ctx context.Context, reservationID reservations.ReservationID) (bool, error)
	// ListByAccommodation returns comments newest first.
	ListByAccommodation(ctx context.Context, accommodationID accommodations.AccommodationID, page Page) ([]*Comment, int, error)
	Ratings(ctx context.Context, accommodationID accommodations.AccommodationID) ([]int, error)
}

type SubmitParams struct {
	ID              CommentID
	ReservationID   reservations.ReservationID
	AccommodationID accommodations.AccommodationID
	AuthorID        string
	Rating          int
	Text            string
	CreatedAt       time.Time
}

func Submit(params SubmitParams) (*Comment, error) {
	if params.Rating < 1 || params.Rating > 5 {
		return nil, ErrInvalidRating
	}
	c := &Comment{
		ID:              params.ID,
		ReservationID:   params.ReservationID,
		AccommodationID: params.AccommodationID,
		AuthorID:        params.AuthorID,
		Rating:          params.Rating,
		Text:            strings.TrimSpace(params.Text),
		CreatedAt:       params.CreatedAt.UTC(),
	}
	c.Record(CommentSubmitted{
		CommentID:       c.ID,
		ReservationID:   c.ReservationID,
		AccommodationID: c.AccommodationID,
		Rating:          c.Rating,
		At:              c.CreatedAt,
	})
	return c, nil
}

// Reply records the host's answer. Overwriting an earlier reply is allowed;
// who may reply is an authorization concern settled upstream.
func (c *Comment) Reply(text string, now time.Time) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyReply
	}
	c.HostReply = text
	c.RepliedAt = now.UTC()
	c.Record(HostReplied{CommentID: c.ID, AccommodationID: c.AccommodationID, At: c.RepliedAt})
	return nil
}
