package comments

import (
	"time"

	"staybook/internal/domain/accommodations"
	"staybook/internal/domain/reservations"
)

type CommentSubmitted struct {
	CommentID       CommentID
	ReservationID   reservations.ReservationID
	AccommodationID accommodations.AccommodationID
	Rating          int
	At              time.Time
}

func (e CommentSubmitted) EventName() string     { return "comment.submitted" }
func (e CommentSubmitted) AggregateID() string   { return string(e.CommentID) }
func (e CommentSubmitted) OccurredAt() time.Time { return e.At }

type HostReplied struct {
	CommentID       CommentID
	AccommodationID accommodations.AccommodationID
	At              time.Time
}

func (e HostReplied) EventName() string     { return "comment.host_replied" }
func (e HostReplied) AggregateID() string   { return string(e.CommentID) }
func (e HostReplied) OccurredAt() time.Time { return e.At }
