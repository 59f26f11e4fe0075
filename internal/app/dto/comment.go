package dto

import (
	"time"

	domaincomments "staybook/internal/domain/comments"
)

// Comment is the public comment/rating payload.
type Comment struct {
	ID              string     `json:"id"`
	ReservationID   string     `json:"reservation_id"`
	AccommodationID string     `json:"accommodation_id"`
	AuthorID        string     `json:"author_id"`
	Rating          int        `json:"rating"`
	Text            string     `json:"text,omitempty"`
	HostReply       string     `json:"host_reply,omitempty"`
	RepliedAt       *time.Time `json:"replied_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type CommentCollection struct {
	Items []Comment `json:"items"`
	Total int       `json:"total"`
}

// AverageRating is the aggregate payload; Average is 0.0 when no comments
// exist.
type AverageRating struct {
	AccommodationID string  `json:"accommodation_id"`
	Average         float64 `json:"average"`
	Count           int     `json:"count"`
}

func MapComment(c *domaincomments.Comment) Comment {
	if c == nil {
		return Comment{}
	}
	out := Comment{
		ID:              string(c.ID),
		ReservationID:   string(c.ReservationID),
		AccommodationID: string(c.AccommodationID),
		AuthorID:        c.AuthorID,
		Rating:          c.Rating,
		Text:            c.Text,
		HostReply:       c.HostReply,
		CreatedAt:       c.CreatedAt,
	}
	if !c.RepliedAt.IsZero() {
		replied := c.RepliedAt
		out.RepliedAt = &replied
	}
	return out
}

func MapComments(items []*domaincomments.Comment, total int) CommentCollection {
	out := CommentCollection{Items: make([]Comment, 0, len(items)), Total: total}
	for _, item := range items {
		out.Items = append(out.Items, MapComment(item))
	}
	return out
}
