package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainaccommodations "staybook/internal/domain/accommodations"
	domaincomments "staybook/internal/domain/comments"
	domainreservations "staybook/internal/domain/reservations"
)

type CommentRepository struct {
	col *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{col: db.Collection(commentCollection)}
}

func (r *CommentRepository) ByID(ctx context.Context, id domaincomments.CommentID) (*domaincomments.Comment, error) {
	var doc commentDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaincomments.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save relies on the unique reservation_id index as the storage-level backstop
// for the one-comment-per-reservation rule.
func (r *CommentRepository) Save(ctx context.Context, c *domaincomments.Comment) error {
	doc := newCommentDocument(c)
	filter := bson.M{"_id": doc.ID, "version": c.Version}
	doc.Version = c.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	result, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domaincomments.ErrDuplicate
		}
		return err
	}
	if result.MatchedCount == 0 && result.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	c.Version = doc.Version
	return nil
}

func (r *CommentRepository) ExistsByReservation(ctx context.Context, reservationID domainreservations.ReservationID) (bool, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"reservation_id": string(reservationID)}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *CommentRepository) ListByAccommodation(ctx context.Context, accommodationID domainaccommodations.AccommodationID, page domaincomments.Page) ([]*domaincomments.Comment, int, error) {
	filter := bson.M{"accommodation_id": string(accommodationID)}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.Limit))
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)
	var items []*domaincomments.Comment
	for cursor.Next(ctx) {
		var doc commentDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, err
		}
		items = append(items, doc.toAggregate())
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, err
	}
	return items, int(total), nil
}

func (r *CommentRepository) Ratings(ctx context.Context, accommodationID domainaccommodations.AccommodationID) ([]int, error) {
	opts := options.Find().SetProjection(bson.M{"rating": 1})
	cursor, err := r.col.Find(ctx, bson.M{"accommodation_id": string(accommodationID)}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var ratings []int
	for cursor.Next(ctx) {
		var doc struct {
			Rating int `bson:"rating"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		ratings = append(ratings, doc.Rating)
	}
	return ratings, cursor.Err()
}

type commentDocument struct {
	ID              string `bson:"_id"`
	ReservationID   string `bson:"reservation_id"`
	AccommodationID string `bson:"accommodation_id"`
	AuthorID        string `bson:"author_id"`
	Rating          int    `bson:"rating"`
	Text            string `bson:"text"`
	HostReply       string `bson:"host_reply"`
	RepliedAt       int64  `bson:"replied_at"`
	CreatedAt       int64  `bson:"created_at"`
	Version         int64  `bson:"version"`
}

func newCommentDocument(c *domaincomments.Comment) commentDocument {
	doc := commentDocument{
		ID:              string(c.ID),
		ReservationID:   string(c.ReservationID),
		AccommodationID: string(c.AccommodationID),
		AuthorID:        c.AuthorID,
		Rating:          c.Rating,
		Text:            c.Text,
		HostReply:       c.HostReply,
		CreatedAt:       c.CreatedAt.UnixMilli(),
		Version:         c.Version,
	}
	if !c.RepliedAt.IsZero() {
		doc.RepliedAt = c.RepliedAt.UnixMilli()
	}
	return doc
}

func (d commentDocument) toAggregate() *domaincomments.Comment {
	c := &domaincomments.Comment{
		ID:              domaincomments.CommentID(d.ID),
		ReservationID:   domainreservations.ReservationID(d.ReservationID),
		AccommodationID: domainaccommodations.AccommodationID(d.AccommodationID),
		AuthorID:        d.AuthorID,
		Rating:          d.Rating,
		Text:            d.Text,
		HostReply:       d.HostReply,
		CreatedAt:       timestampToTime(d.CreatedAt),
		Version:         d.Version,
	}
	if d.RepliedAt != 0 {
		c.RepliedAt = timestampToTime(d.RepliedAt)
	} else {
		c.RepliedAt = time.Time{}
	}
	return c
}
