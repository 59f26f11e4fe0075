package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainaccommodations "staybook/internal/domain/accommodations"
	domainreservations "staybook/internal/domain/reservations"
	domainrange "staybook/internal/domain/shared/daterange"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type ReservationRepository struct {
	col            *mongo.Collection
	accommodations *mongo.Collection
}

func NewReservationRepository(db *mongo.Database) *ReservationRepository {
	return &ReservationRepository{
		col:            db.Collection(reservationCollection),
		accommodations: db.Collection(accommodationCollection),
	}
}

func (r *ReservationRepository) ByID(ctx context.Context, id domainreservations.ReservationID) (*domainreservations.Reservation, error) {
	var doc reservationDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainreservations.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save persists the reservation with optimistic versioning. For blocking
// states it first bumps a sequence field on the accommodation document: two
// transactions inserting different reservations for the same accommodation
// have no overlapping write set on their own, so under snapshot isolation
// both would pass the overlap check and commit (write skew). The shared
// bump makes one of them abort with a write conflict, and the overlap
// re-check below then runs against a snapshot that includes the winner.
func (r *ReservationRepository) Save(ctx context.Context, res *domainreservations.Reservation) error {
	if blockingState(res.State) {
		_, err := r.accommodations.UpdateOne(ctx,
			bson.M{"_id": string(res.AccommodationID)},
			bson.M{"$inc": bson.M{"booking_seq": 1}},
		)
		if err != nil {
			return err
		}
		overlapping, err := r.FindOverlapping(ctx, res.AccommodationID, res.Range, domainreservations.BlockingStates())
		if err != nil {
			return err
		}
		for _, existing := range overlapping {
			if existing.ID != res.ID {
				return domainreservations.ErrDateRangeConflict
			}
		}
	}
	doc := newReservationDocument(res)
	filter := bson.M{"_id": doc.ID, "version": res.Version}
	doc.Version = res.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	result, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if result.MatchedCount == 0 && result.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	res.Version = doc.Version
	return nil
}

// FindOverlapping translates the half-open interval overlap test into a range
// query: an existing [c, d) overlaps [a, b) iff c < b and a < d.
func (r *ReservationRepository) FindOverlapping(ctx context.Context, accommodationID domainaccommodations.AccommodationID, dr domainrange.DateRange, states []domainreservations.State) ([]*domainreservations.Reservation, error) {
	stateValues := make([]string, 0, len(states))
	for _, s := range states {
		stateValues = append(stateValues, string(s))
	}
	filter := bson.M{
		"accommodation_id": string(accommodationID),
		"state":            bson.M{"$in": stateValues},
		"range.check_in":   bson.M{"$lt": dr.CheckOut.UnixMilli()},
		"range.check_out":  bson.M{"$gt": dr.CheckIn.UnixMilli()},
	}
	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	return decodeReservations(ctx, cursor)
}

func (r *ReservationRepository) ListByGuest(ctx context.Context, guestID string, page domainreservations.Page) ([]*domainreservations.Reservation, int, error) {
	return r.list(ctx, bson.M{"guest_id": guestID}, page)
}

func (r *ReservationRepository) ListByAccommodation(ctx context.Context, accommodationID domainaccommodations.AccommodationID, page domainreservations.Page) ([]*domainreservations.Reservation, int, error) {
	return r.list(ctx, bson.M{"accommodation_id": string(accommodationID)}, page)
}

func (r *ReservationRepository) list(ctx context.Context, filter bson.M, page domainreservations.Page) ([]*domainreservations.Reservation, int, error) {
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.Limit))
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	items, err := decodeReservations(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}
	return items, int(total), nil
}

func decodeReservations(ctx context.Context, cursor *mongo.Cursor) ([]*domainreservations.Reservation, error) {
	defer cursor.Close(ctx)
	var out []*domainreservations.Reservation
	for cursor.Next(ctx) {
		var doc reservationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type reservationDocument struct {
	ID              string        `bson:"_id"`
	AccommodationID string        `bson:"accommodation_id"`
	GuestID         string        `bson:"guest_id"`
	Range           rangeDocument `bson:"range"`
	Guests          int           `bson:"guests"`
	State           string        `bson:"state"`
	CreatedAt       int64         `bson:"created_at"`
	UpdatedAt       int64         `bson:"updated_at"`
	Version         int64         `bson:"version"`
}

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

func newReservationDocument(r *domainreservations.Reservation) reservationDocument {
	return reservationDocument{
		ID:              string(r.ID),
		AccommodationID: string(r.AccommodationID),
		GuestID:         r.GuestID,
		Range:           rangeDocument{CheckIn: r.Range.CheckIn.UnixMilli(), CheckOut: r.Range.CheckOut.UnixMilli()},
		Guests:          r.Guests,
		State:           string(r.State),
		CreatedAt:       r.CreatedAt.UnixMilli(),
		UpdatedAt:       r.UpdatedAt.UnixMilli(),
		Version:         r.Version,
	}
}

func (d reservationDocument) toAggregate() *domainreservations.Reservation {
	return &domainreservations.Reservation{
		ID:              domainreservations.ReservationID(d.ID),
		AccommodationID: domainaccommodations.AccommodationID(d.AccommodationID),
		GuestID:         d.GuestID,
		Range:           domainrange.DateRange{CheckIn: timestampToTime(d.Range.CheckIn), CheckOut: timestampToTime(d.Range.CheckOut)},
		Guests:          d.Guests,
		State:           domainreservations.State(d.State),
		CreatedAt:       timestampToTime(d.CreatedAt),
		UpdatedAt:       timestampToTime(d.UpdatedAt),
		Version:         d.Version,
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func blockingState(state domainreservations.State) bool {
	for _, s := range domainreservations.BlockingStates() {
		if s == state {
			return true
		}
	}
	return false
}
