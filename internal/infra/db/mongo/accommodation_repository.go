package mongo

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainaccommodations "staybook/internal/domain/accommodations"
)

type AccommodationRepository struct {
	col *mongo.Collection
}

func NewAccommodationRepository(db *mongo.Database) *AccommodationRepository {
	return &AccommodationRepository{col: db.Collection(accommodationCollection)}
}

func (r *AccommodationRepository) ByID(ctx context.Context, id domainaccommodations.AccommodationID) (*domainaccommodations.Accommodation, error) {
	var doc accommodationDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainaccommodations.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *AccommodationRepository) Save(ctx context.Context, acc *domainaccommodations.Accommodation) error {
	doc := newAccommodationDocument(acc)
	filter := bson.M{"_id": doc.ID, "version": acc.Version}
	doc.Version = acc.Version + 1
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
	acc.Version = doc.Version
	return nil
}

// Search pushes the cheap filters into the query and leaves stay-range
// availability to the caller, matching the in-memory repository contract.
func (r *AccommodationRepository) Search(ctx context.Context, params domainaccommodations.SearchParams) (domainaccommodations.SearchResult, error) {
	params = params.Normalized()
	filter := searchFilter(params)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return domainaccommodations.SearchResult{}, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "nightly_price_cents", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(params.Offset)).
		SetLimit(int64(params.Limit))
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return domainaccommodations.SearchResult{}, err
	}
	defer cursor.Close(ctx)
	var items []*domainaccommodations.Accommodation
	for cursor.Next(ctx) {
		var doc accommodationDocument
		if err := cursor.Decode(&doc); err != nil {
			return domainaccommodations.SearchResult{}, err
		}
		items = append(items, doc.toAggregate())
	}
	if err := cursor.Err(); err != nil {
		return domainaccommodations.SearchResult{}, err
	}
	return domainaccommodations.SearchResult{Items: items, Total: int(total)}, nil
}

func searchFilter(params domainaccommodations.SearchParams) bson.M {
	filter := bson.M{}
	if params.Host != "" {
		filter["host_id"] = string(params.Host)
	}
	if params.City != "" {
		filter["city_lower"] = bson.M{"$regex": primitive.Regex{Pattern: regexQuoteMeta(params.City)}}
	}
	if params.OnlyActive {
		filter["status"] = string(domainaccommodations.StatusActive)
	} else if len(params.Statuses) > 0 {
		statuses := make([]string, 0, len(params.Statuses))
		for _, s := range params.Statuses {
			statuses = append(statuses, string(s))
		}
		filter["status"] = bson.M{"$in": statuses}
	}
	if params.MinGuests > 0 {
		filter["max_guests"] = bson.M{"$gte": params.MinGuests}
	}
	price := bson.M{}
	if params.PriceMinCents > 0 {
		price["$gte"] = params.PriceMinCents
	}
	if params.PriceMaxCents > 0 {
		price["$lte"] = params.PriceMaxCents
	}
	if len(price) > 0 {
		filter["nightly_price_cents"] = price
	}
	return filter
}

// regexQuoteMeta escapes regex metacharacters so a city filter stays a plain
// substring match.
func regexQuoteMeta(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\', '.', '+', '*', '?', '(', ')', '|', '[', ']', '{', '}', '^', '$':
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(out)
}

type accommodationDocument struct {
	ID                string  `bson:"_id"`
	HostID            string  `bson:"host_id"`
	Title             string  `bson:"title"`
	Description       string  `bson:"description"`
	City              string  `bson:"city"`
	CityLower         string  `bson:"city_lower"`
	NightlyPriceCents int64   `bson:"nightly_price_cents"`
	MaxGuests         int     `bson:"max_guests"`
	Status            string  `bson:"status"`
	Rating            float64 `bson:"rating"`
	CreatedAt         int64   `bson:"created_at"`
	UpdatedAt         int64   `bson:"updated_at"`
	Version           int64   `bson:"version"`
}

func newAccommodationDocument(a *domainaccommodations.Accommodation) accommodationDocument {
	return accommodationDocument{
		ID:                string(a.ID),
		HostID:            string(a.Host),
		Title:             a.Title,
		Description:       a.Description,
		City:              a.City,
		CityLower:         strings.ToLower(a.City),
		NightlyPriceCents: a.NightlyPriceCents,
		MaxGuests:         a.MaxGuests,
		Status:            string(a.Status),
		Rating:            a.Rating,
		CreatedAt:         a.CreatedAt.UnixMilli(),
		UpdatedAt:         a.UpdatedAt.UnixMilli(),
		Version:           a.Version,
	}
}

func (d accommodationDocument) toAggregate() *domainaccommodations.Accommodation {
	return &domainaccommodations.Accommodation{
		ID:                domainaccommodations.AccommodationID(d.ID),
		Host:              domainaccommodations.HostID(d.HostID),
		Title:             d.Title,
		Description:       d.Description,
		City:              d.City,
		NightlyPriceCents: d.NightlyPriceCents,
		MaxGuests:         d.MaxGuests,
		Status:            domainaccommodations.Status(d.Status),
		Rating:            d.Rating,
		CreatedAt:         timestampToTime(d.CreatedAt),
		UpdatedAt:         timestampToTime(d.UpdatedAt),
		Version:           d.Version,
	}
}
