package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	accommodationCollection = "agg_accommodation"
	reservationCollection   = "agg_reservation"
	commentCollection       = "agg_comment"
	userCollection          = "agg_user"
	idempotencyCollection   = "app_idempotency"
)

type Client struct {
	DB *mongo.Database
}

func New(uri, database string) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	opts := options.Client().ApplyURI(uri).SetRetryWrites(true)
	m, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Client{DB: m.Database(database)}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.DB.Client().Ping(ctx, nil)
}

// EnsureIndexes creates the uniqueness and lookup indexes the engine relies
// on: one comment per reservation is a hard constraint, the rest are query
// accelerators for overlap checks and listings.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	_, err := c.DB.Collection(commentCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "reservation_id", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return err
	}
	_, err = c.DB.Collection(reservationCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "accommodation_id", Value: 1}, {Key: "state", Value: 1}, {Key: "range.check_in", Value: 1}}},
		{Keys: bson.D{{Key: "guest_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return err
	}
	_, err = c.DB.Collection(accommodationCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "city_lower", Value: 1}, {Key: "status", Value: 1}},
	})
	if err != nil {
		return err
	}
	_, err = c.DB.Collection(userCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return err
	}
	idempotencyTTL := 7 * 24 * time.Hour
	_, err = c.DB.Collection(idempotencyCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(idempotencyTTL.Seconds())),
	})
	return err
}
