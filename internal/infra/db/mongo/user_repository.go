package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainuser "staybook/internal/domain/user"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(userCollection)}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	var doc userDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainuser.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	var doc userDocument
	if err := r.col.FindOne(ctx, bson.M{"email": domainuser.NormalizeEmail(email)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainuser.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) error {
	doc := newUserDocument(u)
	opts := options.Update().SetUpsert(true)
	if _, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainuser.ErrEmailAlreadyUsed
		}
		return err
	}
	return nil
}

type userDocument struct {
	ID           string   `bson:"_id"`
	Email        string   `bson:"email"`
	Name         string   `bson:"name"`
	PasswordHash string   `bson:"password_hash"`
	Roles        []string `bson:"roles"`
	CreatedAt    int64    `bson:"created_at"`
	UpdatedAt    int64    `bson:"updated_at"`
}

func newUserDocument(u *domainuser.User) userDocument {
	roles := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		roles = append(roles, string(role))
	}
	return userDocument{
		ID:           string(u.ID),
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Roles:        roles,
		CreatedAt:    u.CreatedAt.UnixMilli(),
		UpdatedAt:    u.UpdatedAt.UnixMilli(),
	}
}

func (d userDocument) toAggregate() *domainuser.User {
	roles := make([]domainuser.Role, 0, len(d.Roles))
	for _, role := range d.Roles {
		roles = append(roles, domainuser.Role(role))
	}
	return &domainuser.User{
		ID:           domainuser.ID(d.ID),
		Email:        d.Email,
		Name:         d.Name,
		PasswordHash: d.PasswordHash,
		Roles:        roles,
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
	}
}
