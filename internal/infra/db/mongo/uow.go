package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staybook/internal/app/uow"
	domainaccommodations "staybook/internal/domain/accommodations"
	domaincomments "staybook/internal/domain/comments"
	domainreservations "staybook/internal/domain/reservations"
	domainuser "staybook/internal/domain/user"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory wires Mongo sessions into the generic UnitOfWork interface. The
// session transaction keeps the availability check and the reservation
// insert on one snapshot; ReservationRepository.Save adds the write-conflict
// bump that serializes concurrent inserts for the same accommodation, since
// snapshot isolation alone does not catch two inserts of distinct documents.
type Factory struct {
	DB *mongo.Database

	AccommodationsRepo domainaccommodations.Repository
	ReservationsRepo   domainreservations.Repository
	CommentsRepo       domaincomments.Repository
	UsersRepo          domainuser.Repository
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		session:        session,
		accommodations: f.AccommodationsRepo,
		reservations:   f.ReservationsRepo,
		comments:       f.CommentsRepo,
		users:          f.UsersRepo,
	}, nil
}

type Unit struct {
	session mongo.Session

	accommodations domainaccommodations.Repository
	reservations   domainreservations.Repository
	comments       domaincomments.Repository
	users          domainuser.Repository
}

func (u *Unit) Accommodations() domainaccommodations.Repository {
	return u.accommodations
}

func (u *Unit) Reservations() domainreservations.Repository {
	return u.reservations
}

func (u *Unit) Comments() domaincomments.Repository {
	return u.comments
}

func (u *Unit) Users() domainuser.Repository {
	return u.users
}

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext makes the Mongo session visible to the repositories so their
// reads and writes run inside the transaction.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
