package memory

import (
	"context"
	"errors"

	"staybook/internal/app/uow"
	domainaccommodations "staybook/internal/domain/accommodations"
	domaincomments "staybook/internal/domain/comments"
	domainreservations "staybook/internal/domain/reservations"
	domainuser "staybook/internal/domain/user"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	AccommodationsRepo domainaccommodations.Repository
	ReservationsRepo   domainreservations.Repository
	CommentsRepo       domaincomments.Repository
	UsersRepo          domainuser.Repository
}

var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. The in-memory stores give
// no rollback; the reservation repository's no-overlap constraint in Save is
// what keeps concurrent creates from double-booking here.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.AccommodationsRepo == nil || f.ReservationsRepo == nil || f.CommentsRepo == nil || f.UsersRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		accommodations: f.AccommodationsRepo,
		reservations:   f.ReservationsRepo,
		comments:       f.CommentsRepo,
		users:          f.UsersRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
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
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}
