package uow

import (
	"context"

	domainaccommodations "staybook/internal/domain/accommodations"
	domaincomments "staybook/internal/domain/comments"
	domainreservations "staybook/internal/domain/reservations"
	domainuser "staybook/internal/domain/user"
)

// UnitOfWork coordinates repositories inside one transaction boundary. The
// overlap check and the reservation insert must be observed atomically, so
// every command handler runs its reads and writes through a single unit.
type UnitOfWork interface {
	Accommodations() domainaccommodations.Repository
	Reservations() domainreservations.Repository
	Comments() domaincomments.Repository
	Users() domainuser.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
