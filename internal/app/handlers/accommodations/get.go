package accommodations

import (
	"context"

	"staybook/internal/app/dto"
	"staybook/internal/app/queries"
	"staybook/internal/app/support"
	"staybook/internal/app/uow"
	domainaccommodations "staybook/internal/domain/accommodations"
)

const getAccommodationKey = "accommodations.get"

type GetQuery struct {
	AccommodationID string
}

func (q GetQuery) Key() string { return getAccommodationKey }

type GetHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetHandler) Handle(ctx context.Context, q GetQuery) (dto.Accommodation, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Accommodation{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	accommodation, err := unit.Accommodations().ByID(execCtx, domainaccommodations.AccommodationID(q.AccommodationID))
	if err != nil {
		return dto.Accommodation{}, err
	}
	return dto.MapAccommodation(accommodation), nil
}

// Register wires the get query onto a bus.
func (h *GetHandler) Register(bus *queries.InMemoryBus) {
	queries.RegisterHandler(bus, getAccommodationKey, queries.HandlerFunc[GetQuery, dto.Accommodation](h.Handle))
}

var _ queries.Handler[GetQuery, dto.Accommodation] = (*GetHandler)(nil)
