package comments

import (
	"context"
	"errors"
	"strings"

	"staybook/internal/app/dto"
	"staybook/internal/app/queries"
	"staybook/internal/app/support"
	"staybook/internal/app/uow"
	domainaccommodations "staybook/internal/domain/accommodations"
	domaincomments "staybook/internal/domain/comments"
)

const listByAccommodationKey = "comments.list_by_accommodation"

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ListByAccommodationQuery pages through an accommodation's comments, newest
// first.
type ListByAccommodationQuery struct {
	AccommodationID string
	Page            dto.PageRequest
}

func (q ListByAccommodationQuery) Key() string { return listByAccommodationKey }

type ListHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListHandler) Handle(ctx context.Context, q ListByAccommodationQuery) (dto.CommentCollection, error) {
	id := strings.TrimSpace(q.AccommodationID)
	if id == "" {
		return dto.CommentCollection{}, errors.New("comments: accommodation id is required")
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.CommentCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	page := q.Page.Normalized(defaultPageLimit, maxPageLimit)
	items, total, err := unit.Comments().ListByAccommodation(execCtx, domainaccommodations.AccommodationID(id), domaincomments.Page{Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return dto.CommentCollection{}, err
	}
	return dto.MapComments(items, total), nil
}

// Register wires the list query onto a bus.
func (h *ListHandler) Register(bus *queries.InMemoryBus) {
	queries.RegisterHandler(bus, listByAccommodationKey, queries.HandlerFunc[ListByAccommodationQuery, dto.CommentCollection](h.Handle))
}

var _ queries.Handler[ListByAccommodationQuery, dto.CommentCollection] = (*ListHandler)(nil)
