package comments

import (
	"context"
	"errors"
	"log/slog"

	"staybook/internal/app/dto"
	"staybook/internal/app/policies"
	"staybook/internal/app/queries"
	"staybook/internal/app/support"
	"staybook/internal/app/uow"
	domainaccommodations "staybook/internal/domain/accommodations"
	domaincomments "staybook/internal/domain/comments"
)

const averageRatingKey = "comments.average_rating"

// AverageRatingQuery returns the mean rating of an accommodation, 0.0 when it
// has no comments yet.
type AverageRatingQuery struct {
	AccommodationID string
}

func (q AverageRatingQuery) Key() string { return averageRatingKey }

// AverageRatingHandler reads through the rating cache and recomputes from the
// comments store on a miss.
type AverageRatingHandler struct {
	UoWFactory uow.UoWFactory
	Ratings    policies.RatingCache
	Logger     *slog.Logger
}

func (h *AverageRatingHandler) Handle(ctx context.Context, q AverageRatingQuery) (dto.AverageRating, error) {
	id := domainaccommodations.AccommodationID(q.AccommodationID)
	if h.Ratings != nil {
		if average, count, err := h.Ratings.Get(ctx, id); err == nil {
			return dto.AverageRating{AccommodationID: q.AccommodationID, Average: average, Count: count}, nil
		} else if !errors.Is(err, policies.ErrRatingCacheMiss) && h.Logger != nil {
			h.Logger.Warn("rating cache read failed", "accommodation_id", id, "error", err)
		}
	}

	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.AverageRating{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	if _, err := unit.Accommodations().ByID(execCtx, id); err != nil {
		return dto.AverageRating{}, err
	}
	ratings, err := unit.Comments().Ratings(execCtx, id)
	if err != nil {
		return dto.AverageRating{}, err
	}
	result := dto.AverageRating{
		AccommodationID: q.AccommodationID,
		Average:         domaincomments.Average(ratings),
		Count:           len(ratings),
	}

	if h.Ratings != nil {
		if err := h.Ratings.Set(ctx, id, result.Average, result.Count); err != nil && h.Logger != nil {
			h.Logger.Warn("rating cache write failed", "accommodation_id", id, "error", err)
		}
	}
	return result, nil
}

// Register wires the average-rating query onto a bus.
func (h *AverageRatingHandler) Register(bus *queries.InMemoryBus) {
	queries.RegisterHandler(bus, averageRatingKey, queries.HandlerFunc[AverageRatingQuery, dto.AverageRating](h.Handle))
}

var _ queries.Handler[AverageRatingQuery, dto.AverageRating] = (*AverageRatingHandler)(nil)
