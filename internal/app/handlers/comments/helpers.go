package comments

import (
	"context"
	"time"

	"staybook/internal/app/uow"
	domainaccommodations "staybook/internal/domain/accommodations"
	domaincomments "staybook/internal/domain/comments"
)

// refreshAccommodationRating recomputes the mean over all comments and stores
// it on the accommodation so directory sorting stays cheap.
func refreshAccommodationRating(ctx context.Context, unit uow.UnitOfWork, accommodationID domainaccommodations.AccommodationID, now time.Time) error {
	ratings, err := unit.Comments().Ratings(ctx, accommodationID)
	if err != nil {
		return err
	}
	accommodation, err := unit.Accommodations().ByID(ctx, accommodationID)
	if err != nil {
		return err
	}
	accommodation.RefreshRating(domaincomments.Average(ratings), now)
	return unit.Accommodations().Save(ctx, accommodation)
}
