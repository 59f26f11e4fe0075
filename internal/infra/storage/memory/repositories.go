package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainaccommodations "staybook/internal/domain/accommodations"
	domaincomments "staybook/internal/domain/comments"
	domainreservations "staybook/internal/domain/reservations"
	"staybook/internal/domain/shared/daterange"
)

// AccommodationRepository is an in-memory implementation used by tests and
// the demo wiring.
type AccommodationRepository struct {
	mu    sync.RWMutex
	items map[domainaccommodations.AccommodationID]*domainaccommodations.Accommodation
}

func NewAccommodationRepository() *AccommodationRepository {
	return &AccommodationRepository{
		items: make(map[domainaccommodations.AccommodationID]*domainaccommodations.Accommodation),
	}
}

func (r *AccommodationRepository) ByID(ctx context.Context, id domainaccommodations.AccommodationID) (*domainaccommodations.Accommodation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	accommodation, ok := r.items[id]
	if !ok {
		return nil, domainaccommodations.ErrNotFound
	}
	return cloneAccommodation(accommodation), nil
}

func (r *AccommodationRepository) Save(ctx context.Context, accommodation *domainaccommodations.Accommodation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	accommodation.Version++
	r.items[accommodation.ID] = cloneAccommodation(accommodation)
	return nil
}

// Search filters by status, case-insensitive city substring, capacity and
// price range. Stay-range availability is composed by the caller.
func (r *AccommodationRepository) Search(ctx context.Context, params domainaccommodations.SearchParams) (domainaccommodations.SearchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := params.Normalized()
	matches := make([]*domainaccommodations.Accommodation, 0, len(r.items))
	for _, accommodation := range r.items {
		select {
		case <-ctx.Done():
			return domainaccommodations.SearchResult{}, ctx.Err()
		default:
		}

		if !opts.MatchesStatus(accommodation.Status) {
			continue
		}
		if opts.Host != "" && accommodation.Host != opts.Host {
			continue
		}
		if opts.City != "" && !strings.Contains(strings.ToLower(accommodation.City), opts.City) {
			continue
		}
		if opts.MinGuests > 0 && accommodation.MaxGuests < opts.MinGuests {
			continue
		}
		if opts.PriceMinCents > 0 && accommodation.NightlyPriceCents < opts.PriceMinCents {
			continue
		}
		if opts.PriceMaxCents > 0 && accommodation.NightlyPriceCents > opts.PriceMaxCents {
			continue
		}
		matches = append(matches, cloneAccommodation(accommodation))
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].NightlyPriceCents == matches[j].NightlyPriceCents {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].NightlyPriceCents < matches[j].NightlyPriceCents
	})

	total := len(matches)
	start := opts.Offset
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}
	return domainaccommodations.SearchResult{Items: matches[start:end], Total: total}, nil
}

// ReservationRepository stores reservations in memory. Save doubles as the
// storage-level no-overlap constraint: inserting a blocking reservation whose
// range overlaps another blocking one for the same accommodation fails even
// when both writers passed the availability check.
type ReservationRepository struct {
	mu    sync.RWMutex
	items map[domainreservations.ReservationID]*domainreservations.Reservation
}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{
		items: make(map[domainreservations.ReservationID]*domainreservations.Reservation),
	}
}

func (r *ReservationRepository) ByID(ctx context.Context, id domainreservations.ReservationID) (*domainreservations.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reservation, ok := r.items[id]
	if !ok {
		return nil, domainreservations.ErrNotFound
	}
	return cloneReservation(reservation), nil
}

func (r *ReservationRepository) Save(ctx context.Context, reservation *domainreservations.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if isBlocking(reservation.State) {
		for _, existing := range r.items {
			if existing.ID == reservation.ID {
				continue
			}
			if existing.AccommodationID != reservation.AccommodationID {
				continue
			}
			if !isBlocking(existing.State) {
				continue
			}
			if existing.Range.Overlaps(reservation.Range) {
				return domainreservations.ErrDateRangeConflict
			}
		}
	}
	reservation.Version++
	r.items[reservation.ID] = cloneReservation(reservation)
	return nil
}

func (r *ReservationRepository) FindOverlapping(ctx context.Context, accommodationID domainaccommodations.AccommodationID, dr daterange.DateRange, states []domainreservations.State) ([]*domainreservations.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainreservations.Reservation
	for _, reservation := range r.items {
		if reservation.AccommodationID != accommodationID {
			continue
		}
		if !stateIn(reservation.State, states) {
			continue
		}
		if reservation.Range.Overlaps(dr) {
			out = append(out, cloneReservation(reservation))
		}
	}
	return out, nil
}

func (r *ReservationRepository) ListByGuest(ctx context.Context, guestID string, page domainreservations.Page) ([]*domainreservations.Reservation, int, error) {
	return r.list(func(res *domainreservations.Reservation) bool {
		return res.GuestID == guestID
	}, page)
}

func (r *ReservationRepository) ListByAccommodation(ctx context.Context, accommodationID domainaccommodations.AccommodationID, page domainreservations.Page) ([]*domainreservations.Reservation, int, error) {
	return r.list(func(res *domainreservations.Reservation) bool {
		return res.AccommodationID == accommodationID
	}, page)
}

func (r *ReservationRepository) list(match func(*domainreservations.Reservation) bool, page domainreservations.Page) ([]*domainreservations.Reservation, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matches []*domainreservations.Reservation
	for _, reservation := range r.items {
		if match(reservation) {
			matches = append(matches, cloneReservation(reservation))
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return paginate(matches, page.Limit, page.Offset)
}

// CommentRepository stores comments in memory with the one-comment-per-
// reservation uniqueness enforced on insert.
type CommentRepository struct {
	mu            sync.RWMutex
	items         map[domaincomments.CommentID]*domaincomments.Comment
	byReservation map[domainreservations.ReservationID]domaincomments.CommentID
}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{
		items:         make(map[domaincomments.CommentID]*domaincomments.Comment),
		byReservation: make(map[domainreservations.ReservationID]domaincomments.CommentID),
	}
}

func (r *CommentRepository) ByID(ctx context.Context, id domaincomments.CommentID) (*domaincomments.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	comment, ok := r.items[id]
	if !ok {
		return nil, domaincomments.ErrNotFound
	}
	return cloneComment(comment), nil
}

func (r *CommentRepository) Save(ctx context.Context, comment *domaincomments.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existingID, ok := r.byReservation[comment.ReservationID]; ok && existingID != comment.ID {
		return domaincomments.ErrDuplicate
	}
	comment.Version++
	r.byReservation[comment.ReservationID] = comment.ID
	r.items[comment.ID] = cloneComment(comment)
	return nil
}

func (r *CommentRepository) ExistsByReservation(ctx context.Context, reservationID domainreservations.ReservationID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byReservation[reservationID]
	return ok, nil
}

func (r *CommentRepository) ListByAccommodation(ctx context.Context, accommodationID domainaccommodations.AccommodationID, page domaincomments.Page) ([]*domaincomments.Comment, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matches []*domaincomments.Comment
	for _, comment := range r.items {
		if comment.AccommodationID == accommodationID {
			matches = append(matches, cloneComment(comment))
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return paginate(matches, page.Limit, page.Offset)
}

func (r *CommentRepository) Ratings(ctx context.Context, accommodationID domainaccommodations.AccommodationID) ([]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []int
	for _, comment := range r.items {
		if comment.AccommodationID == accommodationID {
			out = append(out, comment.Rating)
		}
	}
	return out, nil
}

func isBlocking(state domainreservations.State) bool {
	return stateIn(state, domainreservations.BlockingStates())
}

func stateIn(state domainreservations.State, states []domainreservations.State) bool {
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, limit, offset int) ([]T, int, error) {
	total := len(items)
	if limit <= 0 {
		return items, total, nil
	}
	if offset < 0 {
		offset = 0
	}
	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return items[start:end], total, nil
}

func cloneAccommodation(a *domainaccommodations.Accommodation) *domainaccommodations.Accommodation {
	if a == nil {
		return nil
	}
	out := *a
	out.ClearEvents()
	return &out
}

func cloneReservation(r *domainreservations.Reservation) *domainreservations.Reservation {
	if r == nil {
		return nil
	}
	out := *r
	out.ClearEvents()
	return &out
}

func cloneComment(c *domaincomments.Comment) *domaincomments.Comment {
	if c == nil {
		return nil
	}
	out := *c
	out.ClearEvents()
	return &out
}
