package accommodations

import (
	"context"
	"log/slog"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/outbox"
	"staybook/internal/app/support"
	"staybook/internal/app/uow"
	domainaccommodations "staybook/internal/domain/accommodations"
	domainuser "staybook/internal/domain/user"
)

const (
	createAccommodationKey = "accommodations.create"
	updateAccommodationKey = "accommodations.update"
	deleteAccommodationKey = "accommodations.delete"
)

// CreateAccommodationCommand lists a new accommodation for a host.
type CreateAccommodationCommand struct {
	AccommodationID   string
	HostID            string
	Title             string
	Description       string
	City              string
	NightlyPriceCents int64
	MaxGuests         int
	Now               time.Time
}

func (c CreateAccommodationCommand) Key() string { return createAccommodationKey }

// UpdateAccommodationCommand edits a listing in place.
type UpdateAccommodationCommand struct {
	AccommodationID   string
	Title             string
	Description       string
	City              string
	NightlyPriceCents int64
	MaxGuests         int
	Now               time.Time
}

func (c UpdateAccommodationCommand) Key() string { return updateAccommodationKey }

// DeleteAccommodationCommand performs the logical delete; the record is kept
// so reservations and comments stay referentially intact. No un-delete.
type DeleteAccommodationCommand struct {
	AccommodationID string
	Now             time.Time
}

func (c DeleteAccommodationCommand) Key() string { return deleteAccommodationKey }

// HostHandler covers the host-facing accommodation commands.
type HostHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *HostHandler) HandleCreate(ctx context.Context, cmd CreateAccommodationCommand) (dto.Accommodation, error) {
	unit, execCtx, managed, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return dto.Accommodation{}, err
	}
	committed := false
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(execCtx)
			}
		}()
	}

	host, err := unit.Users().ByID(execCtx, domainuser.ID(cmd.HostID))
	if err != nil {
		return dto.Accommodation{}, err
	}
	accommodation, err := domainaccommodations.New(domainaccommodations.CreateParams{
		ID:                domainaccommodations.AccommodationID(cmd.AccommodationID),
		Host:              domainaccommodations.HostID(host.ID),
		Title:             cmd.Title,
		Description:       cmd.Description,
		City:              cmd.City,
		NightlyPriceCents: cmd.NightlyPriceCents,
		MaxGuests:         cmd.MaxGuests,
		Now:               cmd.Now,
	})
	if err != nil {
		return dto.Accommodation{}, err
	}
	if err := h.save(execCtx, unit, accommodation); err != nil {
		return dto.Accommodation{}, err
	}
	if managed {
		if err := unit.Commit(execCtx); err != nil {
			return dto.Accommodation{}, err
		}
		committed = true
	}
	if h.Logger != nil {
		h.Logger.Info("accommodation listed", "accommodation_id", accommodation.ID, "host_id", accommodation.Host, "city", accommodation.City)
	}
	return dto.MapAccommodation(accommodation), nil
}

func (h *HostHandler) HandleUpdate(ctx context.Context, cmd UpdateAccommodationCommand) (dto.Accommodation, error) {
	return h.mutate(ctx, cmd.AccommodationID, "accommodation updated", func(a *domainaccommodations.Accommodation, now time.Time) error {
		return a.Update(domainaccommodations.UpdateParams{
			Title:             cmd.Title,
			Description:       cmd.Description,
			City:              cmd.City,
			NightlyPriceCents: cmd.NightlyPriceCents,
			MaxGuests:         cmd.MaxGuests,
		}, now)
	}, cmd.Now)
}

func (h *HostHandler) HandleDelete(ctx context.Context, cmd DeleteAccommodationCommand) (dto.Accommodation, error) {
	return h.mutate(ctx, cmd.AccommodationID, "accommodation delisted", (*domainaccommodations.Accommodation).Delist, cmd.Now)
}

func (h *HostHandler) mutate(ctx context.Context, id string, logMsg string, apply func(*domainaccommodations.Accommodation, time.Time) error, now time.Time) (dto.Accommodation, error) {
	unit, execCtx, managed, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return dto.Accommodation{}, err
	}
	committed := false
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(execCtx)
			}
		}()
	}

	if now.IsZero() {
		now = time.Now()
	}
	accommodation, err := unit.Accommodations().ByID(execCtx, domainaccommodations.AccommodationID(id))
	if err != nil {
		return dto.Accommodation{}, err
	}
	if err := apply(accommodation, now); err != nil {
		return dto.Accommodation{}, err
	}
	if err := h.save(execCtx, unit, accommodation); err != nil {
		return dto.Accommodation{}, err
	}
	if managed {
		if err := unit.Commit(execCtx); err != nil {
			return dto.Accommodation{}, err
		}
		committed = true
	}
	if h.Logger != nil {
		h.Logger.Info(logMsg, "accommodation_id", accommodation.ID, "status", accommodation.Status)
	}
	return dto.MapAccommodation(accommodation), nil
}

func (h *HostHandler) save(ctx context.Context, unit uow.UnitOfWork, accommodation *domainaccommodations.Accommodation) error {
	if err := unit.Accommodations().Save(ctx, accommodation); err != nil {
		return err
	}
	pending := accommodation.PendingEvents()
	accommodation.ClearEvents()
	return outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, pending)
}

// Register wires the host commands onto a bus.
func (h *HostHandler) Register(bus *commands.InMemoryBus) {
	commands.RegisterHandler(bus, createAccommodationKey, commands.HandlerFunc[CreateAccommodationCommand, dto.Accommodation](h.HandleCreate))
	commands.RegisterHandler(bus, updateAccommodationKey, commands.HandlerFunc[UpdateAccommodationCommand, dto.Accommodation](h.HandleUpdate))
	commands.RegisterHandler(bus, deleteAccommodationKey, commands.HandlerFunc[DeleteAccommodationCommand, dto.Accommodation](h.HandleDelete))
}
