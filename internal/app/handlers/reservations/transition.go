package reservations

import (
	"context"
	"log/slog"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/outbox"
	"staybook/internal/app/support"
	"staybook/internal/app/uow"
	domainreservations "staybook/internal/domain/reservations"
)

const (
	confirmReservationKey  = "reservations.confirm"
	cancelReservationKey   = "reservations.cancel"
	completeReservationKey = "reservations.complete"
)

// ConfirmReservationCommand moves PENDING to CONFIRMED.
type ConfirmReservationCommand struct {
	ReservationID string
	Now           time.Time
}

func (c ConfirmReservationCommand) Key() string { return confirmReservationKey }

// CancelReservationCommand moves PENDING or CONFIRMED to CANCELLED. There is
// no time gate relative to check-in; a cancel on an already terminal
// reservation fails with an invalid-transition error.
type CancelReservationCommand struct {
	ReservationID string
	Now           time.Time
}

func (c CancelReservationCommand) Key() string { return cancelReservationKey }

// CompleteReservationCommand moves CONFIRMED to COMPLETED, unlocking the
// rating gate. Whether a host action or a scheduled sweep issues it is up to
// the caller.
type CompleteReservationCommand struct {
	ReservationID string
	Now           time.Time
}

func (c CompleteReservationCommand) Key() string { return completeReservationKey }

// TransitionHandler applies one guarded lifecycle move and persists it.
type TransitionHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *TransitionHandler) HandleConfirm(ctx context.Context, cmd ConfirmReservationCommand) (dto.Reservation, error) {
	return h.apply(ctx, cmd.ReservationID, cmd.Now, "reservation confirmed", (*domainreservations.Reservation).Confirm)
}

func (h *TransitionHandler) HandleCancel(ctx context.Context, cmd CancelReservationCommand) (dto.Reservation, error) {
	return h.apply(ctx, cmd.ReservationID, cmd.Now, "reservation cancelled", (*domainreservations.Reservation).Cancel)
}

func (h *TransitionHandler) HandleComplete(ctx context.Context, cmd CompleteReservationCommand) (dto.Reservation, error) {
	return h.apply(ctx, cmd.ReservationID, cmd.Now, "reservation completed", (*domainreservations.Reservation).Complete)
}

func (h *TransitionHandler) apply(ctx context.Context, id string, now time.Time, logMsg string, move func(*domainreservations.Reservation, time.Time) error) (dto.Reservation, error) {
	unit, execCtx, managed, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return dto.Reservation{}, err
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
	reservation, err := unit.Reservations().ByID(execCtx, domainreservations.ReservationID(id))
	if err != nil {
		return dto.Reservation{}, err
	}
	if err := move(reservation, now); err != nil {
		return dto.Reservation{}, err
	}
	if err := unit.Reservations().Save(execCtx, reservation); err != nil {
		return dto.Reservation{}, err
	}

	pending := reservation.PendingEvents()
	reservation.ClearEvents()
	if err := outbox.RecordDomainEvents(execCtx, h.Outbox, h.Encoder, pending); err != nil {
		return dto.Reservation{}, err
	}

	if managed {
		if err := unit.Commit(execCtx); err != nil {
			return dto.Reservation{}, err
		}
		committed = true
	}

	if h.Logger != nil {
		h.Logger.Info(logMsg, "reservation_id", reservation.ID, "state", reservation.State)
	}
	return dto.MapReservation(reservation), nil
}

// Register wires the three transition commands onto a bus.
func (h *TransitionHandler) Register(bus *commands.InMemoryBus) {
	commands.RegisterHandler(bus, confirmReservationKey, commands.HandlerFunc[ConfirmReservationCommand, dto.Reservation](h.HandleConfirm))
	commands.RegisterHandler(bus, cancelReservationKey, commands.HandlerFunc[CancelReservationCommand, dto.Reservation](h.HandleCancel))
	commands.RegisterHandler(bus, completeReservationKey, commands.HandlerFunc[CompleteReservationCommand, dto.Reservation](h.HandleComplete))
}
