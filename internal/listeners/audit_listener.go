package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"reservation-system/internal/events"
	"reservation-system/pkg/eventbus"
)

// AuditListener writes one structured log line per booking change.
type AuditListener struct {
	logger *zap.Logger
}

func NewAuditListener(logger *zap.Logger) *AuditListener {
	return &AuditListener{logger: logger.Named("audit")}
}

func (l *AuditListener) Register(bus *eventbus.Bus) {
	for _, name := range []string{
		events.ReservationCreated,
		events.ReservationBatchCreated,
		events.ReservationUpdated,
		events.ReservationDeleted,
		events.ReservationStaged,
		events.EquipmentDeleted,
	} {
		bus.Subscribe(name, l.Handle)
	}
}

func (l *AuditListener) Handle(ctx context.Context, event eventbus.Event) error {
	switch e := event.(type) {
	case events.ReservationCreatedEvent:
		l.logger.Info(e.Name(),
			zap.String("actorID", e.ActorID),
			zap.String("reservationID", e.Reservation.ID),
			zap.String("equipmentID", e.Reservation.EquipmentID),
			zap.Stringer("pickup", e.Reservation.PickupDate),
			zap.Stringer("return", e.Reservation.ReturnDate),
		)
	case events.ReservationBatchCreatedEvent:
		ids := make([]string, 0, len(e.Reservations))
		for _, r := range e.Reservations {
			ids = append(ids, r.ID)
		}
		l.logger.Info(e.Name(), zap.String("actorID", e.ActorID), zap.Strings("reservationIDs", ids))
	case events.ReservationUpdatedEvent:
		l.logger.Info(e.Name(),
			zap.String("actorID", e.ActorID),
			zap.String("reservationID", e.After.ID),
			zap.String("from", fmt.Sprintf("%s..%s", e.Before.PickupDate, e.Before.ReturnDate)),
			zap.String("to", fmt.Sprintf("%s..%s", e.After.PickupDate, e.After.ReturnDate)),
		)
	case events.ReservationDeletedEvent:
		l.logger.Info(e.Name(), zap.String("actorID", e.ActorID), zap.String("reservationID", e.Reservation.ID))
	case events.ReservationStagedEvent:
		l.logger.Info(e.Name(), zap.String("actorID", e.ActorID), zap.String("reservationID", e.ReservationID), zap.Bool("staged", e.Staged))
	case events.EquipmentDeletedEvent:
		l.logger.Info(e.Name(),
			zap.String("actorID", e.ActorID),
			zap.String("equipmentID", e.Equipment.ID),
			zap.String("gageID", e.Equipment.GageID),
			zap.Int64("cascadedReservations", e.CascadedReservations),
		)
	default:
		return fmt.Errorf("audit: unexpected event %T", event)
	}
	return nil
}
