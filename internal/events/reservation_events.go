package events

import (
	"reservation-system/internal/entities"
)

const (
	ReservationCreated      = "reservation.created"
	ReservationBatchCreated = "reservation.batch_created"
	ReservationUpdated      = "reservation.updated"
	ReservationDeleted      = "reservation.deleted"
	ReservationStaged       = "reservation.staged"
	EquipmentDeleted        = "equipment.deleted"
)

type ReservationCreatedEvent struct {
	Reservation entities.Reservation
	ActorID     string
}

func (e ReservationCreatedEvent) Name() string { return ReservationCreated }

type ReservationBatchCreatedEvent struct {
	Reservations []entities.Reservation
	ActorID      string
}

func (e ReservationBatchCreatedEvent) Name() string { return ReservationBatchCreated }

type ReservationUpdatedEvent struct {
	Before  entities.Reservation
	After   entities.Reservation
	ActorID string
}

func (e ReservationUpdatedEvent) Name() string { return ReservationUpdated }

type ReservationDeletedEvent struct {
	Reservation entities.Reservation
	ActorID     string
}

func (e ReservationDeletedEvent) Name() string { return ReservationDeleted }

type ReservationStagedEvent struct {
	ReservationID string
	Staged        bool
	ActorID       string
}

func (e ReservationStagedEvent) Name() string { return ReservationStaged }

type EquipmentDeletedEvent struct {
	Equipment            entities.Equipment
	CascadedReservations int64
	ActorID              string
}

func (e EquipmentDeletedEvent) Name() string { return EquipmentDeleted }
