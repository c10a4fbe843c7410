package entities

import (
	"reservation-system/pkg/types"
)

type Reservation struct {
	ID           string     `json:"id" db:"id"`
	EquipmentID  string     `json:"equipmentId" db:"equipment_id"`
	TechnicianID string     `json:"technicianId" db:"technician_id"`
	CompanyID    string     `json:"companyId" db:"company_id"`
	PickupDate   types.Date `json:"pickupDate" db:"pickup_date"`
	ReturnDate   types.Date `json:"returnDate" db:"return_date"`
	Notes        string     `json:"notes" db:"notes"`
	Staged       bool       `json:"staged" db:"staged"`

	types.BaseEntity
}

// Overlaps applies the inclusive overlap rule: a reservation ending on the
// day another begins still conflicts, because both days are full-day holds.
func (r *Reservation) Overlaps(pickup, ret types.Date) bool {
	return IntervalsOverlap(pickup, ret, r.PickupDate, r.ReturnDate)
}

// Occupies reports whether day falls inside [PickupDate, ReturnDate].
func (r *Reservation) Occupies(day types.Date) bool {
	return !day.Before(r.PickupDate) && !day.After(r.ReturnDate)
}

// IntervalsOverlap is symmetric and does not require start <= end.
func IntervalsOverlap(newPickup, newReturn, existingPickup, existingReturn types.Date) bool {
	return !newPickup.After(existingReturn) && !newReturn.Before(existingPickup)
}

type Phase string

const (
	PhaseUpcoming Phase = "upcoming"
	PhasePast     Phase = "past"
)

// PhaseOf classifies a reservation relative to today. Current rentals count
// as upcoming until their return day has passed.
func PhaseOf(r Reservation, today types.Date) Phase {
	if !r.ReturnDate.Before(today) {
		return PhaseUpcoming
	}
	return PhasePast
}
