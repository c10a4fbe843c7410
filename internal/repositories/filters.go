package repositories

import (
	"reservation-system/internal/entities"
	"reservation-system/pkg/types"
)

// ReservationFilter is the query-by-predicate capability shared by every
// store. Zero fields do not constrain.
type ReservationFilter struct {
	EquipmentID  string
	TechnicianID string
	CompanyID    string
	ExcludeID    string

	// PickupDate matches exactly.
	PickupDate *types.Date

	// From and To select reservations overlapping [From, To] inclusively.
	From *types.Date
	To   *types.Date

	ReturnOnOrAfter *types.Date
}

func (f ReservationFilter) Matches(r *entities.Reservation) bool {
	switch {
	case f.EquipmentID != "" && r.EquipmentID != f.EquipmentID:
		return false
	case f.TechnicianID != "" && r.TechnicianID != f.TechnicianID:
		return false
	case f.CompanyID != "" && r.CompanyID != f.CompanyID:
		return false
	case f.ExcludeID != "" && r.ID == f.ExcludeID:
		return false
	case f.PickupDate != nil && !r.PickupDate.Equal(*f.PickupDate):
		return false
	case f.From != nil && r.ReturnDate.Before(*f.From):
		return false
	case f.To != nil && r.PickupDate.After(*f.To):
		return false
	case f.ReturnOnOrAfter != nil && r.ReturnDate.Before(*f.ReturnOnOrAfter):
		return false
	}
	return true
}
