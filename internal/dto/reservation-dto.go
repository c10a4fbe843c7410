package dto

import (
	"reservation-system/internal/entities"
)

type CreateReservationDTO struct {
	EquipmentID  string `json:"equipmentId" validate:"required"`
	TechnicianID string `json:"technicianId" validate:"required"`
	CompanyID    string `json:"companyId" validate:"required"`
	PickupDate   string `json:"pickupDate" validate:"required,datetime=2006-01-02"`
	ReturnDate   string `json:"returnDate" validate:"required,datetime=2006-01-02"`
	Notes        string `json:"notes" validate:"max=2000"`
}

// CreateBatchReservationDTO books several pieces of equipment for one
// shared window, company and technician.
type CreateBatchReservationDTO struct {
	EquipmentIDs []string `json:"equipmentIds" validate:"required,min=1,dive,required"`
	TechnicianID string   `json:"technicianId" validate:"required"`
	CompanyID    string   `json:"companyId" validate:"required"`
	PickupDate   string   `json:"pickupDate" validate:"required,datetime=2006-01-02"`
	ReturnDate   string   `json:"returnDate" validate:"required,datetime=2006-01-02"`
	Notes        string   `json:"notes" validate:"max=2000"`
}

type UpdateReservationDTO struct {
	EquipmentID  string `json:"equipmentId" validate:"required"`
	TechnicianID string `json:"technicianId" validate:"required"`
	CompanyID    string `json:"companyId" validate:"required"`
	PickupDate   string `json:"pickupDate" validate:"required,datetime=2006-01-02"`
	ReturnDate   string `json:"returnDate" validate:"required,datetime=2006-01-02"`
	Notes        string `json:"notes" validate:"max=2000"`
	// Staged keeps its stored value when omitted.
	Staged *bool `json:"staged"`
}

type SetStagedDTO struct {
	Staged *bool `json:"staged" validate:"required"`
}

type TechnicianReservationsDTO struct {
	Upcoming []entities.Reservation `json:"upcoming"`
	Past     []entities.Reservation `json:"past"`
}

type AvailabilityDTO struct {
	EquipmentID string                 `json:"equipmentId"`
	PickupDate  string                 `json:"pickupDate"`
	ReturnDate  string                 `json:"returnDate"`
	Available   bool                   `json:"available"`
	Conflicts   []entities.Reservation `json:"conflicts"`
}
