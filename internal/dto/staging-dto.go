package dto

import (
	"reservation-system/internal/entities"
	"reservation-system/pkg/types"
)

type StagingItemDTO struct {
	ReservationID string             `json:"reservationId"`
	Staged        bool               `json:"staged"`
	PickupDate    types.Date         `json:"pickupDate"`
	ReturnDate    types.Date         `json:"returnDate"`
	Notes         string             `json:"notes"`
	Equipment     entities.Equipment `json:"equipment"`
	Technician    TechnicianRefDTO   `json:"technician"`
	Company       entities.Company   `json:"company"`
}

type StagingStatsDTO struct {
	StagedCount int     `json:"stagedCount"`
	TotalCount  int     `json:"totalCount"`
	Percent     float64 `json:"percent"`
}

type StagingListDTO struct {
	Date  types.Date       `json:"date"`
	Items []StagingItemDTO `json:"items"`
	Stats StagingStatsDTO  `json:"stats"`
}
