package entities

import (
	"github.com/aarondl/null/v8"

	"reservation-system/pkg/types"
)

type Equipment struct {
	ID                 string         `json:"id" db:"id"`
	GageID             string         `json:"gageId" db:"gage_id"`
	Description        string         `json:"description" db:"description"`
	Manufacturer       string         `json:"manufacturer" db:"manufacturer"`
	Model              string         `json:"model" db:"model"`
	Range              string         `json:"range" db:"measurement_range"`
	UOM                string         `json:"uom" db:"uom"`
	ImageURL           null.String    `json:"imageUrl" db:"image_url"`
	CalibrationDueDate types.NullDate `json:"calibrationDueDate" db:"calibration_due_date"`

	types.BaseEntity
}

func (e *Equipment) NormalizedGageID() string {
	return NormalizeKey(e.GageID)
}
