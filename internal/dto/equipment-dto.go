package dto

import (
	"github.com/aarondl/null/v8"
)

type CreateEquipmentDTO struct {
	GageID             string      `json:"gageId" validate:"required,max=100"`
	Description        string      `json:"description" validate:"required,max=500"`
	Manufacturer       string      `json:"manufacturer" validate:"max=200"`
	Model              string      `json:"model" validate:"max=200"`
	Range              string      `json:"range" validate:"max=200"`
	UOM                string      `json:"uom" validate:"max=50"`
	ImageURL           null.String `json:"imageUrl" validate:"omitempty,url"`
	CalibrationDueDate null.String `json:"calibrationDueDate" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateEquipmentDTO CreateEquipmentDTO

// EquipmentImportRow is one parsed line of an equipment import file.
// Optional columns missing from the file are nil.
type EquipmentImportRow struct {
	Row                int
	GageID             string
	Description        string
	Manufacturer       string
	Model              string
	Range              string
	UOM                string
	ImageURL           *string
	CalibrationDueDate *string
	RowData            map[string]string
}
