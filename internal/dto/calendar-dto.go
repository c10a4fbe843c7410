package dto

import (
	"reservation-system/internal/entities"
	"reservation-system/pkg/types"
)

type CalendarDTO struct {
	Mode   string       `json:"mode"`
	Anchor types.Date   `json:"anchor"`
	Days   []types.Date `json:"days"`
	// Cells is filled in month mode, Rows in week mode.
	Cells []CalendarDayDTO     `json:"cells,omitempty"`
	Rows  []CalendarWeekRowDTO `json:"rows,omitempty"`
}

type CalendarDayDTO struct {
	Date        types.Date              `json:"date"`
	InMonth     bool                    `json:"inMonth"`
	Technicians []CalendarTechnicianDTO `json:"technicians"`
}

type CalendarTechnicianDTO struct {
	Technician   TechnicianRefDTO       `json:"technician"`
	Reservations []entities.Reservation `json:"reservations"`
}

type CalendarWeekRowDTO struct {
	Technician TechnicianRefDTO      `json:"technician"`
	Spans      []CalendarWeekSpanDTO `json:"spans"`
}

type CalendarWeekSpanDTO struct {
	Reservation entities.Reservation `json:"reservation"`
	StartIndex  int                  `json:"startIndex"`
	DayCount    int                  `json:"dayCount"`
}
