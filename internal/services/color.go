package services

import (
	"math"
	"unicode/utf16"

	"reservation-system/internal/entities"
)

var technicianPalette = [...]string{
	"#3b82f6",
	"#22c55e",
	"#6366f1",
	"#a855f7",
	"#ec4899",
	"#ca8a04",
	"#14b8a6",
	"#ef4444",
}

// TechnicianColor maps an id onto the palette. The same id always yields the
// same colour, and the mapping matches the one the web client computes.
func TechnicianColor(id string) string {
	var h float64
	for _, c := range utf16.Encode([]rune(id)) {
		shifted := float64(int32(toUint32(h) << 5))
		h = float64(c) + (shifted - h)
	}
	return technicianPalette[int(math.Abs(math.Mod(h, float64(len(technicianPalette)))))]
}

// toUint32 applies ToUint32 semantics: truncate, then wrap modulo 2^32.
func toUint32(f float64) uint32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	m := math.Mod(math.Trunc(f), 1<<32)
	if m < 0 {
		m += 1 << 32
	}
	return uint32(m)
}

// ResolveDisplayColor prefers the colour stored on the user.
func ResolveDisplayColor(user *entities.User) string {
	if user.DisplayColor.Valid && user.DisplayColor.String != "" {
		return user.DisplayColor.String
	}
	return TechnicianColor(user.ID)
}
