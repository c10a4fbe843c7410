package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"reservation-system/pkg/types"
)

func d(s string) types.Date { return types.MustParseDate(s) }

func TestReservation_Overlaps(t *testing.T) {
	existing := Reservation{PickupDate: d("2024-07-28"), ReturnDate: d("2024-07-30")}

	tests := []struct {
		name           string
		pickup, ret    string
		expectConflict bool
	}{
		{"shared return day", "2024-07-30", "2024-08-01", true},
		{"shared pickup day", "2024-07-25", "2024-07-28", true},
		{"day after return", "2024-07-31", "2024-08-01", false},
		{"day before pickup", "2024-07-20", "2024-07-27", false},
		{"inside", "2024-07-29", "2024-07-29", true},
		{"enclosing", "2024-07-01", "2024-08-31", true},
		{"identical", "2024-07-28", "2024-07-30", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectConflict, existing.Overlaps(d(tt.pickup), d(tt.ret)))
		})
	}
}

func TestIntervalsOverlap_Symmetric(t *testing.T) {
	a1, a2 := d("2024-01-01"), d("2024-01-05")
	b1, b2 := d("2024-01-05"), d("2024-01-09")

	assert.True(t, IntervalsOverlap(a1, a2, b1, b2))
	assert.True(t, IntervalsOverlap(b1, b2, a1, a2))
}

func TestReservation_Occupies(t *testing.T) {
	r := Reservation{PickupDate: d("2024-03-10"), ReturnDate: d("2024-03-12")}

	assert.False(t, r.Occupies(d("2024-03-09")))
	assert.True(t, r.Occupies(d("2024-03-10")))
	assert.True(t, r.Occupies(d("2024-03-12")))
	assert.False(t, r.Occupies(d("2024-03-13")))
}

func TestPhaseOf(t *testing.T) {
	r := Reservation{PickupDate: d("2024-03-10"), ReturnDate: d("2024-03-12")}

	assert.Equal(t, PhaseUpcoming, PhaseOf(r, d("2024-03-01")))
	assert.Equal(t, PhaseUpcoming, PhaseOf(r, d("2024-03-11")))
	assert.Equal(t, PhaseUpcoming, PhaseOf(r, d("2024-03-12")))
	assert.Equal(t, PhasePast, PhaseOf(r, d("2024-03-13")))
}
