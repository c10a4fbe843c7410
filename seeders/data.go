package seeders

import "reservation-system/internal/entities"

var usersData = []struct {
	Name  string
	Email string
	Role  entities.Role
	Color string
}{
	{Name: "Site Admin", Email: "admin@example.com", Role: entities.RoleAdmin},
	{Name: "Maria Lopez", Email: "maria.lopez@example.com", Role: entities.RoleTechnician, Color: "#0ea5e9"},
	{Name: "Dan Whitfield", Role: entities.RoleTechnician},
	{Name: "Priya Raman", Email: "priya.raman@example.com", Role: entities.RoleTechnician},
}

var companiesData = []string{
	"Acme Aerospace",
	"Borealis Marine",
	"Cobalt Automotive",
	"Delta Precision Works",
}

var equipmentData = []struct {
	GageID, Description, Manufacturer, Model, Range, UOM string
	CalibrationDue                                       string
}{
	{"G-1001", "Digital caliper", "Mitutoyo", "500-196-30", "0-150", "mm", "2025-03-01"},
	{"G-1002", "Outside micrometer", "Mitutoyo", "293-340-30", "0-25", "mm", "2025-01-15"},
	{"G-1003", "Torque wrench", "CDI", "2503MFRMH", "50-250", "in-lb", ""},
	{"G-1004", "Bore gauge", "Starrett", "84AZ-6", "35-60", "mm", "2024-12-10"},
	{"G-1005", "Height gauge", "Fowler", "54-175-012", "0-300", "mm", ""},
	{"G-1006", "Surface roughness tester", "Mahr", "PS10", "0-350", "um", "2025-06-30"},
}

// reservationsData offsets are days from the seeding day, so the demo
// always has past, current and upcoming bookings.
var reservationsData = []struct {
	Technician string
	Company    string
	GageIDs    []string
	PickupIn   int
	ReturnIn   int
	Notes      string
}{
	{Technician: "Maria Lopez", Company: "Acme Aerospace", GageIDs: []string{"G-1001", "G-1002"}, PickupIn: 0, ReturnIn: 2, Notes: "Wing spar inspection"},
	{Technician: "Dan Whitfield", Company: "Borealis Marine", GageIDs: []string{"G-1003"}, PickupIn: 0, ReturnIn: 0},
	{Technician: "Priya Raman", Company: "Cobalt Automotive", GageIDs: []string{"G-1004"}, PickupIn: 3, ReturnIn: 6, Notes: "Engine block audit"},
	{Technician: "Maria Lopez", Company: "Delta Precision Works", GageIDs: []string{"G-1005"}, PickupIn: -10, ReturnIn: -7},
	{Technician: "Dan Whitfield", Company: "Acme Aerospace", GageIDs: []string{"G-1006", "G-1001"}, PickupIn: 8, ReturnIn: 9},
}
