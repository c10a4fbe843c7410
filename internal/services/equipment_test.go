package services

import (
	"context"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reservation-system/internal/dto"
	"reservation-system/internal/repositories"
	apperrors "reservation-system/pkg/errors"
	"reservation-system/pkg/utils"
)

func TestEquipmentService_CreateAndUniqueness(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.equipmentService.CreateEquipment(ctx, dto.CreateEquipmentDTO{
		GageID:             " G-2000 ",
		Description:        "Pressure gauge",
		UOM:                "psi",
		CalibrationDueDate: null.StringFrom("2025-01-15"),
	})
	require.NoError(t, err)
	assert.Equal(t, "G-2000", created.GageID)
	assert.True(t, created.CalibrationDueDate.Valid)
	assert.Equal(t, "2025-01-15", created.CalibrationDueDate.Date.String())
	assert.False(t, created.ImageURL.Valid)

	_, err = env.equipmentService.CreateEquipment(ctx, dto.CreateEquipmentDTO{GageID: "g-2000", Description: "dup"})
	assert.ErrorIs(t, err, apperrors.ErrUniqueness)

	_, err = env.equipmentService.CreateEquipment(ctx, dto.CreateEquipmentDTO{GageID: "G-3000"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = env.equipmentService.CreateEquipment(ctx, dto.CreateEquipmentDTO{GageID: "G-3000", Description: "x", ImageURL: null.StringFrom("not a url")})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestEquipmentService_UpdateRename(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	updated, err := env.equipmentService.UpdateEquipment(ctx, "eq-1", dto.UpdateEquipmentDTO{GageID: "g-1001", Description: "Digital caliper"})
	require.NoError(t, err, "renaming to a case variant of itself is allowed")
	assert.Equal(t, "g-1001", updated.GageID)

	_, err = env.equipmentService.UpdateEquipment(ctx, "eq-1", dto.UpdateEquipmentDTO{GageID: "G-1002", Description: "clash"})
	assert.ErrorIs(t, err, apperrors.ErrUniqueness)

	_, err = env.equipmentService.UpdateEquipment(ctx, "missing", dto.UpdateEquipmentDTO{GageID: "G-9", Description: "x"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEquipmentService_DeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := utils.WithUser(context.Background(), "admin-1", "ADMIN")
	env.book(t, "eq-1", "tech-1", "2024-08-01", "2024-08-02")
	env.book(t, "eq-1", "tech-2", "2024-08-05", "2024-08-06")
	keep := env.book(t, "eq-2", "tech-1", "2024-08-01", "2024-08-02")

	cascaded, err := env.equipmentService.DeleteEquipment(ctx, "eq-1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, cascaded)

	all, err := env.reservationService.ListReservations(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, keep.ID, all[0].ID)

	_, err = env.equipmentService.DeleteEquipment(ctx, "eq-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEquipmentService_BulkUpsert(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	url := "https://img.example.com/g2000.png"

	result, err := env.equipmentService.BulkUpsertEquipment(ctx, []dto.EquipmentImportRow{
		{Row: 2, GageID: "g-1001", Description: "Caliper 150mm", Manufacturer: "Mitutoyo"},
		{Row: 3, GageID: "G-2000", Description: "Pressure gauge", ImageURL: &url},
		{Row: 4, GageID: "", Description: "orphan", RowData: map[string]string{"description": "orphan"}},
		{Row: 5, GageID: "G-3000", Description: ""},
		{Row: 6, GageID: "G-2000", Description: "again"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.CreatedCount)
	assert.Equal(t, 1, result.UpdatedCount)
	require.Len(t, result.Errors, 3)
	assert.Equal(t, 4, result.Errors[0].Row)
	assert.Equal(t, "orphan", result.Errors[0].RowData["description"])
	assert.Contains(t, result.Errors[0].Message, "gageId")
	assert.Contains(t, result.Errors[1].Message, "description")
	assert.Contains(t, result.Errors[2].Message, "row 3")

	all, err := env.equipmentService.GetEquipments(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4, "matched row must not create a duplicate")

	matched, err := env.equipment.FindEquipmentByGageID(ctx, "G-1001")
	require.NoError(t, err)
	assert.Equal(t, "eq-1", matched.ID)
	assert.Equal(t, "G-1001", matched.GageID, "the key itself is not rewritten")
	assert.Equal(t, "Caliper 150mm", matched.Description)
	assert.Equal(t, "Mitutoyo", matched.Manufacturer)

	fresh, err := env.equipment.FindEquipmentByGageID(ctx, "g-2000")
	require.NoError(t, err)
	assert.Equal(t, url, fresh.ImageURL.String)
}

func TestEquipmentService_BulkUpsertKeepsOptionalFieldsWhenColumnAbsent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	url := "https://img.example.com/caliper.png"

	_, err := env.equipmentService.BulkUpsertEquipment(ctx, []dto.EquipmentImportRow{{Row: 2, GageID: "G-1001", Description: "Caliper", ImageURL: &url}})
	require.NoError(t, err)
	result, err := env.equipmentService.BulkUpsertEquipment(ctx, []dto.EquipmentImportRow{{Row: 2, GageID: "G-1001", Description: "Caliper v2"}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.UpdatedCount)

	e, err := env.equipment.FindEquipment(ctx, "eq-1")
	require.NoError(t, err)
	assert.Equal(t, url, e.ImageURL.String)

	bad := "yesterday"
	result, err = env.equipmentService.BulkUpsertEquipment(ctx, []dto.EquipmentImportRow{{Row: 2, GageID: "G-1001", Description: "x", CalibrationDueDate: &bad}})
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Message, "calibrationDueDate")
}

func TestCompanyService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.companyService.CreateCompany(ctx, dto.CreateCompanyDTO{Name: "Initech"})
	require.NoError(t, err)
	_, err = env.companyService.CreateCompany(ctx, dto.CreateCompanyDTO{Name: "ACME"})
	assert.ErrorIs(t, err, apperrors.ErrUniqueness)

	renamed, err := env.companyService.UpdateCompany(ctx, c.ID, dto.UpdateCompanyDTO{Name: "Initech LLC"})
	require.NoError(t, err)
	assert.Equal(t, "Initech LLC", renamed.Name)

	env.book(t, "eq-1", "tech-1", "2024-08-01", "2024-08-02")
	err = env.companyService.DeleteCompany(ctx, "co-1")
	assert.ErrorIs(t, err, apperrors.ErrReferenced)
	_, err = env.companyService.FindCompany(ctx, "co-1")
	assert.NoError(t, err)

	require.NoError(t, env.companyService.DeleteCompany(ctx, c.ID))
	assert.ErrorIs(t, env.companyService.DeleteCompany(ctx, c.ID), apperrors.ErrNotFound)
}

func TestCompanyService_BulkUpsert(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.companyService.BulkUpsertCompanies(ctx, []dto.CompanyImportRow{
		{Row: 2, Name: "acme"},
		{Row: 3, Name: "Umbrella"},
		{Row: 4, Name: "  "},
		{Row: 5, Name: "UMBRELLA"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.CreatedCount)
	assert.Equal(t, 1, result.UpdatedCount)
	assert.Len(t, result.Errors, 2)

	n, err := env.companyService.GetCompanies(ctx)
	require.NoError(t, err)
	assert.Len(t, n, 3)
}

func TestUserService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.userService.CreateUser(ctx, dto.CreateUserDTO{
		Name:  "Bob",
		Email: null.StringFrom("Bob@Example.com"),
		Role:  "TECHNICIAN",
	})
	require.NoError(t, err)
	assert.False(t, created.HasCredential)
	assert.Equal(t, TechnicianColor(created.ID), created.DisplayColor)
	assert.False(t, created.CustomColor)

	_, err = env.userService.CreateUser(ctx, dto.CreateUserDTO{Name: "Bobby", Email: null.StringFrom("bob@example.com"), Role: "TECHNICIAN"})
	assert.ErrorIs(t, err, apperrors.ErrUniqueness)

	_, err = env.userService.CreateUser(ctx, dto.CreateUserDTO{Name: "Eve", Role: "ROOT"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	require.NoError(t, env.userService.SetCredential(ctx, created.ID, dto.SetCredentialDTO{Secret: "correct horse"}))
	assert.ErrorIs(t, env.userService.SetCredential(ctx, created.ID, dto.SetCredentialDTO{Secret: "short"}), apperrors.ErrValidation)

	updated, err := env.userService.UpdateUser(ctx, created.ID, dto.UpdateUserDTO{Name: "Robert", Role: "ADMIN", DisplayColor: null.StringFrom("#abcdef")})
	require.NoError(t, err)
	assert.True(t, updated.HasCredential, "profile update keeps the credential")
	assert.Equal(t, "#abcdef", updated.DisplayColor)
	assert.False(t, updated.Email.Valid)

	assert.NoError(t, env.userService.VerifyCredential(ctx, created.ID, "correct horse"))
	assert.ErrorIs(t, env.userService.VerifyCredential(ctx, created.ID, "wrong horse"), apperrors.ErrInvalidCredentials)
	assert.ErrorIs(t, env.userService.VerifyCredential(ctx, "tech-1", "anything"), apperrors.ErrInvalidCredentials)

	require.NoError(t, env.userService.DeleteUser(ctx, created.ID))
	_, err = env.userService.FindUser(ctx, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserService_DeleteGuard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	r := env.book(t, "eq-1", "tech-1", "2024-08-01", "2024-08-02")

	err := env.userService.DeleteUser(ctx, "tech-1")
	require.ErrorIs(t, err, apperrors.ErrReferenced)

	_, err = env.userService.FindUser(ctx, "tech-1")
	assert.NoError(t, err)
	n, err := env.reservations.CountReservations(ctx, repositories.ReservationFilter{TechnicianID: "tech-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = env.reservationService.FindReservation(ctx, r.ID)
	assert.NoError(t, err)
}
