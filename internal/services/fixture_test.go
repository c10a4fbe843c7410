package services

import (
	"context"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"reservation-system/internal/dto"
	"reservation-system/internal/entities"
	"reservation-system/internal/repositories"
	"reservation-system/internal/repositories/memory"
	"reservation-system/pkg/eventbus"
)

// fixedNow is a Monday.
var fixedNow = time.Date(2024, time.July, 29, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	store *memory.Store
	clock *clockwork.FakeClock
	bus   *eventbus.Bus

	users        repositories.UserRepositoryInterface
	companies    repositories.CompanyRepositoryInterface
	equipment    repositories.EquipmentRepositoryInterface
	reservations repositories.ReservationRepositoryInterface

	roleService        AuthRoleServiceInterface
	reservationService ReservationServiceInterface
	stagingService     StagingServiceInterface
	calendarService    CalendarServiceInterface
	equipmentService   EquipmentServiceInterface
	companyService     CompanyServiceInterface
	userService        UserServiceInterface
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	store := memory.NewStore()

	env := &testEnv{
		store:        store,
		clock:        clockwork.NewFakeClockAt(fixedNow),
		bus:          eventbus.New(logger),
		users:        memory.NewUserRepository(store),
		companies:    memory.NewCompanyRepository(store),
		equipment:    memory.NewEquipmentRepository(store),
		reservations: memory.NewReservationRepository(store),
	}
	t.Cleanup(env.bus.Wait)

	availability := NewAvailabilityService(env.reservations, logger)
	env.roleService = NewAuthRoleService(env.users, nil, logger, time.Minute)
	env.reservationService = NewReservationService(store, env.reservations, env.equipment, env.users, env.companies, availability, env.bus, env.clock, logger)
	env.stagingService = NewStagingService(env.reservations, env.equipment, env.users, env.companies, env.bus, env.clock, logger)
	env.calendarService = NewCalendarService(env.reservations, env.users, logger)
	env.equipmentService = NewEquipmentService(store, env.equipment, env.reservations, env.bus, env.clock, logger)
	env.companyService = NewCompanyService(store, env.companies, env.reservations, env.clock, logger)
	env.userService = NewUserService(store, env.users, env.reservations, env.roleService, env.clock, logger)

	ctx := context.Background()
	require.NoError(t, env.users.CreateUser(ctx, &entities.User{ID: "tech-1", Name: "Tom", Role: entities.RoleTechnician}))
	require.NoError(t, env.users.CreateUser(ctx, &entities.User{ID: "tech-2", Name: "alice", Role: entities.RoleTechnician, DisplayColor: null.StringFrom("#123456")}))
	require.NoError(t, env.users.CreateUser(ctx, &entities.User{ID: "admin-1", Name: "Admin", Role: entities.RoleAdmin, Email: null.StringFrom("admin@example.com")}))
	require.NoError(t, env.companies.CreateCompany(ctx, &entities.Company{ID: "co-1", Name: "Acme"}))
	require.NoError(t, env.companies.CreateCompany(ctx, &entities.Company{ID: "co-2", Name: "Globex"}))
	for _, e := range []entities.Equipment{
		{ID: "eq-1", GageID: "G-1001", Description: "Caliper"},
		{ID: "eq-2", GageID: "G-1002", Description: "Micrometer"},
		{ID: "eq-3", GageID: "G-1003", Description: "Torque wrench"},
	} {
		require.NoError(t, env.equipment.CreateEquipment(ctx, &e))
	}
	return env
}

func booking(equipmentID, technicianID, pickup, ret string) dto.CreateReservationDTO {
	return dto.CreateReservationDTO{
		EquipmentID:  equipmentID,
		TechnicianID: technicianID,
		CompanyID:    "co-1",
		PickupDate:   pickup,
		ReturnDate:   ret,
	}
}

func (env *testEnv) book(t *testing.T, equipmentID, technicianID, pickup, ret string) *entities.Reservation {
	t.Helper()
	res, err := env.reservationService.CreateReservation(context.Background(), booking(equipmentID, technicianID, pickup, ret))
	require.NoError(t, err)
	return res
}
